package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
// A user is either a STUDENT or a TUTOR; tutors additionally own
// a row in the `tutor_profiles` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (STUDENT or TUTOR).
//  FirstName    – given name shown on profiles and reviews.
//  LastName     – family name shown on profiles and reviews.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Roles recognised in the `role` claim of session tokens and the
// users.role column.  Anything else is rejected at registration.
const (
    RoleStudent = "STUDENT"
    RoleTutor   = "TUTOR"
)
