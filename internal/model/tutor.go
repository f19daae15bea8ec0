package model

import "time"

// TutorProfile is a tutor's public-facing record, distinct from the
// identity row in `users`.  One profile exists per tutor user; it is
// created empty at registration and edited through the profile
// endpoint.  Rates are stored in cents to avoid floating point
// rounding in the database.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – owning tutor's user ID (unique).
//  Bio             – free-form description shown to students.
//  HourlyRateCents – hourly rate in cents.
//  Verified        – whether the platform has verified the tutor.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type TutorProfile struct {
    ID              uint64    // tutor_profiles.id
    UserID          uint64    // tutor_profiles.user_id
    Bio             string    // tutor_profiles.bio
    HourlyRateCents uint32    // tutor_profiles.hourly_rate_cents
    Verified        bool      // tutor_profiles.verified
    CreatedAt       time.Time // tutor_profiles.created_at
    UpdatedAt       time.Time // tutor_profiles.updated_at
}

// Subject is a teachable topic.  Names are unique case-insensitively;
// the stored casing is whatever the first writer supplied.  Tutors
// reference subjects through the `tutor_subjects` join table.
type Subject struct {
    ID   uint64 // subjects.id
    Name string // subjects.name
}
