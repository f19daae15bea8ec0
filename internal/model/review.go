package model

import "time"

// Review is a student's rating of a tutor.  Reviews reference the
// tutor's profile rather than the identity row, so a tutor without a
// profile cannot be reviewed.  Nothing prevents a student from
// leaving several reviews for the same tutor.
//
// Fields:
//  ID             – primary key identifier.
//  StudentID      – user ID of the reviewing student.
//  TutorProfileID – profile being reviewed.
//  Rating         – integer score from 1 to 5.
//  Comment        – optional free-form text (nullable).
//  CreatedAt      – creation timestamp.
type Review struct {
    ID             uint64    // reviews.id
    StudentID      uint64    // reviews.student_id
    TutorProfileID uint64    // reviews.tutor_profile_id
    Rating         uint8     // reviews.rating
    Comment        *string   // reviews.comment (nullable)
    CreatedAt      time.Time // reviews.created_at
}
