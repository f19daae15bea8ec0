package model

import "time"

// Booking statuses.  A booking is created PENDING, moves to CONFIRMED
// when the tutor accepts, to CANCELLED when either party cancels, and
// to COMPLETED by the background sweeper once a confirmed session's
// end time has elapsed.  CANCELLED and COMPLETED are terminal.
const (
    BookingPending   = "PENDING"
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
    BookingCompleted = "COMPLETED"
)

// Booking records a time-boxed tutoring session between one student
// and one tutor.  The interval [StartTime, EndTime) is half-open: a
// session ending at 11:00 does not collide with one starting at
// 11:00.  For a given tutor, no two bookings whose status is not
// CANCELLED may overlap.
//
// Fields:
//  ID        – primary key identifier.
//  StudentID – user ID of the booking student.
//  TutorID   – user ID of the booked tutor.
//  StartTime – session start (UTC).
//  EndTime   – session end (UTC), strictly after StartTime.
//  Status    – one of the booking status constants above.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
    ID        uint64    // bookings.id
    StudentID uint64    // bookings.student_id
    TutorID   uint64    // bookings.tutor_id
    StartTime time.Time // bookings.start_time
    EndTime   time.Time // bookings.end_time
    Status    string    // bookings.status
    CreatedAt time.Time // bookings.created_at
    UpdatedAt time.Time // bookings.updated_at
}

// ValidTransition reports whether a booking may move from one status
// to another.  It encodes the lifecycle: CONFIRMED only out of
// PENDING, CANCELLED out of PENDING or CONFIRMED, COMPLETED out of
// CONFIRMED.  Everything else, including repeating the current
// status, is rejected.
func ValidTransition(from, to string) bool {
    switch to {
    case BookingConfirmed:
        return from == BookingPending
    case BookingCancelled:
        return from == BookingPending || from == BookingConfirmed
    case BookingCompleted:
        return from == BookingConfirmed
    }
    return false
}
