// Package queue defines the booking status event and the background
// consumer that records status changes to logs/booking.log.
package queue

// BookingStatusEvent is published whenever a booking is created or
// its status changes.  Timestamps are RFC3339 UTC strings so the
// payload is readable without decoding.
type BookingStatusEvent struct {
    BookingID  uint64 `json:"bookingId"`
    StudentID  uint64 `json:"studentId"`
    TutorID    uint64 `json:"tutorId"`
    Status     string `json:"status"`
    StartTime  string `json:"startTime"`
    EndTime    string `json:"endTime"`
    OccurredAt string `json:"occurredAt"`
}
