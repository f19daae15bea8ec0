// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP status codes: ErrForbidden becomes 403, the not-found
// sentinels become 404, ErrSlotTaken and ErrInvalidTransition become
// 409. Anything else surfaces as a generic 500 without detail.
package repository

import "errors"

// ErrEmailExists is returned when registration is attempted with an
// email address that already has an account.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not a party to, or one their role does not permit
// (a student confirming a booking, for instance).
var ErrForbidden = errors.New("forbidden")

// ErrSlotTaken is returned when a booking request overlaps an existing
// non-cancelled booking for the same tutor.
var ErrSlotTaken = errors.New("time slot not available")

// ErrInvalidTransition is returned when a status update does not follow
// the booking lifecycle, such as confirming a cancelled booking.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrBookingNotFound is returned when a booking ID does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTutorNotFound is returned when no tutor profile exists for the
// requested tutor identity or profile ID.
var ErrTutorNotFound = errors.New("tutor not found")
