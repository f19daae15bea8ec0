package model

import "testing"

func TestValidTransition(t *testing.T) {
    tests := []struct {
        name string
        from string
        to   string
        want bool
    }{
        {"tutor confirms pending", BookingPending, BookingConfirmed, true},
        {"cancel pending", BookingPending, BookingCancelled, true},
        {"cancel confirmed", BookingConfirmed, BookingCancelled, true},
        {"complete confirmed", BookingConfirmed, BookingCompleted, true},

        {"complete pending", BookingPending, BookingCompleted, false},
        {"confirm confirmed", BookingConfirmed, BookingConfirmed, false},
        {"confirm cancelled", BookingCancelled, BookingConfirmed, false},
        {"cancel cancelled", BookingCancelled, BookingCancelled, false},
        {"cancel completed", BookingCompleted, BookingCancelled, false},
        {"confirm completed", BookingCompleted, BookingConfirmed, false},
        {"complete completed", BookingCompleted, BookingCompleted, false},
        {"pending again", BookingConfirmed, BookingPending, false},
        {"unknown target", BookingPending, "ARCHIVED", false},
        {"unknown source", "ARCHIVED", BookingCancelled, false},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := ValidTransition(tt.from, tt.to); got != tt.want {
                t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
            }
        })
    }
}
