// Package worker holds background loops that run alongside the HTTP
// server.
package worker

import (
    "context"
    "log"
    "time"

    "github.com/eliteclassroom/tutor-marketplace/internal/repository"
)

// StartCompletionSweeper periodically marks confirmed bookings whose
// end time has passed as COMPLETED.  This is the only writer of the
// COMPLETED status; no API route sets it.  The loop stops when ctx is
// cancelled.
func StartCompletionSweeper(ctx context.Context, repo *repository.BookingRepo, every time.Duration) {
    if every <= 0 {
        every = time.Minute
    }
    ticker := time.NewTicker(every)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case now := <-ticker.C:
            sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
            n, err := repo.CompleteElapsed(sweepCtx, now.UTC())
            cancel()
            if err != nil {
                log.Printf("completion-sweeper: sweep failed: %v", err)
                continue
            }
            if n > 0 {
                log.Printf("completion-sweeper: marked %d booking(s) completed", n)
            }
        }
    }
}
