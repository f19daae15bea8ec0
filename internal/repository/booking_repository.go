package repository

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/eliteclassroom/tutor-marketplace/internal/model"
)

// BookingRepo owns the booking ledger: creation with overlap
// prevention, per-user listing and status transitions.  All timestamp
// fields are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for tests and cross-repo transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// lockTimeoutSecs bounds how long a booking attempt waits for the
// per-tutor advisory lock before giving up.
const lockTimeoutSecs = 5

// tutorLockName builds the advisory lock key for a tutor.  MySQL named
// locks are server-global, so the prefix keeps them out of the way of
// any other GET_LOCK user on the same instance.
func tutorLockName(tutorID uint64) string {
    return fmt.Sprintf("booking.tutor.%d", tutorID)
}

// Create inserts a PENDING booking for the given student/tutor pair
// after verifying that no non-cancelled booking for the tutor overlaps
// the half-open interval [start, end).  The check and the insert run
// inside one transaction on a dedicated connection that also holds a
// per-tutor advisory lock (GET_LOCK) until after commit.  Without the
// lock, two concurrent requests under read-committed isolation could
// both pass the overlap check before either insert becomes visible.
// It returns ErrSlotTaken when the interval collides with an existing
// booking.
func (r *BookingRepo) Create(ctx context.Context, studentID, tutorID uint64, start, end time.Time) (*model.Booking, error) {
    conn, err := r.db.Conn(ctx)
    if err != nil {
        return nil, err
    }
    defer conn.Close()

    lockName := tutorLockName(tutorID)
    var got sql.NullInt64
    if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, lockName, lockTimeoutSecs).Scan(&got); err != nil {
        return nil, err
    }
    if !got.Valid || got.Int64 != 1 {
        return nil, ErrSlotTaken
    }
    // The lock is connection-scoped; release it on the same connection
    // only after the transaction has been resolved.
    defer func() {
        _, _ = conn.ExecContext(context.Background(), `SELECT RELEASE_LOCK(?)`, lockName)
    }()

    tx, err := conn.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var exists bool
    err = tx.QueryRowContext(ctx, `SELECT EXISTS(
        SELECT 1 FROM bookings
        WHERE tutor_id = ?
          AND status <> 'CANCELLED'
          AND start_time < ?
          AND end_time > ?)`,
        tutorID, end.UTC(), start.UTC()).Scan(&exists)
    if err != nil {
        return nil, err
    }
    if exists {
        return nil, ErrSlotTaken
    }

    res, err := tx.ExecContext(ctx,
        `INSERT INTO bookings (student_id, tutor_id, start_time, end_time, status) VALUES (?,?,?,?,?)`,
        studentID, tutorID, start.UTC(), end.UTC(), model.BookingPending)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    b := &model.Booking{ID: uint64(id)}
    err = tx.QueryRowContext(ctx,
        `SELECT id, student_id, tutor_id, start_time, end_time, status, created_at, updated_at
         FROM bookings WHERE id = ?`, b.ID).
        Scan(&b.ID, &b.StudentID, &b.TutorID, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return b, nil
}

// partySummary identifies one side of a booking in API responses.
type partySummary struct {
    ID        uint64 `json:"id"`
    FirstName string `json:"firstName"`
    LastName  string `json:"lastName"`
    Email     string `json:"email"`
}

// BookingDetail is a booking with both participants' summaries
// attached, as returned by the listing and status endpoints.
type BookingDetail struct {
    ID        uint64       `json:"id"`
    StartTime string       `json:"startTime"`
    EndTime   string       `json:"endTime"`
    Status    string       `json:"status"`
    Student   partySummary `json:"student"`
    Tutor     partySummary `json:"tutor"`
}

const bookingDetailCols = `b.id, b.start_time, b.end_time, b.status,
       s.id, s.first_name, s.last_name, s.email,
       t.id, t.first_name, t.last_name, t.email`

func scanBookingDetail(row interface{ Scan(...any) error }) (BookingDetail, error) {
    var d BookingDetail
    var start, end time.Time
    err := row.Scan(
        &d.ID, &start, &end, &d.Status,
        &d.Student.ID, &d.Student.FirstName, &d.Student.LastName, &d.Student.Email,
        &d.Tutor.ID, &d.Tutor.FirstName, &d.Tutor.LastName, &d.Tutor.Email,
    )
    if err != nil {
        return d, err
    }
    d.StartTime = start.UTC().Format(time.RFC3339)
    d.EndTime = end.UTC().Format(time.RFC3339)
    return d, nil
}

// ListForUser returns all bookings in which the user participates as
// student or tutor, ordered by start time ascending.  When none exist
// an empty slice is returned.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
    q := `SELECT ` + bookingDetailCols + `
          FROM bookings b
          JOIN users s ON s.id = b.student_id
          JOIN users t ON t.id = b.tutor_id
          WHERE b.student_id = ? OR b.tutor_id = ?
          ORDER BY b.start_time ASC`
    rows, err := r.db.QueryContext(ctx, q, userID, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]BookingDetail, 0)
    for rows.Next() {
        d, err := scanBookingDetail(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// UpdateStatus moves a booking to the requested status on behalf of a
// principal.  It returns ErrBookingNotFound for unknown IDs,
// ErrForbidden when the principal is neither party to the booking or
// is the student requesting CONFIRMED, and ErrInvalidTransition when
// the lifecycle does not allow the move (confirming a cancelled
// booking, cancelling twice, and so on).  The row is locked for the
// duration of the check-and-update so concurrent transitions cannot
// interleave.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID uint64, requested string, principalID uint64) (*BookingDetail, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var studentID, tutorID uint64
    var current string
    err = tx.QueryRowContext(ctx,
        `SELECT student_id, tutor_id, status FROM bookings WHERE id = ? FOR UPDATE`, bookingID).
        Scan(&studentID, &tutorID, &current)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if principalID != studentID && principalID != tutorID {
        return nil, ErrForbidden
    }
    if requested == model.BookingConfirmed && principalID == studentID {
        // Only the tutor may confirm.
        return nil, ErrForbidden
    }
    if !model.ValidTransition(current, requested) {
        return nil, ErrInvalidTransition
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status = ? WHERE id = ?`, requested, bookingID); err != nil {
        return nil, err
    }
    row := tx.QueryRowContext(ctx, `SELECT `+bookingDetailCols+`
        FROM bookings b
        JOIN users s ON s.id = b.student_id
        JOIN users t ON t.id = b.tutor_id
        WHERE b.id = ?`, bookingID)
    d, err := scanBookingDetail(row)
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &d, nil
}

// CompleteElapsed marks CONFIRMED bookings whose end time has passed
// as COMPLETED and returns how many rows changed.  The sweeper in
// internal/worker calls this periodically; there is deliberately no
// API route that sets COMPLETED.
func (r *BookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE bookings SET status = ? WHERE status = ? AND end_time <= ?`,
        model.BookingCompleted, model.BookingConfirmed, now.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// HasBookingBetween reports whether any booking, in any status, exists
// for the student/tutor pair.  The review gate uses this; presence of
// a booking in any status is sufficient.
func (r *BookingRepo) HasBookingBetween(ctx context.Context, studentID, tutorID uint64) (bool, error) {
    var exists bool
    err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM bookings WHERE student_id = ? AND tutor_id = ?)`,
        studentID, tutorID).Scan(&exists)
    return exists, err
}
