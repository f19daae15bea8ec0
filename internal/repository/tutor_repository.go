package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/eliteclassroom/tutor-marketplace/internal/model"
)

// TutorRepo provides read and write access to tutor profiles, their
// subject lists and the reviews attached to them.  Profiles are
// created at registration; this repository only updates them.
type TutorRepo struct {
    db *sql.DB
}

// NewTutorRepo returns a new TutorRepo bound to the given database.
func NewTutorRepo(db *sql.DB) *TutorRepo { return &TutorRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *TutorRepo) DB() *sql.DB { return r.db }

// TutorSearchQuery defines directory filters.  Rate bounds are in
// cents; a negative bound means unset.  Verified is a tri-state:
// nil means "any".
type TutorSearchQuery struct {
    Subject      string
    MinRateCents int64
    MaxRateCents int64
    Verified     *bool
}

// userSummary is the subset of user columns exposed publicly.
type userSummary struct {
    ID        uint64 `json:"id"`
    FirstName string `json:"firstName"`
    LastName  string `json:"lastName"`
    Email     string `json:"email"`
}

// TutorRow is one entry in the public tutor directory.  HourlyRate is
// the decimal representation of HourlyRateCents for display.
type TutorRow struct {
    ID              uint64      `json:"id"`
    Bio             string      `json:"bio"`
    HourlyRateCents uint32      `json:"hourlyRateCents"`
    HourlyRate      float64     `json:"hourlyRate"`
    Verified        bool        `json:"verified"`
    Subjects        []string    `json:"subjects"`
    User            userSummary `json:"user"`
}

// ReviewRow is a review with the reviewer's display name attached.
type ReviewRow struct {
    ID        uint64  `json:"id"`
    Rating    uint8   `json:"rating"`
    Comment   *string `json:"comment,omitempty"`
    CreatedAt string  `json:"createdAt"`
    Student   struct {
        FirstName string `json:"firstName"`
        LastName  string `json:"lastName"`
    } `json:"student"`
}

// TutorDetail extends TutorRow with reviews and the average rating for
// the profile page.
type TutorDetail struct {
    TutorRow
    AverageRating float64     `json:"averageRating"`
    Reviews       []ReviewRow `json:"reviews"`
}

// Search returns directory rows matching the query, ordered by profile
// ID for deterministic output.  Subject matching is case-insensitive
// so "math" and "Math" find the same tutors.
func (r *TutorRepo) Search(ctx context.Context, q TutorSearchQuery) ([]TutorRow, error) {
    where := []string{}
    args := []any{}

    if q.Subject != "" {
        where = append(where, `EXISTS (
            SELECT 1 FROM tutor_subjects ts
            JOIN subjects sub ON sub.id = ts.subject_id
            WHERE ts.tutor_profile_id = p.id AND LOWER(sub.name) LIKE ?)`)
        args = append(args, "%"+strings.ToLower(q.Subject)+"%")
    }
    if q.Verified != nil {
        where = append(where, "p.verified = ?")
        args = append(args, *q.Verified)
    }
    if q.MinRateCents >= 0 {
        where = append(where, "p.hourly_rate_cents >= ?")
        args = append(args, q.MinRateCents)
    }
    if q.MaxRateCents >= 0 {
        where = append(where, "p.hourly_rate_cents <= ?")
        args = append(args, q.MaxRateCents)
    }

    cond := "1=1"
    if len(where) > 0 {
        cond = strings.Join(where, " AND ")
    }

    query := `SELECT p.id, p.bio, p.hourly_rate_cents, p.verified,
                     u.id, u.first_name, u.last_name, u.email
              FROM tutor_profiles p
              JOIN users u ON u.id = p.user_id
              WHERE ` + cond + `
              ORDER BY p.id ASC`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make([]TutorRow, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var t TutorRow
        if err := rows.Scan(
            &t.ID, &t.Bio, &t.HourlyRateCents, &t.Verified,
            &t.User.ID, &t.User.FirstName, &t.User.LastName, &t.User.Email,
        ); err != nil {
            return nil, err
        }
        t.HourlyRate = float64(t.HourlyRateCents) / 100.0
        t.Subjects = []string{}
        index[t.ID] = len(out)
        out = append(out, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(out) == 0 {
        return out, nil
    }
    // Populate subjects for all matched profiles in one query.
    ids := make([]any, 0, len(out))
    placeholders := make([]string, 0, len(out))
    for _, t := range out {
        ids = append(ids, t.ID)
        placeholders = append(placeholders, "?")
    }
    subjQ := `SELECT ts.tutor_profile_id, sub.name
              FROM tutor_subjects ts
              JOIN subjects sub ON sub.id = ts.subject_id
              WHERE ts.tutor_profile_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY ts.tutor_profile_id, sub.name`
    srows, err := r.db.QueryContext(ctx, subjQ, ids...)
    if err != nil {
        return nil, err
    }
    defer srows.Close()
    for srows.Next() {
        var pid uint64
        var name string
        if err := srows.Scan(&pid, &name); err != nil {
            return nil, err
        }
        if idx, ok := index[pid]; ok {
            out[idx].Subjects = append(out[idx].Subjects, name)
        }
    }
    if err := srows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetDetail returns a single profile with user summary, subjects,
// reviews and average rating.  It returns ErrTutorNotFound when no
// profile with the given ID exists.
func (r *TutorRepo) GetDetail(ctx context.Context, profileID uint64) (*TutorDetail, error) {
    const q = `SELECT p.id, p.bio, p.hourly_rate_cents, p.verified,
                      u.id, u.first_name, u.last_name, u.email
               FROM tutor_profiles p
               JOIN users u ON u.id = p.user_id
               WHERE p.id = ?`
    var det TutorDetail
    err := r.db.QueryRowContext(ctx, q, profileID).Scan(
        &det.ID, &det.Bio, &det.HourlyRateCents, &det.Verified,
        &det.User.ID, &det.User.FirstName, &det.User.LastName, &det.User.Email,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrTutorNotFound
        }
        return nil, err
    }
    det.HourlyRate = float64(det.HourlyRateCents) / 100.0
    det.Subjects = []string{}
    const subjQ = `SELECT sub.name
                   FROM tutor_subjects ts
                   JOIN subjects sub ON sub.id = ts.subject_id
                   WHERE ts.tutor_profile_id = ?
                   ORDER BY sub.name`
    srows, err := r.db.QueryContext(ctx, subjQ, det.ID)
    if err != nil {
        return nil, err
    }
    defer srows.Close()
    for srows.Next() {
        var name string
        if err := srows.Scan(&name); err != nil {
            return nil, err
        }
        det.Subjects = append(det.Subjects, name)
    }
    if err := srows.Err(); err != nil {
        return nil, err
    }

    det.Reviews = []ReviewRow{}
    const revQ = `SELECT rv.id, rv.rating, rv.comment, rv.created_at,
                         u.first_name, u.last_name
                  FROM reviews rv
                  JOIN users u ON u.id = rv.student_id
                  WHERE rv.tutor_profile_id = ?
                  ORDER BY rv.created_at DESC`
    rrows, err := r.db.QueryContext(ctx, revQ, det.ID)
    if err != nil {
        return nil, err
    }
    defer rrows.Close()
    var sum uint64
    for rrows.Next() {
        var rv ReviewRow
        var comment sql.NullString
        var createdAt time.Time
        if err := rrows.Scan(&rv.ID, &rv.Rating, &comment, &createdAt,
            &rv.Student.FirstName, &rv.Student.LastName); err != nil {
            return nil, err
        }
        if comment.Valid {
            c := comment.String
            rv.Comment = &c
        }
        rv.CreatedAt = createdAt.UTC().Format(time.RFC3339)
        sum += uint64(rv.Rating)
        det.Reviews = append(det.Reviews, rv)
    }
    if err := rrows.Err(); err != nil {
        return nil, err
    }
    if n := len(det.Reviews); n > 0 {
        det.AverageRating = float64(sum) / float64(n)
    }
    return &det, nil
}

// GetByUserID returns the profile owned by the given tutor user, or
// ErrTutorNotFound when the user has no profile.
func (r *TutorRepo) GetByUserID(ctx context.Context, userID uint64) (model.TutorProfile, error) {
    var p model.TutorProfile
    err := r.db.QueryRowContext(ctx,
        `SELECT id, user_id, bio, hourly_rate_cents, verified, created_at, updated_at
         FROM tutor_profiles WHERE user_id = ? LIMIT 1`, userID).
        Scan(&p.ID, &p.UserID, &p.Bio, &p.HourlyRateCents, &p.Verified, &p.CreatedAt, &p.UpdatedAt)
    if err == sql.ErrNoRows {
        return p, ErrTutorNotFound
    }
    return p, err
}

// SubjectsForProfile returns the subject names attached to a profile,
// sorted by name.  The slice is empty, never nil, so it serializes as
// a JSON array.
func (r *TutorRepo) SubjectsForProfile(ctx context.Context, profileID uint64) ([]string, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT sub.name
         FROM tutor_subjects ts
         JOIN subjects sub ON sub.id = ts.subject_id
         WHERE ts.tutor_profile_id = ?
         ORDER BY sub.name`, profileID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []string{}
    for rows.Next() {
        var name string
        if err := rows.Scan(&name); err != nil {
            return nil, err
        }
        out = append(out, name)
    }
    return out, rows.Err()
}

// UpdateProfile overwrites a tutor's bio, rate and verified flag and
// replaces their subject set, all in one transaction.  Subjects are
// found or created by case-insensitive name so a tutor sending
// "math" does not spawn a duplicate of an existing "Math" row.  A
// missing profile row is inserted, which covers accounts promoted to
// TUTOR outside the normal registration path.
func (r *TutorRepo) UpdateProfile(ctx context.Context, userID uint64, bio string, rateCents uint32, verified bool, subjects []string) (model.TutorProfile, error) {
    var p model.TutorProfile
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return p, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        `UPDATE tutor_profiles SET bio=?, hourly_rate_cents=?, verified=? WHERE user_id=?`,
        bio, rateCents, verified, userID)
    if err != nil {
        return p, err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // UPDATE also reports zero rows when nothing changed, so probe
        // for existence before inserting.
        var exists bool
        if err := tx.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM tutor_profiles WHERE user_id=?)`, userID).Scan(&exists); err != nil {
            return p, err
        }
        if !exists {
            if _, err := tx.ExecContext(ctx,
                `INSERT INTO tutor_profiles (user_id, bio, hourly_rate_cents, verified) VALUES (?,?,?,?)`,
                userID, bio, rateCents, verified); err != nil {
                return p, err
            }
        }
    }

    if subjects != nil {
        ids := make([]uint64, 0, len(subjects))
        seen := make(map[string]struct{})
        for _, raw := range subjects {
            name := strings.TrimSpace(raw)
            if name == "" {
                continue
            }
            key := strings.ToLower(name)
            if _, ok := seen[key]; ok {
                continue
            }
            seen[key] = struct{}{}
            id, err := findOrCreateSubjectTx(ctx, tx, name)
            if err != nil {
                return p, err
            }
            ids = append(ids, id)
        }
        var profileID uint64
        if err := tx.QueryRowContext(ctx,
            `SELECT id FROM tutor_profiles WHERE user_id=?`, userID).Scan(&profileID); err != nil {
            return p, err
        }
        if _, err := tx.ExecContext(ctx,
            `DELETE FROM tutor_subjects WHERE tutor_profile_id=?`, profileID); err != nil {
            return p, err
        }
        for _, sid := range ids {
            if _, err := tx.ExecContext(ctx,
                `INSERT INTO tutor_subjects (tutor_profile_id, subject_id) VALUES (?,?)`,
                profileID, sid); err != nil {
                return p, err
            }
        }
    }

    err = tx.QueryRowContext(ctx,
        `SELECT id, user_id, bio, hourly_rate_cents, verified, created_at, updated_at
         FROM tutor_profiles WHERE user_id=?`, userID).
        Scan(&p.ID, &p.UserID, &p.Bio, &p.HourlyRateCents, &p.Verified, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return p, err
    }
    if err := tx.Commit(); err != nil {
        return p, err
    }
    committed = true
    return p, nil
}

// findOrCreateSubjectTx resolves a subject name to its ID, matching
// case-insensitively and inserting the supplied casing when no row
// matches.
func findOrCreateSubjectTx(ctx context.Context, tx *sql.Tx, name string) (uint64, error) {
    var id uint64
    err := tx.QueryRowContext(ctx,
        `SELECT id FROM subjects WHERE LOWER(name) = ? LIMIT 1`,
        strings.ToLower(name)).Scan(&id)
    if err == nil {
        return id, nil
    }
    if err != sql.ErrNoRows {
        return 0, err
    }
    res, err := tx.ExecContext(ctx, `INSERT INTO subjects (name) VALUES (?)`, name)
    if err != nil {
        return 0, err
    }
    n, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(n), nil
}
