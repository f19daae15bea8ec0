package repository

import (
    "context"
    "database/sql"

    "github.com/eliteclassroom/tutor-marketplace/internal/model"
)

// ReviewRepo persists student reviews of tutor profiles.
type ReviewRepo struct {
    db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review for the tutor identified by their user ID.
// The tutor's profile is resolved first; ErrTutorNotFound is returned
// when the tutor has no profile.  The caller is responsible for the
// booking gate; this method only writes.
func (r *ReviewRepo) Create(ctx context.Context, studentID, tutorUserID uint64, rating uint8, comment *string) (*model.Review, error) {
    var profileID uint64
    err := r.db.QueryRowContext(ctx,
        `SELECT id FROM tutor_profiles WHERE user_id = ? LIMIT 1`, tutorUserID).Scan(&profileID)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrTutorNotFound
        }
        return nil, err
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO reviews (student_id, tutor_profile_id, rating, comment) VALUES (?,?,?,?)`,
        studentID, profileID, rating, comment)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    rv := &model.Review{ID: uint64(id)}
    var c sql.NullString
    err = r.db.QueryRowContext(ctx,
        `SELECT id, student_id, tutor_profile_id, rating, comment, created_at FROM reviews WHERE id = ?`, rv.ID).
        Scan(&rv.ID, &rv.StudentID, &rv.TutorProfileID, &rv.Rating, &c, &rv.CreatedAt)
    if err != nil {
        return nil, err
    }
    if c.Valid {
        s := c.String
        rv.Comment = &s
    }
    return rv, nil
}
