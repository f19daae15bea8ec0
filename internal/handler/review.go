package handler

import (
    "context"  // request-scoped timeouts
    "net/http" // status codes
    "strings"  // comment trimming
    "time"     // timestamp formatting

    "github.com/labstack/echo/v4" // HTTP framework

    "github.com/eliteclassroom/tutor-marketplace/internal/repository" // review and booking queries
)

// ReviewHandler serves review creation.  Routes are mounted behind
// SessionAuth and RequireRole(STUDENT).
type ReviewHandler struct {
    Reviews  *repository.ReviewRepo
    Bookings *repository.BookingRepo
}

func NewReviewHandler(r *repository.ReviewRepo, b *repository.BookingRepo) *ReviewHandler {
    return &ReviewHandler{Reviews: r, Bookings: b}
}

type createReviewReq struct {
    TutorID uint64 `json:"tutorId"` // tutor's user ID
    Rating  uint8  `json:"rating"`  // 1..5
    Comment string `json:"comment"`
}

func (r *createReviewReq) validate() string {
    if r.TutorID == 0 {
        return "tutorId is required"
    }
    if r.Rating < 1 || r.Rating > 5 {
        return "rating must be between 1 and 5"
    }
    r.Comment = strings.TrimSpace(r.Comment)
    return ""
}

// Create records a review.  A student may only review a tutor they
// have a booking with, in any status; having booked at all is the
// gate, not having completed a session.
func (h *ReviewHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req createReviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    booked, err := h.Bookings.HasBookingBetween(ctx, uid, req.TutorID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check bookings failed"})
    }
    if !booked {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "no booking with this tutor"})
    }

    var comment *string
    if req.Comment != "" {
        comment = &req.Comment
    }
    rv, err := h.Reviews.Create(ctx, uid, req.TutorID, req.Rating, comment)
    if err != nil {
        if err == repository.ErrTutorNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tutor not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{"review": echo.Map{
        "id":             rv.ID,
        "studentId":      rv.StudentID,
        "tutorProfileId": rv.TutorProfileID,
        "rating":         rv.Rating,
        "comment":        rv.Comment,
        "createdAt":      rv.CreatedAt.UTC().Format(time.RFC3339),
    }})
}
