package handler

import (
    "context"  // request-scoped timeouts and detached publish contexts
    "net/http" // status codes
    "strconv"  // path parameter parsing
    "strings"  // status normalization
    "time"     // RFC3339 parsing and timeouts

    "github.com/labstack/echo/v4" // HTTP framework

    "github.com/eliteclassroom/tutor-marketplace/internal/model"      // booking model and statuses
    "github.com/eliteclassroom/tutor-marketplace/internal/queue"      // event payloads
    "github.com/eliteclassroom/tutor-marketplace/internal/repository" // booking queries
    queue_publisher "github.com/eliteclassroom/tutor-marketplace/internal/service"
)

// BookingHandler serves booking creation, listing and status changes.
// All routes require a session; role checks happen in middleware and
// in the repository's party checks.
type BookingHandler struct {
    Bookings *repository.BookingRepo
    Users    *repository.UserRepo
}

func NewBookingHandler(b *repository.BookingRepo, u *repository.UserRepo) *BookingHandler {
    return &BookingHandler{Bookings: b, Users: u}
}

type createBookingReq struct {
    TutorID   uint64 `json:"tutorId"`
    StartTime string `json:"startTime"` // RFC3339
    EndTime   string `json:"endTime"`   // RFC3339
}

// validate parses the interval and enforces start < end.  Returned
// times are normalized to UTC.
func (r *createBookingReq) validate() (start, end time.Time, msg string) {
    if r.TutorID == 0 {
        return start, end, "tutorId is required"
    }
    start, err := time.Parse(time.RFC3339, r.StartTime)
    if err != nil {
        return start, end, "startTime must be RFC3339"
    }
    end, err = time.Parse(time.RFC3339, r.EndTime)
    if err != nil {
        return start, end, "endTime must be RFC3339"
    }
    if !start.Before(end) {
        return start, end, "startTime must be before endTime"
    }
    return start.UTC(), end.UTC(), ""
}

// publishStatus hands a booking status event to RabbitMQ without
// blocking the response.  Delivery is best-effort; the publisher logs
// its own failures.
func publishStatus(ev queue.BookingStatusEvent) {
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingStatus(ctx, ev)
    }()
}

// Create books a pending session with a tutor.  Overlapping requests
// against the same tutor resolve to exactly one booking; the loser
// receives 409.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    start, end, msg := req.validate()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    // The tutor must exist as a TUTOR user before any slot is held.
    tu, err := h.Users.GetByID(ctx, req.TutorID)
    if err != nil || tu.Role != model.RoleTutor {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "tutor not found"})
    }
    if req.TutorID == uid {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot book yourself"})
    }

    b, err := h.Bookings.Create(ctx, uid, req.TutorID, start, end)
    if err != nil {
        if err == repository.ErrSlotTaken {
            return c.JSON(http.StatusConflict, echo.Map{"error": "time slot not available"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
    }

    publishStatus(queue.BookingStatusEvent{
        BookingID:  b.ID,
        StudentID:  b.StudentID,
        TutorID:    b.TutorID,
        Status:     b.Status,
        StartTime:  b.StartTime.UTC().Format(time.RFC3339),
        EndTime:    b.EndTime.UTC().Format(time.RFC3339),
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"booking": bookingPart(b)})
}

// bookingPart shapes a booking row for JSON responses.
func bookingPart(b *model.Booking) echo.Map {
    return echo.Map{
        "id":        b.ID,
        "studentId": b.StudentID,
        "tutorId":   b.TutorID,
        "startTime": b.StartTime.UTC().Format(time.RFC3339),
        "endTime":   b.EndTime.UTC().Format(time.RFC3339),
        "status":    b.Status,
        "createdAt": b.CreatedAt.UTC().Format(time.RFC3339),
        "updatedAt": b.UpdatedAt.UTC().Format(time.RFC3339),
    }
}

// ListMine returns every booking the caller participates in, as
// student or tutor, ordered by start time.
func (h *BookingHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    list, err := h.Bookings.ListForUser(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

type updateBookingReq struct {
    Status string `json:"status"` // CONFIRMED | CANCELLED
}

// UpdateStatus confirms or cancels a booking.  COMPLETED is not
// accepted here; the sweeper owns that transition.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    var req updateBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
    if req.Status != model.BookingConfirmed && req.Status != model.BookingCancelled {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be CONFIRMED or CANCELLED"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    det, err := h.Bookings.UpdateStatus(ctx, id, req.Status, uid)
    if err != nil {
        switch err {
        case repository.ErrBookingNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed"})
        case repository.ErrInvalidTransition:
            return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
    }

    publishStatus(queue.BookingStatusEvent{
        BookingID:  det.ID,
        StudentID:  det.Student.ID,
        TutorID:    det.Tutor.ID,
        Status:     det.Status,
        StartTime:  det.StartTime,
        EndTime:    det.EndTime,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"booking": det})
}
