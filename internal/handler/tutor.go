package handler

import (
    "context"  // request-scoped timeouts
    "net/http" // status codes
    "strconv"  // query parameter parsing
    "strings"  // trimming query values
    "time"     // timeout durations

    "github.com/labstack/echo/v4" // HTTP framework

    "github.com/eliteclassroom/tutor-marketplace/internal/repository" // tutor queries
)

// TutorHandler serves the public tutor directory.
type TutorHandler struct {
    Tutors *repository.TutorRepo
}

func NewTutorHandler(t *repository.TutorRepo) *TutorHandler {
    return &TutorHandler{Tutors: t}
}

// parseRateCents converts a decimal rate query value ("25.50") to
// cents.  Returns -1 for an absent value, an error message for a
// malformed or negative one.
func parseRateCents(raw string) (int64, string) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return -1, ""
    }
    f, err := strconv.ParseFloat(raw, 64)
    if err != nil || f < 0 {
        return 0, "rate filters must be non-negative numbers"
    }
    return int64(f*100 + 0.5), ""
}

// List returns directory entries, optionally filtered by subject,
// rate range and verified flag.
func (h *TutorHandler) List(c echo.Context) error {
    q := repository.TutorSearchQuery{Subject: strings.TrimSpace(c.QueryParam("subject"))}

    var msg string
    if q.MinRateCents, msg = parseRateCents(c.QueryParam("minRate")); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    if q.MaxRateCents, msg = parseRateCents(c.QueryParam("maxRate")); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    if raw := strings.TrimSpace(c.QueryParam("verified")); raw != "" {
        v, err := strconv.ParseBool(raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "verified must be true or false"})
        }
        q.Verified = &v
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Tutors.Search(ctx, q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"tutors": rows})
}

// Get returns one tutor's public detail page: profile, subjects,
// reviews and average rating.
func (h *TutorHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tutor id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    det, err := h.Tutors.GetDetail(ctx, id)
    if err != nil {
        if err == repository.ErrTutorNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tutor not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tutor failed"})
    }
    return c.JSON(http.StatusOK, det)
}
