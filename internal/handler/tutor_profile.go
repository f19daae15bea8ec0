package handler

import (
    "context"  // request-scoped timeouts
    "net/http" // status codes
    "strings"  // validation trimming
    "time"     // timeout durations

    "github.com/labstack/echo/v4" // HTTP framework

    "github.com/eliteclassroom/tutor-marketplace/internal/model"      // profile model
    "github.com/eliteclassroom/tutor-marketplace/internal/repository" // tutor queries
)

// TutorProfileHandler serves the profile endpoints tutors use to
// manage their own listing.  Routes are mounted behind SessionAuth
// and RequireRole(TUTOR).
type TutorProfileHandler struct {
    Tutors *repository.TutorRepo
}

func NewTutorProfileHandler(t *repository.TutorRepo) *TutorProfileHandler {
    return &TutorProfileHandler{Tutors: t}
}

type updateProfileReq struct {
    Bio        string   `json:"bio"`
    HourlyRate float64  `json:"hourlyRate"` // decimal, converted to cents
    Verified   bool     `json:"verified"`
    Subjects   []string `json:"subjects"` // replaces the whole set; null leaves it unchanged
}

func (r *updateProfileReq) validate() string {
    r.Bio = strings.TrimSpace(r.Bio)
    if r.HourlyRate < 0 {
        return "hourlyRate must not be negative"
    }
    if r.HourlyRate > 1_000_000 {
        return "hourlyRate is out of range"
    }
    return ""
}

// profilePart shapes a profile row for JSON responses.
func profilePart(p model.TutorProfile) echo.Map {
    return echo.Map{
        "id":              p.ID,
        "bio":             p.Bio,
        "hourlyRateCents": p.HourlyRateCents,
        "hourlyRate":      float64(p.HourlyRateCents) / 100.0,
        "verified":        p.Verified,
        "createdAt":       p.CreatedAt.UTC().Format(time.RFC3339),
        "updatedAt":       p.UpdatedAt.UTC().Format(time.RFC3339),
    }
}

// GetOwn returns the caller's profile with subjects attached.
func (h *TutorProfileHandler) GetOwn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Tutors.GetByUserID(ctx, uid)
    if err != nil {
        if err == repository.ErrTutorNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
    }
    subjects, err := h.Tutors.SubjectsForProfile(ctx, p.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load subjects failed"})
    }
    resp := profilePart(p)
    resp["subjects"] = subjects
    return c.JSON(http.StatusOK, echo.Map{"profile": resp})
}

// UpdateOwn overwrites bio, rate, verified flag and subject set.
func (h *TutorProfileHandler) UpdateOwn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req updateProfileReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rateCents := uint32(req.HourlyRate*100 + 0.5)
    p, err := h.Tutors.UpdateProfile(ctx, uid, req.Bio, rateCents, req.Verified, req.Subjects)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
    }
    subjects, err := h.Tutors.SubjectsForProfile(ctx, p.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load subjects failed"})
    }
    resp := profilePart(p)
    resp["subjects"] = subjects
    return c.JSON(http.StatusOK, echo.Map{"profile": resp})
}
