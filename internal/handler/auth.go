package handler

import (
    "context"      // context with cancellation for DB calls
    "database/sql" // sentinel errors from the repository layer
    "net/http"     // HTTP status codes and cookie type
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/eliteclassroom/tutor-marketplace/internal/config"     // app configuration
    "github.com/eliteclassroom/tutor-marketplace/internal/middleware" // session cookie name
    "github.com/eliteclassroom/tutor-marketplace/internal/model"      // role constants
    "github.com/eliteclassroom/tutor-marketplace/internal/repository" // DB repositories
    "github.com/eliteclassroom/tutor-marketplace/internal/utils"      // hashing and token issuing
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tutors *repository.TutorRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TutorRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tutors: t}
}

// ----- DTOs -----

type registerReq struct {
    Email     string `json:"email"`
    Password  string `json:"password"`
    Role      string `json:"role"` // STUDENT | TUTOR
    FirstName string `json:"firstName"`
    LastName  string `json:"lastName"`
}

// validate normalizes the request in place and returns field problems.
func (r *registerReq) validate() []string {
    var probs []string
    r.Email = strings.ToLower(strings.TrimSpace(r.Email))
    r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
    r.FirstName = strings.TrimSpace(r.FirstName)
    r.LastName = strings.TrimSpace(r.LastName)
    if r.Email == "" || !strings.Contains(r.Email, "@") {
        probs = append(probs, "email must be a valid address")
    }
    if len(r.Password) < 6 {
        probs = append(probs, "password must be at least 6 characters")
    }
    if r.Role != model.RoleStudent && r.Role != model.RoleTutor {
        probs = append(probs, "role must be STUDENT or TUTOR")
    }
    if r.FirstName == "" {
        probs = append(probs, "firstName is required")
    }
    if r.LastName == "" {
        probs = append(probs, "lastName is required")
    }
    return probs
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID        uint64 `json:"id"`
    Email     string `json:"email"`
    Role      string `json:"role"`
    FirstName string `json:"firstName"`
    LastName  string `json:"lastName"`
}

// setSessionCookie issues the HTTP-only session cookie carrying the
// signed token.  Browser clients send it back automatically; other
// clients may copy the value into an Authorization header.
func setSessionCookie(c echo.Context, tok utils.SessionToken) {
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}

// Register creates a user (and, for tutors, an empty profile) and logs
// them in immediately by setting the session cookie.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if probs := req.validate(); len(probs) > 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": strings.Join(probs, "; ")})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, req.FirstName, req.LastName, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, req.Role, req.Email, h.Cfg.SessionTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
    }
    setSessionCookie(c, tok)

    return c.JSON(http.StatusOK, echo.Map{
        "user": userPart{ID: uid, Email: req.Email, Role: req.Role, FirstName: req.FirstName, LastName: req.LastName},
    })
}

// Login verifies credentials and sets a fresh session cookie.  Bad
// email and bad password are indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid credentials"})
    }

    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.SessionTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
    }
    setSessionCookie(c, tok)

    return c.JSON(http.StatusOK, echo.Map{
        "user": userPart{ID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName},
    })
}

// Logout clears the session cookie.  Tokens are stateless so nothing
// is revoked server-side; the cookie simply stops being sent.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's summary, with the tutor profile
// attached when one exists.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }

    resp := echo.Map{
        "user": userPart{ID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName},
    }
    if u.Role == model.RoleTutor {
        if p, err := h.Tutors.GetByUserID(ctx, uid); err == nil {
            resp["profile"] = profilePart(p)
        }
    }
    return c.JSON(http.StatusOK, resp)
}
