package middleware_test

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/eliteclassroom/tutor-marketplace/internal/middleware"
    "github.com/eliteclassroom/tutor-marketplace/internal/utils"
)

// requestWithRole runs a request carrying a session for the given role
// through SessionAuth + RequireRole(allowed...) and returns the status.
func requestWithRole(t *testing.T, role string, allowed ...string) int {
    t.Helper()
    st, err := utils.NewSessionToken(testSecret, 1, role, "x@example.com", 1)
    if err != nil {
        t.Fatalf("issue token: %v", err)
    }

    e := echo.New()
    e.GET("/guarded", func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    }, middleware.SessionAuth(testSecret), middleware.RequireRole(allowed...))

    req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
    req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: st.Token})
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec.Code
}

func TestRequireRole(t *testing.T) {
    if got := requestWithRole(t, "TUTOR", "TUTOR"); got != http.StatusOK {
        t.Errorf("tutor on tutor route: %d, want 200", got)
    }
    if got := requestWithRole(t, "STUDENT", "TUTOR"); got != http.StatusForbidden {
        t.Errorf("student on tutor route: %d, want 403", got)
    }
    if got := requestWithRole(t, "STUDENT", "STUDENT", "TUTOR"); got != http.StatusOK {
        t.Errorf("student on shared route: %d, want 200", got)
    }
}
