package middleware_test

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/eliteclassroom/tutor-marketplace/internal/middleware"
    "github.com/eliteclassroom/tutor-marketplace/internal/utils"
)

const testSecret = "unit-test-secret"

// echoWithAuth builds a one-route Echo app whose handler echoes back
// the claims SessionAuth put into the context.
func echoWithAuth(secret string) *echo.Echo {
    e := echo.New()
    e.GET("/whoami", func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{
            "userId": c.Get("user_id"),
            "role":   c.Get("role"),
            "email":  c.Get("email"),
        })
    }, middleware.SessionAuth(secret))
    return e
}

func TestSessionAuthCookie(t *testing.T) {
    st, err := utils.NewSessionToken(testSecret, 7, "STUDENT", "s@example.com", 1)
    if err != nil {
        t.Fatalf("issue token: %v", err)
    }

    e := echoWithAuth(testSecret)
    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: st.Token})
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
    }
}

func TestSessionAuthBearerFallback(t *testing.T) {
    st, err := utils.NewSessionToken(testSecret, 7, "TUTOR", "t@example.com", 1)
    if err != nil {
        t.Fatalf("issue token: %v", err)
    }

    e := echoWithAuth(testSecret)
    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.Header.Set("Authorization", "Bearer "+st.Token)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
    }
}

func TestSessionAuthMissingToken(t *testing.T) {
    e := echoWithAuth(testSecret)
    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("status = %d, want 401", rec.Code)
    }
}

func TestSessionAuthWrongSecret(t *testing.T) {
    st, err := utils.NewSessionToken("other-secret", 7, "STUDENT", "s@example.com", 1)
    if err != nil {
        t.Fatalf("issue token: %v", err)
    }

    e := echoWithAuth(testSecret)
    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: st.Token})
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("status = %d, want 401", rec.Code)
    }
}
