package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// SessionCookie is the name of the HTTP-only cookie carrying the
// session token for browser clients.
const SessionCookie = "token"

// SessionAuth returns an Echo middleware that validates the session
// token and injects its subject, role and email claims into the
// request context.  Browser clients carry the token in the "token"
// cookie set at login; non-browser clients may instead send it as an
// Authorization Bearer header.  The provided secret must match the
// one used when issuing tokens.  Handlers access the authenticated
// principal via c.Get("user_id"), c.Get("role") and c.Get("email").
func SessionAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := ""
            if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
                raw = ck.Value
            } else if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
                raw = strings.TrimPrefix(auth, "Bearer ")
            }
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session token"})
            }

            // Parse the token using the HS256 signing method and our
            // secret.  The callback supplies the signing key and
            // rejects tokens signed with a different algorithm.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // Store the principal's claims in the context.  Type
            // assertions are left to downstream consumers.
            c.Set("user_id", claims["sub"])
            c.Set("role", claims["role"])
            c.Set("email", claims["email"])
            return next(c)
        }
    }
}
