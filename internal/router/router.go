package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/eliteclassroom/tutor-marketplace/internal/handler"    // import the handlers that implement business logic
    "github.com/eliteclassroom/tutor-marketplace/internal/middleware" // import middleware for session authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Registration and login live under /v1/auth and
// set the session cookie themselves; /v1/auth/me requires a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    // Route group under /v1/auth for operations that do not require an
    // existing session.  Register and Login both issue the cookie; Logout
    // only clears it, so none of the three need SessionAuth.
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/logout", a.Logout)
    // Returns the authenticated user's summary, with the tutor profile
    // attached for tutors.  SessionAuth applies to this route alone so
    // register/login/logout stay reachable without a session.
    g.GET("/me", a.Me, middleware.SessionAuth(jwtSecret))
}
