package router

import (
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/eliteclassroom/tutor-marketplace/internal/handler"    // tutor handlers
    "github.com/eliteclassroom/tutor-marketplace/internal/middleware" // session + role middleware
    "github.com/eliteclassroom/tutor-marketplace/internal/model"      // role constants
)

// RegisterTutors registers the unauthenticated tutor directory.  The
// optional middlewares (typically the Redis response cache) apply to
// both routes; pass none when Redis is unavailable.
func RegisterTutors(e *echo.Echo, t *handler.TutorHandler, mw ...echo.MiddlewareFunc) {
    // Browse the directory with optional subject/rate/verified filters.
    e.GET("/v1/tutors", t.List, mw...)
    // A single tutor's detail page with subjects, reviews and rating.
    e.GET("/v1/tutors/:id", t.Get, mw...)
}

// RegisterTutorProfile registers the profile management routes tutors
// use to edit their own listing.  Both require a session and the
// TUTOR role.
func RegisterTutorProfile(e *echo.Echo, p *handler.TutorProfileHandler, jwtSecret string) {
    g := e.Group("/v1/tutors/profile")
    g.Use(middleware.SessionAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleTutor))
    g.GET("", p.GetOwn)
    g.PUT("", p.UpdateOwn)
}
