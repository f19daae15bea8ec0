package router

import (
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/eliteclassroom/tutor-marketplace/internal/handler"    // booking and review handlers
    "github.com/eliteclassroom/tutor-marketplace/internal/middleware" // session + role middleware
    "github.com/eliteclassroom/tutor-marketplace/internal/model"      // role constants
)

// RegisterBookings registers the booking routes.  Creation is
// restricted to students; listing and status changes are open to both
// roles because tutors confirm and either side may cancel.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
    g := e.Group("/v1/bookings")
    g.Use(middleware.SessionAuth(jwtSecret))
    // Book a pending session with a tutor.
    g.POST("", b.Create, middleware.RequireRole(model.RoleStudent))
    // Everything the caller participates in, as student or tutor.
    g.GET("/me", b.ListMine)
    // Confirm (tutor) or cancel (either party).
    g.PATCH("/:id", b.UpdateStatus)
}

// RegisterReviews registers review creation, restricted to students
// who have at least one booking with the tutor.
func RegisterReviews(e *echo.Echo, r *handler.ReviewHandler, jwtSecret string) {
    g := e.Group("/v1/reviews")
    g.Use(middleware.SessionAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleStudent))
    g.POST("", r.Create)
}
