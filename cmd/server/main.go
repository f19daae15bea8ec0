package main // Entry point package

import (
    "context" // Context for background loops
    "log"     // Logging library
    "time"    // Sweep interval

    "github.com/joho/godotenv"    // Loads .env files into the environment
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/eliteclassroom/tutor-marketplace/internal/config"     // Internal config loader
    "github.com/eliteclassroom/tutor-marketplace/internal/database"   // MySQL connection pool
    "github.com/eliteclassroom/tutor-marketplace/internal/handler"    // HTTP handlers
    "github.com/eliteclassroom/tutor-marketplace/internal/middleware" // Cache and rate limit middleware
    "github.com/eliteclassroom/tutor-marketplace/internal/queue"      // Booking event consumer
    "github.com/eliteclassroom/tutor-marketplace/internal/repository" // Data access layer
    "github.com/eliteclassroom/tutor-marketplace/internal/router"     // Route registration
    "github.com/eliteclassroom/tutor-marketplace/internal/worker"     // Completion sweeper
)

func main() {
    _ = godotenv.Load() // Load .env if present; real env wins

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err) // Cannot serve without storage
    }
    defer db.Close()

    users := repository.NewUserRepo(db)       // Accounts and credentials
    tutors := repository.NewTutorRepo(db)     // Profiles, subjects, directory
    bookings := repository.NewBookingRepo(db) // Session ledger
    reviews := repository.NewReviewRepo(db)   // Student reviews

    e := echo.New() // Create Echo instance

    // Redis backs the token-bucket rate limiter and the directory
    // response cache.  Both degrade to pass-through when Redis is
    // unreachable, so a nil client only disables them.
    rdb := config.NewRedisClient()
    var tutorMW []echo.MiddlewareFunc
    if rdb != nil {
        e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
        tutorMW = append(tutorMW, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    } else {
        log.Println("redis unavailable; rate limiting and response cache disabled")
    }

    router.RegisterRoutes(e)                                                              // Health check
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tutors), cfg.JWTSecret)     // Register/login/logout/me
    router.RegisterTutors(e, handler.NewTutorHandler(tutors), tutorMW...)                 // Public directory
    router.RegisterTutorProfile(e, handler.NewTutorProfileHandler(tutors), cfg.JWTSecret) // Tutor's own listing
    router.RegisterBookings(e, handler.NewBookingHandler(bookings, users), cfg.JWTSecret) // Booking ledger
    router.RegisterReviews(e, handler.NewReviewHandler(reviews, bookings), cfg.JWTSecret) // Reviews

    // Background loops: the consumer mirrors booking events to
    // logs/booking.log, the sweeper finalizes elapsed sessions.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()
    go worker.StartCompletionSweeper(context.Background(), bookings, time.Minute)

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err) // Log and exit if server fails
    }
}
