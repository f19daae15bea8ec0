package handler_test

import (
    "bytes"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "os"
    "sync"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/eliteclassroom/tutor-marketplace/internal/config"
    "github.com/eliteclassroom/tutor-marketplace/internal/database"
    "github.com/eliteclassroom/tutor-marketplace/internal/handler"
    "github.com/eliteclassroom/tutor-marketplace/internal/repository"
    "github.com/eliteclassroom/tutor-marketplace/internal/router"
)

// setup builds a fully routed Echo app against the database named in
// the environment.  Tests are skipped when no database is configured
// so the suite stays runnable without infrastructure.
func setup(t *testing.T) *echo.Echo {
    t.Helper()
    _ = godotenv.Load("../../.env")
    secret := os.Getenv("JWT_SECRET")
    if os.Getenv("DB_HOST") == "" || secret == "" {
        t.Skip("DB_HOST or JWT_SECRET not set")
    }
    db, err := database.Open(
        os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
        os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
    if err != nil {
        t.Fatalf("db: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })

    cfg := config.Config{JWTSecret: secret, SessionTTLDays: 1, BcryptCost: 4}
    users := repository.NewUserRepo(db)
    tutors := repository.NewTutorRepo(db)
    bookings := repository.NewBookingRepo(db)
    reviews := repository.NewReviewRepo(db)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tutors), secret)
    router.RegisterTutors(e, handler.NewTutorHandler(tutors))
    router.RegisterTutorProfile(e, handler.NewTutorProfileHandler(tutors), secret)
    router.RegisterBookings(e, handler.NewBookingHandler(bookings, users), secret)
    router.RegisterReviews(e, handler.NewReviewHandler(reviews, bookings), secret)
    return e
}

// doJSON runs one request through the app.  A nil cookie sends the
// request unauthenticated.
func doJSON(t *testing.T, e *echo.Echo, method, path string, body any, session *http.Cookie) *httptest.ResponseRecorder {
    t.Helper()
    var buf bytes.Buffer
    if body != nil {
        if err := json.NewEncoder(&buf).Encode(body); err != nil {
            t.Fatalf("encode body: %v", err)
        }
    }
    req := httptest.NewRequest(method, path, &buf)
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    if session != nil {
        req.AddCookie(session)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    out := map[string]any{}
    if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
        t.Fatalf("decode body %q: %v", rec.Body.String(), err)
    }
    return out
}

// registerUser creates a fresh account and returns its session cookie
// and user ID.
func registerUser(t *testing.T, e *echo.Echo, role string) (*http.Cookie, uint64) {
    t.Helper()
    email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
    rec := doJSON(t, e, http.MethodPost, "/v1/auth/register", map[string]any{
        "email": email, "password": "testpass123", "role": role,
        "firstName": "Test", "lastName": "User",
    }, nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
    }
    var session *http.Cookie
    for _, ck := range rec.Result().Cookies() {
        if ck.Name == "token" {
            session = ck
        }
    }
    if session == nil {
        t.Fatal("register: no session cookie set")
    }
    body := decodeBody(t, rec)
    user := body["user"].(map[string]any)
    return session, uint64(user["id"].(float64))
}

// slot returns a unique far-future interval so runs never collide in
// a persistent database.
var slotSeq = time.Now().UnixNano() % 1_000_000

func slot(t *testing.T, hours int) (string, string) {
    t.Helper()
    slotSeq++
    start := time.Now().UTC().Truncate(time.Second).
        Add(time.Duration(slotSeq) * 24 * time.Hour)
    end := start.Add(time.Duration(hours) * time.Hour)
    return start.Format(time.RFC3339), end.Format(time.RFC3339)
}

// ----- auth tests -----

func TestRegisterLoginMe(t *testing.T) {
    e := setup(t)

    email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
    rec := doJSON(t, e, http.MethodPost, "/v1/auth/register", map[string]any{
        "email": email, "password": "testpass123", "role": "TUTOR",
        "firstName": "Ada", "lastName": "Lovelace",
    }, nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
    }

    // Same email again is rejected.
    rec = doJSON(t, e, http.MethodPost, "/v1/auth/register", map[string]any{
        "email": email, "password": "testpass123", "role": "TUTOR",
        "firstName": "Ada", "lastName": "Lovelace",
    }, nil)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("duplicate register: status %d, want 400", rec.Code)
    }

    rec = doJSON(t, e, http.MethodPost, "/v1/auth/login", map[string]any{
        "email": email, "password": "wrongpass",
    }, nil)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("bad login: status %d, want 400", rec.Code)
    }

    rec = doJSON(t, e, http.MethodPost, "/v1/auth/login", map[string]any{
        "email": email, "password": "testpass123",
    }, nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
    }
    var session *http.Cookie
    for _, ck := range rec.Result().Cookies() {
        if ck.Name == "token" {
            session = ck
        }
    }
    if session == nil {
        t.Fatal("login: no session cookie")
    }

    // Tutors get their auto-created profile attached to /v1/auth/me.
    rec = doJSON(t, e, http.MethodGet, "/v1/auth/me", nil, session)
    if rec.Code != http.StatusOK {
        t.Fatalf("me: status %d body %s", rec.Code, rec.Body.String())
    }
    body := decodeBody(t, rec)
    if body["profile"] == nil {
        t.Fatal("me: tutor response missing profile")
    }
    if role := body["user"].(map[string]any)["role"]; role != "TUTOR" {
        t.Fatalf("me: role = %v, want TUTOR", role)
    }
}

func TestRegisterValidation(t *testing.T) {
    e := setup(t)

    tests := []struct {
        name string
        body map[string]any
    }{
        {"empty email", map[string]any{"email": "", "password": "testpass123", "role": "STUDENT", "firstName": "A", "lastName": "B"}},
        {"short password", map[string]any{"email": "a@b.com", "password": "short", "role": "STUDENT", "firstName": "A", "lastName": "B"}},
        {"bad role", map[string]any{"email": "a@b.com", "password": "testpass123", "role": "ADMIN", "firstName": "A", "lastName": "B"}},
        {"missing name", map[string]any{"email": "a@b.com", "password": "testpass123", "role": "STUDENT", "firstName": "", "lastName": "B"}},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            rec := doJSON(t, e, http.MethodPost, "/v1/auth/register", tt.body, nil)
            if rec.Code != http.StatusBadRequest {
                t.Errorf("status %d, want 400", rec.Code)
            }
        })
    }
}

func TestMeRequiresSession(t *testing.T) {
    e := setup(t)
    rec := doJSON(t, e, http.MethodGet, "/v1/auth/me", nil, nil)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("status %d, want 401", rec.Code)
    }
}

// ----- booking tests -----

func TestBookingLifecycle(t *testing.T) {
    e := setup(t)
    student, _ := registerUser(t, e, "STUDENT")
    tutorSession, tutorID := registerUser(t, e, "TUTOR")

    start, end := slot(t, 1)

    // Malformed interval is rejected before touching storage.
    rec := doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": end, "endTime": start,
    }, student)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("inverted interval: status %d, want 400", rec.Code)
    }

    rec = doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": start, "endTime": end,
    }, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
    }
    booking := decodeBody(t, rec)["booking"].(map[string]any)
    if booking["status"] != "PENDING" {
        t.Fatalf("new booking status = %v, want PENDING", booking["status"])
    }
    bookingID := uint64(booking["id"].(float64))

    // A second student cannot take an overlapping slot.
    other, _ := registerUser(t, e, "STUDENT")
    rec = doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": start, "endTime": end,
    }, other)
    if rec.Code != http.StatusConflict {
        t.Fatalf("overlap: status %d, want 409", rec.Code)
    }

    // Students may not confirm.
    path := fmt.Sprintf("/v1/bookings/%d", bookingID)
    rec = doJSON(t, e, http.MethodPatch, path, map[string]any{"status": "CONFIRMED"}, student)
    if rec.Code != http.StatusForbidden {
        t.Fatalf("student confirm: status %d, want 403", rec.Code)
    }

    // The tutor confirms.
    rec = doJSON(t, e, http.MethodPatch, path, map[string]any{"status": "CONFIRMED"}, tutorSession)
    if rec.Code != http.StatusOK {
        t.Fatalf("confirm: status %d body %s", rec.Code, rec.Body.String())
    }

    // Confirming twice violates the lifecycle.
    rec = doJSON(t, e, http.MethodPatch, path, map[string]any{"status": "CONFIRMED"}, tutorSession)
    if rec.Code != http.StatusConflict {
        t.Fatalf("double confirm: status %d, want 409", rec.Code)
    }

    // COMPLETED is never accepted from the API.
    rec = doJSON(t, e, http.MethodPatch, path, map[string]any{"status": "COMPLETED"}, tutorSession)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("complete via api: status %d, want 400", rec.Code)
    }

    // Either party may cancel a confirmed booking.
    rec = doJSON(t, e, http.MethodPatch, path, map[string]any{"status": "CANCELLED"}, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("cancel: status %d body %s", rec.Code, rec.Body.String())
    }

    // A cancelled booking frees its slot.
    rec = doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": start, "endTime": end,
    }, other)
    if rec.Code != http.StatusOK {
        t.Fatalf("rebook after cancel: status %d body %s", rec.Code, rec.Body.String())
    }

    // Both sides see the ledger.
    rec = doJSON(t, e, http.MethodGet, "/v1/bookings/me", nil, tutorSession)
    if rec.Code != http.StatusOK {
        t.Fatalf("list: status %d body %s", rec.Code, rec.Body.String())
    }
    if got := decodeBody(t, rec)["bookings"].([]any); len(got) < 2 {
        t.Fatalf("tutor ledger has %d bookings, want >= 2", len(got))
    }
}

func TestBookingOutsiderCannotTouch(t *testing.T) {
    e := setup(t)
    student, _ := registerUser(t, e, "STUDENT")
    _, tutorID := registerUser(t, e, "TUTOR")
    outsider, _ := registerUser(t, e, "STUDENT")

    start, end := slot(t, 1)
    rec := doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": start, "endTime": end,
    }, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
    }
    id := uint64(decodeBody(t, rec)["booking"].(map[string]any)["id"].(float64))

    rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/v1/bookings/%d", id),
        map[string]any{"status": "CANCELLED"}, outsider)
    if rec.Code != http.StatusForbidden {
        t.Fatalf("outsider cancel: status %d, want 403", rec.Code)
    }

    rec = doJSON(t, e, http.MethodPatch, "/v1/bookings/999999999",
        map[string]any{"status": "CANCELLED"}, student)
    if rec.Code != http.StatusNotFound {
        t.Fatalf("unknown booking: status %d, want 404", rec.Code)
    }
}

func TestBookingConcurrentConflict(t *testing.T) {
    e := setup(t)
    _, tutorID := registerUser(t, e, "TUTOR")

    const racers = 4
    sessions := make([]*http.Cookie, racers)
    for i := range sessions {
        sessions[i], _ = registerUser(t, e, "STUDENT")
    }

    start, end := slot(t, 2)
    codes := make([]int, racers)
    var wg sync.WaitGroup
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            rec := doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
                "tutorId": tutorID, "startTime": start, "endTime": end,
            }, sessions[i])
            codes[i] = rec.Code
        }(i)
    }
    wg.Wait()

    created, conflicted := 0, 0
    for _, code := range codes {
        switch code {
        case http.StatusOK:
            created++
        case http.StatusConflict:
            conflicted++
        default:
            t.Fatalf("unexpected status %d", code)
        }
    }
    if created != 1 {
        t.Fatalf("created = %d, want exactly 1 (conflicted = %d)", created, conflicted)
    }
}

func TestBookingAdjacentSlotsDoNotCollide(t *testing.T) {
    e := setup(t)
    student, _ := registerUser(t, e, "STUDENT")
    _, tutorID := registerUser(t, e, "TUTOR")

    start, end := slot(t, 1)
    rec := doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": start, "endTime": end,
    }, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("first slot: status %d body %s", rec.Code, rec.Body.String())
    }

    // Back-to-back sessions share a boundary instant and must both fit.
    endT, _ := time.Parse(time.RFC3339, end)
    rec = doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId":   tutorID,
        "startTime": end,
        "endTime":   endT.Add(time.Hour).Format(time.RFC3339),
    }, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("adjacent slot: status %d body %s", rec.Code, rec.Body.String())
    }
}

// ----- tutor directory and profile tests -----

func TestTutorProfileAndDirectory(t *testing.T) {
    e := setup(t)
    tutorSession, _ := registerUser(t, e, "TUTOR")

    subject := "subj-" + uuid.New().String()[:8]
    rec := doJSON(t, e, http.MethodPut, "/v1/tutors/profile", map[string]any{
        "bio":        "I teach things.",
        "hourlyRate": 42.50,
        "verified":   true,
        "subjects":   []string{subject, "  " + subject + "  "},
    }, tutorSession)
    if rec.Code != http.StatusOK {
        t.Fatalf("update profile: status %d body %s", rec.Code, rec.Body.String())
    }
    profile := decodeBody(t, rec)["profile"].(map[string]any)
    if rate := profile["hourlyRate"].(float64); rate != 42.5 {
        t.Fatalf("hourlyRate = %v, want 42.5", rate)
    }
    if profile["verified"] != true {
        t.Fatalf("verified = %v, want true", profile["verified"])
    }
    if subjects := profile["subjects"].([]any); len(subjects) != 1 {
        t.Fatalf("subjects = %v, want the duplicate collapsed", subjects)
    }
    profileID := uint64(profile["id"].(float64))

    // Subject matching ignores case.
    rec = doJSON(t, e, http.MethodGet, "/v1/tutors?subject="+uuidUpper(subject), nil, nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("directory: status %d body %s", rec.Code, rec.Body.String())
    }
    tutors := decodeBody(t, rec)["tutors"].([]any)
    if len(tutors) != 1 {
        t.Fatalf("directory found %d tutors for %q, want 1", len(tutors), subject)
    }

    // Rate filters are inclusive bounds.
    rec = doJSON(t, e, http.MethodGet, "/v1/tutors?subject="+subject+"&minRate=50", nil, nil)
    if got := decodeBody(t, rec)["tutors"].([]any); len(got) != 0 {
        t.Fatalf("minRate filter returned %d tutors, want 0", len(got))
    }

    // The verified flag written above drives the verified filter.
    rec = doJSON(t, e, http.MethodGet, "/v1/tutors?subject="+subject+"&verified=false", nil, nil)
    if got := decodeBody(t, rec)["tutors"].([]any); len(got) != 0 {
        t.Fatalf("verified=false returned %d tutors, want 0", len(got))
    }
    rec = doJSON(t, e, http.MethodGet, "/v1/tutors?subject="+subject+"&verified=true", nil, nil)
    if got := decodeBody(t, rec)["tutors"].([]any); len(got) != 1 {
        t.Fatalf("verified=true returned %d tutors, want 1", len(got))
    }

    rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/v1/tutors/%d", profileID), nil, nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("detail: status %d body %s", rec.Code, rec.Body.String())
    }

    rec = doJSON(t, e, http.MethodGet, "/v1/tutors/999999999", nil, nil)
    if rec.Code != http.StatusNotFound {
        t.Fatalf("unknown tutor: status %d, want 404", rec.Code)
    }
}

func uuidUpper(s string) string {
    out := []rune(s)
    for i, r := range out {
        if r >= 'a' && r <= 'z' {
            out[i] = r - 32
        }
    }
    return string(out)
}

func TestProfileRequiresTutorRole(t *testing.T) {
    e := setup(t)
    student, _ := registerUser(t, e, "STUDENT")
    rec := doJSON(t, e, http.MethodGet, "/v1/tutors/profile", nil, student)
    if rec.Code != http.StatusForbidden {
        t.Fatalf("status %d, want 403", rec.Code)
    }
}

// ----- review tests -----

func TestReviewRequiresBooking(t *testing.T) {
    e := setup(t)
    student, _ := registerUser(t, e, "STUDENT")
    _, tutorID := registerUser(t, e, "TUTOR")

    rec := doJSON(t, e, http.MethodPost, "/v1/reviews", map[string]any{
        "tutorId": tutorID, "rating": 5, "comment": "great",
    }, student)
    if rec.Code != http.StatusForbidden {
        t.Fatalf("review without booking: status %d, want 403", rec.Code)
    }

    start, end := slot(t, 1)
    rec = doJSON(t, e, http.MethodPost, "/v1/bookings", map[string]any{
        "tutorId": tutorID, "startTime": start, "endTime": end,
    }, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("create booking: status %d body %s", rec.Code, rec.Body.String())
    }

    rec = doJSON(t, e, http.MethodPost, "/v1/reviews", map[string]any{
        "tutorId": tutorID, "rating": 6, "comment": "off the scale",
    }, student)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("rating 6: status %d, want 400", rec.Code)
    }

    // Any booking, even a pending one, opens the review gate.
    rec = doJSON(t, e, http.MethodPost, "/v1/reviews", map[string]any{
        "tutorId": tutorID, "rating": 5, "comment": "great sessions",
    }, student)
    if rec.Code != http.StatusOK {
        t.Fatalf("review: status %d body %s", rec.Code, rec.Body.String())
    }
    review := decodeBody(t, rec)["review"].(map[string]any)
    if review["rating"].(float64) != 5 {
        t.Fatalf("rating = %v, want 5", review["rating"])
    }
}

func TestReviewRequiresStudentRole(t *testing.T) {
    e := setup(t)
    tutorSession, tutorID := registerUser(t, e, "TUTOR")
    rec := doJSON(t, e, http.MethodPost, "/v1/reviews", map[string]any{
        "tutorId": tutorID, "rating": 5,
    }, tutorSession)
    if rec.Code != http.StatusForbidden {
        t.Fatalf("status %d, want 403", rec.Code)
    }
}
