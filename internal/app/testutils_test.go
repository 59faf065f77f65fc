package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/auth"
	"github.com/metinatakli/cinema-booking/internal/booking"
	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/metinatakli/cinema-booking/internal/mailer"
	"github.com/metinatakli/cinema-booking/internal/mocks"
	"github.com/metinatakli/cinema-booking/internal/storage"
	"github.com/metinatakli/cinema-booking/internal/validator"
	"go.opentelemetry.io/otel"
)

const ErrInternalServer = "The server encountered a problem and could not process your request"

const testJWTSecret = "test-secret"

var (
	testUser  = &domain.User{ID: 1, Email: "user@example.com", FirstName: "Jane"}
	testAdmin = &domain.User{ID: 2, Email: "admin@example.com", IsStaff: true}
)

func newTestApplication(opts ...func(*Application)) *Application {
	cfg := Config{
		Env:   "test",
		JWT:   JWTConfig{Secret: testJWTSecret, TTL: time.Hour},
		Media: MediaConfig{URL: "/media", MaxUploadSize: 1 << 20},
	}

	app := &Application{
		config:           cfg,
		validator:        validator.NewValidator(),
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionManager:   scs.New(),
		tokens:           auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		images:           storage.NewFileImageStore("", cfg.Media.URL),
		mailer:           mailer.NewMockMailer(),
		metrics:          newBookingMetrics(otel.Meter(serviceName)),
		userRepo:         &mocks.MockUserRepo{},
		genreRepo:        &mocks.MockGenreRepo{},
		actorRepo:        &mocks.MockActorRepo{},
		cinemaHallRepo:   &mocks.MockCinemaHallRepo{},
		movieRepo:        &mocks.MockMovieRepo{},
		movieSessionRepo: new(mocks.MockMovieSessionRepo),
		orderRepo:        new(mocks.MockOrderRepo),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.booking = booking.NewEngine(app.movieSessionRepo, app.orderRepo)

	return app
}

// authorize attaches a bearer token for user to r and teaches the user
// repository mock to resolve it.
func authorize(t *testing.T, app *Application, r *http.Request, user *domain.User) {
	t.Helper()

	repo, ok := app.userRepo.(*mocks.MockUserRepo)
	if !ok {
		t.Fatalf("authorize needs a *mocks.MockUserRepo, got %T", app.userRepo)
	}

	repo.GetByIdFunc = func(ctx context.Context, id int) (*domain.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, domain.ErrRecordNotFound
	}

	token, err := app.tokens.Issue(user.ID)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	r.Header.Set("Authorization", "Bearer "+token.Token)
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// serve runs r through the full router, optionally as user.
func serve(t *testing.T, app *Application, w *httptest.ResponseRecorder, r *http.Request, user *domain.User) {
	t.Helper()

	if user != nil {
		authorize(t, app, r, user)
	}

	app.Routes().ServeHTTP(w, r)
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	var resp api.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantErrMessage == "" || resp.Message == tt.wantErrMessage {
		return
	}

	for _, vErr := range resp.ValidationErrors {
		if vErr.Issue == tt.wantErrMessage {
			return
		}
	}

	t.Errorf("Error message %q not found in response (message = %q, validation errors = %v)",
		tt.wantErrMessage, resp.Message, resp.ValidationErrors)
}

func decodeValidationErrors(t *testing.T, w *httptest.ResponseRecorder) []api.ValidationError {
	t.Helper()

	var resp api.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode validation error response: %v", err)
	}

	return resp.ValidationErrors
}
