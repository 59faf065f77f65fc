package app

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/metinatakli/cinema-booking/internal/auth"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// rateLimit counts requests per client IP in fixed windows kept in Redis.
// Requests are let through when Redis cannot be reached.
func (app *Application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.Limiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		window := app.config.Limiter.Window
		key := fmt.Sprintf("ratelimit:%s:%d", ip, time.Now().Unix()/int64(window.Seconds()))

		pipe := app.redis.TxPipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, window)

		_, err = pipe.Exec(r.Context())
		if err != nil {
			app.contextGetLogger(r).Warn("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > int64(app.config.Limiter.Requests) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the caller from a bearer token or, failing that,
// from the session cookie. Requests without credentials continue as the
// anonymous user.
func (app *Application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")
		if authorizationHeader != "" {
			scheme, token, ok := strings.Cut(authorizationHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				app.invalidAuthenticationTokenResponse(w, r)
				return
			}

			userId, err := app.tokens.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					app.invalidAuthenticationTokenResponse(w, r)
					return
				}
				app.serverErrorResponse(w, r, err)
				return
			}

			user, err := app.userRepo.GetById(r.Context(), userId)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrRecordNotFound):
					app.invalidAuthenticationTokenResponse(w, r)
				default:
					app.serverErrorResponse(w, r, err)
				}
				return
			}

			next.ServeHTTP(w, app.contextSetUser(r, user))
			return
		}

		userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
		if userId == 0 {
			next.ServeHTTP(w, app.contextSetUser(r, domain.AnonymousUser))
			return
		}

		user, err := app.userRepo.GetById(r.Context(), userId)
		if err != nil {
			if !errors.Is(err, domain.ErrRecordNotFound) {
				app.serverErrorResponse(w, r, err)
				return
			}

			app.sessionManager.Remove(r.Context(), SessionKeyUserId.String())
			user = domain.AnonymousUser
		}

		next.ServeHTTP(w, app.contextSetUser(r, user))
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.contextGetUser(r)

		if user.IsAnonymous() {
			app.authenticationRequiredResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.contextGetUser(r)

		if !user.IsStaff {
			app.notPermittedResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
