package app

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/cinema-booking/api"
	"github.com/riandyrn/otelchi"
	"github.com/rs/cors"
)

const mediaRoute = "/media"

var loadSwagger = sync.OnceValues(api.GetSwagger)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	if app.config.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.CORS.TrustedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(app.rateLimit)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.authenticate)

	wrapper := &api.ServerInterfaceWrapper{
		Handler:          app,
		ErrorHandlerFunc: app.invalidParamResponse,
	}

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.json", app.GetOpenAPISpec)
	r.Handle(mediaRoute+"/*", http.StripPrefix(mediaRoute, app.mediaHandler()))

	r.Post("/users", app.RegisterUser)
	r.Post("/users/login", app.Login)
	r.Post("/users/token", app.CreateToken)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthenticatedUser)

		r.Post("/users/logout", app.Logout)
		r.Get("/users/me", app.GetCurrentUser)

		r.Get("/genres", app.ListGenres)
		r.Get("/genres/{id}", wrapper.GetGenre)
		r.Get("/actors", app.ListActors)
		r.Get("/actors/{id}", wrapper.GetActor)
		r.Get("/cinema-halls", app.ListCinemaHalls)
		r.Get("/cinema-halls/{id}", wrapper.GetCinemaHall)
		r.Get("/movies", wrapper.ListMovies)
		r.Get("/movies/{id}", wrapper.GetMovie)
		r.Get("/movie-sessions", wrapper.ListMovieSessions)
		r.Get("/movie-sessions/{id}", wrapper.GetMovieSession)

		r.Get("/orders", wrapper.ListOrders)
		r.Post("/orders", app.CreateOrder)
		r.Get("/orders/{id}", wrapper.GetOrder)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAdmin)

			r.Post("/genres", app.CreateGenre)
			r.Put("/genres/{id}", wrapper.UpdateGenre)
			r.Patch("/genres/{id}", wrapper.PartialUpdateGenre)
			r.Delete("/genres/{id}", wrapper.DeleteGenre)

			r.Post("/actors", app.CreateActor)
			r.Put("/actors/{id}", wrapper.UpdateActor)
			r.Patch("/actors/{id}", wrapper.PartialUpdateActor)
			r.Delete("/actors/{id}", wrapper.DeleteActor)

			r.Post("/cinema-halls", app.CreateCinemaHall)
			r.Put("/cinema-halls/{id}", wrapper.UpdateCinemaHall)
			r.Patch("/cinema-halls/{id}", wrapper.PartialUpdateCinemaHall)
			r.Delete("/cinema-halls/{id}", wrapper.DeleteCinemaHall)

			r.Post("/movies", app.CreateMovie)
			r.Put("/movies/{id}", wrapper.UpdateMovie)
			r.Patch("/movies/{id}", wrapper.PartialUpdateMovie)
			r.Delete("/movies/{id}", wrapper.DeleteMovie)
			r.Post("/movies/{id}/upload-image", wrapper.UploadMovieImage)

			r.Post("/movie-sessions", app.CreateMovieSession)
			r.Put("/movie-sessions/{id}", wrapper.UpdateMovieSession)
			r.Patch("/movie-sessions/{id}", wrapper.PartialUpdateMovieSession)
			r.Delete("/movie-sessions/{id}", wrapper.DeleteMovieSession)
		})
	})

	return r
}

func (app *Application) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	swagger, err := loadSwagger()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, swagger, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// mediaHandler serves uploaded files without directory listings.
func (app *Application) mediaHandler() http.Handler {
	fileServer := http.FileServer(http.Dir(app.config.Media.Root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			app.notFoundResponse(w, r)
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}
