package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)

	RegisterUser(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	CreateToken(w http.ResponseWriter, r *http.Request)
	GetCurrentUser(w http.ResponseWriter, r *http.Request)

	ListGenres(w http.ResponseWriter, r *http.Request)
	CreateGenre(w http.ResponseWriter, r *http.Request)
	GetGenre(w http.ResponseWriter, r *http.Request, id int)
	UpdateGenre(w http.ResponseWriter, r *http.Request, id int)
	PartialUpdateGenre(w http.ResponseWriter, r *http.Request, id int)
	DeleteGenre(w http.ResponseWriter, r *http.Request, id int)

	ListActors(w http.ResponseWriter, r *http.Request)
	CreateActor(w http.ResponseWriter, r *http.Request)
	GetActor(w http.ResponseWriter, r *http.Request, id int)
	UpdateActor(w http.ResponseWriter, r *http.Request, id int)
	PartialUpdateActor(w http.ResponseWriter, r *http.Request, id int)
	DeleteActor(w http.ResponseWriter, r *http.Request, id int)

	ListCinemaHalls(w http.ResponseWriter, r *http.Request)
	CreateCinemaHall(w http.ResponseWriter, r *http.Request)
	GetCinemaHall(w http.ResponseWriter, r *http.Request, id int)
	UpdateCinemaHall(w http.ResponseWriter, r *http.Request, id int)
	PartialUpdateCinemaHall(w http.ResponseWriter, r *http.Request, id int)
	DeleteCinemaHall(w http.ResponseWriter, r *http.Request, id int)

	ListMovies(w http.ResponseWriter, r *http.Request, params ListMoviesParams)
	CreateMovie(w http.ResponseWriter, r *http.Request)
	GetMovie(w http.ResponseWriter, r *http.Request, id int)
	UpdateMovie(w http.ResponseWriter, r *http.Request, id int)
	PartialUpdateMovie(w http.ResponseWriter, r *http.Request, id int)
	DeleteMovie(w http.ResponseWriter, r *http.Request, id int)
	UploadMovieImage(w http.ResponseWriter, r *http.Request, id int)

	ListMovieSessions(w http.ResponseWriter, r *http.Request, params ListMovieSessionsParams)
	CreateMovieSession(w http.ResponseWriter, r *http.Request)
	GetMovieSession(w http.ResponseWriter, r *http.Request, id int)
	UpdateMovieSession(w http.ResponseWriter, r *http.Request, id int)
	PartialUpdateMovieSession(w http.ResponseWriter, r *http.Request, id int)
	DeleteMovieSession(w http.ResponseWriter, r *http.Request, id int)

	ListOrders(w http.ResponseWriter, r *http.Request, params ListOrdersParams)
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request, id int)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper converts path and query parameters before calling
// the matching ServerInterface method.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type idHandler func(w http.ResponseWriter, r *http.Request, id int)

func (siw *ServerInterfaceWrapper) withID(fn idHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id int

		err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
			return
		}

		fn(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) GetGenre(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.GetGenre)(w, r)
}

func (siw *ServerInterfaceWrapper) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.UpdateGenre)(w, r)
}

func (siw *ServerInterfaceWrapper) PartialUpdateGenre(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.PartialUpdateGenre)(w, r)
}

func (siw *ServerInterfaceWrapper) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.DeleteGenre)(w, r)
}

func (siw *ServerInterfaceWrapper) GetActor(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.GetActor)(w, r)
}

func (siw *ServerInterfaceWrapper) UpdateActor(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.UpdateActor)(w, r)
}

func (siw *ServerInterfaceWrapper) PartialUpdateActor(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.PartialUpdateActor)(w, r)
}

func (siw *ServerInterfaceWrapper) DeleteActor(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.DeleteActor)(w, r)
}

func (siw *ServerInterfaceWrapper) GetCinemaHall(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.GetCinemaHall)(w, r)
}

func (siw *ServerInterfaceWrapper) UpdateCinemaHall(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.UpdateCinemaHall)(w, r)
}

func (siw *ServerInterfaceWrapper) PartialUpdateCinemaHall(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.PartialUpdateCinemaHall)(w, r)
}

func (siw *ServerInterfaceWrapper) DeleteCinemaHall(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.DeleteCinemaHall)(w, r)
}

func (siw *ServerInterfaceWrapper) ListMovies(w http.ResponseWriter, r *http.Request) {
	var err error

	var params ListMoviesParams

	err = runtime.BindQueryParameter("form", true, false, "title", r.URL.Query(), &params.Title)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "title", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", false, false, "genres", r.URL.Query(), &params.Genres)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "genres", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", false, false, "actors", r.URL.Query(), &params.Actors)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "actors", Err: err})
		return
	}

	siw.Handler.ListMovies(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetMovie(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.GetMovie)(w, r)
}

func (siw *ServerInterfaceWrapper) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.UpdateMovie)(w, r)
}

func (siw *ServerInterfaceWrapper) PartialUpdateMovie(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.PartialUpdateMovie)(w, r)
}

func (siw *ServerInterfaceWrapper) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.DeleteMovie)(w, r)
}

func (siw *ServerInterfaceWrapper) UploadMovieImage(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.UploadMovieImage)(w, r)
}

func (siw *ServerInterfaceWrapper) ListMovieSessions(w http.ResponseWriter, r *http.Request) {
	var err error

	var params ListMovieSessionsParams

	err = runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &params.Date)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "date", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "movie", r.URL.Query(), &params.Movie)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "movie", Err: err})
		return
	}

	siw.Handler.ListMovieSessions(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetMovieSession(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.GetMovieSession)(w, r)
}

func (siw *ServerInterfaceWrapper) UpdateMovieSession(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.UpdateMovieSession)(w, r)
}

func (siw *ServerInterfaceWrapper) PartialUpdateMovieSession(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.PartialUpdateMovieSession)(w, r)
}

func (siw *ServerInterfaceWrapper) DeleteMovieSession(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.DeleteMovieSession)(w, r)
}

func (siw *ServerInterfaceWrapper) ListOrders(w http.ResponseWriter, r *http.Request) {
	var err error

	var params ListOrdersParams

	err = runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "page_size", r.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page_size", Err: err})
		return
	}

	siw.Handler.ListOrders(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetOrder(w http.ResponseWriter, r *http.Request) {
	siw.withID(siw.Handler.GetOrder)(w, r)
}
