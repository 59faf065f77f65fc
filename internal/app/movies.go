package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

const multipartMaxMemory = 10 << 20

func (app *Application) ListMovies(w http.ResponseWriter, r *http.Request, params api.ListMoviesParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movies, err := app.movieRepo.GetAll(r.Context(), toMovieFilters(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.MovieListItem, len(movies))
	for i, m := range movies {
		resp[i] = app.toMovieListItem(m)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieFilters(params api.ListMoviesParams) domain.MovieFilters {
	var filters domain.MovieFilters

	if params.Title != nil {
		filters.Title = *params.Title
	}
	if params.Genres != nil {
		filters.GenreIDs = *params.Genres
	}
	if params.Actors != nil {
		filters.ActorIDs = *params.Actors
	}

	return filters
}

// CreateMovie accepts JSON or multipart bodies. An image sent along is
// ignored, posters are attached through UploadMovieImage only.
func (app *Application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var input api.MovieRequest

	err := app.readMovieInput(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie := &domain.Movie{}
	applyMovieInput(movie, input)

	err = app.movieRepo.Create(r.Context(), movie)
	if err != nil {
		app.movieWriteError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, app.toMovieDetail(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovie(w http.ResponseWriter, r *http.Request, id int) {
	movie, err := app.movieRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.toMovieDetail(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateMovie(w http.ResponseWriter, r *http.Request, id int) {
	app.updateMovie(w, r, id, false)
}

func (app *Application) PartialUpdateMovie(w http.ResponseWriter, r *http.Request, id int) {
	app.updateMovie(w, r, id, true)
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request, id int, partial bool) {
	movie, err := app.movieRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input api.MovieRequest
	if partial {
		input = api.MovieRequest{
			Title:       movie.Title,
			Description: movie.Description,
			Duration:    movie.Duration,
			Genres:      movie.GenreIDs(),
			Actors:      movie.ActorIDs(),
		}
	}

	err = app.readMovieInput(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	applyMovieInput(movie, input)

	err = app.movieRepo.Update(r.Context(), movie)
	if err != nil {
		app.movieWriteError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.toMovieDetail(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteMovie(w http.ResponseWriter, r *http.Request, id int) {
	movie, err := app.movieRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.movieRepo.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrRecordInUse):
			app.conflictResponse(w, r, "The movie cannot be deleted while movie sessions show it")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if movie.Image != "" {
		if err := app.images.Delete(movie.Image); err != nil {
			app.contextGetLogger(r).Warn("failed to remove movie image", "path", movie.Image, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) movieWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var refErr *domain.ReferenceError

	switch {
	case errors.As(err, &refErr):
		app.fieldErrorsResponse(w, r, api.ValidationError{
			Field: refErr.Field,
			Issue: "contains an id that does not exist",
		})
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// readMovieInput decodes a JSON or multipart movie body onto dst. Fields
// missing from a multipart body keep their current value.
func (app *Application) readMovieInput(w http.ResponseWriter, r *http.Request, dst *api.MovieRequest) error {
	if !isMultipart(r) {
		return app.readJSON(w, r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.config.Media.MaxUploadSize+maxJSONBodySize)

	err := r.ParseMultipartForm(multipartMaxMemory)
	if err != nil {
		return fmt.Errorf("body contains an invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	values := r.MultipartForm.Value

	if v, ok := values["title"]; ok {
		dst.Title = v[0]
	}
	if v, ok := values["description"]; ok {
		dst.Description = v[0]
	}
	if v, ok := values["duration"]; ok {
		dst.Duration, err = strconv.Atoi(v[0])
		if err != nil {
			return errors.New("duration must be an integer")
		}
	}
	if v, ok := values["genres"]; ok {
		dst.Genres, err = formIntList(v)
		if err != nil {
			return errors.New("genres must be a list of integers")
		}
	}
	if v, ok := values["actors"]; ok {
		dst.Actors, err = formIntList(v)
		if err != nil {
			return errors.New("actors must be a list of integers")
		}
	}

	return nil
}

func applyMovieInput(movie *domain.Movie, input api.MovieRequest) {
	movie.Title = input.Title
	movie.Description = input.Description
	movie.Duration = input.Duration

	movie.Genres = make([]domain.Genre, len(input.Genres))
	for i, id := range input.Genres {
		movie.Genres[i] = domain.Genre{ID: id}
	}

	movie.Actors = make([]domain.Actor, len(input.Actors))
	for i, id := range input.Actors {
		movie.Actors[i] = domain.Actor{ID: id}
	}
}

func (app *Application) imageURL(path string) *string {
	if path == "" {
		return nil
	}
	return ptr(app.images.URL(path))
}

func (app *Application) toMovieListItem(m *domain.Movie) api.MovieListItem {
	genres := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		genres[i] = g.Name
	}

	actors := make([]string, len(m.Actors))
	for i, a := range m.Actors {
		actors[i] = a.FullName()
	}

	return api.MovieListItem{
		Id:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Duration:    m.Duration,
		Genres:      genres,
		Actors:      actors,
		Image:       app.imageURL(m.Image),
	}
}

func (app *Application) toMovieDetail(m *domain.Movie) api.MovieDetail {
	genres := make([]api.Genre, len(m.Genres))
	for i, g := range m.Genres {
		genres[i] = toApiGenre(g)
	}

	actors := make([]api.Actor, len(m.Actors))
	for i, a := range m.Actors {
		actors[i] = toApiActor(a)
	}

	return api.MovieDetail{
		Id:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Duration:    m.Duration,
		Genres:      genres,
		Actors:      actors,
		Image:       app.imageURL(m.Image),
	}
}
