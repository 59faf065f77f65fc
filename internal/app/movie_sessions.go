package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

func (app *Application) ListMovieSessions(w http.ResponseWriter, r *http.Request, params api.ListMovieSessionsParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	var filters domain.MovieSessionFilters
	if params.Date != nil {
		filters.Date = *params.Date
	}
	if params.Movie != nil {
		filters.MovieID = *params.Movie
	}

	sessions, err := app.movieSessionRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.MovieSessionListItem, len(sessions))
	for i, s := range sessions {
		resp[i] = api.MovieSessionListItem{
			Id:                 s.ID,
			ShowTime:           s.ShowTime,
			MovieTitle:         s.Movie.Title,
			MovieImage:         app.imageURL(s.Movie.Image),
			CinemaHallName:     s.CinemaHall.Name,
			CinemaHallCapacity: s.CinemaHall.Capacity(),
			TicketsAvailable:   s.TicketsAvailable(),
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateMovieSession(w http.ResponseWriter, r *http.Request) {
	var input api.MovieSessionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	session := &domain.MovieSession{}
	applyMovieSessionInput(session, input)

	err = app.movieSessionRepo.Create(r.Context(), session)
	if err != nil {
		app.movieSessionWriteError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toApiMovieSession(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieSession(w http.ResponseWriter, r *http.Request, id int) {
	session, err := app.movieSessionRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	places, err := app.movieSessionRepo.GetTakenPlaces(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	takenPlaces := make([]api.TakenPlace, len(places))
	for i, p := range places {
		takenPlaces[i] = api.TakenPlace{Row: p.Row, Seat: p.Seat}
	}

	resp := api.MovieSessionDetail{
		Id:          session.ID,
		ShowTime:    session.ShowTime,
		Movie:       app.toMovieListItem(&session.Movie),
		CinemaHall:  toApiCinemaHall(session.CinemaHall),
		TakenPlaces: takenPlaces,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateMovieSession(w http.ResponseWriter, r *http.Request, id int) {
	app.updateMovieSession(w, r, id, false)
}

func (app *Application) PartialUpdateMovieSession(w http.ResponseWriter, r *http.Request, id int) {
	app.updateMovieSession(w, r, id, true)
}

func (app *Application) updateMovieSession(w http.ResponseWriter, r *http.Request, id int, partial bool) {
	session, err := app.movieSessionRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input api.MovieSessionRequest
	if partial {
		input = api.MovieSessionRequest{
			ShowTime:   session.ShowTime,
			Movie:      session.Movie.ID,
			CinemaHall: session.CinemaHall.ID,
		}
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	applyMovieSessionInput(session, input)

	err = app.movieSessionRepo.Update(r.Context(), session)
	if err != nil {
		app.movieSessionWriteError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiMovieSession(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteMovieSession(w http.ResponseWriter, r *http.Request, id int) {
	err := app.movieSessionRepo.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrRecordInUse):
			app.conflictResponse(w, r, "The movie session cannot be deleted while tickets are sold for it")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) movieSessionWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var refErr *domain.ReferenceError

	switch {
	case errors.As(err, &refErr):
		app.fieldErrorsResponse(w, r, api.ValidationError{
			Field: refErr.Field,
			Issue: "references a record that does not exist",
		})
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func applyMovieSessionInput(session *domain.MovieSession, input api.MovieSessionRequest) {
	session.ShowTime = input.ShowTime
	session.Movie = domain.Movie{ID: input.Movie}
	session.CinemaHall = domain.CinemaHall{ID: input.CinemaHall}
}

func toApiMovieSession(s *domain.MovieSession) api.MovieSession {
	return api.MovieSession{
		Id:         s.ID,
		ShowTime:   s.ShowTime,
		Movie:      s.Movie.ID,
		CinemaHall: s.CinemaHall.ID,
	}
}
