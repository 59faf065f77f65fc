package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

func (app *Application) ListCinemaHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := app.cinemaHallRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.CinemaHall, len(halls))
	for i, h := range halls {
		resp[i] = toApiCinemaHall(h)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateCinemaHall(w http.ResponseWriter, r *http.Request) {
	var input api.CinemaHallRequest

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

	hall := &domain.CinemaHall{
		Name:       input.Name,
		Rows:       input.Rows,
		SeatsInRow: input.SeatsInRow,
	}

	err = app.cinemaHallRepo.Create(r.Context(), hall)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toApiCinemaHall(*hall), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetCinemaHall(w http.ResponseWriter, r *http.Request, id int) {
	hall, err := app.cinemaHallRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiCinemaHall(*hall), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateCinemaHall(w http.ResponseWriter, r *http.Request, id int) {
	app.updateCinemaHall(w, r, id, false)
}

func (app *Application) PartialUpdateCinemaHall(w http.ResponseWriter, r *http.Request, id int) {
	app.updateCinemaHall(w, r, id, true)
}

// Shrinking a hall does not touch tickets already sold outside the new
// layout.
func (app *Application) updateCinemaHall(w http.ResponseWriter, r *http.Request, id int, partial bool) {
	hall, err := app.cinemaHallRepo.GetById(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input api.CinemaHallRequest
	if partial {
		input = api.CinemaHallRequest{Name: hall.Name, Rows: hall.Rows, SeatsInRow: hall.SeatsInRow}
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

	hall.Name = input.Name
	hall.Rows = input.Rows
	hall.SeatsInRow = input.SeatsInRow

	err = app.cinemaHallRepo.Update(r.Context(), hall)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiCinemaHall(*hall), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteCinemaHall(w http.ResponseWriter, r *http.Request, id int) {
	err := app.cinemaHallRepo.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrRecordInUse):
			app.conflictResponse(w, r, "The cinema hall cannot be deleted while movie sessions use it")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toApiCinemaHall(h domain.CinemaHall) api.CinemaHall {
	return api.CinemaHall{
		Id:         h.ID,
		Name:       h.Name,
		Rows:       h.Rows,
		SeatsInRow: h.SeatsInRow,
		Capacity:   h.Capacity(),
	}
}
