package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

const imageField = "image"

func (app *Application) UploadMovieImage(w http.ResponseWriter, r *http.Request, id int) {
	logger := app.contextGetLogger(r)

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

	r.Body = http.MaxBytesReader(w, r.Body, app.config.Media.MaxUploadSize)

	err = r.ParseMultipartForm(multipartMaxMemory)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			app.fieldErrorsResponse(w, r, api.ValidationError{
				Field: imageField,
				Issue: fmt.Sprintf("must not be larger than %d bytes", maxBytesError.Limit),
			})
			return
		}

		app.badRequestResponse(w, r, fmt.Errorf("body contains an invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			app.fieldErrorsResponse(w, r, api.ValidationError{
				Field: imageField,
				Issue: "no file was submitted",
			})
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}
	defer file.Close()

	path, err := app.images.Save(movie.Title, file)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidImage):
			app.fieldErrorsResponse(w, r, api.ValidationError{Field: imageField, Issue: err.Error()})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.movieRepo.UpdateImage(r.Context(), movie.ID, path)
	if err != nil {
		if rmErr := app.images.Delete(path); rmErr != nil {
			logger.Warn("failed to remove orphaned image", "path", path, "error", rmErr)
		}

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if movie.Image != "" {
		if err := app.images.Delete(movie.Image); err != nil {
			logger.Warn("failed to remove previous movie image", "path", movie.Image, "error", err)
		}
	}

	resp := api.MovieImageResponse{
		Id:    movie.ID,
		Image: app.images.URL(path),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
