package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/cinema-booking/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	code := http.StatusOK

	err := app.checkDependencies(r.Context())
	if err != nil {
		app.logError(r, err)

		status = "DOWN"
		code = http.StatusServiceUnavailable
	}

	resp := api.HealthcheckResponse{
		Status: status,
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
	}

	err = app.writeJSON(w, code, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) checkDependencies(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if app.db != nil {
		if err := app.db.Ping(ctx); err != nil {
			return err
		}
	}

	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	return nil
}
