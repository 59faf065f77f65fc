package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
)

func (app *Application) RegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.RegisterRequest

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

	user := domain.User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	err = user.Password.Set(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.userRepo.Create(r.Context(), &user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			logger.Warn("registration attempt for existing email")
			app.conflictResponse(w, r, "A user with this email address already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	data := map[string]any{
		"Name":  displayName(&user),
		"Email": user.Email,
	}

	app.background(func() {
		err := app.mailer.Send(user.Email, "welcome.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send welcome email", "user_id", user.ID, "error", err)
		}
	})

	err = app.writeJSON(w, http.StatusCreated, toUserResponse(&user), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// Login starts a cookie session for the user.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	if !app.contextGetUser(r).IsAnonymous() && app.sessionManager.Exists(r.Context(), SessionKeyUserId.String()) {
		app.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Already logged in"}, nil)
		return
	}

	user, ok := app.checkCredentials(w, r)
	if !ok {
		return
	}

	err := app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeyUserId.String(), user.ID)

	logger.Info("user logged in", "user_id", user.ID)

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	err := app.sessionManager.Destroy(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateToken exchanges credentials for a bearer access token.
func (app *Application) CreateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := app.checkCredentials(w, r)
	if !ok {
		return
	}

	token, err := app.tokens.Issue(user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TokenResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   token.Expiry,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// checkCredentials reads a LoginRequest and writes the error response
// itself when the credentials do not identify a user.
func (app *Application) checkCredentials(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	var input api.LoginRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return nil, false
	}

	user, err := app.userRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}

	match, err := user.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return nil, false
	}

	if !match {
		app.invalidCredentialsResponse(w, r)
		return nil, false
	}

	return user, true
}

// ensureAdmin creates the configured staff account if it does not exist.
func (app *Application) ensureAdmin(ctx context.Context) error {
	if app.config.Admin.Email == "" {
		return nil
	}

	_, err := app.userRepo.GetByEmail(ctx, app.config.Admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	err = app.validator.Var(app.config.Admin.Password, "required,password")
	if err != nil {
		return errors.New("admin password does not meet the password policy")
	}

	admin := domain.User{Email: app.config.Admin.Email, IsStaff: true}

	err = admin.Password.Set(app.config.Admin.Password)
	if err != nil {
		return err
	}

	err = app.userRepo.Create(ctx, &admin)
	if err != nil && !errors.Is(err, domain.ErrUserAlreadyExists) {
		return err
	}

	app.logger.Info("created admin user", "email", admin.Email)

	return nil
}
