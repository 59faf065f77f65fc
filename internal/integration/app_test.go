package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking/internal/app"
	"github.com/metinatakli/cinema-booking/internal/auth"
	"github.com/metinatakli/cinema-booking/internal/mailer"
	"github.com/metinatakli/cinema-booking/internal/storage"
)

type TestApp struct {
	App       *app.Application
	DB        *pgxpool.Pool
	Mailer    *mailer.MockMailer
	Tokens    *auth.TokenIssuer
	MediaRoot string
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		app.NewSessionManager(redisClient),
		mailer,
		storage.NewFileImageStore(cfg.Media.Root, cfg.Media.URL),
		app.NewPostgresRepositories(db),
	)

	return &TestApp{
		App:       application,
		DB:        db,
		Mailer:    mailer,
		Tokens:    auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		MediaRoot: cfg.Media.Root,
	}, nil
}
