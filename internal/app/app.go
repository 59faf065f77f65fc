package app

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/metinatakli/cinema-booking/internal/auth"
	"github.com/metinatakli/cinema-booking/internal/booking"
	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/metinatakli/cinema-booking/internal/mailer"
	"github.com/metinatakli/cinema-booking/internal/repository"
	"github.com/metinatakli/cinema-booking/internal/storage"
	appvalidator "github.com/metinatakli/cinema-booking/internal/validator"
	"github.com/metinatakli/cinema-booking/internal/vcs"
	"github.com/metinatakli/cinema-booking/migrations"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	tokens         *auth.TokenIssuer
	images         domain.ImageStore
	booking        *booking.Engine
	metrics        *bookingMetrics

	userRepo         domain.UserRepository
	genreRepo        domain.GenreRepository
	actorRepo        domain.ActorRepository
	cinemaHallRepo   domain.CinemaHallRepository
	movieRepo        domain.MovieRepository
	movieSessionRepo domain.MovieSessionRepository
	orderRepo        domain.OrderRepository

	wg sync.WaitGroup
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	Migrate      bool
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type MediaConfig struct {
	Root          string
	URL           string
	MaxUploadSize int64
	MaxPixels     int
}

type CORSConfig struct {
	TrustedOrigins []string
}

type LimiterConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// AdminConfig describes a staff account that is created on startup when
// no user with that email exists yet.
type AdminConfig struct {
	Email    string
	Password string
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	JWT              JWTConfig
	Media            MediaConfig
	CORS             CORSConfig
	Limiter          LimiterConfig
	Admin            AdminConfig
	OtelCollectorUrl string
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxy bool
}

// Repositories groups the storage dependencies of the application.
type Repositories struct {
	Users         domain.UserRepository
	Genres        domain.GenreRepository
	Actors        domain.ActorRepository
	CinemaHalls   domain.CinemaHallRepository
	Movies        domain.MovieRepository
	MovieSessions domain.MovieSessionRepository
	Orders        domain.OrderRepository
}

func NewPostgresRepositories(db *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         repository.NewPostgresUserRepository(db),
		Genres:        repository.NewPostgresGenreRepository(db),
		Actors:        repository.NewPostgresActorRepository(db),
		CinemaHalls:   repository.NewPostgresCinemaHallRepository(db),
		Movies:        repository.NewPostgresMovieRepository(db),
		MovieSessions: repository.NewPostgresMovieSessionRepository(db),
		Orders:        repository.NewPostgresOrderRepository(db),
	}
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	sessionManager *scs.SessionManager,
	mailer mailer.Mailer,
	images domain.ImageStore,
	repos Repositories,
) *Application {
	return &Application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redis:            redisClient,
		validator:        appvalidator.NewValidator(),
		mailer:           mailer,
		sessionManager:   sessionManager,
		tokens:           auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		images:           images,
		booking:          booking.NewEngine(repos.MovieSessions, repos.Orders),
		metrics:          newBookingMetrics(otel.Meter(serviceName)),
		userRepo:         repos.Users,
		genreRepo:        repos.Genres,
		actorRepo:        repos.Actors,
		cinemaHallRepo:   repos.CinemaHalls,
		movieRepo:        repos.Movies,
		movieSessionRepo: repos.MovieSessions,
		orderRepo:        repos.Orders,
	}
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")
	flag.BoolVar(&cfg.DB.Migrate, "db-migrate", envBool("DB_MIGRATE", true), "Apply pending migrations on startup")

	flag.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "localhost"), "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 1025), "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Cinema <no-reply@cinema.local>"), "SMTP sender")

	flag.StringVar(&cfg.JWT.Secret, "jwt-secret", os.Getenv("JWT_SECRET"), "Secret used to sign access tokens")
	flag.DurationVar(&cfg.JWT.TTL, "jwt-ttl", 24*time.Hour, "Access token lifetime")

	flag.StringVar(&cfg.Media.Root, "media-root", envString("MEDIA_ROOT", "media"), "Directory for uploaded files")
	flag.StringVar(&cfg.Media.URL, "media-url", envString("MEDIA_URL", "/media"), "Public URL prefix of uploaded files")
	flag.Int64Var(&cfg.Media.MaxUploadSize, "media-max-upload-size", 5<<20, "Maximum size of an uploaded image in bytes")
	flag.IntVar(&cfg.Media.MaxPixels, "media-max-image-pixels", storage.DefaultMaxImagePixels, "Maximum width times height of an uploaded image")

	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.CORS.TrustedOrigins = strings.Fields(val)
		return nil
	})

	flag.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", envBool("LIMITER_ENABLED", true), "Enable rate limiter")
	flag.IntVar(&cfg.Limiter.Requests, "limiter-requests", 100, "Requests allowed per client and window")
	flag.DurationVar(&cfg.Limiter.Window, "limiter-window", time.Minute, "Rate limiter window")
	flag.BoolVar(&cfg.TrustProxy, "trust-proxy", envBool("TRUST_PROXY", false), "Use client addresses forwarded by a reverse proxy")

	flag.StringVar(&cfg.Admin.Email, "admin-email", os.Getenv("ADMIN_EMAIL"), "Email of the bootstrap staff user")
	flag.StringVar(&cfg.Admin.Password, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Password of the bootstrap staff user")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector gRPC endpoint")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	if err := cfg.validate(); err != nil {
		return err
	}

	if cfg.CORS.TrustedOrigins == nil {
		cfg.CORS.TrustedOrigins = strings.Fields(os.Getenv("CORS_TRUSTED_ORIGINS"))
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if cfg.DB.Migrate {
		err := MigrateUp(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		NewSessionManager(redisClient),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		newImageStore(cfg.Media),
		NewPostgresRepositories(db),
	)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	err = app.ensureAdmin(context.Background())
	if err != nil {
		return err
	}

	return app.run()
}

func (cfg Config) validate() error {
	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret must be provided")
	}

	// Windows are keyed by whole seconds.
	if cfg.Limiter.Enabled && cfg.Limiter.Window < time.Second {
		return errors.New("limiter window must be at least one second")
	}

	return nil
}

func newImageStore(cfg MediaConfig) *storage.FileImageStore {
	store := storage.NewFileImageStore(cfg.Root, cfg.URL)
	if cfg.MaxPixels > 0 {
		store.MaxPixels = cfg.MaxPixels
	}

	return store
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// MigrateUp applies every pending migration embedded in the binary.
func MigrateUp(dsn string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)

		app.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
