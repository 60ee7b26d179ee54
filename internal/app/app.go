package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/neobeach/core/internal/config"
	"github.com/neobeach/core/internal/database"
	"github.com/neobeach/core/internal/infrastructure"
	"github.com/neobeach/core/internal/server"
)

// Application is the assembled process.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	DB            *database.DB
	Server        *server.Server

	logCloser io.Closer
}

type options struct {
	models   []database.Model
	server   []server.Option
	logger   *slog.Logger
	defaults bool
}

// Option configures NewApplication.
type Option func(*options)

// WithModels registers the models initialized when a database is configured.
func WithModels(models ...database.Model) Option {
	return func(o *options) { o.models = append(o.models, models...) }
}

// WithServerOptions passes options through to server.New.
func WithServerOptions(opts ...server.Option) Option {
	return func(o *options) { o.server = append(o.server, opts...) }
}

// WithLogger uses logger instead of building one from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithoutDefaults skips the default middleware bundle.
func WithoutDefaults() Option {
	return func(o *options) { o.defaults = false }
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	o := options{defaults: true}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application{Config: cfg}

	if o.logger != nil {
		a.Logger = o.logger
	} else {
		logger, closer, err := infrastructure.NewLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.Logger, a.logCloser = logger, closer
	}

	a.Logger.InfoContext(ctx, "application starting",
		slog.String("name", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("engine", config.EngineName+" "+config.EngineVersion),
		slog.String("environment", cfg.App.Environment))

	if err := a.initialize(ctx, o); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Application) initialize(ctx context.Context, o options) error {
	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(a.Config), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	if a.Config.Database.DSN != "" {
		db, err := database.Open(ctx, a.Config.Database, a.Logger)
		if err != nil {
			return err
		}
		a.DB = db
		if err := db.Init(ctx, o.models...); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	} else if len(o.models) > 0 {
		a.Logger.WarnContext(ctx, "models registered but no database configured",
			slog.Int("models", len(o.models)))
	}

	srvOpts := append([]server.Option{server.WithProviders(providers)}, o.server...)
	srv, err := server.New(a.Config, a.Logger, srvOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	a.Server = srv

	if a.DB != nil {
		if err := srv.Health().AddCheck("database", a.DB); err != nil {
			return err
		}
	}
	if o.defaults {
		if err := srv.UseDefaults(); err != nil {
			return fmt.Errorf("failed to load default middleware: %w", err)
		}
	}
	if a.Config.Telemetry.Metrics {
		if err := srv.MountMetrics(a.Config.Telemetry.MetricsPath); err != nil {
			return fmt.Errorf("failed to mount metrics: %w", err)
		}
	}
	return nil
}

// Run serves until the process is signalled or an unhandled failure stops
// the server, then releases every resource.
func (a *Application) Run(ctx context.Context) error {
	err := a.Server.Run(ctx)
	if closeErr := a.Close(); closeErr != nil {
		a.Logger.ErrorContext(ctx, "error releasing resources", slog.String("error", closeErr.Error()))
	}
	return err
}

// Close releases the database and the log file. It is safe to call more
// than once.
func (a *Application) Close() error {
	var errs []error
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
		a.DB = nil
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("log file close: %w", err))
		}
		a.logCloser = nil
	}
	return errors.Join(errs...)
}
