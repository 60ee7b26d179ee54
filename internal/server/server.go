// Package server owns the top-level dispatch tree. A Server is assembled
// once at startup: the engine's fixed pre-mount chain is installed by New,
// then application middleware and routers are mounted in declaration order,
// and finally Run serves the tree until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/neobeach/core/internal/config"
	apperrors "github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/infrastructure"
	"github.com/neobeach/core/internal/middleware"
	"github.com/neobeach/core/internal/response"
	"github.com/neobeach/core/internal/routing"
	"github.com/neobeach/core/internal/services"
	"github.com/neobeach/core/internal/status"
	handlers "github.com/neobeach/core/internal/transport/http"
)

// FailurePolicy decides what an unhandled handler failure does to the
// process.
type FailurePolicy int

const (
	// FailFast answers the failing request, then stops the server so Run
	// returns ErrUnhandledFailure.
	FailFast FailurePolicy = iota
	// Recover answers the failing request and keeps serving.
	Recover
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case Recover:
		return "recover"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// Option configures a Server.
type Option func(*Server)

// WithFailurePolicy sets the unhandled failure policy. The default is
// FailFast.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(s *Server) { s.policy = p }
}

// WithFatal replaces the hook MustLoadRouters calls on a mount failure. The
// default is os.Exit.
func WithFatal(fatal func(code int)) Option {
	return func(s *Server) { s.fatal = fatal }
}

// WithCatalog replaces the default status catalog used by Response.JSON.
// A nil catalog is ignored.
func WithCatalog(c *status.Catalog) Option {
	return func(s *Server) {
		if c != nil {
			s.settings.Catalog = c
		}
	}
}

// WithProviders attaches OpenTelemetry providers. Without it the server
// uses no-op providers.
func WithProviders(p *infrastructure.OTelProviders) Option {
	return func(s *Server) { s.providers = p }
}

// WithStripSlashes makes "/users/" match the route "/users".
func WithStripSlashes() Option {
	return func(s *Server) { s.stripSlashes = true }
}

// WithStartTime sets the instant the health report measures uptime from.
func WithStartTime(t time.Time) Option {
	return func(s *Server) { s.started = t }
}

// RouteInfo is one compiled endpoint.
type RouteInfo struct {
	Method  string
	Pattern string
}

// Server is the composition root of the dispatch tree.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	root     *chi.Mux
	chain    []routing.Middleware
	settings *response.Settings
	params   map[string]any

	errors    *apperrors.ErrorHandler
	health    *services.HealthService
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.EngineMetrics

	policy       FailurePolicy
	fatal        func(code int)
	failures     chan error
	stripSlashes bool
	started      time.Time

	running atomic.Bool
	routes  int
}

// New creates a server and installs the pre-mount chain: the engine header
// stamp, the load-balancer probe, the health endpoints, request IDs,
// response settings, access logging, failure recovery and tracing. Nothing
// mounted later can run ahead of it.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "server")),
		root:   chi.NewRouter(),
		settings: &response.Settings{
			Catalog: status.Default(),
			Reveal:  cfg.IsDevelopment(),
			Logger:  logger,
		},
		params:   make(map[string]any),
		errors:   apperrors.NewErrorHandler(logger, cfg.IsDevelopment()),
		policy:   FailFast,
		fatal:    os.Exit,
		failures: make(chan error, 1),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.providers == nil {
		s.providers = infrastructure.NoopProviders(logger)
	}
	metrics, err := infrastructure.CreateEngineMetrics(s.providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine metrics: %w", err)
	}
	s.metrics = metrics

	s.health = services.NewHealthService(config.EngineVersion, s.started, logger)
	s.premount()

	s.logger.Debug("server created",
		slog.String("failure_policy", s.policy.String()),
		slog.Bool("reveal_status_messages", s.settings.Reveal))
	return s, nil
}

func (s *Server) premount() {
	s.root.Use(
		middleware.HeaderStamp(config.EngineName, config.EngineVersion),
		middleware.Probe(s.cfg.Health.ProbeUserAgents),
		middleware.RequestID,
		chimw.RealIP,
	)
	if s.stripSlashes {
		s.root.Use(chimw.StripSlashes)
	}
	s.root.Use(
		middleware.Inject(s.settings, s.params),
		middleware.StructuredLogger(s.logger),
		middleware.Recoverer(s.errors, s.onFailure),
		middleware.NewOTelMiddleware(s.providers.Tracer, s.metrics).Handler,
	)

	// chi only assembles the Use chain once the first route exists, so the
	// health endpoints are real routes. They are bound on the root and never
	// see the application chain.
	health := handlers.NewHealthHandler(s.health, s.logger)
	healthPath := s.cfg.Health.Path
	readyPath := routing.JoinPath(healthPath, "/ready")
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		s.root.Method(method, healthPath, http.HandlerFunc(health.Health))
		s.root.Method(method, readyPath, http.HandlerFunc(health.Ready))
	}

	s.wrapFallbacks()
}

// wrapFallbacks puts the 404 and 405 answers behind the current
// application chain.
func (s *Server) wrapFallbacks() {
	chain := chi.Chain(s.chain...)
	s.root.NotFound(chain.HandlerFunc(s.errors.NotFound).ServeHTTP)
	s.root.MethodNotAllowed(chain.HandlerFunc(s.errors.MethodNotAllowed).ServeHTTP)
}

// onFailure runs after the recoverer has answered a failed request.
func (s *Server) onFailure(r *http.Request, cause any) {
	s.metrics.UnhandledFailures.Add(r.Context(), 1,
		metric.WithAttributes(attribute.String("policy", s.policy.String())))

	if s.policy != FailFast {
		return
	}
	select {
	case s.failures <- fmt.Errorf("%w: %s %s: %v", apperrors.ErrUnhandledFailure, r.Method, r.URL.Path, cause):
	default:
		// A shutdown is already pending.
	}
}

// Health returns the service behind the health endpoints, so applications
// can register readiness checks.
func (s *Server) Health() *services.HealthService { return s.health }

// Handler returns the dispatch tree.
func (s *Server) Handler() http.Handler { return s.root }

// LoadMiddlewares mounts mws, in order, ahead of everything mounted after
// this call. Unmatched requests answered with 404 or 405 run behind every
// middleware loaded so far.
func (s *Server) LoadMiddlewares(mws ...routing.Middleware) error {
	if s.running.Load() {
		return apperrors.ErrServerRunning
	}
	for i, mw := range mws {
		if mw == nil {
			return apperrors.NewValidationError(apperrors.KindInvalidMiddlewareList, "server", "",
				fmt.Sprintf("middleware %d is nil", i))
		}
	}

	s.chain = append(s.chain, mws...)
	s.wrapFallbacks()
	s.logger.Info("middlewares mounted",
		slog.Int("count", len(mws)),
		slog.Int("total", len(s.chain)))
	return nil
}

type mountPlan struct {
	group  routing.Group
	mounts []mountStep
}

type mountStep struct {
	binding routing.Binding
	target  routing.Mountable
}

// LoadRouters mounts each router, in order, behind the middleware loaded so
// far. Every router and binding is checked before anything is mounted, so a
// failure leaves the dispatch tree untouched. Failures are *errors.MountError
// wrapping ErrNotARouter, ErrNotAController or a validation error.
func (s *Server) LoadRouters(routers ...any) error {
	if s.running.Load() {
		return apperrors.ErrServerRunning
	}

	plans := make([]mountPlan, 0, len(routers))
	for _, v := range routers {
		plan, err := s.plan(v)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
	}

	ctx := context.Background()
	for _, plan := range plans {
		name := plan.group.Name()
		if len(plan.mounts) == 0 {
			s.logger.Warn("router has no bindings", slog.String("router", name))
		}

		routes := 0
		for i, step := range plan.mounts {
			mws := make([]routing.Middleware, 0, len(s.chain)+len(step.binding.Middlewares))
			mws = append(mws, s.chain...)
			mws = append(mws, step.binding.Middlewares...)

			n, err := step.target.Compile(s.root.With(mws...), step.binding.Path)
			if err != nil {
				return apperrors.NewMountError(name, i, step.binding.Path, err)
			}
			routes += n
		}

		s.routes += routes
		s.metrics.RoutesMounted.Add(ctx, int64(routes),
			metric.WithAttributes(attribute.String("router", name)))
		s.logger.Info("router mounted",
			slog.String("router", name),
			slog.Int("bindings", len(plan.mounts)),
			slog.Int("routes", routes))
	}
	return nil
}

func (s *Server) plan(v any) (mountPlan, error) {
	g, ok := routing.AsGroup(v)
	if !ok {
		return mountPlan{}, apperrors.NewMountError(fmt.Sprintf("%T", v), -1, "", apperrors.ErrNotARouter)
	}

	bindings := g.Bindings()
	plan := mountPlan{group: g, mounts: make([]mountStep, 0, len(bindings))}
	for i, b := range bindings {
		m, ok := routing.AsMountable(b.Controller)
		if !ok {
			return mountPlan{}, apperrors.NewMountError(g.Name(), i, b.Path,
				fmt.Errorf("%w: %T", apperrors.ErrNotAController, b.Controller))
		}
		for _, mw := range b.Middlewares {
			if mw == nil {
				return mountPlan{}, apperrors.NewMountError(g.Name(), i, b.Path,
					apperrors.NewValidationError(apperrors.KindInvalidMiddlewareList, g.Name(), b.Path, "binding middleware is nil"))
			}
		}
		if err := m.Check(b.Path); err != nil {
			return mountPlan{}, apperrors.NewMountError(g.Name(), i, b.Path, err)
		}
		plan.mounts = append(plan.mounts, mountStep{binding: b, target: m})
	}
	return plan, nil
}

// MustLoadRouters is LoadRouters for process entry points: a mount failure
// is logged and ends the process through the fatal hook.
func (s *Server) MustLoadRouters(routers ...any) {
	if err := s.LoadRouters(routers...); err != nil {
		s.logger.Error("failed to mount routers", slog.String("error", err.Error()))
		s.fatal(1)
	}
}

// RouteCount returns the number of routes mounted through LoadRouters.
func (s *Server) RouteCount() int { return s.routes }

// Routes lists every endpoint in the dispatch tree, sorted by pattern then
// method.
func (s *Server) Routes() ([]RouteInfo, error) {
	var out []RouteInfo
	err := chi.Walk(s.root, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, RouteInfo{Method: method, Pattern: route})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed walking routes: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}
