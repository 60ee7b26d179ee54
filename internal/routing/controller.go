package routing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/infrastructure"
)

// Controller owns a named, ordered list of routes and compiles them onto a
// chi router under a path prefix. Routes are added during composition only;
// the first compilation seals the controller.
type Controller struct {
	name    string
	logger  *slog.Logger
	routes  []RouteEntry
	sealed  bool
	handler http.Handler
}

// NewController creates an empty controller. A nil logger discards output.
func NewController(name string, logger *slog.Logger) (*Controller, error) {
	if name == "" {
		return nil, apperrors.NewValidationError(apperrors.KindInvalidName, name, "", "controller name is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		name:   name,
		logger: logger.With("controller", name),
	}, nil
}

// Name returns the controller name.
func (c *Controller) Name() string { return c.name }

// RouteCount returns the number of declared routes.
func (c *Controller) RouteCount() int { return len(c.routes) }

// Routes returns a copy of the declared routes in declaration order.
func (c *Controller) Routes() []RouteEntry {
	out := make([]RouteEntry, len(c.routes))
	copy(out, c.routes)
	return out
}

// Add declares a route. Validation failures leave the controller unchanged.
func (c *Controller) Add(method Method, path string, handler HandlerFunc, mws ...Middleware) error {
	return c.AddEntry(RouteEntry{
		Method:      method,
		Path:        path,
		Middlewares: mws,
		Handler:     handler,
	})
}

// AddEntry declares a prepared route entry.
func (c *Controller) AddEntry(e RouteEntry) error {
	if c.sealed {
		return fmt.Errorf("%s %s on %q: %w", e.Method, e.Path, c.name, apperrors.ErrControllerCompiled)
	}
	if err := check(c.name, e.Path, e); err != nil {
		return err
	}

	mws := make([]Middleware, len(e.Middlewares))
	copy(mws, e.Middlewares)
	e.Middlewares = mws

	c.routes = append(c.routes, e)
	return nil
}

// Get declares a GET route.
func (c *Controller) Get(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(GET, path, h, mws...)
}

// Post declares a POST route.
func (c *Controller) Post(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(POST, path, h, mws...)
}

// Put declares a PUT route.
func (c *Controller) Put(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(PUT, path, h, mws...)
}

// Patch declares a PATCH route.
func (c *Controller) Patch(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(PATCH, path, h, mws...)
}

// Delete declares a DELETE route.
func (c *Controller) Delete(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(DELETE, path, h, mws...)
}

// Copy declares a COPY route.
func (c *Controller) Copy(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(COPY, path, h, mws...)
}

// Head declares a HEAD route.
func (c *Controller) Head(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(HEAD, path, h, mws...)
}

// Options declares an OPTIONS route.
func (c *Controller) Options(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(OPTIONS, path, h, mws...)
}

// Purge declares a PURGE route.
func (c *Controller) Purge(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(PURGE, path, h, mws...)
}

// Lock declares a LOCK route.
func (c *Controller) Lock(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(LOCK, path, h, mws...)
}

// Unlock declares an UNLOCK route.
func (c *Controller) Unlock(path string, h HandlerFunc, mws ...Middleware) error {
	return c.Add(UNLOCK, path, h, mws...)
}

// Check validates every route as it would be compiled under prefix, without
// registering anything.
func (c *Controller) Check(prefix string) error {
	for _, e := range c.routes {
		if err := check(c.name, e.Path, e); err != nil {
			return err
		}
		pattern := JoinPath(prefix, e.Path)
		if err := checkPattern(pattern); err != nil {
			return apperrors.NewValidationError(apperrors.KindInvalidPath, c.name, pattern, err.Error())
		}
	}
	return nil
}

// Compile registers every route on r under prefix, each behind its own
// middleware in declaration order. Nothing is registered when a route is
// invalid. Compiling again onto the same router replaces the same endpoints.
func (c *Controller) Compile(r chi.Router, prefix string) (int, error) {
	if len(c.routes) == 0 {
		c.logger.Warn("controller has no routes")
	}
	if err := c.Check(prefix); err != nil {
		return 0, err
	}

	ctx := context.Background()
	for _, e := range c.routes {
		pattern := JoinPath(prefix, e.Path)
		if err := bind(r.With(e.Middlewares...), e.Method, pattern, e.Handler); err != nil {
			return 0, apperrors.NewValidationError(apperrors.KindUnsupportedMethod, c.name, pattern, err.Error())
		}
		infrastructure.Trace(ctx, c.logger, "route bound",
			"method", e.Method.String(),
			"pattern", pattern,
			"middlewares", len(e.Middlewares))
	}

	c.sealed = true
	c.logger.Debug("controller compiled", "prefix", prefix, "routes", len(c.routes))
	return len(c.routes), nil
}

// Handler returns the controller compiled onto its own router, rooted at
// "/". The router is built once.
func (c *Controller) Handler() (http.Handler, error) {
	if c.handler != nil {
		return c.handler, nil
	}
	mux := chi.NewRouter()
	if _, err := c.Compile(mux, "/"); err != nil {
		return nil, err
	}
	c.handler = mux
	return mux, nil
}

// bind maps every Method onto its chi registration.
func bind(r chi.Router, m Method, pattern string, h http.Handler) error {
	switch m {
	case GET:
		r.Method(http.MethodGet, pattern, h)
	case POST:
		r.Method(http.MethodPost, pattern, h)
	case PUT:
		r.Method(http.MethodPut, pattern, h)
	case PATCH:
		r.Method(http.MethodPatch, pattern, h)
	case DELETE:
		r.Method(http.MethodDelete, pattern, h)
	case HEAD:
		r.Method(http.MethodHead, pattern, h)
	case OPTIONS:
		r.Method(http.MethodOptions, pattern, h)
	case COPY, PURGE, LOCK, UNLOCK:
		r.Method(m.String(), pattern, h)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedMethod, m)
	}
	return nil
}
