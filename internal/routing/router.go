package routing

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/neobeach/core/internal/errors"
)

// Mountable is what a Server requires of a bound controller.
type Mountable interface {
	Name() string
	RouteCount() int
	Check(prefix string) error
	Compile(r chi.Router, prefix string) (int, error)
}

// Group is what a Server requires of a router.
type Group interface {
	Name() string
	Bindings() []Binding
}

var (
	_ Mountable = (*Controller)(nil)
	_ Group     = (*Router)(nil)
)

// Binding places a controller under a path behind its own middleware.
// Controller is checked for the Mountable capability only when mounted.
type Binding struct {
	Path        string       `validate:"routepath"`
	Controller  any          `validate:"-"`
	Middlewares []Middleware `validate:"dive,required"`
}

// Router owns a named, ordered list of bindings.
type Router struct {
	name     string
	logger   *slog.Logger
	bindings []Binding
}

// NewRouter creates an empty router. A nil logger discards output.
func NewRouter(name string, logger *slog.Logger) (*Router, error) {
	if name == "" {
		return nil, apperrors.NewValidationError(apperrors.KindInvalidName, name, "", "router name is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{name: name, logger: logger.With("router", name)}, nil
}

// Name returns the router name.
func (r *Router) Name() string { return r.name }

// Add binds controller under path. Validation failures leave the router
// unchanged.
func (r *Router) Add(path string, controller any, mws ...Middleware) error {
	b := Binding{Path: path, Controller: controller, Middlewares: mws}
	if err := check(r.name, path, b); err != nil {
		return err
	}

	b.Middlewares = make([]Middleware, len(mws))
	copy(b.Middlewares, mws)

	r.bindings = append(r.bindings, b)
	r.logger.Debug("controller bound", "path", path, "middlewares", len(mws))
	return nil
}

// Bindings returns a copy of the bindings in declaration order.
func (r *Router) Bindings() []Binding {
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// RouteCount sums the routes of every bound controller.
func (r *Router) RouteCount() int {
	total := 0
	for _, b := range r.bindings {
		if m, ok := b.Controller.(Mountable); ok && !isNil(m) {
			total += m.RouteCount()
		}
	}
	return total
}
