package routing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/middleware"
	"github.com/neobeach/core/internal/response"
)

// HandlerFunc answers a request through the response facade. A returned
// error is an unhandled failure.
type HandlerFunc func(res *response.Response, r *http.Request) error

// Middleware wraps the rest of the chain. Not calling next halts it.
type Middleware = func(http.Handler) http.Handler

// RouteEntry is one routable unit of a Controller.
type RouteEntry struct {
	Method      Method       `validate:"httpmethod"`
	Path        string       `validate:"routepath"`
	Middlewares []Middleware `validate:"dive,required"`
	Handler     HandlerFunc  `validate:"required"`
}

// ServeHTTP adapts the handler to net/http.
func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := response.New(w, r)
	if err := h(res, r); err != nil {
		middleware.ReportFailure(w, r, err, res.Written())
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("routepath", validRoutePath) //nolint:errcheck
	v.RegisterValidation("httpmethod", func(fl validator.FieldLevel) bool { //nolint:errcheck
		m, ok := fl.Field().Interface().(Method)
		return ok && m.Valid()
	})
	return v
}

// validRoutePath accepts non-blank paths starting with "/" and without
// surrounding whitespace.
func validRoutePath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return p != "" && strings.TrimSpace(p) == p && strings.HasPrefix(p, "/")
}

var fieldKinds = map[string]apperrors.Kind{
	"Method":      apperrors.KindUnsupportedMethod,
	"Path":        apperrors.KindInvalidPath,
	"Middlewares": apperrors.KindInvalidMiddlewareList,
	"Handler":     apperrors.KindInvalidHandler,
}

var kindMessages = map[apperrors.Kind]string{
	apperrors.KindUnsupportedMethod:     "method is not supported",
	apperrors.KindInvalidPath:           "path must be a non-blank string starting with /",
	apperrors.KindInvalidMiddlewareList: "middleware list contains a nil middleware",
	apperrors.KindInvalidHandler:        "handler must not be nil",
}

// check validates v and converts the first failing field into a
// *errors.ValidationError attributed to owner.
func check(owner, path string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	// dive reports "Middlewares[2]"
	field, _, _ := strings.Cut(verrs[0].StructField(), "[")
	kind, ok := fieldKinds[field]
	if !ok {
		return err
	}
	return apperrors.NewValidationError(kind, owner, path, kindMessages[kind])
}

// JoinPath places p under prefix. A "/" entry path addresses the prefix
// itself.
func JoinPath(prefix, p string) string {
	prefix = strings.TrimRight(prefix, "/")
	if p == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + p
}

// checkPattern reports whether chi accepts pattern, without touching any
// live router.
func checkPattern(pattern string) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = errors.New(strings.TrimPrefix(toString(rvr), "chi: "))
		}
	}()
	chi.NewRouter().Method(http.MethodGet, pattern, http.NotFoundHandler())
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	default:
		return "invalid route pattern"
	}
}
