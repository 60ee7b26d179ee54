package routing

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/response"
	"github.com/neobeach/core/internal/shared/testutil"
)

// tagMiddleware appends name to the X-Trail request header, so handlers can
// observe the order middleware ran in.
func tagMiddleware(name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Add("X-Trail", name)
			next.ServeHTTP(w, r)
		})
	}
}

func trailHandler(res *response.Response, r *http.Request) error {
	res.Text(strings.Join(r.Header.Values("X-Trail"), ","))
	return nil
}

func newController(t *testing.T, name string) (*Controller, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	c, err := NewController(name, logger)
	require.NoError(t, err)
	return c, logs
}

func countRoutes(t *testing.T, r chi.Routes) int {
	t.Helper()
	n := 0
	require.NoError(t, chi.Walk(r, func(string, string, http.Handler, ...func(http.Handler) http.Handler) error {
		n++
		return nil
	}))
	return n
}

func TestNewController_RequiresName(t *testing.T) {
	_, err := NewController("", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidName)
}

func TestController_EveryMethodDispatches(t *testing.T) {
	adders := map[Method]func(*Controller, string, HandlerFunc, ...Middleware) error{
		GET:     (*Controller).Get,
		POST:    (*Controller).Post,
		PUT:     (*Controller).Put,
		PATCH:   (*Controller).Patch,
		DELETE:  (*Controller).Delete,
		COPY:    (*Controller).Copy,
		HEAD:    (*Controller).Head,
		OPTIONS: (*Controller).Options,
		PURGE:   (*Controller).Purge,
		LOCK:    (*Controller).Lock,
		UNLOCK:  (*Controller).Unlock,
	}
	require.Len(t, adders, len(Methods))

	for _, m := range Methods {
		t.Run(m.String(), func(t *testing.T) {
			c, _ := newController(t, "items")

			var got *response.Response
			handler := func(res *response.Response, r *http.Request) error {
				got = res
				res.Status(http.StatusAccepted)
				return nil
			}
			require.NoError(t, adders[m](c, "/items/{id}", handler, tagMiddleware("a"), tagMiddleware("b")))

			h, err := c.Handler()
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(m.String(), "/items/7", nil)
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusAccepted, rec.Code)
			require.NotNil(t, got, "handler receives the response facade")
			assert.True(t, got.Written())
			assert.Equal(t, []string{"a", "b"}, req.Header.Values("X-Trail"))

			// Only the declared method is routed.
			other := http.MethodGet
			if m == GET {
				other = http.MethodPost
			}
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(other, "/items/7", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestController_MiddlewareOrder(t *testing.T) {
	c, _ := newController(t, "users")
	require.NoError(t, c.Get("/", trailHandler, tagMiddleware("1"), tagMiddleware("2"), tagMiddleware("3")))
	require.NoError(t, c.Get("/plain", trailHandler))

	h, err := c.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "1,2,3", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, "", rec.Body.String(), "middleware is scoped to its own route")
}

func TestController_HaltingMiddleware(t *testing.T) {
	c, _ := newController(t, "admin")
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	called := false
	require.NoError(t, c.Delete("/", func(res *response.Response, r *http.Request) error {
		called = true
		return nil
	}, deny))

	h, err := c.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestController_AddValidation(t *testing.T) {
	ok := func(*response.Response, *http.Request) error { return nil }

	tests := []struct {
		name    string
		method  Method
		path    string
		handler HandlerFunc
		mws     []Middleware
		want    error
	}{
		{"empty path", GET, "", ok, nil, apperrors.ErrInvalidPath},
		{"blank path", GET, "   ", ok, nil, apperrors.ErrInvalidPath},
		{"relative path", GET, "users", ok, nil, apperrors.ErrInvalidPath},
		{"padded path", GET, " /users", ok, nil, apperrors.ErrInvalidPath},
		{"nil middleware", POST, "/users", ok, []Middleware{tagMiddleware("a"), nil}, apperrors.ErrInvalidMiddlewareList},
		{"nil handler", PUT, "/users", nil, nil, apperrors.ErrInvalidHandler},
		{"zero method", Method(0), "/users", ok, nil, apperrors.ErrUnsupportedMethod},
		{"out of range method", Method(99), "/users", ok, nil, apperrors.ErrUnsupportedMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, "users")
			require.NoError(t, c.Get("/existing", ok))

			err := c.Add(tt.method, tt.path, tt.handler, tt.mws...)

			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.want), "got %v", err)

			var ve *apperrors.ValidationError
			require.True(t, stderrors.As(err, &ve))
			assert.Equal(t, "users", ve.Owner)

			assert.Equal(t, 1, c.RouteCount(), "failed add must not mutate the route list")
		})
	}
}

func TestController_PathCheckedBeforeHandler(t *testing.T) {
	c, _ := newController(t, "users")
	err := c.Get("", nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)
}

func TestController_RoutesAreCopies(t *testing.T) {
	c, _ := newController(t, "users")
	mws := []Middleware{tagMiddleware("a")}
	require.NoError(t, c.Get("/", trailHandler, mws...))

	mws[0] = nil
	routes := c.Routes()
	require.Len(t, routes, 1)
	assert.NotNil(t, routes[0].Middlewares[0])

	routes[0].Path = "/mutated"
	assert.Equal(t, "/", c.Routes()[0].Path)
}

func TestController_CompileIsIdempotent(t *testing.T) {
	c, _ := newController(t, "users")
	require.NoError(t, c.Get("/", trailHandler))
	require.NoError(t, c.Post("/", trailHandler))
	require.NoError(t, c.Get("/{id}", trailHandler))

	first, err := c.Handler()
	require.NoError(t, err)
	second, err := c.Handler()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 3, countRoutes(t, first.(chi.Routes)))

	mux := chi.NewRouter()
	n1, err := c.Compile(mux, "/users")
	require.NoError(t, err)
	n2, err := c.Compile(mux, "/users")
	require.NoError(t, err)

	assert.Equal(t, 3, n1)
	assert.Equal(t, n1, n2)
	assert.Equal(t, 3, countRoutes(t, mux))
}

func TestController_SealedAfterCompile(t *testing.T) {
	c, _ := newController(t, "users")
	require.NoError(t, c.Get("/", trailHandler))

	_, err := c.Handler()
	require.NoError(t, err)

	err = c.Get("/late", trailHandler)
	assert.ErrorIs(t, err, apperrors.ErrControllerCompiled)
	assert.Equal(t, 1, c.RouteCount())
}

func TestController_CompileWarnsWhenEmpty(t *testing.T) {
	c, logs := newController(t, "empty")

	n, err := c.Compile(chi.NewRouter(), "/empty")
	require.NoError(t, err)
	assert.Zero(t, n)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "controller has no routes")
	testutil.AssertLogAttr(t, logs, "controller", "empty")
}

func TestController_InvalidPatternRegistersNothing(t *testing.T) {
	c, _ := newController(t, "users")
	require.NoError(t, c.Get("/ok", trailHandler))
	require.NoError(t, c.Get("/{id", trailHandler))

	mux := chi.NewRouter()
	_, err := c.Compile(mux, "/")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)
	assert.Zero(t, countRoutes(t, mux))

	assert.ErrorIs(t, c.Check("/"), apperrors.ErrInvalidPath)
}

func TestController_PrefixedCompile(t *testing.T) {
	c, _ := newController(t, "users")
	require.NoError(t, c.Get("/", trailHandler))
	require.NoError(t, c.Get("/{id}", func(res *response.Response, r *http.Request) error {
		res.Text("user " + chi.URLParam(r, "id"))
		return nil
	}))

	mux := chi.NewRouter()
	_, err := c.Compile(mux, "/api/users")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	assert.Equal(t, "user 42", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestController_DuplicateRouteDoesNotPanic(t *testing.T) {
	c, _ := newController(t, "dup")
	require.NoError(t, c.Get("/same", trailHandler))
	require.NoError(t, c.Get("/same", trailHandler))
	assert.Equal(t, 2, c.RouteCount())

	assert.NotPanics(t, func() {
		h, err := c.Handler()
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/same", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandlerFunc_ErrorWithoutRecoverer(t *testing.T) {
	h := HandlerFunc(func(res *response.Response, r *http.Request) error {
		return res.JSON(424242, nil)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
