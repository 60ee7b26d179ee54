package middleware

import (
	"context"
	"net/http"

	"github.com/neobeach/core/internal/response"
)

type paramsKey struct{}

// Inject makes the response settings and the application parameters
// available to every handler behind it. params must not be mutated once
// requests are served.
func Inject(settings *response.Settings, params map[string]any) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := response.WithSettings(r.Context(), settings)
			ctx = context.WithValue(ctx, paramsKey{}, params)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Param reads an application parameter set on the server.
func Param(ctx context.Context, key string) (any, bool) {
	params, ok := ctx.Value(paramsKey{}).(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := params[key]
	return v, ok
}
