package middleware

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/neobeach/core/internal/errors"
)

// FailureFunc observes every unhandled failure after it has been answered.
type FailureFunc func(r *http.Request, cause any)

// reporter answers a failure on behalf of the closest Recoverer.
type reporter func(w http.ResponseWriter, r *http.Request, cause any, stack []byte, written bool)

type reporterKey struct{}

// Recoverer turns panics, and errors passed to ReportFailure, into a logged
// 500 problem response, then calls onFailure.
func Recoverer(eh *apperrors.ErrorHandler, onFailure FailureFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			report := reporter(func(w http.ResponseWriter, r *http.Request, cause any, stack []byte, written bool) {
				eh.HandleFailure(w, r, cause, stack, written || ww.Status() != 0)
				if onFailure != nil {
					onFailure(r, cause)
				}
			})
			r = r.WithContext(context.WithValue(r.Context(), reporterKey{}, report))

			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					report(ww, r, rvr, debug.Stack(), false)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// ReportFailure hands an error returned by a handler to the enclosing
// Recoverer. Without one, a bare 500 is written unless the handler already
// wrote.
func ReportFailure(w http.ResponseWriter, r *http.Request, err error, written bool) {
	if report, ok := r.Context().Value(reporterKey{}).(reporter); ok {
		report(w, r, err, debug.Stack(), written)
		return
	}
	if !written {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
