package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/neobeach/core/internal/infrastructure"
)

// Problem types following RFC 7807
const (
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnknownStatus    = "/errors/unknown-status-code"
)

// ErrorHandler renders engine-level failures as problem documents.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds panic values
// and stack traces to 500 responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleFailure logs an unhandled handler failure and writes a 500 problem
// document. cause is either a returned error or a recovered panic value.
// Nothing is written when written is true.
func (h *ErrorHandler) HandleFailure(w http.ResponseWriter, r *http.Request, cause interface{}, stack []byte, written bool) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	h.logger.ErrorContext(ctx, "unhandled failure",
		slog.Any("cause", cause),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(stack)),
	)

	if written {
		return
	}

	var problem *ProblemDetails
	if err, ok := cause.(error); ok {
		problem = h.ErrorToProblem(err, r)
	} else {
		problem = NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred",
			r.URL.Path,
		)
	}
	problem.WithExtension("trace_id", traceID)

	if h.includeStack {
		problem.WithExtension("cause", fmt.Sprintf("%v", cause))
		problem.WithExtension("stack", string(stack))
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var sce *StatusCodeError
	if errors.As(err, &sce) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeUnknownStatus,
			"Internal Server Error",
			"The handler referenced an undefined application status",
			r.URL.Path,
		).WithExtension("code", sce.Code)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	render.Render(w, r, problem)
}

// Problem writes an arbitrary problem document with the given status.
func (h *ErrorHandler) Problem(w http.ResponseWriter, r *http.Request, status int, problemType, detail string) {
	problem := NewProblemDetails(
		status,
		problemType,
		http.StatusText(status),
		detail,
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	render.Render(w, r, problem)
}
