// Package response is the content-typed facade handlers use to answer a
// request instead of touching the http.ResponseWriter directly.
package response

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/status"
)

// Envelope is the body written by JSON.
type Envelope struct {
	Status status.Status `json:"status"`
	Data   any           `json:"data"`
}

// Response wraps one request's writer. Every operation is terminal: call one
// per request.
type Response struct {
	w        http.ResponseWriter
	r        *http.Request
	settings *Settings
	written  bool
}

// New creates a facade for one request using the settings carried by r.
func New(w http.ResponseWriter, r *http.Request) *Response {
	return NewWithSettings(w, r, SettingsFrom(r.Context()))
}

// NewWithSettings creates a facade with explicit settings.
func NewWithSettings(w http.ResponseWriter, r *http.Request, s *Settings) *Response {
	if s == nil {
		s = DefaultSettings()
	}
	return &Response{w: w, r: r, settings: s}
}

// Writer exposes the underlying writer for streaming responses.
func (res *Response) Writer() http.ResponseWriter { return res.w }

// Request returns the request being answered.
func (res *Response) Request() *http.Request { return res.r }

// Header returns the response headers; set them before a terminal call.
func (res *Response) Header() http.Header { return res.w.Header() }

// Written reports whether a terminal operation has run.
func (res *Response) Written() bool { return res.written }

// Text writes body as 200 text/plain.
func (res *Response) Text(body string) {
	res.plain(http.StatusOK, body)
}

// HTML writes body as 200 text/html.
func (res *Response) HTML(body string) {
	res.written = true
	render.Status(res.r, http.StatusOK)
	render.HTML(res.w, res.r, body)
}

// XML writes body as 200 application/xml. A string is written verbatim; any
// other value is marshalled with encoding/xml.
func (res *Response) XML(body any) {
	res.written = true
	if s, ok := body.(string); ok {
		res.w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		res.w.WriteHeader(http.StatusOK)
		res.w.Write([]byte(s)) //nolint:errcheck
		return
	}
	render.Status(res.r, http.StatusOK)
	render.XML(res.w, res.r, body)
}

// JSON writes 200 with the {status, data} envelope. An undefined code is
// returned as *errors.StatusCodeError and nothing is written.
func (res *Response) JSON(code int, payload any) error {
	st, err := res.settings.Catalog.Lookup(code, res.settings.Reveal)
	if err != nil {
		return err
	}
	res.written = true
	render.Status(res.r, http.StatusOK)
	render.JSON(res.w, res.r, Envelope{Status: st, Data: payload})
	return nil
}

// Render executes view with params through the registered view engine. The
// view is buffered so a failing template writes nothing.
func (res *Response) Render(view string, params any) error {
	if res.settings.Views == nil {
		return errors.ErrNoViewEngine
	}

	var buf bytes.Buffer
	if err := res.settings.Views.Render(&buf, view, params); err != nil {
		res.settings.Logger.ErrorContext(res.r.Context(), "view render failed",
			slog.String("view", view),
			slog.String("error", err.Error()))
		return err
	}

	res.written = true
	render.Status(res.r, http.StatusOK)
	render.HTML(res.w, res.r, buf.String())
	return nil
}

// Status writes code with an empty body.
func (res *Response) Status(code int) {
	res.written = true
	res.w.WriteHeader(code)
}

// NoContent writes 204.
func (res *Response) NoContent() { res.Status(http.StatusNoContent) }

// Created writes 201 with an empty body.
func (res *Response) Created() { res.Status(http.StatusCreated) }

// BadRequest writes 400 with its reason phrase.
func (res *Response) BadRequest() { res.reason(http.StatusBadRequest) }

// Unauthorized writes 401 with its reason phrase.
func (res *Response) Unauthorized() { res.reason(http.StatusUnauthorized) }

// PaymentRequired writes 402 with its reason phrase.
func (res *Response) PaymentRequired() { res.reason(http.StatusPaymentRequired) }

// Forbidden writes 403 with its reason phrase.
func (res *Response) Forbidden() { res.reason(http.StatusForbidden) }

// NotFound writes 404 with its reason phrase.
func (res *Response) NotFound() { res.reason(http.StatusNotFound) }

// Conflict writes 409 with its reason phrase.
func (res *Response) Conflict() { res.reason(http.StatusConflict) }

// TooManyRequests writes 429 with its reason phrase.
func (res *Response) TooManyRequests() { res.reason(http.StatusTooManyRequests) }

func (res *Response) reason(code int) {
	res.plain(code, http.StatusText(code))
}

func (res *Response) plain(code int, body string) {
	res.written = true
	render.Status(res.r, code)
	render.PlainText(res.w, res.r, body)
}
