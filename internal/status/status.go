// Package status holds the catalog of application status codes placed in the
// JSON response envelope.
package status

import (
	"sort"

	"github.com/neobeach/core/internal/errors"
)

// Status is the envelope member describing the outcome of a request.
type Status struct {
	Code    int    `json:"code" xml:"code"`
	Message string `json:"message" xml:"message"`
}

// Application status codes
const (
	Success   = 1000
	Created   = 1001
	Updated   = 1002
	Deleted   = 1003
	NoContent = 1004

	ValidationFailed = 2000
	MissingParameter = 2001
	InvalidParameter = 2002

	AuthenticationRequired = 3000
	InvalidCredentials     = 3001
	TokenExpired           = 3002
	AccessDenied           = 3003

	NotFound = 4000
	Conflict = 4001

	InternalError      = 5000
	ServiceUnavailable = 5001
	DatabaseError      = 5002
)

var defaultMessages = map[int]string{
	Success:   "Request completed",
	Created:   "Resource created",
	Updated:   "Resource updated",
	Deleted:   "Resource deleted",
	NoContent: "Nothing to return",

	ValidationFailed: "Validation failed",
	MissingParameter: "Missing required parameter",
	InvalidParameter: "Invalid parameter value",

	AuthenticationRequired: "Authentication required",
	InvalidCredentials:     "Invalid credentials",
	TokenExpired:           "Token expired",
	AccessDenied:           "Access denied",

	NotFound: "Resource not found",
	Conflict: "Resource conflict",

	InternalError:      "Internal error",
	ServiceUnavailable: "Service unavailable",
	DatabaseError:      "Database error",
}

// Catalog is a closed, read-only mapping from code to message. The zero
// value is an empty catalog.
type Catalog struct {
	messages map[int]string
}

var defaultCatalog = New(defaultMessages)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// New copies messages into a new catalog.
func New(messages map[int]string) *Catalog {
	c := &Catalog{messages: make(map[int]string, len(messages))}
	for code, msg := range messages {
		c.messages[code] = msg
	}
	return c
}

// Lookup resolves code. The message is blanked unless reveal is set; an
// unknown code fails regardless of reveal.
func (c *Catalog) Lookup(code int, reveal bool) (Status, error) {
	msg, ok := c.messages[code]
	if !ok {
		return Status{}, &errors.StatusCodeError{Code: code}
	}
	if !reveal {
		msg = ""
	}
	return Status{Code: code, Message: msg}, nil
}

// Has reports whether code is defined.
func (c *Catalog) Has(code int) bool {
	_, ok := c.messages[code]
	return ok
}

// Codes returns the defined codes in ascending order.
func (c *Catalog) Codes() []int {
	codes := make([]int, 0, len(c.messages))
	for code := range c.messages {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
