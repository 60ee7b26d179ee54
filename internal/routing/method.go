package routing

import (
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Method is one of the HTTP methods a Controller can bind.
type Method uint8

// The zero value is not a method.
const (
	GET Method = iota + 1
	POST
	PUT
	PATCH
	DELETE
	COPY
	HEAD
	OPTIONS
	PURGE
	LOCK
	UNLOCK
)

// Methods lists every supported method in declaration order.
var Methods = []Method{GET, POST, PUT, PATCH, DELETE, COPY, HEAD, OPTIONS, PURGE, LOCK, UNLOCK}

var methodNames = map[Method]string{
	GET:     "GET",
	POST:    "POST",
	PUT:     "PUT",
	PATCH:   "PATCH",
	DELETE:  "DELETE",
	COPY:    "COPY",
	HEAD:    "HEAD",
	OPTIONS: "OPTIONS",
	PURGE:   "PURGE",
	LOCK:    "LOCK",
	UNLOCK:  "UNLOCK",
}

func init() {
	// chi only knows the RFC 7231 methods out of the box.
	for _, m := range []Method{COPY, PURGE, LOCK, UNLOCK} {
		chi.RegisterMethod(m.String())
	}
}

// String returns the wire name, or "Method(n)" for values outside the set.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is in the supported set.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseMethod resolves a method name case-insensitively.
func ParseMethod(s string) (Method, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for m, name := range methodNames {
		if name == s {
			return m, true
		}
	}
	return 0, false
}
