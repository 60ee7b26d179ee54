package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a construction-time validation failure.
type Kind string

const (
	KindInvalidPath           Kind = "INVALID_PATH"
	KindInvalidMiddlewareList Kind = "INVALID_MIDDLEWARE_LIST"
	KindInvalidHandler        Kind = "INVALID_HANDLER"
	KindUnsupportedMethod     Kind = "UNSUPPORTED_METHOD"
	KindInvalidName           Kind = "INVALID_NAME"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrInvalidMiddlewareList = errors.New("invalid middleware list")
	ErrInvalidHandler        = errors.New("invalid handler")
	ErrUnsupportedMethod     = errors.New("unsupported method")
	ErrInvalidName           = errors.New("invalid name")

	ErrNotARouter     = errors.New("not a router")
	ErrNotAController = errors.New("not a controller")

	ErrUnknownStatusCode = errors.New("unknown status code")
	ErrUnhandledFailure  = errors.New("unhandled failure during request processing")

	ErrControllerCompiled = errors.New("controller already compiled")
	ErrNoViewEngine       = errors.New("no view engine registered")
	ErrServerRunning      = errors.New("server already running")
)

var kindSentinels = map[Kind]error{
	KindInvalidPath:           ErrInvalidPath,
	KindInvalidMiddlewareList: ErrInvalidMiddlewareList,
	KindInvalidHandler:        ErrInvalidHandler,
	KindUnsupportedMethod:     ErrUnsupportedMethod,
	KindInvalidName:           ErrInvalidName,
}

// ValidationError is returned when a route or binding declaration is rejected.
type ValidationError struct {
	Kind    Kind
	Owner   string // controller or router name
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s (path %q)", e.Kind, e.Owner, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Owner, e.Message)
}

// Unwrap returns the sentinel matching the kind.
func (e *ValidationError) Unwrap() error {
	return kindSentinels[e.Kind]
}

// NewValidationError creates a validation error of the given kind
func NewValidationError(kind Kind, owner, path, message string) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Owner:   owner,
		Path:    path,
		Message: message,
	}
}

// MountError describes a structural failure found while mounting a router.
type MountError struct {
	Router string
	Index  int // binding index, -1 when the router itself was rejected
	Path   string
	Err    error
}

func (e *MountError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("mount router %q: %v", e.Router, e.Err)
	}
	return fmt.Sprintf("mount router %q binding %d (%s): %v", e.Router, e.Index, e.Path, e.Err)
}

func (e *MountError) Unwrap() error {
	return e.Err
}

// NewMountError creates a mount error
func NewMountError(router string, index int, path string, cause error) *MountError {
	return &MountError{Router: router, Index: index, Path: path, Err: cause}
}

// StatusCodeError reports an application status code missing from the catalog.
type StatusCodeError struct {
	Code int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnknownStatusCode, e.Code)
}

func (e *StatusCodeError) Unwrap() error {
	return ErrUnknownStatusCode
}

// IsValidation reports whether err is a construction-time validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMount reports whether err is a structural mount failure.
func IsMount(err error) bool {
	return errors.Is(err, ErrNotARouter) || errors.Is(err, ErrNotAController)
}
