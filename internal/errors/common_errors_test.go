package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		kind Kind
		want error
	}{
		{KindInvalidPath, ErrInvalidPath},
		{KindInvalidMiddlewareList, ErrInvalidMiddlewareList},
		{KindInvalidHandler, ErrInvalidHandler},
		{KindUnsupportedMethod, ErrUnsupportedMethod},
		{KindInvalidName, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewValidationError(tt.kind, "users", "/x", "bad"))

			assert.True(t, errors.Is(err, tt.want))
			assert.True(t, IsValidation(err))
			assert.False(t, IsMount(err))

			for _, other := range tests {
				if other.kind != tt.kind {
					assert.False(t, errors.Is(err, other.want), "%s must not match %s", tt.kind, other.kind)
				}
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	withPath := NewValidationError(KindInvalidPath, "users", " ", "path must start with /")
	assert.Equal(t, `[INVALID_PATH] users: path must start with / (path " ")`, withPath.Error())

	noPath := NewValidationError(KindInvalidName, "", "", "name is required")
	assert.Equal(t, "[INVALID_NAME] : name is required", noPath.Error())
}

func TestMountError(t *testing.T) {
	err := NewMountError("api", 2, "/users", ErrNotAController)
	assert.True(t, errors.Is(err, ErrNotAController))
	assert.True(t, IsMount(err))
	assert.Contains(t, err.Error(), `"api" binding 2 (/users)`)

	routerErr := NewMountError("<nil>", -1, "", ErrNotARouter)
	assert.True(t, errors.Is(routerErr, ErrNotARouter))
	assert.NotContains(t, routerErr.Error(), "binding")

	var me *MountError
	require.True(t, errors.As(fmt.Errorf("load: %w", err), &me))
	assert.Equal(t, 2, me.Index)
}

func TestStatusCodeError(t *testing.T) {
	err := error(&StatusCodeError{Code: 424242})
	assert.True(t, errors.Is(err, ErrUnknownStatusCode))
	assert.Equal(t, "unknown status code: 424242", err.Error())
}
