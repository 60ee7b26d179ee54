package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod(t *testing.T) {
	assert.Len(t, Methods, 11)
	for _, m := range Methods {
		assert.True(t, m.Valid(), m.String())

		parsed, ok := ParseMethod(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, parsed)
	}

	var zero Method
	assert.False(t, zero.Valid())
	assert.Equal(t, "Method(0)", zero.String())
	assert.False(t, Method(42).Valid())

	m, ok := ParseMethod(" purge ")
	assert.True(t, ok)
	assert.Equal(t, PURGE, m)

	_, ok = ParseMethod("TRACE")
	assert.False(t, ok)
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"/", "/", "/"},
		{"", "/", "/"},
		{"/", "/users", "/users"},
		{"/api", "/", "/api"},
		{"/api", "/users", "/api/users"},
		{"/api/", "/users", "/api/users"},
		{"/api", "/users/{id}", "/api/users/{id}"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"+"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPath(tt.prefix, tt.path))
		})
	}
}
