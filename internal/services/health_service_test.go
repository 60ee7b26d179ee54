package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neobeach/core/internal/shared/testutil"
)

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestHealthService_Health(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)
	hs := NewHealthService("1.0.0", start, nil)

	report := hs.Health(context.Background())

	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, "1.0.0", report.Core)
	assert.NotEmpty(t, report.Host)
	assert.GreaterOrEqual(t, report.Uptime, 90.0)
	assert.NotZero(t, report.Mem.HeapUsed)
	assert.GreaterOrEqual(t, report.Mem.RSS, report.Mem.HeapTotal)
}

func TestHealthService_AddCheck(t *testing.T) {
	hs := NewHealthService("1.0.0", time.Now(), nil)
	ok := CheckerFunc(func(context.Context) error { return nil })

	require.NoError(t, hs.AddCheck("database", ok))
	assert.ErrorIs(t, hs.AddCheck("database", ok), ErrCheckExists)
	assert.ErrorIs(t, hs.AddCheck("", ok), ErrCheckNameRequired)
}

func TestHealthService_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		results    map[string]error
		wantStatus string
	}{
		{"no checks", nil, StatusReady},
		{"all pass", map[string]error{"database": nil, "cache": nil}, StatusReady},
		{"one fails", map[string]error{"database": errors.New("connection refused"), "cache": nil}, StatusNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", time.Now(), logger)

			mocks := make(map[string]*MockChecker)
			for name, err := range tt.results {
				m := new(MockChecker)
				m.On("Check", mock.Anything).Return(err)
				mocks[name] = m
				require.NoError(t, hs.AddCheck(name, m))
			}

			report := hs.Readiness(context.Background())

			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantStatus == StatusReady, report.Ready())
			assert.Len(t, report.Checks, len(tt.results))
			for name, err := range tt.results {
				mocks[name].AssertExpectations(t)
				if err != nil {
					assert.Equal(t, StatusNotReady, report.Checks[name].Status)
					assert.Equal(t, err.Error(), report.Checks[name].Error)
					testutil.AssertLogContains(t, logs, slog.LevelWarn, "readiness check failed")
				} else {
					assert.Equal(t, StatusReady, report.Checks[name].Status)
				}
			}
		})
	}
}

func TestHealthService_CheckTimeout(t *testing.T) {
	hs := NewHealthService("1.0.0", time.Now(), nil)
	hs.SetCheckTimeout(20 * time.Millisecond)

	require.NoError(t, hs.AddCheck("slow", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	report := hs.Readiness(context.Background())
	assert.False(t, report.Ready())
	assert.Contains(t, report.Checks["slow"].Error, context.DeadlineExceeded.Error())
}
