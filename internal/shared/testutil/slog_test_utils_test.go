package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler_SharesRecordsWithDerivedLoggers(t *testing.T) {
	logger, handler := NewTestLogger(t)

	component := logger.With("component", "controller")
	component.Warn("no routes", "controller", "users")
	logger.WithGroup("mount").Info("mounted", "count", 2)

	records := handler.GetRecords()
	require.Len(t, records, 2)

	assert.Equal(t, slog.LevelWarn, records[0].Level)
	assert.Equal(t, "controller", records[0].Attrs["component"])
	assert.Equal(t, "users", records[0].Attrs["controller"])
	assert.Equal(t, int64(2), records[1].Attrs["mount.count"])

	AssertLogContains(t, handler, slog.LevelWarn, "no routes")
	AssertLogAttr(t, handler, "controller", "users")
}

func TestBufferedSlogHandler_Clear(t *testing.T) {
	logger, handler := NewTestLogger(t)
	logger.Error("boom")

	rec, ok := handler.Find("boom")
	require.True(t, ok)
	assert.Equal(t, slog.LevelError, rec.Level)

	handler.Clear()
	assert.Equal(t, 0, handler.Count())
	assert.False(t, handler.ContainsMessage("boom"))
	AssertNoErrors(t, handler)
}
