package response

import (
	"context"
	"log/slog"

	"github.com/neobeach/core/internal/status"
)

// Settings are the per-server values every Response reads. They are shared
// read-only by all requests.
type Settings struct {
	Catalog *status.Catalog
	// Reveal exposes catalog messages in JSON envelopes (development only).
	Reveal bool
	Views  ViewEngine
	Logger *slog.Logger
}

// DefaultSettings hides catalog messages and has no view engine.
func DefaultSettings() *Settings {
	return &Settings{
		Catalog: status.Default(),
		Logger:  slog.New(slog.DiscardHandler),
	}
}

type settingsKey struct{}

// WithSettings stores s in ctx.
func WithSettings(ctx context.Context, s *Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// SettingsFrom returns the settings stored in ctx, or DefaultSettings.
func SettingsFrom(ctx context.Context) *Settings {
	if s, ok := ctx.Value(settingsKey{}).(*Settings); ok && s != nil {
		return s
	}
	return DefaultSettings()
}
