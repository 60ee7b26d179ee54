// Package shared holds helpers used by more than one package that belong to
// no single layer. Its only subpackage today is testutil, which captures
// slog output so tests can assert on the diagnostics the engine emits.
package shared
