package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neobeach/core/internal/infrastructure"
)

// Health status values
const (
	StatusUp       = "UP"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// DefaultCheckTimeout bounds a single readiness check.
const DefaultCheckTimeout = 2 * time.Second

// Checker is a dependency that can report whether it is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// HealthReport is the fixed body of the health endpoint.
type HealthReport struct {
	Status string                     `json:"status"`
	Host   string                     `json:"host"`
	Core   string                     `json:"core"`
	Load   infrastructure.CPUUsage    `json:"load"`
	Mem    infrastructure.MemoryUsage `json:"mem"`
	Uptime float64                    `json:"uptime"` // seconds
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
	Duration float64 `json:"duration_ms"`
}

// ReadinessReport aggregates every registered check.
type ReadinessReport struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Ready reports whether every check passed.
func (r ReadinessReport) Ready() bool { return r.Status == StatusReady }

// HealthService reports process vitals and readiness.
type HealthService struct {
	version string
	sampler *infrastructure.VitalsSampler
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	names  []string
	checks map[string]Checker
}

// NewHealthService creates a health service measuring uptime from start.
func NewHealthService(version string, start time.Time, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HealthService{
		version: version,
		sampler: infrastructure.NewVitalsSampler(start),
		timeout: DefaultCheckTimeout,
		logger:  logger.With(slog.String("service", "health")),
		checks:  make(map[string]Checker),
	}
}

// SetCheckTimeout changes the per-check deadline.
func (hs *HealthService) SetCheckTimeout(d time.Duration) {
	if d > 0 {
		hs.timeout = d
	}
}

// AddCheck registers a named readiness check. Checks run in registration
// order.
func (hs *HealthService) AddCheck(name string, c Checker) error {
	if name == "" {
		return ErrCheckNameRequired
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if _, ok := hs.checks[name]; ok {
		return fmt.Errorf("%w: %s", ErrCheckExists, name)
	}
	hs.checks[name] = c
	hs.names = append(hs.names, name)
	hs.logger.Debug("readiness check registered", slog.String("check", name))
	return nil
}

// Health samples the process. It never fails: a process able to answer is
// up.
func (hs *HealthService) Health(ctx context.Context) HealthReport {
	v := hs.sampler.Sample()
	infrastructure.Trace(ctx, hs.logger, "health sampled",
		slog.Uint64("rss", v.Memory.RSS),
		slog.Duration("uptime", v.Uptime))

	return HealthReport{
		Status: StatusUp,
		Host:   v.Host,
		Core:   hs.version,
		Load:   v.CPU,
		Mem:    v.Memory,
		Uptime: v.Uptime.Seconds(),
	}
}

// Readiness runs every registered check, each bounded by the check timeout.
func (hs *HealthService) Readiness(ctx context.Context) ReadinessReport {
	hs.mu.RLock()
	names := append([]string(nil), hs.names...)
	checks := make([]Checker, len(names))
	for i, name := range names {
		checks[i] = hs.checks[name]
	}
	hs.mu.RUnlock()

	report := ReadinessReport{
		Status:    StatusReady,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(names)),
	}

	for i, name := range names {
		result := hs.run(ctx, checks[i])
		if result.Status != StatusReady {
			report.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("error", result.Error))
		}
		report.Checks[name] = result
	}
	return report
}

func (hs *HealthService) run(ctx context.Context, c Checker) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, hs.timeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		return CheckResult{Status: StatusNotReady, Error: err.Error(), Duration: elapsed}
	}
	return CheckResult{Status: StatusReady, Duration: elapsed}
}
