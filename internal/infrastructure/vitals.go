package infrastructure

import (
	"os"
	"runtime"
	"time"
)

// CPUUsage is process CPU time in microseconds.
type CPUUsage struct {
	User   int64 `json:"user"`
	System int64 `json:"system"`
}

// MemoryUsage is a snapshot of process memory in bytes.
type MemoryUsage struct {
	RSS          uint64 `json:"rss"`
	HeapTotal    uint64 `json:"heapTotal"`
	HeapUsed     uint64 `json:"heapUsed"`
	External     uint64 `json:"external"`
	ArrayBuffers uint64 `json:"arrayBuffers"`
}

// Vitals describes the running process.
type Vitals struct {
	Host   string
	CPU    CPUUsage
	Memory MemoryUsage
	Uptime time.Duration
}

// VitalsSampler samples process vitals relative to a start time.
type VitalsSampler struct {
	start time.Time
	host  string
	now   func() time.Time
}

// NewVitalsSampler creates a sampler measuring uptime from start
func NewVitalsSampler(start time.Time) *VitalsSampler {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return &VitalsSampler{start: start, host: host, now: time.Now}
}

// Sample reads the current vitals.
//
// Memory maps the Go runtime onto the reported shape: rss is everything
// obtained from the OS, heapTotal/heapUsed are the heap spans, external is
// non-heap runtime memory and arrayBuffers is goroutine stack in use.
func (s *VitalsSampler) Sample() Vitals {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Vitals{
		Host: s.host,
		CPU:  cpuUsage(),
		Memory: MemoryUsage{
			RSS:          ms.Sys,
			HeapTotal:    ms.HeapSys,
			HeapUsed:     ms.HeapAlloc,
			External:     ms.Sys - ms.HeapSys,
			ArrayBuffers: ms.StackInuse,
		},
		Uptime: s.now().Sub(s.start),
	}
}
