// Package sysinfo reports host resources for the device heartbeat.
package sysinfo

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// defaultProbeTimeout bounds a single memory read.
const defaultProbeTimeout = 500 * time.Millisecond

// Logger interface for optional logging support.
type Logger interface {
	Warn(msg string, args ...any)
}

// MemoryProbe reports available memory via gopsutil.
//
// A failed read reports zero and is logged at warn.
type MemoryProbe struct {
	timeout time.Duration
	read    func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	logger  Logger
}

// NewMemoryProbe returns a probe over the host's virtual memory statistics.
// logger may be nil.
func NewMemoryProbe(logger Logger) *MemoryProbe {
	return &MemoryProbe{
		timeout: defaultProbeTimeout,
		read:    mem.VirtualMemoryWithContext,
		logger:  logger,
	}
}

// FreeMemory returns the memory available to new allocations, in bytes.
func (p *MemoryProbe) FreeMemory() uint64 {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	stats, err := p.read(ctx)
	if err != nil || stats == nil {
		if p.logger != nil {
			p.logger.Warn("memory probe failed; reporting zero", "error", err)
		}
		return 0
	}
	return stats.Available
}
