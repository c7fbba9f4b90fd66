package sysinfo

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
)

type recordingLogger struct{ warnings int }

func (l *recordingLogger) Warn(string, ...any) { l.warnings++ }

func TestMemoryProbe_Host(t *testing.T) {
	p := NewMemoryProbe(nil)

	assert.Positive(t, p.FreeMemory())
}

func TestMemoryProbe_ReportsAvailable(t *testing.T) {
	p := NewMemoryProbe(nil)
	p.read = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 4096, Available: 1024, Free: 512}, nil
	}

	assert.Equal(t, uint64(1024), p.FreeMemory())
}

func TestMemoryProbe_ErrorReportsZero(t *testing.T) {
	logger := &recordingLogger{}
	p := NewMemoryProbe(logger)
	p.read = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("procfs unavailable")
	}

	assert.Zero(t, p.FreeMemory())
	assert.Equal(t, 1, logger.warnings)
}
