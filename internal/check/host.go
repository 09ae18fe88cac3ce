package check

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Host is a snapshot of the resources a batch runs on. Fields that could
// not be read stay zero and the cause is appended to Errors.
type Host struct {
	LogicalCPUs     int
	PhysicalCPUs    int
	TotalMemory     uint64
	AvailableMemory uint64
	DiskPath        string
	DiskFree        uint64
	Errors          []error
}

// Inspect gathers CPU, memory, and free space on the filesystem holding
// dir. An empty dir skips the disk query.
func Inspect(ctx context.Context, dir string) Host {
	var h Host

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		h.LogicalCPUs = n
	} else {
		h.Errors = append(h.Errors, fmt.Errorf("cpu: %w", err))
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		h.PhysicalCPUs = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		h.TotalMemory = vm.Total
		h.AvailableMemory = vm.Available
	} else {
		h.Errors = append(h.Errors, fmt.Errorf("memory: %w", err))
	}

	if dir != "" {
		if u, err := disk.UsageWithContext(ctx, dir); err == nil {
			h.DiskPath = u.Path
			h.DiskFree = u.Free
		} else {
			h.Errors = append(h.Errors, fmt.Errorf("disk %s: %w", dir, err))
		}
	}
	return h
}
