package process

import (
	"context"
	"fmt"
	"time"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
)

// NativeSource enumerates processes through gopsutil
// CPU is the lifetime average, matching the %CPU column of ps
type NativeSource struct{}

// NewNativeSource creates a gopsutil-backed source
func NewNativeSource() *NativeSource {
	return &NativeSource{}
}

// Name implements Source
func (s *NativeSource) Name() string {
	return "native"
}

// Snapshot implements Source
// Processes that exit mid-scan are skipped silently, they are not malformed rows
func (s *NativeSource) Snapshot(ctx context.Context) (Snapshot, error) {
	procs, err := gopsprocess.ProcessesWithContext(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("enumerate processes: %w", err)
	}

	snap := Snapshot{Rows: make([]Row, 0, len(procs))}
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, fmt.Errorf("enumerate processes: %w", err)
		}

		owner, err := p.UsernameWithContext(ctx)
		if err != nil {
			continue
		}
		cpu, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			continue
		}
		mem, err := p.MemoryInfoWithContext(ctx)
		if err != nil || mem == nil {
			continue
		}
		name, _ := p.NameWithContext(ctx)

		snap.Rows = append(snap.Rows, Row{
			Owner:    owner,
			PID:      int(p.Pid),
			CPU:      cpu,
			MemoryKB: int64(mem.RSS / 1024),
			Command:  name,
		})
	}
	snap.TakenAt = time.Now()
	return snap, nil
}
