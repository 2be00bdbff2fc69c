package stats

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"mcpanel/internal/domain"
)

// Collect samples host CPU, memory and disk usage for the panel header.
func Collect() (domain.HostStats, error) {
	var stats domain.HostStats

	percents, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil {
		return stats, err
	}
	if len(percents) > 0 {
		stats.CPU = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return stats, err
	}
	stats.RAM = vm.Used

	usage, err := disk.Usage("/")
	if err != nil {
		return stats, err
	}
	stats.Disk = usage.Used

	return stats, nil
}
