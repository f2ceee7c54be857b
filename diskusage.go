package lattice

import "github.com/ricochet2200/go-disk-usage/du"

// DiskUsageReport summarises the free space available on the volume
// backing a partition's base path, for callers deciding whether to
// throttle inserts ahead of a flush. Nothing else in this module calls it.
type DiskUsageReport struct {
	Size      uint64
	Used      uint64
	Free      uint64
	Available uint64
	Usage     float32
}

// ReportDiskUsage inspects the filesystem volume containing basePath.
func ReportDiskUsage(basePath string) DiskUsageReport {
	usage := du.NewDiskUsage(basePath)
	return DiskUsageReport{
		Size:      usage.Size(),
		Used:      usage.Used(),
		Free:      usage.Free(),
		Available: usage.Available(),
		Usage:     usage.Usage(),
	}
}
