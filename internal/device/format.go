package device

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// TotalHuman formats the total volume size in decimal units.
func (d Disk) TotalHuman() string {
	return humanBytes(d.Total)
}

func (d Disk) UsedHuman() string {
	return humanBytes(d.Used)
}

func (d Disk) FreeHuman() string {
	return humanBytes(d.Free)
}

// PercentUsed returns the used share of the volume rounded to two decimals.
// An empty volume reports zero.
func (d Disk) PercentUsed() float64 {
	if d.Total <= 0 {
		return 0
	}
	pct := float64(d.Used) / float64(d.Total) * 100
	return math.Round(pct*100) / 100
}

func humanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatUptime renders an uptime as days, hours and minutes, e.g. "3d 4h 12m".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%d x %d", r.X, r.Y)
}
