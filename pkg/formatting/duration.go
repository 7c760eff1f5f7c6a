package formatting

import (
	"strconv"
	"time"
)

// FormatDuration renders a millisecond count for display: whole milliseconds
// below one second, seconds with the given precision otherwise.
func FormatDuration(ms int64, precision int) string {
	if ms < 0 {
		ms = 0
	}
	if precision < 0 {
		precision = 0
	}
	if ms < 1000 {
		return strconv.FormatInt(ms, 10) + "ms"
	}
	secs := float64(ms) / float64(time.Second/time.Millisecond)
	return strconv.FormatFloat(secs, 'f', precision, 64) + "s"
}
