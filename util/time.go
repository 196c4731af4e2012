package util

import (
	"fmt"
	"time"
)

// StampFormat is the DDMMYYYY-HHMMSS stamp embedded in capture filenames.
const StampFormat = "02012006-150405"

func Stamp(t time.Time) string {
	return t.Format(StampFormat)
}

// Every tracks a fixed refresh interval. The first check is always due.
type Every struct {
	Interval time.Duration
	last     time.Time
}

func (e *Every) Due(now time.Time) bool {
	if e.last.IsZero() || now.Sub(e.last) >= e.Interval {
		e.last = now
		return true
	}
	return false
}

func number(n int, suffix string) string {
	switch n {
	case 0:
		return ""
	default:
		return fmt.Sprintf("%d%s", n, suffix)
	}
}

func joinpair(a, b string) string {
	if a != "" && b != "" {
		return a + " " + b
	}
	return a + b
}

func ShortDuration(d time.Duration) string {
	switch {
	case d.Hours() >= 24:
		days := int(d.Hours() / 24)
		hours := int(d.Hours()) - days*24
		return joinpair(number(days, "d"), number(hours, "h"))
	case d.Hours() >= 1:
		hours := int(d.Hours())
		mins := int(int(d.Minutes()) - 60*hours)
		return joinpair(number(hours, "h"), number(mins, "m"))
	case d.Minutes() >= 1:
		mins := int(d.Minutes())
		secs := int(int(d.Seconds()) - 60*mins)
		return joinpair(number(mins, "m"), number(secs, "s"))
	case d.Seconds() >= 1:
		secs := int(d.Seconds())
		return number(secs, "s")
	case d.Nanoseconds() >= 1000:
		ms := int(d.Seconds() * 1000)
		return number(ms, "ms")
	}
	return "0s"
}
