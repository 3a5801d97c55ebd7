package utils

import (
	"fmt"
	"time"
)

// Elapsed-time labels for header and info displays. The German forms match
// the panel's display language; the English form is used by header badges.

// TimeDifferenceShort formats the elapsed time since t as "vor 5m" style
func TimeDifferenceShort(t time.Time, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())

	switch {
	case seconds < 60:
		return "Jetzt"
	case seconds < 3600:
		return fmt.Sprintf("vor %dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("vor %dh", seconds/3600)
	default:
		return fmt.Sprintf("vor %d Tagen", seconds/86400)
	}
}

// TimeDifferenceLong formats the elapsed time since t as "5 Minuten" style
func TimeDifferenceLong(t time.Time, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())

	switch {
	case seconds < 60:
		return "Jetzt"
	case seconds < 3600:
		return fmt.Sprintf("%d Minuten", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d Stunden", seconds/3600)
	default:
		return fmt.Sprintf("%d Tagen", seconds/86400)
	}
}

// TimeDifferenceEnglish formats the elapsed time since t as "5m ago" style
func TimeDifferenceEnglish(t time.Time, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())

	switch {
	case seconds < 60:
		return "now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	default:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
}
