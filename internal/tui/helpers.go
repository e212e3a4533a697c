package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/message"
)

// formatTime renders a relative timestamp for history and admin lists.
func formatTime(t, now time.Time, p *message.Printer) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return p.Sprintf("just now")
	case d < time.Hour:
		return p.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return p.Sprintf("%dh ago", int(d.Hours()))
	default:
		return p.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace so a bio fits a list row.
func oneLine(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
