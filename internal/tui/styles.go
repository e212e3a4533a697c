package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"github.com/oftx/dailyfortune/pkg/domain"
)

// Shimmer animation for the header.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "今日运势" as a slow wave between deep vermilion
// (#5a1a16) and temple gold (#eec54b).
func renderShimmerLogo(frame int) string {
	text := []rune("今日运势")
	n := len(text)

	var out string
	t := float64(frame)

	for i, ch := range text {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(90 + b*(238-90))
		g := clampByte(26 + b*(197-26))
		bl := clampByte(22 + b*(75-22))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out += s.Render(string(ch))

		if i < n-1 {
			out += " "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#eec54b"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	adminBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C73E3A")).
			Bold(true)

	borderColor  = lipgloss.Color("#1e1e2a")
	surfaceColor = lipgloss.Color("#111118")

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#eec54b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	inputTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec"))

	// Fortune colors, one per label.
	fortuneColors = map[domain.Fortune]lipgloss.Color{
		domain.Yukichi:  lipgloss.Color("#eec54b"),
		domain.DaiKichi: lipgloss.Color("#C73E3A"),
		domain.Kichi:    lipgloss.Color("#9cca26"),
		domain.ChuKichi: lipgloss.Color("#eaaa66"),
		domain.ShoKichi: lipgloss.Color("#4cd3cf"),
		domain.Kyo:      lipgloss.Color("#67278F"),
		domain.DaiKyo:   lipgloss.Color("#1A297E"),
	}

	// Heatmap cell colors indexed by fortune level. 0 is "no draw".
	heatColors = [domain.MaxLevel + 1]lipgloss.Color{
		lipgloss.Color("#3a3d48"),
		lipgloss.Color("#990000"),
		lipgloss.Color("#CC3333"),
		lipgloss.Color("#E6E666"),
		lipgloss.Color("#99E699"),
		lipgloss.Color("#66CC66"),
		lipgloss.Color("#33B333"),
		lipgloss.Color("#FFD700"),
	}
)

// FortuneStyle returns a bold style colored for the given fortune.
func FortuneStyle(f domain.Fortune) lipgloss.Style {
	if c, ok := fortuneColors[f]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// heatStyle colors one heatmap cell.
func heatStyle(level int) lipgloss.Style {
	if level < 0 || level > domain.MaxLevel {
		level = 0
	}
	return lipgloss.NewStyle().Foreground(heatColors[level])
}

// fortuneBanner renders a drawn fortune inside a framed card.
func fortuneBanner(f domain.Fortune, width int) string {
	label := FortuneStyle(f).Render(spaced(string(f)))
	w := max(lipgloss.Width(label)+8, 20)
	card := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(fortuneColors[f]).
		Padding(1, 0).
		Width(w).
		Align(lipgloss.Center).
		Render(label)
	return lipgloss.PlaceHorizontal(max(width, lipgloss.Width(card)), lipgloss.Center, card)
}

// spaced puts a space between runes: "大吉" -> "大 吉".
func spaced(s string) string {
	runes := []rune(s)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries with the standard spacing.
func helpBar(entries ...string) string {
	return " " + strings.Join(entries, "  ")
}

// helpView renders the help overlay in p's language.
func helpView(p *message.Printer) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#eec54b")).
		Bold(true).
		Render("D A I L Y   F O R T U N E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"` + p.Sprintf("One draw a day. The shrine keeps count.") + `"`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"dailyfortune", "Open the interactive client"},
		{"dailyfortune login", "Sign in with username and password"},
		{"dailyfortune draw", "Draw today's fortune"},
		{"dailyfortune status", "Show the current session"},
		{"dailyfortune logout", "Clear your session"},
	}
	keys := []struct{ key, desc string }{
		{"1-5", "switch tabs"},
		{"d", "draw (Home)"},
		{"p", "peek a user (Board)"},
		{"o", "open avatar in browser"},
		{"c", "copy to clipboard"},
		{"r", "refresh"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render(p.Sprintf("Commands")))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(p.Sprintf(c.desc)))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render(p.Sprintf("Keys")))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", k.key)), descStyle.Render(p.Sprintf(k.desc)))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render(p.Sprintf("Fortunes")))
	var legend []string
	for _, f := range domain.Fortunes {
		legend = append(legend, FortuneStyle(f).Render(string(f)))
	}
	fmt.Fprintf(&b, "    %s\n", strings.Join(legend, "  "))
	return b.String()
}
