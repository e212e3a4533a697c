package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oftx/dailyfortune/internal/tui"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// fortuneCard boxes a fortune label for the draw command.
func fortuneCard(f domain.Fortune) string {
	label := strings.Join(strings.Split(string(f), ""), " ")
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("#D4A017")).
		Padding(1, 4).
		Render(tui.FortuneStyle(f).Render(label))
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E4572E")).
		Bold(true).
		Render("D A I L Y   F O R T U N E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("One draw a day. The board resets at midnight.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"dailyfortune", "Open the interactive TUI"},
		{"dailyfortune login <user>", "Sign in (prompts for the password)"},
		{"dailyfortune register <user> <email>", "Create an account when registration is open"},
		{"dailyfortune logout", "Forget the stored token"},
		{"dailyfortune draw", "Draw today's fortune (local draw when signed out)"},
		{"dailyfortune status", "Show the session, token expiry and next draw"},
		{"dailyfortune leaderboard", "Today's draws grouped by fortune"},
		{"dailyfortune history [user]", "Past draws, yours by default"},
		{"dailyfortune admin ...", "users | status | hide | show | tags"},
		{"dailyfortune version", "Show version"},
		{"dailyfortune help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-38s", c.cmd)), descStyle.Render(c.desc))
	}

	legend := make([]string, 0, len(domain.Fortunes))
	for _, f := range domain.Fortunes {
		legend = append(legend, tui.FortuneStyle(f).Render(string(f)))
	}
	fmt.Printf("\n  %s\n", strings.Join(legend, " "))

	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
		Render("DAILYFORTUNE_API_URL  DAILYFORTUNE_TOKEN  DAILYFORTUNE_HOME  DAILYFORTUNE_LANG  DAILYFORTUNE_LOG_LEVEL  DAILYFORTUNE_TIMEOUT")
	fmt.Printf("\n  %s\n\n", env)
}
