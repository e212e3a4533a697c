package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oftx/dailyfortune/internal/browser"
	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// peekDays is the heatmap span shown in the peek card.
const peekDays = 12 * 7

type peekLoadedMsg struct {
	profile *domain.PublicProfile
	err     error
}

type peekHistoryMsg struct {
	history []domain.FortuneHistoryItem
	err     error
}

type peekOpenedMsg struct {
	err error
}

type peekModel struct {
	deps     *deps
	username string
	profile  *domain.PublicProfile
	history  []domain.FortuneHistoryItem
	closed   bool
	err      string
	width    int
}

func newPeekModel(d *deps) peekModel {
	return peekModel{deps: d}
}

func (m peekModel) load(username string) tea.Cmd {
	d := m.deps
	profileCmd := func() tea.Msg {
		p, err := d.client.GetUserProfile(d.ctx, username)
		if err != nil {
			return peekLoadedMsg{err: err}
		}
		return peekLoadedMsg{profile: p}
	}
	historyCmd := func() tea.Msg {
		items, err := d.client.GetUserFortuneHistory(d.ctx, username)
		if err != nil {
			return peekHistoryMsg{err: err}
		}
		return peekHistoryMsg{history: items}
	}
	return tea.Batch(profileCmd, historyCmd)
}

func (m peekModel) Update(msg tea.Msg) (peekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case peekLoadedMsg:
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
		} else {
			m.profile = msg.profile
		}
		return m, nil

	case peekHistoryMsg:
		// The card is still useful without history.
		if msg.err == nil {
			m.history = msg.history
		}
		return m, nil

	case peekOpenedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			m.closed = true
		case "o":
			if m.profile != nil {
				if u, ok := m.profile.DisplayAvatarURL(); ok {
					return m, func() tea.Msg {
						return peekOpenedMsg{err: browser.Open(u)}
					}
				}
			}
		}
	}
	return m, nil
}

func (m peekModel) View() string {
	if m.err != "" && m.profile == nil {
		return "\n " + errorStyle.Render(m.err)
	}
	if m.profile == nil {
		return "\n " + dimStyle.Render(m.deps.text("loading..."))
	}

	p := m.profile
	cardWidth := max(min(56, m.width-4), 36)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(p.Name()))
	if p.DisplayName != "" && p.DisplayName != p.Username {
		sb.WriteString(" " + metaStyle.Render("@"+p.Username))
	}
	sb.WriteString("\n")

	if f, ok := p.Today(); ok {
		sb.WriteString("   " + FortuneStyle(f).Render(string(f)) + " " + dimStyle.Render(m.deps.text("today")) + "\n")
	} else {
		sb.WriteString("   " + dimStyle.Render(m.deps.text("no draw today")) + "\n")
	}

	sb.WriteString(metaStyle.Render("---") + "\n")
	stats := m.deps.text(i18n.MsgDrawCount, p.TotalDraws) + "  " + m.deps.text("joined %s", p.RegistrationDate.Format(domain.DayLayout))
	sb.WriteString(metaStyle.Render(stats) + "\n")
	if len(p.Tags) > 0 {
		sb.WriteString(accentStyle.Render(strings.Join(p.Tags, " · ")) + "\n")
	}
	sb.WriteString(metaStyle.Render("---") + "\n")

	if bio := oneLine(p.Bio); bio != "" {
		sb.WriteString(normalStyle.Render(truncStr(bio, cardWidth*2)) + "\n")
	}

	if len(m.history) > 0 {
		loc := m.viewerLocation()
		h := domain.BuildHeatmap(m.history, m.deps.now(), peekDays, loc)
		sb.WriteString("\n" + sectionHeaderStyle.Render("── " + m.deps.text("LAST 12 WEEKS") + " ──") + "\n")
		sb.WriteString(renderHeatmap(h))
	}

	sb.WriteString("\n")
	if _, ok := p.DisplayAvatarURL(); ok {
		sb.WriteString(helpKeyStyle.Render("o") + " " + helpLabelStyle.Render(m.deps.text("avatar")) + "  ")
	}
	sb.WriteString(helpKeyStyle.Render("esc") + " " + helpLabelStyle.Render(m.deps.text("close")))

	return "\n" + border.Render(sb.String())
}

// viewerLocation buckets another user's history by the viewer's timezone.
func (m peekModel) viewerLocation() *time.Location {
	if p, ok := m.deps.session.Profile(); ok {
		return p.Location()
	}
	return time.Local
}
