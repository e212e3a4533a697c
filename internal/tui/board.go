package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// -- messages --

type leaderboardLoadedMsg struct {
	groups []domain.LeaderboardGroup
	err    error
}

// -- model --

// boardRow is one selectable user under a fortune heading.
type boardRow struct {
	fortune domain.Fortune
	user    domain.LeaderboardUser
}

type boardModel struct {
	deps    *deps
	groups  []domain.LeaderboardGroup
	rows    []boardRow
	loaded  bool
	cursor  int
	err     string
	loading bool
	width   int
	height  int
}

func newBoardModel(d *deps) boardModel {
	return boardModel{deps: d}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadBoard()
}

// loadBoard fetches today's leaderboard. The endpoint needs a session, so
// nothing is sent while signed out.
func (m boardModel) loadBoard() tea.Cmd {
	d := m.deps
	if d.session.Token() == "" {
		return nil
	}
	return func() tea.Msg {
		groups, err := d.client.GetLeaderboard(d.ctx)
		return leaderboardLoadedMsg{groups: groups, err: err}
	}
}

func (m *boardModel) setGroups(groups []domain.LeaderboardGroup) {
	domain.SortGroups(groups)
	m.groups = groups
	m.rows = nil
	for _, g := range groups {
		for _, u := range g.Users {
			m.rows = append(m.rows, boardRow{fortune: g.Fortune, user: u})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = 0
	}
}

func (m boardModel) Update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case leaderboardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// Prior data stays visible.
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		m.loaded = true
		m.err = ""
		m.setGroups(msg.groups)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "p", "enter":
		if m.cursor < len(m.rows) {
			username := m.rows[m.cursor].user.Username
			return m, func() tea.Msg { return showPeekMsg{username: username} }
		}
	case "r":
		cmd := m.loadBoard()
		m.loading = cmd != nil
		return m, cmd
	}
	return m, nil
}

func (m boardModel) View() string {
	var b strings.Builder

	if m.deps.session.Token() == "" {
		b.WriteString("\n " + dimStyle.Render(m.deps.text("sign in on the Profile tab to see today's board")) + "\n")
		return b.String()
	}
	if !m.loaded {
		if m.err != "" {
			b.WriteString(" " + errorStyle.Render(m.err) + "\n")
		} else {
			b.WriteString(" " + dimStyle.Render(m.deps.text("loading...")) + "\n")
		}
		return b.String()
	}
	if len(m.rows) == 0 {
		b.WriteString("\n " + dimStyle.Render(m.deps.text("nobody has drawn yet today")) + "\n")
		if m.err != "" {
			b.WriteString(" " + errorStyle.Render(m.err) + "\n")
		}
		return b.String()
	}

	me := ""
	if p, ok := m.deps.session.Profile(); ok {
		me = p.Username
	}

	row := 0
	for _, g := range m.groups {
		if len(g.Users) == 0 {
			continue
		}
		heading := FortuneStyle(g.Fortune).Render(string(g.Fortune)) + " " +
			metaStyle.Render(fmt.Sprintf("(%d)", len(g.Users)))
		b.WriteString(" " + heading + "\n")
		for _, u := range g.Users {
			cursor := " "
			style := normalStyle
			if row == m.cursor {
				cursor = accentStyle.Render("▸")
				style = selectedStyle
			}
			line := fmt.Sprintf(" %s  %s", cursor, style.Render(truncStr(u.Name(), 30)))
			if u.DisplayName != "" && u.DisplayName != u.Username {
				line += " " + metaStyle.Render("@"+u.Username)
			}
			if me != "" && u.Username == me {
				line += "  " + accentStyle.Render("<- you")
			}
			b.WriteString(line + "\n")
			row++
		}
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render(m.deps.text("refreshing...")) + "\n")
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}
