package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

type usersLoadedMsg struct {
	users []domain.Profile
	err   error
}

type adminActionMsg struct {
	action string
	user   string
	err    error
}

// adminModel lists every user and applies moderation actions. The server
// rejects these calls for non-admins; the tab is only shown to admins.
type adminModel struct {
	deps    *deps
	users   []domain.Profile
	loaded  bool
	cursor  int
	editing bool
	tags    string
	busy    bool
	status  string
	err     string
	width   int
	height  int
	frame   int
}

func newAdminModel(d *deps) adminModel {
	return adminModel{deps: d}
}

func (m adminModel) Init() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		users, err := d.client.ListUsers(d.ctx)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (m adminModel) selected() (domain.Profile, bool) {
	if m.cursor < 0 || m.cursor >= len(m.users) {
		return domain.Profile{}, false
	}
	return m.users[m.cursor], true
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case usersLoadedMsg:
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		m.loaded = true
		m.users = msg.users
		if m.cursor >= len(m.users) {
			m.cursor = max(len(m.users)-1, 0)
		}

	case adminActionMsg:
		m.busy = false
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		m.err = ""
		m.status = fmt.Sprintf("%s: %s", msg.user, msg.action)
		return m, m.Init()

	case tea.KeyMsg:
		if m.editing {
			return m.updateTags(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m adminModel) handleKey(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.users)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m, m.Init()
	case "v":
		u, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		hidden := !u.IsHidden
		action := m.deps.text("shown")
		if hidden {
			action = m.deps.text("hidden")
		}
		return m.run(u, action, func(d *deps) error {
			return d.client.SetUserVisibility(d.ctx, u.ID, hidden)
		})
	case "s":
		u, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		next := domain.NextStatus(u.Status)
		return m.run(u, m.deps.text("status %s", next), func(d *deps) error {
			return d.client.SetUserStatus(d.ctx, u.ID, next)
		})
	case "t":
		if u, ok := m.selected(); ok {
			m.editing = true
			m.tags = strings.Join(u.Tags, ", ")
			m.status = ""
		}
	case "p", "enter":
		if u, ok := m.selected(); ok {
			username := u.Username
			return m, func() tea.Msg { return showPeekMsg{username: username} }
		}
	}
	return m, nil
}

func (m adminModel) updateTags(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		m.editing = false
		u, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		tags := domain.ParseTags(m.tags)
		return m.run(u, m.deps.text("tags updated"), func(d *deps) error {
			return d.client.SetUserTags(d.ctx, u.ID, tags)
		})
	}
	m.tags = editKey(m.tags, msg)
	return m, nil
}

func (m adminModel) run(u domain.Profile, action string, fn func(d *deps) error) (adminModel, tea.Cmd) {
	m.busy = true
	m.err = ""
	m.status = ""
	d := m.deps
	return m, func() tea.Msg {
		return adminActionMsg{action: action, user: u.Username, err: fn(d)}
	}
}

func (m adminModel) helpKeys() string {
	if m.editing {
		return m.deps.help("enter", "save tags") + "  " + m.deps.help("esc", "cancel")
	}
	return m.deps.help("j/k", "nav") + "  " + m.deps.help("v", "hide/show") + "  " +
		m.deps.help("s", "status") + "  " + m.deps.help("t", "tags") + "  " +
		m.deps.help("p", "peek") + "  " + m.deps.help("r", "refresh")
}

func (m adminModel) View() string {
	var b strings.Builder
	if !m.loaded {
		if m.err != "" {
			return " " + errorStyle.Render(m.err) + "\n"
		}
		return " " + dimStyle.Render(m.deps.text("loading users...")) + "\n"
	}
	if len(m.users) == 0 {
		b.WriteString(" " + dimStyle.Render(m.deps.text("no users")) + "\n")
	}

	for i, u := range m.users {
		cursor := " "
		style := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			style = selectedStyle
		}
		name := style.Render(padRight(truncStr(u.Username, 20), 20))

		status := successStyle.Render(padRight(orDash(u.Status), 9))
		if u.Status != domain.StatusActive {
			status = errorStyle.Render(padRight(orDash(u.Status), 9))
		}
		flags := []string{}
		if u.IsAdmin() {
			flags = append(flags, adminBadgeStyle.Render(m.deps.text("admin")))
		}
		if u.IsHidden {
			flags = append(flags, metaStyle.Render(m.deps.text("hidden")))
		}
		if f, ok := u.Today(); ok {
			flags = append(flags, FortuneStyle(f).Render(string(f)))
		}
		line := fmt.Sprintf(" %s %s %s %s", cursor, name, status, strings.Join(flags, " "))
		if len(u.Tags) > 0 {
			line += " " + accentStyle.Render(strings.Join(u.Tags, ","))
		}
		b.WriteString(line + "\n")
	}

	if m.editing {
		b.WriteString("\n" + renderField(m.deps.field(formField{label: "tags", value: m.tags}), true, m.frame) + "\n")
		b.WriteString("   " + metaStyle.Render(m.deps.text("comma separated")) + "\n")
	}
	if m.busy {
		b.WriteString("\n " + dimStyle.Render(m.deps.text("working...")) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n " + successStyle.Render(m.status) + "\n")
	}
	if m.err != "" {
		b.WriteString("\n " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}
