package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

type registrationStatusMsg struct {
	open bool
	err  error
}

type authDoneMsg struct {
	username string
	err      error
}

const (
	fieldUsername = iota
	fieldPassword
	fieldEmail
)

// loginModel is the sign-in form shown on the account tabs while signed out.
// Register mode adds an email field and is only offered when the server
// reports registration as open.
type loginModel struct {
	deps     *deps
	fields   [3]formField
	focus    int
	focused  bool
	register bool
	regOpen  bool
	busy     bool
	err      string
	width    int
	height   int
	frame    int
}

func newLoginModel(d *deps) loginModel {
	return loginModel{
		deps: d,
		fields: [3]formField{
			{label: "username"},
			{label: "password", secret: true},
			{label: "email"},
		},
	}
}

func (m loginModel) Init() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		status, err := d.client.GetRegistrationStatus(d.ctx)
		if err != nil {
			return registrationStatusMsg{err: err}
		}
		return registrationStatusMsg{open: status.IsOpen}
	}
}

// order is the tab order of the visible fields.
func (m loginModel) order() []int {
	if m.register {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldUsername, fieldPassword}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case registrationStatusMsg:
		// Registration stays hidden when the status is unknown.
		m.regOpen = msg.err == nil && msg.open
		if !m.regOpen {
			m.register = false
		}

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		m.err = ""
		m.fields[fieldPassword].value = ""
		m.focused = false

	case tea.KeyMsg:
		if m.focused {
			return m.updateFocused(msg)
		}
		switch msg.String() {
		case "enter", "i":
			m.focused = true
			m.focus = 0
		case "r":
			if m.regOpen {
				m.register = !m.register
				m.err = ""
				m.focus = 0
			}
		}
	}
	return m, nil
}

func (m loginModel) updateFocused(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	order := m.order()
	switch msg.String() {
	case "esc":
		m.focused = false
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % len(order)
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + len(order) - 1) % len(order)
		return m, nil
	case "enter":
		if m.focus < len(order)-1 {
			m.focus++
			return m, nil
		}
		return m.submit()
	}
	f := &m.fields[order[m.focus]]
	f.value = editKey(f.value, msg)
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	username := strings.TrimSpace(m.fields[fieldUsername].value)
	password := m.fields[fieldPassword].value
	email := strings.TrimSpace(m.fields[fieldEmail].value)
	if username == "" || password == "" || (m.register && email == "") {
		m.err = m.deps.text("all fields are required")
		return m, nil
	}
	m.busy = true
	m.err = ""
	d := m.deps
	register := m.register
	return m, func() tea.Msg {
		var (
			auth *domain.AuthResponse
			err  error
		)
		if register {
			auth, err = d.client.Register(d.ctx, username, email, password)
		} else {
			auth, err = d.client.Login(d.ctx, username, password)
		}
		if err != nil {
			return authDoneMsg{err: err}
		}
		if err := d.session.Login(auth.AccessToken, auth.User); err != nil {
			return authDoneMsg{err: err}
		}
		// The auth response has no next draw time. The login stands if this fails.
		_ = d.session.Sync(d.ctx)
		return authDoneMsg{username: auth.User.Username}
	}
}

func (m loginModel) helpKeys() string {
	if m.focused {
		return m.deps.help("tab", "next") + "  " + m.deps.help("enter", "submit") + "  " + m.deps.help("esc", "nav")
	}
	keys := m.deps.help("enter", "sign in")
	if m.regOpen {
		keys += "  " + m.deps.help("r", "register")
	}
	return keys + "  " + m.deps.help("q", "quit")
}

func (m loginModel) View() string {
	var sb strings.Builder
	title := m.deps.text("SIGN IN")
	if m.register {
		title = m.deps.text("REGISTER")
	}
	sb.WriteString(" " + sectionHeaderStyle.Render("── "+title+" ──") + "\n\n")

	for i, idx := range m.order() {
		sb.WriteString(renderField(m.deps.field(m.fields[idx]), m.focused && i == m.focus, m.frame) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.busy:
		sb.WriteString(" " + dimStyle.Render(m.deps.text("signing in...")) + "\n")
	case !m.regOpen:
		sb.WriteString(" " + metaStyle.Render(m.deps.text(i18n.MsgRegClosed)) + "\n")
	case !m.register:
		sb.WriteString(" " + metaStyle.Render(m.deps.text("no account? press r to register")) + "\n")
	}
	if m.err != "" {
		sb.WriteString("\n " + errorStyle.Render(m.err) + "\n")
	}
	return sb.String()
}
