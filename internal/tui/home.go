package tui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/internal/session"
	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
	"github.com/oftx/dailyfortune/pkg/fortune"
)

type countdownTickMsg time.Time

func countdownTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

type drawResultMsg struct {
	result *domain.DrawResult
	err    error
}

type homeCopiedMsg struct {
	err error
}

// refreshDoneMsg follows a profile refresh once the countdown ran out.
type refreshDoneMsg struct {
	err error
}

type homeModel struct {
	deps      *deps
	snap      session.Snapshot
	local     *domain.Fortune
	drawn     *domain.Fortune
	remaining time.Duration
	ticking   bool
	drawing   bool
	status    string
	err       string
	width     int
	height    int
	frame     int
}

func newHomeModel(d *deps) homeModel {
	return homeModel{deps: d}
}

func (m homeModel) Init() tea.Cmd {
	return nil
}

// current is the fortune to show: today's server fortune when signed in,
// else the last local draw.
func (m homeModel) current() (domain.Fortune, bool) {
	if m.snap.Authenticated() {
		if f, ok := m.snap.Profile.Today(); ok {
			return f, true
		}
		if m.drawn != nil {
			return *m.drawn, true
		}
		return "", false
	}
	if m.local != nil {
		return *m.local, true
	}
	return "", false
}

func (m homeModel) canDraw() bool {
	return m.snap.NextDrawAt == nil || m.remaining <= 0
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		if msg.snap.Authenticated() != m.snap.Authenticated() {
			m.drawn = nil
			m.status = ""
			m.err = ""
		}
		m.snap = msg.snap
		if m.snap.NextDrawAt == nil {
			m.remaining = 0
			return m, nil
		}
		m.remaining = domain.Remaining(m.deps.now(), *m.snap.NextDrawAt)
		if !m.ticking && m.remaining > 0 {
			m.ticking = true
			return m, countdownTickCmd()
		}
		return m, nil

	case countdownTickMsg:
		if m.snap.NextDrawAt == nil {
			m.ticking = false
			m.remaining = 0
			return m, nil
		}
		m.remaining = domain.Remaining(m.deps.now(), *m.snap.NextDrawAt)
		if m.remaining > 0 {
			return m, countdownTickCmd()
		}
		m.ticking = false
		return m, m.expire()

	case drawResultMsg:
		m.drawing = false
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		f := msg.result.Fortune
		m.drawn = &f
		m.err = ""
		m.status = ""
		return m, nil

	case homeCopiedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.status = m.deps.text(i18n.MsgCopied)
		}
		return m, nil

	case refreshDoneMsg:
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "d", "enter":
			return m.draw()
		case "c":
			if f, ok := m.current(); ok {
				return m, copyCmd(string(f))
			}
		}
	}
	return m, nil
}

func (m homeModel) draw() (homeModel, tea.Cmd) {
	if m.drawing {
		return m, nil
	}
	m.err = ""
	if !m.snap.Authenticated() {
		f := fortune.DrawLocal()
		m.local = &f
		m.status = m.deps.text(i18n.MsgLocalDraw, string(f))
		return m, nil
	}
	if !m.canDraw() {
		if f, ok := m.current(); ok {
			m.status = m.deps.text(i18n.MsgAlreadyDrawn, string(f))
		} else {
			m.status = m.deps.text(i18n.MsgNextDraw, domain.FormatCountdown(m.remaining))
		}
		return m, nil
	}
	m.drawing = true
	m.status = ""
	d := m.deps
	return m, func() tea.Msg {
		res, err := d.client.DrawFortune(d.ctx)
		if err != nil {
			return drawResultMsg{err: err}
		}
		d.session.SetNextDrawAt(res.NextDrawAt.TimePtr())
		// Picks up has_drawn_today and the new total. A failure here signs out.
		_ = d.session.Refresh(d.ctx)
		return drawResultMsg{result: res}
	}
}

// expire clears the countdown and refreshes the profile for the new day.
func (m homeModel) expire() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		d.session.SetNextDrawAt(nil)
		return refreshDoneMsg{err: d.session.Refresh(d.ctx)}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return homeCopiedMsg{err: clipboard.WriteAll(text)}
	}
}

func (m homeModel) helpKeys() string {
	if f, ok := m.current(); ok && f != "" {
		return m.deps.help("d", "draw") + "  " + m.deps.help("c", "copy")
	}
	return m.deps.help("d", "draw")
}

func (m homeModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n")

	if f, ok := m.current(); ok {
		sb.WriteString(fortuneBanner(f, m.width) + "\n\n")
	} else {
		prompt := inputPromptStyle.Render("> ") + dimStyle.Render(m.deps.text("press d to draw today's fortune"))
		if m.drawing {
			prompt = dimStyle.Render(m.deps.text("drawing..."))
		}
		sb.WriteString(center(prompt, m.width) + "\n\n")
	}

	switch {
	case !m.snap.Authenticated():
		sb.WriteString(center(metaStyle.Render(m.deps.text(i18n.MsgAnonymous)), m.width) + "\n")
	case !m.canDraw():
		line := m.deps.text(i18n.MsgNextDraw, domain.FormatCountdown(m.remaining))
		sb.WriteString(center(accentStyle.Render(line), m.width) + "\n")
	default:
		sb.WriteString(center(successStyle.Render(m.deps.text(i18n.MsgDrawAvailable)), m.width) + "\n")
	}

	if m.snap.Authenticated() {
		p := m.snap.Profile
		stats := metaStyle.Render(p.Name() + " · " + m.deps.text(i18n.MsgDrawCount, p.TotalDraws))
		sb.WriteString(center(stats, m.width) + "\n")
	}

	if m.status != "" {
		sb.WriteString("\n" + center(dimStyle.Render(m.status), m.width) + "\n")
	}
	if m.err != "" {
		sb.WriteString("\n" + center(errorStyle.Render(m.err), m.width) + "\n")
	}
	return sb.String()
}
