package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/oftx/dailyfortune/internal/browser"
	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// heatmapDays is the span of the profile heatmap.
const heatmapDays = 365

type profileLoadedMsg struct {
	view    domain.ProfileView
	history []domain.FortuneHistoryItem
	histErr error
	err     error
}

type profileOpenedMsg struct {
	err error
}

type profileModel struct {
	deps    *deps
	view    domain.ProfileView
	history []domain.FortuneHistoryItem
	loading bool
	err     string
	histErr string
	width   int
	height  int
}

func newProfileModel(d *deps) profileModel {
	return profileModel{deps: d}
}

func (m profileModel) Init() tea.Cmd {
	return m.load()
}

// load refreshes the signed-in profile and fetches its history at the same
// time. A history failure does not hide the profile.
func (m profileModel) load() tea.Cmd {
	d := m.deps
	p, ok := d.session.Profile()
	if !ok {
		return nil
	}
	username := p.Username
	return func() tea.Msg {
		var (
			g       errgroup.Group
			history []domain.FortuneHistoryItem
			histErr error
		)
		g.Go(func() error {
			return d.session.Refresh(d.ctx)
		})
		g.Go(func() error {
			history, histErr = d.client.GetUserFortuneHistory(d.ctx, username)
			return nil
		})
		if err := g.Wait(); err != nil {
			return profileLoadedMsg{err: err}
		}
		fresh, ok := d.session.Profile()
		if !ok {
			return profileLoadedMsg{}
		}
		return profileLoadedMsg{view: domain.SelfView(fresh), history: history, histErr: histErr}
	}
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sessionMsg:
		if msg.snap.Profile == nil {
			m.view = domain.ProfileView{}
			m.history = nil
			m.err = ""
			m.histErr = ""
			return m, nil
		}
		if m.view.IsZero() || m.view.IsSelf() {
			m.view = domain.SelfView(*msg.snap.Profile)
		}

	case profileLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		if msg.view.IsZero() {
			return m, nil
		}
		m.err = ""
		m.view = msg.view
		if msg.histErr != nil {
			// Prior history stays visible.
			if !client.IsCanceled(msg.histErr) {
				m.histErr = m.deps.errText(msg.histErr)
			}
		} else {
			m.history = msg.history
			m.histErr = ""
		}

	case profileOpenedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			cmd := m.load()
			m.loading = cmd != nil
			return m, cmd
		case "o":
			if u, ok := m.view.Displayable().DisplayAvatarURL(); ok {
				return m, openURL(u)
			}
		case "b":
			if u := m.view.Displayable().BackgroundURL; u != "" {
				return m, openURL(u)
			}
		}
	}
	return m, nil
}

func openURL(u string) tea.Cmd {
	return func() tea.Msg {
		return profileOpenedMsg{err: browser.Open(u)}
	}
}

func (m profileModel) location() *time.Location {
	if p, ok := m.view.Self(); ok {
		return p.Location()
	}
	return time.Local
}

func (m profileModel) View() string {
	if m.view.IsZero() {
		if m.err != "" {
			return " " + errorStyle.Render(m.err)
		}
		return " " + dimStyle.Render(m.deps.text("loading profile..."))
	}

	p := m.view.Displayable()
	var sb strings.Builder

	sb.WriteString(" " + selectedStyle.Render(p.Name()))
	if p.DisplayName != "" && p.DisplayName != p.Username {
		sb.WriteString(" " + metaStyle.Render("@"+p.Username))
	}
	if self, ok := m.view.Self(); ok && self.IsAdmin() {
		sb.WriteString("  " + adminBadgeStyle.Render(m.deps.text("admin")))
	}
	sb.WriteString("\n")

	if self, ok := m.view.Self(); ok {
		parts := []string{}
		if self.Email != "" {
			parts = append(parts, self.Email)
		}
		if self.Timezone != "" {
			parts = append(parts, self.Timezone)
		}
		if self.Language != "" {
			parts = append(parts, self.Language)
		}
		if len(parts) > 0 {
			sb.WriteString(" " + metaStyle.Render(strings.Join(parts, " · ")) + "\n")
		}
	}

	if f, ok := p.Today(); ok {
		sb.WriteString(" " + dimStyle.Render(m.deps.text("today") + " ") + FortuneStyle(f).Render(string(f)) + "\n")
	} else {
		sb.WriteString(" " + dimStyle.Render(m.deps.text("no draw today")) + "\n")
	}

	loc := m.location()
	stats := strings.Join([]string{
		m.deps.text(i18n.MsgDrawCount, p.TotalDraws),
		m.deps.text("joined %s", p.RegistrationDate.In(loc).Format(domain.DayLayout)),
		m.deps.text("active %s", formatTime(p.LastActiveDate.Time, m.deps.now(), m.deps.printer)),
	}, " · ")
	sb.WriteString(" " + metaStyle.Render(stats) + "\n")

	if len(p.Tags) > 0 {
		sb.WriteString(" " + accentStyle.Render(strings.Join(p.Tags, " · ")) + "\n")
	}
	if bio := oneLine(p.Bio); bio != "" {
		sb.WriteString("\n " + normalStyle.Render(truncStr(bio, max(m.width-2, 20))) + "\n")
	}

	sb.WriteString("\n " + sectionHeaderStyle.Render("── " + m.deps.text("HISTORY") + " ──") + "\n")
	h := domain.BuildHeatmap(m.history, m.deps.now(), heatmapDays, loc)
	sb.WriteString(indent(renderHeatmap(fitColumns(h, m.width-2)), " "))
	sb.WriteString(" " + heatmapLegend(m.deps.text("none")) + "\n")

	if m.loading {
		sb.WriteString(" " + dimStyle.Render(m.deps.text("refreshing...")) + "\n")
	}
	if m.histErr != "" {
		sb.WriteString(" " + errorStyle.Render(m.histErr) + "\n")
	}
	if m.err != "" {
		sb.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return sb.String()
}

// renderHeatmap draws one row per weekday slot and one column per week.
func renderHeatmap(h domain.Heatmap) string {
	var sb strings.Builder
	for row := 0; row < 7; row++ {
		for _, col := range h.Columns {
			if row >= len(col) {
				sb.WriteString(" ")
				continue
			}
			sb.WriteString(heatStyle(col[row].Level).Render("■"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// fitColumns keeps the most recent columns that fit in width.
func fitColumns(h domain.Heatmap, width int) domain.Heatmap {
	if width <= 0 || len(h.Columns) <= width {
		return h
	}
	cols := h.Columns[len(h.Columns)-width:]
	total := 0
	for _, c := range cols {
		total += len(c)
	}
	return domain.Heatmap{Columns: cols, Total: total}
}

func heatmapLegend(none string) string {
	parts := []string{heatStyle(0).Render("■") + " " + metaStyle.Render(none)}
	for i := len(domain.Fortunes) - 1; i >= 0; i-- {
		f := domain.Fortunes[i]
		parts = append(parts, heatStyle(f.Level()).Render("■")+" "+metaStyle.Render(string(f)))
	}
	return strings.Join(parts, " ")
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		sb.WriteString(prefix + l)
	}
	return sb.String()
}
