package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/internal/session"
	"github.com/oftx/dailyfortune/pkg/client"
)

type view int

const (
	viewHome view = iota
	viewBoard
	viewProfile
	viewSettings
	viewAdmin
)

// deps is shared by every screen. Screens never mutate it except through
// the session, which is safe for concurrent use.
type deps struct {
	ctx      context.Context
	client   *client.Client
	session  *session.Session
	printer  *message.Printer
	fallback language.Tag
	now      func() time.Time
}

func (d *deps) text(key string, args ...any) string {
	return d.printer.Sprintf(key, args...)
}

// help renders a help bar entry with a localized label.
func (d *deps) help(key, label string) string {
	return helpEntry(key, d.text(label))
}

// field returns f with its label localized.
func (d *deps) field(f formField) formField {
	f.label = d.text(f.label)
	return f
}

// errText is the user-facing message for err.
func (d *deps) errText(err error) string {
	return client.Message(err, d.printer)
}

// sessionMsg carries a session change published by Session.Subscribe.
type sessionMsg struct {
	snap session.Snapshot
}

// sessionClosedMsg means the subscription ended.
type sessionClosedMsg struct{}

// sessionStartedMsg is the result of restoring the persisted session.
type sessionStartedMsg struct {
	state session.State
	err   error
}

// showPeekMsg triggers the peek overlay for a user.
type showPeekMsg struct {
	username string
}

func waitForSession(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionMsg{snap: snap}
	}
}

// App is the root Bubbletea model.
type App struct {
	deps     *deps
	sub      <-chan session.Snapshot
	stop     func()
	cancel   context.CancelFunc
	snap     session.Snapshot
	view     view
	home     homeModel
	board    boardModel
	profile  profileModel
	settings settingsModel
	login    loginModel
	admin    adminModel
	peek     peekModel
	peekOpen bool
	helpOpen bool
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application. lang is used for messages until the
// signed-in user's profile names a language.
func NewApp(c *client.Client, sess *session.Session, lang language.Tag) App {
	ctx, cancel := context.WithCancel(context.Background())
	d := &deps{
		ctx:      ctx,
		client:   c,
		session:  sess,
		printer:  i18n.Printer(lang),
		fallback: lang,
		now:      time.Now,
	}
	sub, stop := sess.Subscribe()
	return App{
		deps:     d,
		sub:      sub,
		stop:     stop,
		cancel:   cancel,
		home:     newHomeModel(d),
		board:    newBoardModel(d),
		profile:  newProfileModel(d),
		settings: newSettingsModel(d),
		login:    newLoginModel(d),
		admin:    newAdminModel(d),
		peek:     newPeekModel(d),
	}
}

// Close cancels in-flight requests and ends the session subscription.
func (a App) Close() {
	a.cancel()
	a.stop()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), waitForSession(a.sub), a.start(), a.board.Init())
}

func (a App) start() tea.Cmd {
	d := a.deps
	return func() tea.Msg {
		state, err := d.session.Start(d.ctx, d.client)
		return sessionStartedMsg{state: state, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.home, _ = a.home.Update(bodyMsg)
		a.board, _ = a.board.Update(bodyMsg)
		a.profile, _ = a.profile.Update(bodyMsg)
		a.settings, _ = a.settings.Update(bodyMsg)
		a.login, _ = a.login.Update(bodyMsg)
		a.admin, _ = a.admin.Update(bodyMsg)
		a.peek, _ = a.peek.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.home.frame = a.frame
		a.login.frame = a.frame
		a.settings.frame = a.frame
		a.admin.frame = a.frame
		return a, shimmerTickCmd()

	case sessionStartedMsg:
		// The outcome also arrives as a sessionMsg.
		return a, nil

	case sessionClosedMsg:
		return a, nil

	case sessionMsg:
		return a.applySession(msg)

	case showPeekMsg:
		a.peekOpen = true
		a.peek = newPeekModel(a.deps)
		a.peek.username = msg.username
		a.peek.width = a.width
		return a, a.peek.load(msg.username)

	case tea.KeyMsg:
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			}
			return a, nil
		}

		if a.peekOpen {
			var cmd tea.Cmd
			a.peek, cmd = a.peek.Update(msg)
			if a.peek.closed {
				a.peekOpen = false
			}
			return a, cmd
		}

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				return a.switchTo(viewHome)
			case "2":
				return a.switchTo(viewBoard)
			case "3":
				return a.switchTo(viewProfile)
			case "4":
				return a.switchTo(viewSettings)
			case "5":
				if a.isAdmin() {
					return a.switchTo(viewAdmin)
				}
				return a, nil
			}
		}
	}

	if a.peekOpen {
		var cmd tea.Cmd
		a.peek, cmd = a.peek.Update(msg)
		if a.peek.closed {
			a.peekOpen = false
		}
		return a, cmd
	}

	// Async results are routed to the model that owns them regardless of the
	// current tab so a slow load is not lost when the user switches away.
	var cmd tea.Cmd
	switch msg.(type) {
	case drawResultMsg, countdownTickMsg, homeCopiedMsg, refreshDoneMsg:
		a.home, cmd = a.home.Update(msg)
		return a, cmd
	case leaderboardLoadedMsg:
		a.board, cmd = a.board.Update(msg)
		return a, cmd
	case profileLoadedMsg, profileOpenedMsg:
		a.profile, cmd = a.profile.Update(msg)
		return a, cmd
	case settingsSavedMsg, passwordChangedMsg, logoutDoneMsg:
		a.settings, cmd = a.settings.Update(msg)
		return a, cmd
	case registrationStatusMsg, authDoneMsg:
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	case usersLoadedMsg, adminActionMsg:
		a.admin, cmd = a.admin.Update(msg)
		return a, cmd
	}

	switch a.view {
	case viewHome:
		a.home, cmd = a.home.Update(msg)
	case viewBoard:
		a.board, cmd = a.board.Update(msg)
	case viewProfile:
		if a.snap.Authenticated() {
			a.profile, cmd = a.profile.Update(msg)
		} else {
			a.login, cmd = a.login.Update(msg)
		}
	case viewSettings:
		if a.snap.Authenticated() {
			a.settings, cmd = a.settings.Update(msg)
		} else {
			a.login, cmd = a.login.Update(msg)
		}
	case viewAdmin:
		a.admin, cmd = a.admin.Update(msg)
	}
	return a, cmd
}

func (a App) applySession(msg sessionMsg) (tea.Model, tea.Cmd) {
	prev := a.snap
	a.snap = msg.snap

	lang := a.deps.fallback
	if p := msg.snap.Profile; p != nil && p.Language != "" {
		lang = i18n.ResolveTag(p.Language, a.deps.fallback.String())
	}
	a.deps.printer = i18n.Printer(lang)

	cmds := []tea.Cmd{waitForSession(a.sub)}
	var cmd tea.Cmd
	a.home, cmd = a.home.Update(msg)
	cmds = append(cmds, cmd)
	a.settings, _ = a.settings.Update(msg)
	a.profile, cmd = a.profile.Update(msg)
	cmds = append(cmds, cmd)

	if !msg.snap.Authenticated() && a.view == viewAdmin {
		a.view = viewHome
	}
	signedIn := msg.snap.Authenticated() && !prev.Authenticated()
	signedOut := !msg.snap.Authenticated() && prev.Authenticated()
	if signedIn || signedOut {
		a.admin = newAdminModel(a.deps)
		cmds = append(cmds, a.board.Init())
		if !msg.snap.Authenticated() && msg.snap.State == session.Anonymous {
			a.login = newLoginModel(a.deps)
		}
	}
	if msg.snap.State == session.Anonymous && prev.State != session.Anonymous {
		cmds = append(cmds, a.login.Init())
	}
	return a, tea.Batch(cmds...)
}

func (a App) switchTo(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	switch v {
	case viewHome:
		return a, a.home.Init()
	case viewBoard:
		return a, a.board.Init()
	case viewProfile:
		if a.snap.Authenticated() {
			return a, a.profile.Init()
		}
		return a, a.login.Init()
	case viewSettings:
		if a.snap.Authenticated() {
			a.settings = a.settings.reset()
			return a, nil
		}
		return a, a.login.Init()
	case viewAdmin:
		return a, a.admin.Init()
	}
	return a, nil
}

func (a App) isAdmin() bool {
	return a.snap.Authenticated() && a.snap.Profile.IsAdmin()
}

func (a App) isEditing() bool {
	switch a.view {
	case viewProfile, viewSettings:
		if !a.snap.Authenticated() {
			return a.login.focused
		}
		if a.view == viewSettings {
			return a.settings.editing()
		}
	case viewAdmin:
		return a.admin.editing
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)

	var statusLine string
	switch {
	case a.snap.State == session.Loading || a.snap.State == session.Uninitialized:
		statusLine = metaStyle.Render("…")
	case a.snap.Authenticated():
		p := a.snap.Profile
		parts := []string{a.deps.text(i18n.MsgSignedInAs, p.Name())}
		if f, ok := p.Today(); ok {
			parts = append(parts, FortuneStyle(f).Render(string(f)))
		}
		if p.IsAdmin() {
			parts = append(parts, adminBadgeStyle.Render(a.deps.text("admin")))
		}
		statusLine = metaStyle.Render(strings.Join(parts, " · "))
	default:
		statusLine = metaStyle.Render(a.deps.text(i18n.MsgAnonymous))
	}

	header := center(logo, a.width) + "\n" + center(statusLine, a.width)

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Home", viewHome},
		{"2", "Board", viewBoard},
		{"3", "Profile", viewProfile},
		{"4", "Settings", viewSettings},
	}
	if a.isAdmin() {
		tabs = append(tabs, tabEntry{"5", "Admin", viewAdmin})
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(a.deps.text(t.name))
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(a.deps.text(t.name))
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	tabsKey := "1-4"
	if a.isAdmin() {
		tabsKey = "1-5"
	}

	var body, help string
	switch a.view {
	case viewHome:
		body = a.home.View()
		help = helpBar(a.deps.help(tabsKey, "tabs"), a.home.helpKeys(), a.deps.help("h", "help"), a.deps.help("q", "quit"))
	case viewBoard:
		body = a.board.View()
		help = helpBar(a.deps.help(tabsKey, "tabs"), a.deps.help("j/k", "nav"), a.deps.help("p", "peek"), a.deps.help("r", "refresh"), a.deps.help("q", "quit"))
	case viewProfile, viewSettings:
		switch {
		case !a.snap.Authenticated():
			body = a.login.View()
			help = helpBar(a.deps.help(tabsKey, "tabs"), a.login.helpKeys())
		case a.view == viewProfile:
			body = a.profile.View()
			help = helpBar(a.deps.help(tabsKey, "tabs"), a.deps.help("o", "avatar"), a.deps.help("b", "background"), a.deps.help("r", "refresh"), a.deps.help("q", "quit"))
		default:
			body = a.settings.View()
			help = helpBar(a.deps.help(tabsKey, "tabs"), a.settings.helpKeys())
		}
	case viewAdmin:
		body = a.admin.View()
		help = helpBar(a.deps.help(tabsKey, "tabs"), a.admin.helpKeys())
	}

	if a.peekOpen {
		body = a.peek.View()
		help = helpBar(a.deps.help("o", "avatar"), a.deps.help("esc", "close"))
	}
	if a.helpOpen {
		body = helpView(a.deps.printer)
		help = helpBar(a.deps.help("esc", "close"))
	}

	// Chrome budget: header(2) + tabs(1) + blank(1) + help(1) = 5 lines + body
	body = strings.TrimRight(truncateToHeight(body, a.height-5), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", header, tabBar.String(), body, help)
}

// center pads s on the left so it sits in the middle of width.
func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
