package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// -- messages --

type settingsSavedMsg struct {
	profile *domain.MyProfile
	err     error
}

type passwordChangedMsg struct {
	err error
}

type logoutDoneMsg struct {
	err error
}

// Form rows. The first five are free text.
const (
	rowDisplayName = iota
	rowBio
	rowAvatarURL
	rowBackgroundURL
	rowQQ
	rowUseQQAvatar
	rowLanguage
	rowTimezone
	rowCount
)

const textRows = rowQQ + 1

type settingsMode int

const (
	setNormal settingsMode = iota
	setEditing
	setPassword
)

// settingsForm is the editable copy of the profile.
type settingsForm struct {
	text        [textRows]formField
	useQQAvatar bool
	language    string
	timezone    string
}

func formFrom(p domain.Profile) settingsForm {
	f := settingsForm{
		useQQAvatar: p.UseQQAvatar,
		language:    p.Language,
		timezone:    p.Timezone,
	}
	f.text[rowDisplayName] = formField{label: "display name", value: p.DisplayName}
	f.text[rowBio] = formField{label: "bio", value: p.Bio}
	f.text[rowAvatarURL] = formField{label: "avatar url", value: p.AvatarURL}
	f.text[rowBackgroundURL] = formField{label: "background", value: p.BackgroundURL}
	qq := ""
	if p.QQ != nil {
		qq = strconv.FormatInt(*p.QQ, 10)
	}
	f.text[rowQQ] = formField{label: "qq", value: qq}
	return f
}

var errClearQQ = errors.New("the QQ number cannot be removed, only changed")

// diffProfile returns an update holding only the fields that differ from p.
func diffProfile(p domain.Profile, f settingsForm) (client.ProfileUpdate, error) {
	var u client.ProfileUpdate
	str := func(cur, next string) *string {
		if cur == next {
			return nil
		}
		return &next
	}
	u.DisplayName = str(p.DisplayName, strings.TrimSpace(f.text[rowDisplayName].value))
	u.Bio = str(p.Bio, f.text[rowBio].value)
	u.AvatarURL = str(p.AvatarURL, strings.TrimSpace(f.text[rowAvatarURL].value))
	u.BackgroundURL = str(p.BackgroundURL, strings.TrimSpace(f.text[rowBackgroundURL].value))
	u.Language = str(p.Language, f.language)
	u.Timezone = str(p.Timezone, f.timezone)

	if raw := strings.TrimSpace(f.text[rowQQ].value); raw != "" {
		qq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || qq <= 0 {
			return client.ProfileUpdate{}, fmt.Errorf("invalid QQ number %q", raw)
		}
		if p.QQ == nil || *p.QQ != qq {
			u.QQ = &qq
		}
	} else if p.QQ != nil {
		return client.ProfileUpdate{}, errClearQQ
	}

	if f.useQQAvatar != p.UseQQAvatar {
		v := f.useQQAvatar
		u.UseQQAvatar = &v
	}
	return u, nil
}

// cycle returns the entry after cur in opts, or the first one.
func cycle(opts []string, cur string) string {
	i := slices.Index(opts, cur)
	return opts[(i+1)%len(opts)]
}

type settingsModel struct {
	deps    *deps
	base    domain.Profile
	form    settingsForm
	mode    settingsMode
	cursor  int
	pw      [2]formField
	pwFocus int
	saving  bool
	status  string
	err     string
	width   int
	height  int
	frame   int
}

func newSettingsModel(d *deps) settingsModel {
	return settingsModel{deps: d}.reset()
}

// reset reloads the form from the session profile and drops unsaved edits.
func (m settingsModel) reset() settingsModel {
	p, _ := m.deps.session.Profile()
	m.base = p
	m.form = formFrom(p)
	m.mode = setNormal
	m.status = ""
	m.err = ""
	return m
}

func (m settingsModel) editing() bool {
	return m.mode != setNormal
}

func (m settingsModel) dirty() bool {
	u, err := diffProfile(m.base, m.form)
	return err != nil || !u.IsEmpty()
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionMsg:
		if msg.snap.Profile == nil {
			return newSettingsModel(m.deps).withSize(m.width, m.height), nil
		}
		if m.mode == setNormal && !m.dirty() && !m.saving {
			status := m.status
			m = m.reset()
			m.status = status
		}
		return m, nil

	case settingsSavedMsg:
		m.saving = false
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		m.base = msg.profile.User
		m.form = formFrom(msg.profile.User)
		m.err = ""
		m.status = m.deps.text(i18n.MsgSaved)
		return m, nil

	case passwordChangedMsg:
		m.saving = false
		if msg.err != nil {
			if !client.IsCanceled(msg.err) {
				m.err = m.deps.errText(msg.err)
			}
			return m, nil
		}
		m.mode = setNormal
		m.pw = [2]formField{}
		m.err = ""
		m.status = m.deps.text("password changed")
		return m, nil

	case logoutDoneMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case setEditing:
			return m.updateEditing(msg)
		case setPassword:
			return m.updatePassword(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m settingsModel) withSize(w, h int) settingsModel {
	m.width, m.height = w, h
	return m
}

func (m settingsModel) updateNormal(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down", "tab":
		m.cursor = (m.cursor + 1) % rowCount
	case "k", "up", "shift+tab":
		m.cursor = (m.cursor + rowCount - 1) % rowCount
	case "enter", " ", "space":
		switch {
		case m.cursor < textRows:
			m.mode = setEditing
		case m.cursor == rowUseQQAvatar:
			m.form.useQQAvatar = !m.form.useQQAvatar
		case m.cursor == rowLanguage:
			m.form.language = cycle(domain.Languages, m.form.language)
		case m.cursor == rowTimezone:
			m.form.timezone = cycle(domain.Timezones, m.form.timezone)
		}
		m.status = ""
	case "ctrl+s", "s":
		return m.save()
	case "u":
		m = m.reset()
	case "p":
		m.mode = setPassword
		m.pw = [2]formField{
			{label: "current", secret: true},
			{label: "new", secret: true},
		}
		m.pwFocus = 0
		m.status = ""
		m.err = ""
	case "x":
		d := m.deps
		return m, func() tea.Msg {
			return logoutDoneMsg{err: d.session.Logout()}
		}
	}
	return m, nil
}

func (m settingsModel) updateEditing(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "tab":
		m.mode = setNormal
		return m, nil
	case "ctrl+s":
		m.mode = setNormal
		return m.save()
	}
	f := &m.form.text[m.cursor]
	f.value = editKey(f.value, msg)
	return m, nil
}

func (m settingsModel) updatePassword(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = setNormal
		m.pw = [2]formField{}
		return m, nil
	case "tab", "shift+tab", "down", "up":
		m.pwFocus = 1 - m.pwFocus
		return m, nil
	case "enter":
		if m.pwFocus == 0 {
			m.pwFocus = 1
			return m, nil
		}
		if m.saving {
			return m, nil
		}
		current, next := m.pw[0].value, m.pw[1].value
		if current == "" || next == "" {
			m.err = m.deps.text("both passwords are required")
			return m, nil
		}
		m.saving = true
		m.err = ""
		d := m.deps
		return m, func() tea.Msg {
			return passwordChangedMsg{err: d.client.ChangePassword(d.ctx, current, next)}
		}
	}
	m.pw[m.pwFocus].value = editKey(m.pw[m.pwFocus].value, msg)
	return m, nil
}

func (m settingsModel) save() (settingsModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	u, err := diffProfile(m.base, m.form)
	switch {
	case errors.Is(err, errClearQQ):
		m.err = m.deps.text(errClearQQ.Error())
		return m, nil
	case err != nil:
		m.err = m.deps.text("invalid QQ number %q", strings.TrimSpace(m.form.text[rowQQ].value))
		return m, nil
	}
	if u.IsEmpty() {
		m.status = m.deps.text("nothing to save")
		return m, nil
	}
	m.saving = true
	m.err = ""
	m.status = ""
	d := m.deps
	return m, func() tea.Msg {
		res, err := d.client.UpdateMyProfile(d.ctx, u)
		if err != nil {
			return settingsSavedMsg{err: err}
		}
		d.session.UpdateProfile(res.User)
		return settingsSavedMsg{profile: res}
	}
}

func (m settingsModel) helpKeys() string {
	switch m.mode {
	case setEditing:
		return m.deps.help("enter", "done") + "  " + m.deps.help("ctrl+s", "save")
	case setPassword:
		return m.deps.help("tab", "next") + "  " + m.deps.help("enter", "submit") + "  " + m.deps.help("esc", "cancel")
	}
	return m.deps.help("j/k", "nav") + "  " + m.deps.help("enter", "edit") + "  " +
		m.deps.help("s", "save") + "  " + m.deps.help("u", "undo") + "  " +
		m.deps.help("p", "password") + "  " + m.deps.help("x", "logout")
}

func (m settingsModel) View() string {
	var sb strings.Builder

	if m.mode == setPassword {
		sb.WriteString(" " + sectionHeaderStyle.Render("── "+m.deps.text("CHANGE PASSWORD")+" ──") + "\n\n")
		for i, f := range m.pw {
			sb.WriteString(renderField(m.deps.field(f), i == m.pwFocus, m.frame) + "\n")
		}
		m.writeFooter(&sb)
		return sb.String()
	}

	sb.WriteString(" " + sectionHeaderStyle.Render("── "+m.deps.text("PROFILE")+" ──") + "\n\n")
	for i := 0; i < textRows; i++ {
		f := m.form.text[i]
		if m.mode == setEditing && i == m.cursor {
			sb.WriteString(renderField(m.deps.field(f), true, m.frame) + "\n")
			continue
		}
		sb.WriteString(m.rowPrefix(i) + dimStyle.Render(padRight(m.deps.text(f.label), 14)) + m.rowValue(truncStr(oneLine(f.value), 48), i) + "\n")
	}

	qqAvatar := m.deps.text("off")
	if m.form.useQQAvatar {
		qqAvatar = m.deps.text("on")
	}
	sb.WriteString(m.rowPrefix(rowUseQQAvatar) + dimStyle.Render(padRight(m.deps.text("qq avatar"), 14)) + m.rowValue(qqAvatar, rowUseQQAvatar) + "\n")
	sb.WriteString(m.rowPrefix(rowLanguage) + dimStyle.Render(padRight(m.deps.text("language"), 14)) + m.rowValue(orDash(m.form.language), rowLanguage) + "\n")
	sb.WriteString(m.rowPrefix(rowTimezone) + dimStyle.Render(padRight(m.deps.text("timezone"), 14)) + m.rowValue(orDash(m.form.timezone), rowTimezone) + "\n")

	if m.dirty() {
		sb.WriteString("\n " + accentStyle.Render(m.deps.text("unsaved changes")) + "\n")
	}
	m.writeFooter(&sb)
	return sb.String()
}

func (m settingsModel) rowPrefix(row int) string {
	if row == m.cursor {
		return " " + accentStyle.Render("▸") + " "
	}
	return "   "
}

func (m settingsModel) rowValue(v string, row int) string {
	if v == "" {
		return inputPlaceholderStyle.Render("—")
	}
	if row == m.cursor {
		return selectedStyle.Render(v)
	}
	return normalStyle.Render(v)
}

func (m settingsModel) writeFooter(sb *strings.Builder) {
	if m.saving {
		sb.WriteString("\n " + dimStyle.Render(m.deps.text("saving...")) + "\n")
	}
	if m.status != "" {
		sb.WriteString("\n " + successStyle.Render(m.status) + "\n")
	}
	if m.err != "" {
		sb.WriteString("\n " + errorStyle.Render(m.err) + "\n")
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
