package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 500

// editKey applies a key message to a form value. Typed and pasted runes are
// appended up to maxInputLen; backspace drops one rune. Other keys leave text
// unchanged.
func editKey(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		return appendText(text, string(msg.Runes))
	case tea.KeySpace:
		return appendText(text, " ")
	case tea.KeyBackspace:
		_, size := utf8.DecodeLastRuneInString(text)
		return text[:len(text)-size]
	}
	return text
}

func appendText(text, s string) string {
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	runes := []rune(s)
	if len(runes) > room {
		runes = runes[:room]
	}
	return text + string(runes)
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// formField is one labelled input in a form.
type formField struct {
	label  string
	value  string
	secret bool
}

// renderField renders a labelled input line. Secret values are masked.
func renderField(f formField, focused bool, animFrame int) string {
	label := dimStyle.Render(padRight(f.label, 14))
	value := f.value
	if f.secret {
		value = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	if !focused {
		if value == "" {
			return "   " + label + inputPlaceholderStyle.Render("—")
		}
		return "   " + label + normalStyle.Render(value)
	}
	cursor := " "
	if (animFrame/4)%2 == 0 {
		cursor = accentStyle.Render("█")
	}
	return " " + inputPromptStyle.Render(">") + " " + label + inputTextStyle.Render(value) + cursor
}

func padRight(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
