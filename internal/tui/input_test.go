package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditKey(t *testing.T) {
	tests := []struct {
		name  string
		start string
		msg   tea.KeyMsg
		want  string
	}{
		{"type into empty", "", typed("a"), "a"},
		{"type digit", "qq", typed("1"), "qq1"},
		{"type cjk", "今日", typed("运"), "今日运"},
		{"paste", "hi ", typed("there"), "hi there"},
		{"paste url", "", typed("https://q.qlogo.cn/g?b=qq&nk=1&s=640"), "https://q.qlogo.cn/g?b=qq&nk=1&s=640"},
		{"space key", "a", tea.KeyMsg{Type: tea.KeySpace}, "a "},
		{"backspace ascii", "hello", tea.KeyMsg{Type: tea.KeyBackspace}, "hell"},
		{"backspace cjk", "大吉", tea.KeyMsg{Type: tea.KeyBackspace}, "大"},
		{"backspace emoji", "ok\U0001f600", tea.KeyMsg{Type: tea.KeyBackspace}, "ok"},
		{"backspace empty", "", tea.KeyMsg{Type: tea.KeyBackspace}, ""},
		{"enter ignored", "hello", tea.KeyMsg{Type: tea.KeyEnter}, "hello"},
		{"esc ignored", "hello", tea.KeyMsg{Type: tea.KeyEsc}, "hello"},
		{"tab ignored", "hello", tea.KeyMsg{Type: tea.KeyTab}, "hello"},
		{"arrows ignored", "hello", tea.KeyMsg{Type: tea.KeyLeft}, "hello"},
		{"ctrl combos ignored", "hello", tea.KeyMsg{Type: tea.KeyCtrlC}, "hello"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editKey(tc.start, tc.msg); got != tc.want {
				t.Errorf("editKey(%q, %v) = %q, want %q", tc.start, tc.msg, got, tc.want)
			}
		})
	}
}

func TestEditKeyClampsToMaxInputLen(t *testing.T) {
	full := strings.Repeat("a", maxInputLen)
	almost := strings.Repeat("a", maxInputLen-3)
	cjkFull := strings.Repeat("吉", maxInputLen)

	tests := []struct {
		name  string
		start string
		msg   tea.KeyMsg
		want  string
	}{
		{"full rejects rune", full, typed("b"), full},
		{"full rejects cjk", cjkFull, typed("凶"), cjkFull},
		{"paste clamped", almost, typed("abcdef"), almost + "abc"},
		{"backspace at limit", full, tea.KeyMsg{Type: tea.KeyBackspace}, full[:len(full)-1]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editKey(tc.start, tc.msg)
			if got != tc.want {
				t.Errorf("got %d runes, want %d", len([]rune(got)), len([]rune(tc.want)))
			}
		})
	}
}

func TestTruncateToHeight(t *testing.T) {
	five := "l1\nl2\nl3\nl4\nl5\n"
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"cut", five, 3, "l1\nl2\nl3\n"},
		{"exact", "l1\nl2\nl3\n", 3, "l1\nl2\nl3\n"},
		{"fits", "l1\nl2\n", 10, "l1\nl2\n"},
		{"zero keeps all", five, 0, five},
		{"negative keeps all", five, -1, five},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateToHeight(tc.in, tc.max); got != tc.want {
				t.Errorf("truncateToHeight(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

func TestRenderFieldMasksSecret(t *testing.T) {
	f := formField{label: "password", value: "hunter2", secret: true}
	for _, focused := range []bool{true, false} {
		got := renderField(f, focused, 0)
		if strings.Contains(got, "hunter2") {
			t.Errorf("focused=%v: secret leaked: %q", focused, got)
		}
		if !strings.Contains(got, "•••••••") {
			t.Errorf("focused=%v: mask missing: %q", focused, got)
		}
	}
}

func TestRenderFieldShowsValueAndCursor(t *testing.T) {
	f := formField{label: "username", value: "alice"}
	got := renderField(f, true, 0)
	if !strings.Contains(got, "alice") || !strings.Contains(got, "█") {
		t.Errorf("focused field = %q", got)
	}
	if blink := renderField(f, true, 4); strings.Contains(blink, "█") {
		t.Errorf("cursor should blink off on frame 4: %q", blink)
	}
	if got := renderField(formField{label: "bio"}, false, 0); !strings.Contains(got, "bio") || !strings.Contains(got, "—") {
		t.Errorf("empty field = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("今日", 4); got != "今日  " {
		t.Errorf("padRight cjk = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("padRight long = %q", got)
	}
}
