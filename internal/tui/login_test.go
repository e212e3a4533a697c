package tui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/oftx/dailyfortune/internal/session"
	"github.com/oftx/dailyfortune/pkg/client"
)

func newTestLoginModel() loginModel {
	m := newLoginModel(newTestDeps())
	m.width = 80
	m.height = 24
	return m
}

func TestLoginRegistrationClosed(t *testing.T) {
	m := newTestLoginModel()
	m, _ = m.Update(registrationStatusMsg{open: false})
	m, _ = m.Update(press("r"))
	if m.register {
		t.Error("register mode entered while registration is closed")
	}
	if !strings.Contains(m.View(), "registration is closed") {
		t.Errorf("closed notice missing:\n%s", m.View())
	}
}

func TestLoginRegistrationStatusErrorHidesRegister(t *testing.T) {
	m := newTestLoginModel()
	m.regOpen = true
	m.register = true
	m, _ = m.Update(registrationStatusMsg{err: errTest})
	if m.regOpen || m.register {
		t.Error("register offered with an unknown registration status")
	}
}

func TestLoginRegisterModeAddsEmail(t *testing.T) {
	m := newTestLoginModel()
	m, _ = m.Update(registrationStatusMsg{open: true})
	m, _ = m.Update(press("r"))
	if !m.register {
		t.Fatal("expected register mode")
	}
	if got := m.order(); len(got) != 3 || got[1] != fieldEmail {
		t.Errorf("order = %v", got)
	}
	view := m.View()
	if !strings.Contains(view, "REGISTER") || !strings.Contains(view, "email") {
		t.Errorf("register form:\n%s", view)
	}
}

func TestLoginTypingAndFocus(t *testing.T) {
	m := newTestLoginModel()
	update := func(msg tea.Msg) { m, _ = m.Update(msg) }

	update(press("enter"))
	if !m.focused {
		t.Fatal("form not focused")
	}
	typeText(t, update, "alice")
	update(press("tab"))
	typeText(t, update, "hunter2")
	if m.fields[fieldUsername].value != "alice" || m.fields[fieldPassword].value != "hunter2" {
		t.Errorf("fields = %q, %q", m.fields[fieldUsername].value, m.fields[fieldPassword].value)
	}
	if strings.Contains(m.View(), "hunter2") {
		t.Error("password rendered in clear text")
	}
	update(press("backspace"))
	if m.fields[fieldPassword].value != "hunter" {
		t.Errorf("backspace: %q", m.fields[fieldPassword].value)
	}
	update(press("esc"))
	if m.focused {
		t.Error("esc did not leave the form")
	}
}

func TestLoginSubmitRequiresFields(t *testing.T) {
	m := newTestLoginModel()
	m.focused = true
	m.fields[fieldUsername].value = "alice"
	m.focus = 1
	m, cmd := m.Update(press("enter"))
	if cmd != nil {
		t.Error("submitted without a password")
	}
	if m.err == "" {
		t.Error("missing field not reported")
	}

	m.fields[fieldPassword].value = "pw"
	m, cmd = m.Update(press("enter"))
	if cmd == nil || !m.busy {
		t.Error("expected login request")
	}
	if !strings.Contains(m.View(), "signing in") {
		t.Errorf("busy view:\n%s", m.View())
	}
}

func TestLoginAuthError(t *testing.T) {
	m := newTestLoginModel()
	m.busy = true
	m, _ = m.Update(authDoneMsg{err: &client.HTTPError{StatusCode: 401, Message: "Login failed"}})
	if m.busy || m.err != "Login failed" {
		t.Errorf("busy=%v err=%q", m.busy, m.err)
	}

	m.err = ""
	m, _ = m.Update(authDoneMsg{err: context.Canceled})
	if m.err != "" {
		t.Errorf("canceled login reported %q", m.err)
	}
}

func TestLoginAuthSuccessClearsPassword(t *testing.T) {
	m := newTestLoginModel()
	m.focused = true
	m.busy = true
	m.fields[fieldPassword].value = "pw"
	m, _ = m.Update(authDoneMsg{username: "alice"})
	if m.fields[fieldPassword].value != "" || m.focused {
		t.Error("form not reset after sign in")
	}
}

// A successful login stores the token and pulls the profile so the next
// draw time is known.
func TestLoginSubmitSignsIn(t *testing.T) {
	next := "2025-03-11T00:00:00Z"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			if err := r.ParseForm(); err != nil || r.PostForm.Get("username") != "alice" {
				t.Errorf("login form = %v, %v", r.PostForm, err)
			}
			io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer","user":{"id":"1","username":"alice","registration_date":"2025-01-02T03:04:05Z","last_active_date":"2025-03-10T11:00:00Z"}}`) //nolint:errcheck
		case "/users/me":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("Authorization = %q", got)
			}
			io.WriteString(w, `{"user":{"id":"1","username":"alice","registration_date":"2025-01-02T03:04:05Z","last_active_date":"2025-03-10T11:00:00Z","has_drawn_today":true,"todays_fortune":"吉"},"next_draw_at":"`+next+`"}`) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := session.New(session.NewMemoryStore(""), zerolog.Nop())
	c := client.New(srv.URL, sess)
	if _, err := sess.Start(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	d := newTestDeps()
	d.client = c
	d.session = sess

	m := newLoginModel(d)
	m.focused = true
	m.focus = 1
	m.fields[fieldUsername].value = " alice "
	m.fields[fieldPassword].value = "pw"
	_, cmd := m.Update(press("enter"))
	if cmd == nil {
		t.Fatal("expected login command")
	}
	msg, ok := cmd().(authDoneMsg)
	if !ok || msg.err != nil {
		t.Fatalf("auth = %#v", msg)
	}
	if sess.Token() != "tok-1" {
		t.Errorf("token = %q", sess.Token())
	}
	at, ok := sess.NextDrawAt()
	if !ok || !at.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("next draw = %v, %v", at, ok)
	}
}

func TestLoginSurvivesProfileFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer","user":{"id":"1","username":"alice"}}`) //nolint:errcheck
		case "/users/me":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := session.NewMemoryStore("")
	sess := session.New(store, zerolog.Nop())
	c := client.New(srv.URL, sess)
	if _, err := sess.Start(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	d := newTestDeps()
	d.client = c
	d.session = sess

	m := newLoginModel(d)
	m.focused = true
	m.fields[fieldUsername].value = "alice"
	m.fields[fieldPassword].value = "pw"
	_, cmd := m.submit()
	if cmd == nil {
		t.Fatal("expected login command")
	}
	if msg, ok := cmd().(authDoneMsg); !ok || msg.err != nil {
		t.Fatalf("auth = %#v", msg)
	}
	if !sess.Snapshot().Authenticated() {
		t.Errorf("state = %v, want authenticated", sess.State())
	}
	if tok, _ := store.Load(); tok != "tok-1" { //nolint:errcheck
		t.Errorf("persisted token = %q, want tok-1", tok)
	}
}
