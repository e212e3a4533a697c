package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

func testUsers() []domain.Profile {
	root := makeTestProfile("root")
	root.Role = domain.RoleAdmin
	bob := makeTestProfile("bob")
	bob.IsHidden = true
	bob.Tags = []string{"vip", "early"}
	carol := makeTestProfile("carol")
	carol.Status = domain.StatusInactive
	return []domain.Profile{root, bob, carol}
}

func newLoadedAdminModel(t *testing.T) adminModel {
	t.Helper()
	m := newAdminModel(newTestDeps())
	m.width = 100
	m.height = 30
	m, _ = m.Update(usersLoadedMsg{users: testUsers()})
	return m
}

func TestAdminListsUsers(t *testing.T) {
	m := newLoadedAdminModel(t)
	view := m.View()
	for _, want := range []string{"root", "admin", "bob", "hidden", "vip,early", "carol", domain.StatusInactive} {
		if !strings.Contains(view, want) {
			t.Errorf("admin view missing %q:\n%s", want, view)
		}
	}
}

func TestAdminLoadErrorBeforeData(t *testing.T) {
	m := newAdminModel(newTestDeps())
	if !strings.Contains(m.View(), "loading users") {
		t.Errorf("initial view:\n%s", m.View())
	}
	m, _ = m.Update(usersLoadedMsg{err: &client.HTTPError{StatusCode: 403, Message: "Not enough permissions"}})
	if !strings.Contains(m.View(), "Not enough permissions") {
		t.Errorf("error view:\n%s", m.View())
	}
}

func TestAdminCursorClampsOnReload(t *testing.T) {
	m := newLoadedAdminModel(t)
	m.cursor = 2
	m, _ = m.Update(usersLoadedMsg{users: testUsers()[:1]})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestAdminActionsIssueRequests(t *testing.T) {
	for _, key := range []string{"v", "s"} {
		t.Run(key, func(t *testing.T) {
			m := newLoadedAdminModel(t)
			m, cmd := m.Update(press(key))
			if cmd == nil || !m.busy {
				t.Fatal("expected action request")
			}
			if _, again := m.Update(press(key)); again != nil {
				t.Error("second action issued while busy")
			}
		})
	}
}

func TestAdminTagEdit(t *testing.T) {
	m := newLoadedAdminModel(t)
	update := func(msg tea.Msg) { m, _ = m.Update(msg) }

	update(press("j"))
	update(press("t"))
	if !m.editing || m.tags != "vip, early" {
		t.Fatalf("editing=%v tags=%q", m.editing, m.tags)
	}
	// Keys go to the tag field, not navigation.
	typeText(t, update, ", j")
	if m.cursor != 1 || m.tags != "vip, early, j" {
		t.Errorf("cursor=%d tags=%q", m.cursor, m.tags)
	}
	m, cmd := m.Update(press("enter"))
	if cmd == nil || m.editing {
		t.Error("expected tag save")
	}

	m.busy = false
	update(press("t"))
	update(press("esc"))
	if m.editing {
		t.Error("esc did not cancel tag edit")
	}
}

func TestAdminActionResult(t *testing.T) {
	m := newLoadedAdminModel(t)
	m.busy = true
	m, cmd := m.Update(adminActionMsg{action: "hidden", user: "bob"})
	if m.busy || m.status != "bob: hidden" {
		t.Errorf("busy=%v status=%q", m.busy, m.status)
	}
	if cmd == nil {
		t.Error("expected user list reload after an action")
	}

	m, cmd = m.Update(adminActionMsg{action: "hidden", user: "bob", err: &client.HTTPError{StatusCode: 404, Message: "User not found"}})
	if cmd != nil || m.err != "User not found" {
		t.Errorf("err = %q, reload = %v", m.err, cmd != nil)
	}
}

func TestAdminPeek(t *testing.T) {
	m := newLoadedAdminModel(t)
	m, _ = m.Update(press("j"))
	_, cmd := m.Update(press("p"))
	if cmd == nil {
		t.Fatal("expected peek command")
	}
	if msg, ok := cmd().(showPeekMsg); !ok || msg.username != "bob" {
		t.Errorf("peek = %#v", msg)
	}
}

// Toggling visibility sends the inverse of the current flag.
func TestAdminVisibilityRequest(t *testing.T) {
	var gotPath string
	var body map[string]bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	m := newLoadedAdminModel(t)
	signIn(t, m.deps, testUsers()[0])
	m.deps.client = client.New(srv.URL, m.deps.session)

	m, _ = m.Update(press("j"))
	_, cmd := m.Update(press("v"))
	msg, ok := cmd().(adminActionMsg)
	if !ok || msg.err != nil {
		t.Fatalf("action = %#v", msg)
	}
	if gotPath != "PATCH /admin/users/id-bob/visibility" {
		t.Errorf("request = %q", gotPath)
	}
	if hidden, ok := body["is_hidden"]; !ok || hidden {
		t.Errorf("body = %v, want is_hidden=false", body)
	}
	if msg.action != "shown" {
		t.Errorf("action = %q", msg.action)
	}
}
