package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oftx/dailyfortune/internal/config"
	"github.com/oftx/dailyfortune/internal/log"
	"github.com/oftx/dailyfortune/pkg/domain"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeAPI serves canned responses keyed by "METHOD /path" and records
// every request it sees.
type fakeAPI struct {
	mu       sync.Mutex
	seen     []string
	bodies   map[string]string
	handlers map[string]string
	failures map[string]failure
}

type failure struct {
	status int
	detail string
}

func newFakeAPI(t *testing.T, handlers map[string]string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{handlers: handlers, bodies: map[string]string{}, failures: map[string]failure{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body) //nolint:errcheck
		f.mu.Lock()
		f.seen = append(f.seen, key)
		f.bodies[key] = string(body)
		fail, failing := f.failures[key]
		f.mu.Unlock()

		if failing {
			w.WriteHeader(fail.status)
			io.WriteString(w, `{"detail":"`+fail.detail+`"}`) //nolint:errcheck
			return
		}

		resp, ok := handlers[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Not Found"}`) //nolint:errcheck
			return
		}
		io.WriteString(w, resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

// fail makes key answer with status and a detail message.
func (f *fakeAPI) fail(key string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key] = failure{status: status, detail: detail}
}

func (f *fakeAPI) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.seen {
		if s == key {
			return true
		}
	}
	return false
}

func (f *fakeAPI) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func userJSON(username, role string, fortune string) string {
	drawn := "false"
	today := "null"
	if fortune != "" {
		drawn = "true"
		today = `"` + fortune + `"`
	}
	return `{"id":"id-` + username + `","username":"` + username + `","display_name":"` +
		strings.ToUpper(username[:1]) + username[1:] + `","email":"` + username + `@example.com","role":"` + role +
		`","language":"en","timezone":"UTC","registration_date":"2025-01-02T03:04:05Z","last_active_date":"2025-03-10T11:00:00Z",` +
		`"total_draws":7,"has_drawn_today":` + drawn + `,"todays_fortune":` + today + `,"status":"active","is_hidden":false,"tags":[]}`
}

func meJSON(username, role, fortune, next string) string {
	n := "null"
	if next != "" {
		n = `"` + next + `"`
	}
	return `{"user":` + userJSON(username, role, fortune) + `,"next_draw_at":` + n + `}`
}

// newTestCLI builds a cli against srv. A non-empty token signs the session in.
func newTestCLI(t *testing.T, srv *httptest.Server, token, stdin string) (*cli, *bytes.Buffer) {
	t.Helper()
	cfg := config.Config{
		APIURL:   srv.URL,
		Token:    token,
		Home:     t.TempDir(),
		LogLevel: "debug",
		Timeout:  5 * time.Second,
		Lang:     "en",
	}
	var out bytes.Buffer
	c := newCLI(cfg, log.Nop(), &out, strings.NewReader(stdin))
	c.now = func() time.Time { return testNow }
	return c, &out
}

func TestLoginSavesToken(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"POST /auth/login": `{"access_token":"tok-1","token_type":"bearer","user":` + userJSON("alice", "user", "") + `}`,
		"GET /users/me":    meJSON("alice", "user", "", ""),
	})
	c, out := newTestCLI(t, srv, "", "secret\n")

	if err := c.dispatch(context.Background(), []string{"login", "alice"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "signed in as Alice") {
		t.Errorf("output = %q", out.String())
	}
	if body := api.body("POST /auth/login"); !strings.Contains(body, "password=secret") {
		t.Errorf("login body = %q", body)
	}
	data, err := os.ReadFile(c.cfg.TokenPath())
	if err != nil || string(data) != "tok-1" {
		t.Errorf("token file = %q, %v", data, err)
	}
}

func TestLoginKeepsTokenWhenProfileFetchFails(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api, srv := newFakeAPI(t, map[string]string{
				"POST /auth/login": `{"access_token":"tok-1","token_type":"bearer","user":` + userJSON("alice", "user", "") + `}`,
			})
			api.fail("GET /users/me", tc.status, "unavailable")
			c, out := newTestCLI(t, srv, "", "secret\n")

			if err := c.dispatch(context.Background(), []string{"login", "alice"}); err != nil {
				t.Fatalf("login: %v", err)
			}
			if !api.called("GET /users/me") {
				t.Error("profile was not fetched after login")
			}
			if !strings.Contains(out.String(), "signed in as Alice") {
				t.Errorf("output = %q", out.String())
			}
			data, err := os.ReadFile(c.cfg.TokenPath())
			if err != nil || string(data) != "tok-1" {
				t.Errorf("token file = %q, %v", data, err)
			}
			if !c.session.Snapshot().Authenticated() || c.session.Token() != "tok-1" {
				t.Errorf("session = %+v, want authenticated with tok-1", c.session.Snapshot())
			}
		})
	}
}

func TestLoginFailureUsesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Incorrect username or password"}`) //nolint:errcheck
	}))
	defer srv.Close()
	c, _ := newTestCLI(t, srv, "", "wrong\n")
	err := c.dispatch(context.Background(), []string{"login", "alice"})
	if err == nil || err.Error() != "Incorrect username or password" {
		t.Errorf("err = %v", err)
	}
}

func TestLoginUsage(t *testing.T) {
	_, srv := newFakeAPI(t, nil)
	c, _ := newTestCLI(t, srv, "", "")
	if err := c.dispatch(context.Background(), []string{"login"}); !errors.Is(err, errUsage) {
		t.Errorf("err = %v, want errUsage", err)
	}
}

func TestRegisterClosed(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /config/registration-status": `{"is_open":false}`,
	})
	c, _ := newTestCLI(t, srv, "", "pw\n")
	err := c.dispatch(context.Background(), []string{"register", "bob", "bob@example.com"})
	if err == nil || err.Error() != "registration is closed" {
		t.Errorf("err = %v", err)
	}
	if api.called("POST /auth/register") {
		t.Error("register sent while closed")
	}
}

func TestRegisterOpen(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /config/registration-status": `{"is_open":true}`,
		"POST /auth/register":             `{"access_token":"tok-2","token_type":"bearer","user":` + userJSON("bob", "user", "") + `}`,
		"GET /users/me":                   meJSON("bob", "user", "", ""),
	})
	c, out := newTestCLI(t, srv, "", "pw\n")
	if err := c.dispatch(context.Background(), []string{"register", "bob", "bob@example.com"}); err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(api.body("POST /auth/register")), &body); err != nil {
		t.Fatal(err)
	}
	if body["email"] != "bob@example.com" || body["password"] != "pw" {
		t.Errorf("register body = %v", body)
	}
	if !strings.Contains(out.String(), "signed in as Bob") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDrawAnonymousIsLocal(t *testing.T) {
	api, srv := newFakeAPI(t, nil)
	c, out := newTestCLI(t, srv, "", "")
	if err := c.dispatch(context.Background(), []string{"draw"}); err != nil {
		t.Fatal(err)
	}
	if api.called("POST /fortune/draw") {
		t.Error("anonymous draw reached the server")
	}
	if !strings.Contains(out.String(), "local draw (not signed in)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDrawAuthenticated(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /users/me":      meJSON("alice", "user", "", ""),
		"POST /fortune/draw": `{"fortune":"大吉","next_draw_at":"2025-03-11T00:00:00Z"}`,
	})
	c, out := newTestCLI(t, srv, "tok", "")
	if err := c.dispatch(context.Background(), []string{"draw"}); err != nil {
		t.Fatal(err)
	}
	if !api.called("POST /fortune/draw") {
		t.Fatal("draw request not sent")
	}
	got := out.String()
	if !strings.Contains(got, "大 吉") || !strings.Contains(got, "next draw in 12:00:00") {
		t.Errorf("output = %q", got)
	}
}

func TestDrawDuringCountdown(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /users/me": meJSON("alice", "user", "凶", "2025-03-11T00:00:00.000000Z"),
	})
	c, out := newTestCLI(t, srv, "tok", "")
	if err := c.dispatch(context.Background(), []string{"draw"}); err != nil {
		t.Fatal(err)
	}
	if api.called("POST /fortune/draw") {
		t.Error("draw sent during countdown")
	}
	got := out.String()
	if !strings.Contains(got, "today's fortune: 凶") || !strings.Contains(got, "next draw in 12:00:00") {
		t.Errorf("output = %q", got)
	}
}

func TestStatus(t *testing.T) {
	exp := testNow.Add(48 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	_, srv := newFakeAPI(t, map[string]string{
		"GET /users/me": meJSON("alice", "admin", "", ""),
	})
	c, out := newTestCLI(t, srv, token, "")
	if err := c.dispatch(context.Background(), []string{"status"}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"signed in as Alice (admin)", "token expires 2025-03-12 12:00", "a draw is available now", "7 draws since 2025-01-02"} {
		if !strings.Contains(got, want) {
			t.Errorf("status output missing %q:\n%s", want, got)
		}
	}
}

func TestStatusAnonymous(t *testing.T) {
	_, srv := newFakeAPI(t, nil)
	c, out := newTestCLI(t, srv, "", "")
	if err := c.dispatch(context.Background(), []string{"status"}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "not signed in" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLeaderboard(t *testing.T) {
	_, srv := newFakeAPI(t, map[string]string{
		"GET /users/me": meJSON("alice", "user", "", ""),
		"GET /fortune/leaderboard": `[{"fortune":"凶","users":[{"username":"carl"}]},` +
			`{"fortune":"大吉","users":[{"username":"alice","display_name":"Alice"},{"username":"bob"}]}]`,
	})
	c, out := newTestCLI(t, srv, "tok", "")
	if err := c.dispatch(context.Background(), []string{"leaderboard"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "大吉") || !strings.Contains(lines[0], "Alice (you), bob") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "凶") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestLeaderboardRequiresLogin(t *testing.T) {
	_, srv := newFakeAPI(t, nil)
	c, _ := newTestCLI(t, srv, "", "")
	err := c.dispatch(context.Background(), []string{"leaderboard"})
	if err == nil || !strings.Contains(err.Error(), "not signed in") {
		t.Errorf("err = %v", err)
	}
}

func TestHistorySortedOldestFirst(t *testing.T) {
	_, srv := newFakeAPI(t, map[string]string{
		"GET /users/me": meJSON("alice", "user", "", ""),
		"GET /users/u/bob/fortune-history": `[{"created_at":"2025-03-09T01:00:00.000000Z","value":"吉"},` +
			`{"created_at":"2025-03-01T01:00:00Z","value":"大凶"}]`,
	})
	c, out := newTestCLI(t, srv, "tok", "")
	if err := c.dispatch(context.Background(), []string{"history", "@bob"}); err != nil {
		t.Fatal(err)
	}
	want := "2025-03-01  大凶\n2025-03-09  吉\n2 draws\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestAdminShowsServerRejection(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /users/me": meJSON("alice", "user", "", ""),
	})
	api.fail("GET /admin/users", http.StatusForbidden, "Not enough permissions")
	c, _ := newTestCLI(t, srv, "tok", "")
	err := c.dispatch(context.Background(), []string{"admin", "users"})
	if err == nil || err.Error() != "Not enough permissions" {
		t.Errorf("err = %v, want the server detail", err)
	}
	if !api.called("GET /admin/users") {
		t.Error("admin request was not sent")
	}
}

func TestAdminHideResolvesUsername(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /users/me":                       meJSON("root", "admin", "", ""),
		"GET /admin/users":                    `[` + userJSON("root", "admin", "") + `,` + userJSON("bob", "user", "吉") + `]`,
		"PATCH /admin/users/id-bob/visibility": `{"ok":true}`,
	})
	c, out := newTestCLI(t, srv, "tok", "")
	if err := c.dispatch(context.Background(), []string{"admin", "hide", "@bob"}); err != nil {
		t.Fatal(err)
	}
	if body := api.body("PATCH /admin/users/id-bob/visibility"); body != `{"is_hidden":true}` {
		t.Errorf("body = %q", body)
	}
	if strings.TrimSpace(out.String()) != "bob: hide" {
		t.Errorf("output = %q", out.String())
	}
}

func TestAdminStatusValidates(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]string{
		"GET /users/me":    meJSON("root", "admin", "", ""),
		"GET /admin/users": `[` + userJSON("bob", "user", "") + `]`,
	})
	c, _ := newTestCLI(t, srv, "tok", "")
	if err := c.dispatch(context.Background(), []string{"admin", "status", "bob", "banned"}); !errors.Is(err, errUsage) {
		t.Errorf("err = %v, want errUsage", err)
	}
	if api.called("PATCH /admin/users/id-bob/status") {
		t.Error("invalid status sent")
	}
}

func TestAdminUnknownUser(t *testing.T) {
	_, srv := newFakeAPI(t, map[string]string{
		"GET /users/me":    meJSON("root", "admin", "", ""),
		"GET /admin/users": `[]`,
	})
	c, _ := newTestCLI(t, srv, "tok", "")
	err := c.dispatch(context.Background(), []string{"admin", "tags", "ghost", "a,b"})
	if err == nil || !strings.Contains(err.Error(), `no user "ghost"`) {
		t.Errorf("err = %v", err)
	}
}

func TestLogoutRemovesToken(t *testing.T) {
	_, srv := newFakeAPI(t, nil)
	c, out := newTestCLI(t, srv, "", "")
	if err := os.WriteFile(c.cfg.TokenPath(), []byte("tok"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := c.dispatch(context.Background(), []string{"logout"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.cfg.TokenPath()); !os.IsNotExist(err) {
		t.Errorf("token file still present: %v", err)
	}
	if strings.TrimSpace(out.String()) != "logged out" {
		t.Errorf("output = %q", out.String())
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	_, srv := newFakeAPI(t, nil)
	c, _ := newTestCLI(t, srv, "", "")
	if err := c.dispatch(context.Background(), []string{"frobnicate"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestPadFortune(t *testing.T) {
	if got := padFortune(domain.Kichi); got != "吉  " {
		t.Errorf("padFortune(吉) = %q", got)
	}
	if got := padFortune(domain.DaiKichi); got != "大吉" {
		t.Errorf("padFortune(大吉) = %q", got)
	}
}
