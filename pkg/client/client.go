package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oftx/dailyfortune/internal/i18n"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-Id"

// DefaultTimeout bounds each request when no other timeout is configured.
const DefaultTimeout = 60 * time.Second

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Client is the DailyFortune API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
	printer    *message.Printer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger logs every request at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLanguage selects the language of fallback error messages.
func WithLanguage(tag language.Tag) Option {
	return func(c *Client) { c.printer = i18n.Printer(tag) }
}

// New creates a new API client. tokens may be nil for an anonymous client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:  zerolog.Nop(),
		printer: i18n.Printer(i18n.Default()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProfileUpdate holds the fields to change. Nil fields are not sent.
type ProfileUpdate struct {
	DisplayName   *string `json:"display_name,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	BackgroundURL *string `json:"background_url,omitempty"`
	Language      *string `json:"language,omitempty"`
	Timezone      *string `json:"timezone,omitempty"`
	QQ            *int64  `json:"qq,omitempty"`
	UseQQAvatar   *bool   `json:"use_qq_avatar,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u ProfileUpdate) IsEmpty() bool {
	return u == ProfileUpdate{}
}

// --- Auth ---

// GetRegistrationStatus reports whether self-registration is open.
func (c *Client) GetRegistrationStatus(ctx context.Context) (*domain.RegistrationStatus, error) {
	var status domain.RegistrationStatus
	if err := c.doRequest(ctx, http.MethodGet, "/config/registration-status", false, nil, &status); err != nil {
		return nil, fmt.Errorf("client.GetRegistrationStatus: %w", err)
	}
	return &status, nil
}

// Login exchanges a username and password for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", false, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	loginFailed := func(int) string { return c.printer.Sprintf(i18n.ErrLoginFailed) }

	var auth domain.AuthResponse
	if err := c.do(req, loginFailed, &auth); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &auth, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*domain.AuthResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var auth domain.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", false, body, &auth); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &auth, nil
}

// --- Users ---

// GetMyProfile returns the caller's profile and next permitted draw.
func (c *Client) GetMyProfile(ctx context.Context) (*domain.MyProfile, error) {
	var me domain.MyProfile
	if err := c.get(ctx, "/users/me", &me); err != nil {
		return nil, fmt.Errorf("client.GetMyProfile: %w", err)
	}
	return &me, nil
}

// GetUserProfile returns another user's public profile.
func (c *Client) GetUserProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	var p domain.PublicProfile
	if err := c.get(ctx, "/users/u/"+url.PathEscape(username), &p); err != nil {
		return nil, fmt.Errorf("client.GetUserProfile: %w", err)
	}
	return &p, nil
}

// UpdateMyProfile sends only the fields set in u.
func (c *Client) UpdateMyProfile(ctx context.Context, u ProfileUpdate) (*domain.MyProfile, error) {
	var me domain.MyProfile
	if err := c.doRequest(ctx, http.MethodPatch, "/users/me", true, u, &me); err != nil {
		return nil, fmt.Errorf("client.UpdateMyProfile: %w", err)
	}
	return &me, nil
}

// ChangePassword changes the caller's password.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	body := map[string]string{"current_password": current, "new_password": newPassword}
	if err := c.doRequest(ctx, http.MethodPatch, "/users/me/password", true, body, nil); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// GetUserFortuneHistory returns a user's past draws, in server order.
func (c *Client) GetUserFortuneHistory(ctx context.Context, username string) ([]domain.FortuneHistoryItem, error) {
	var items []domain.FortuneHistoryItem
	if err := c.get(ctx, "/users/u/"+url.PathEscape(username)+"/fortune-history", &items); err != nil {
		return nil, fmt.Errorf("client.GetUserFortuneHistory: %w", err)
	}
	return items, nil
}

// --- Fortune ---

// DrawFortune draws today's fortune. The server decides eligibility.
func (c *Client) DrawFortune(ctx context.Context) (*domain.DrawResult, error) {
	var res domain.DrawResult
	if err := c.post(ctx, "/fortune/draw", nil, &res); err != nil {
		return nil, fmt.Errorf("client.DrawFortune: %w", err)
	}
	return &res, nil
}

// GetLeaderboard returns today's fortune groups.
func (c *Client) GetLeaderboard(ctx context.Context) ([]domain.LeaderboardGroup, error) {
	var groups []domain.LeaderboardGroup
	if err := c.get(ctx, "/fortune/leaderboard", &groups); err != nil {
		return nil, fmt.Errorf("client.GetLeaderboard: %w", err)
	}
	return groups, nil
}

// --- Admin ---

// ListUsers returns every user. Requires the admin role.
func (c *Client) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	var users []domain.Profile
	if err := c.get(ctx, "/admin/users", &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	for _, u := range users {
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("client.ListUsers: %w", &Error{Kind: KindDecoding, Err: fmt.Errorf("decode response: %w", err)})
		}
	}
	return users, nil
}

// SetUserStatus sets a user's moderation status.
func (c *Client) SetUserStatus(ctx context.Context, userID, status string) error {
	if err := c.patch(ctx, "/admin/users/"+url.PathEscape(userID)+"/status", map[string]string{"status": status}); err != nil {
		return fmt.Errorf("client.SetUserStatus: %w", err)
	}
	return nil
}

// SetUserVisibility hides or shows a user on the leaderboard.
func (c *Client) SetUserVisibility(ctx context.Context, userID string, hidden bool) error {
	if err := c.patch(ctx, "/admin/users/"+url.PathEscape(userID)+"/visibility", map[string]bool{"is_hidden": hidden}); err != nil {
		return fmt.Errorf("client.SetUserVisibility: %w", err)
	}
	return nil
}

// SetUserTags replaces a user's tags.
func (c *Client) SetUserTags(ctx context.Context, userID string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	if err := c.patch(ctx, "/admin/users/"+url.PathEscape(userID)+"/tags", map[string][]string{"tags": tags}); err != nil {
		return fmt.Errorf("client.SetUserTags: %w", err)
	}
	return nil
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, true, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, true, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body any) error {
	return c.doRequest(ctx, http.MethodPatch, path, true, body, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, auth bool, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("marshal body: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, auth, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, c.statusMessage, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, auth bool, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if auth && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do sends req and decodes a 2xx body into out. fallback supplies the error
// message for non-2xx responses without a usable detail field.
func (c *Client) do(req *http.Request, fallback func(status int) string, out any) error {
	start := time.Now()
	reqID := req.Header.Get(RequestIDHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("request_id", reqID).
			Err(err).
			Msg("request failed")
		return &Error{Kind: KindNetwork, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // 1 MB max error body, best-effort
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Detail != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Detail}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: fallback(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Error{Kind: KindDecoding, Err: fmt.Errorf("empty body with status %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecoding, Err: fmt.Errorf("decode response: %w", err)}
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return &Error{Kind: KindDecoding, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// validator is implemented by response types with required fields.
// json.Unmarshal leaves missing fields zero, so do checks them after decoding.
type validator interface {
	Validate() error
}

func (c *Client) statusMessage(status int) string {
	return c.printer.Sprintf(i18n.ErrServerStatus, status)
}
