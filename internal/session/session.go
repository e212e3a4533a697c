// Package session holds the process-wide authentication state: the access
// token and the signed-in user's cached profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/oftx/dailyfortune/pkg/client"
	"github.com/oftx/dailyfortune/pkg/domain"
)

// State is the authentication state.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// ErrStarted is returned by a second call to Start.
var ErrStarted = errors.New("session already started")

// ErrNotStarted is returned by Refresh before Start.
var ErrNotStarted = errors.New("session not started")

// ProfileFetcher loads the signed-in user's profile. *client.Client implements it.
type ProfileFetcher interface {
	GetMyProfile(ctx context.Context) (*domain.MyProfile, error)
}

// Snapshot is a copy of the session at one point in time.
type Snapshot struct {
	State      State
	Token      string
	Profile    *domain.Profile
	NextDrawAt *time.Time
}

// Authenticated reports whether a profile is loaded.
func (s Snapshot) Authenticated() bool {
	return s.State == Authenticated && s.Profile != nil
}

// Session is safe for concurrent use. Every transition is published to subscribers.
type Session struct {
	store  TokenStore
	logger zerolog.Logger

	mu         sync.RWMutex
	state      State
	token      string
	profile    *domain.Profile
	nextDrawAt *time.Time
	fetcher    ProfileFetcher
	started    bool
	// gen changes on login and logout so late fetch results are discarded.
	gen uint64

	subs    map[int]chan Snapshot
	nextSub int
}

// New returns an uninitialized session backed by store.
func New(store TokenStore, logger zerolog.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger,
		subs:   make(map[int]chan Snapshot),
	}
}

// Token returns the current access token, or "". It satisfies client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Profile returns the cached profile of the signed-in user.
func (s *Session) Profile() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return domain.Profile{}, false
	}
	return *s.profile, true
}

// NextDrawAt returns the last known instant of the next permitted draw.
func (s *Session) NextDrawAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.nextDrawAt == nil {
		return time.Time{}, false
	}
	return *s.nextDrawAt, true
}

// Snapshot returns a copy of the current session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Start loads the persisted token and, if there is one, validates it by
// fetching the profile. A fetch failure ends in Anonymous with the persisted
// token deleted. A canceled fetch also ends in Anonymous but keeps the stored
// token for the next run. Start runs at most once.
func (s *Session) Start(ctx context.Context, fetcher ProfileFetcher) (State, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return s.State(), ErrStarted
	}
	s.started = true
	s.fetcher = fetcher
	s.state = Loading
	s.publishLocked()
	s.mu.Unlock()

	token, err := s.store.Load()
	if err != nil {
		s.logger.Warn().Err(err).Str("key", Key).Msg("load token")
		token = ""
	}
	if token == "" {
		s.mu.Lock()
		s.state = Anonymous
		s.publishLocked()
		s.mu.Unlock()
		return Anonymous, nil
	}

	s.mu.Lock()
	s.token = token
	gen := s.gen
	s.publishLocked()
	s.mu.Unlock()

	me, err := fetcher.GetMyProfile(ctx)
	if err != nil {
		if client.IsCanceled(err) || ctx.Err() != nil {
			s.clearIf(gen)
			return s.State(), fmt.Errorf("session.Start: %w", err)
		}
		s.logger.Info().Err(err).Msg("stored token rejected, signing out")
		s.logoutIf(gen)
		return s.State(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return s.state, nil
	}
	s.setProfileLocked(me)
	s.state = Authenticated
	s.publishLocked()
	s.logger.Info().Str("user", me.User.Username).Msg("session restored")
	return Authenticated, nil
}

// Login persists token and marks the session authenticated. Call it only
// after the login or register request succeeded.
func (s *Session) Login(token string, profile domain.Profile) error {
	if token == "" {
		return errors.New("session.Login: empty token")
	}
	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("session.Login: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.token = token
	p := profile
	s.profile = &p
	s.nextDrawAt = nil
	s.state = Authenticated
	s.publishLocked()
	s.logger.Info().Str("user", profile.Username).Msg("logged in")
	return nil
}

// Logout deletes the persisted token and clears the session. The in-memory
// state is cleared even when the delete fails.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked()
}

// Refresh re-fetches the profile. Cancellation leaves the session untouched;
// any other failure signs out. A session without a token is left as is.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	fetcher, token, gen := s.fetcher, s.token, s.gen
	s.mu.RUnlock()

	if fetcher == nil {
		return ErrNotStarted
	}
	if token == "" {
		return nil
	}

	me, err := fetcher.GetMyProfile(ctx)
	if err != nil {
		if client.IsCanceled(err) || ctx.Err() != nil {
			return fmt.Errorf("session.Refresh: %w", err)
		}
		s.logger.Info().Err(err).Msg("refresh failed, signing out")
		s.logoutIf(gen)
		return fmt.Errorf("session.Refresh: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.setProfileLocked(me)
	s.state = Authenticated
	s.publishLocked()
	return nil
}

// Sync re-fetches the profile like Refresh but leaves the session as is on
// failure. It is used right after Login, where a failed follow-up fetch must
// not discard the token that was just issued.
func (s *Session) Sync(ctx context.Context) error {
	s.mu.RLock()
	fetcher, token, gen := s.fetcher, s.token, s.gen
	s.mu.RUnlock()

	if fetcher == nil {
		return ErrNotStarted
	}
	if token == "" {
		return nil
	}

	me, err := fetcher.GetMyProfile(ctx)
	if err != nil {
		return fmt.Errorf("session.Sync: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.setProfileLocked(me)
	s.publishLocked()
	return nil
}

// UpdateProfile replaces the cached profile after a successful edit.
// It is ignored when nobody is signed in.
func (s *Session) UpdateProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		s.logger.Debug().Msg("profile update without a session, ignored")
		return
	}
	s.profile = &p
	s.publishLocked()
}

// SetNextDrawAt records the next permitted draw; nil means a draw is available.
func (s *Session) SetNextDrawAt(t *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		s.nextDrawAt = nil
	} else {
		v := *t
		s.nextDrawAt = &v
	}
	s.publishLocked()
}

// Subscribe returns a channel that receives the current snapshot and then one
// per change. A slow reader only sees the latest snapshot. Call cancel to stop.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Session) logoutIf(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if err := s.logoutLocked(); err != nil {
		s.logger.Warn().Err(err).Str("key", Key).Msg("delete token")
	}
}

// clearIf drops the in-memory session and leaves the store alone.
func (s *Session) clearIf(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.clearLocked()
}

func (s *Session) logoutLocked() error {
	err := s.store.Delete()
	s.clearLocked()
	if err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}

func (s *Session) clearLocked() {
	s.gen++
	s.token = ""
	s.profile = nil
	s.nextDrawAt = nil
	s.state = Anonymous
	s.publishLocked()
}

func (s *Session) setProfileLocked(me *domain.MyProfile) {
	p := me.User
	s.profile = &p
	s.nextDrawAt = me.NextDrawAt.TimePtr()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Token: s.token}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	if s.nextDrawAt != nil {
		t := *s.nextDrawAt
		snap.NextDrawAt = &t
	}
	return snap
}

// publishLocked never blocks: a full channel has its stale value replaced.
func (s *Session) publishLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
