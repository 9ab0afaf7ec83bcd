package domain

import "time"

// DefaultSessionTimeout applies when a Session is built with a non-positive timeout.
const DefaultSessionTimeout = 60 * time.Minute

// SessionState is the authentication state of a single client.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateAuthenticated
)

func (s SessionState) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the per-client login record. It is owned by a single request at
// a time and is not safe for concurrent use.
//
// Expiry is evaluated lazily: every accessor that observes the current user
// first checks whether login_time + timeout has passed and, if so, falls back
// to the anonymous state.
type Session struct {
	authenticated bool
	user          PublicUser
	loginTime     time.Time
	timeout       time.Duration
	expired       bool
	now           func() time.Time
}

// SessionOption customises a Session at construction.
type SessionOption func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession returns an anonymous session with the given timeout.
func NewSession(timeout time.Duration, opts ...SessionOption) *Session {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	s := &Session{timeout: timeout, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAuthenticatedUser moves the session to the authenticated state and
// stamps the login time. The stamp is truncated to the second, the precision
// the cookie keeps, so a restored session expires exactly at ExpiresAt.
func (s *Session) SetAuthenticatedUser(u PublicUser) {
	s.Restore(u, s.now().Truncate(time.Second))
}

// Restore rehydrates an authenticated session from its transport. The expiry
// check still runs on the next access.
func (s *Session) Restore(u PublicUser, loginTime time.Time) {
	s.authenticated = true
	s.user = u
	s.loginTime = loginTime
	s.expired = false
}

// Clear returns the session to the anonymous state.
func (s *Session) Clear() {
	s.authenticated = false
	s.user = PublicUser{}
	s.loginTime = time.Time{}
}

// CurrentUser returns the logged-in user, or false when the session is
// anonymous or has timed out.
func (s *Session) CurrentUser() (PublicUser, bool) {
	if !s.valid() {
		return PublicUser{}, false
	}
	return s.user, true
}

// State reports the state after the expiry check.
func (s *Session) State() SessionState {
	if s.valid() {
		return StateAuthenticated
	}
	return StateAnonymous
}

// LoginTime is zero for anonymous sessions.
func (s *Session) LoginTime() time.Time {
	return s.loginTime
}

// ExpiresAt is zero for anonymous sessions.
func (s *Session) ExpiresAt() time.Time {
	if !s.authenticated {
		return time.Time{}
	}
	return s.loginTime.Add(s.timeout)
}

// Timeout is the configured session lifetime.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Expired reports whether an access check has dropped this session because
// the timeout elapsed. It stays true until the next login.
func (s *Session) Expired() bool {
	return s.expired
}

// RequireAuth returns ErrNotAuthenticated unless a user is logged in.
func (s *Session) RequireAuth() error {
	if !s.valid() {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireAdmin distinguishes "not logged in" from "logged in without the
// admin role".
func (s *Session) RequireAdmin() error {
	if err := s.RequireAuth(); err != nil {
		return err
	}
	if !s.user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *Session) valid() bool {
	if !s.authenticated || s.loginTime.IsZero() {
		return false
	}
	if s.now().Sub(s.loginTime) > s.timeout {
		s.Clear()
		s.expired = true
		return false
	}
	return true
}
