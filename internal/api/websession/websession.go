// Package websession carries a domain.Session across requests in a signed
// gorilla/sessions cookie managed by echo-contrib's session middleware.
//
// The cookie holds the public user fields and the login time, nothing else.
// Expiry is decided by domain.Session on every access.
package websession

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/portalkit/portal/internal/core/domain"
)

const DefaultCookieName = "portal_session"

const (
	ctxSession = "websession.session"
	ctxOptions = "websession.options"

	keyUserID    = "user_id"
	keyUsername  = "username"
	keyRole      = "role"
	keyLoginTime = "login_time"
)

// Options describes the cookie and the session lifetime.
type Options struct {
	CookieName string
	Timeout    time.Duration
	Secure     bool
	// Clock overrides time.Now for the sessions built by Load.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.CookieName == "" {
		o.CookieName = DefaultCookieName
	}
	if o.Timeout <= 0 {
		o.Timeout = domain.DefaultSessionTimeout
	}
	return o
}

// Load builds the request's session from its cookie and attaches it to c. A
// missing, tampered or incomplete cookie yields an anonymous session.
func Load(c echo.Context, opts Options) *domain.Session {
	opts = opts.withDefaults()
	s := domain.NewSession(opts.Timeout, domain.WithClock(opts.Clock))

	// Decode failures still return a fresh session, which reads as anonymous.
	raw, _ := session.Get(opts.CookieName, c)
	if raw != nil {
		if u, loginTime, ok := decode(raw.Values); ok {
			s.Restore(u, loginTime)
		}
	}

	c.Set(ctxOptions, opts)
	c.Set(ctxSession, s)
	return s
}

// Save writes s back to the cookie. An anonymous or expired session expires
// the cookie instead.
func Save(c echo.Context, s *domain.Session) error {
	opts, ok := c.Get(ctxOptions).(Options)
	if !ok {
		opts = Options{}.withDefaults()
	}

	raw, err := session.Get(opts.CookieName, c)
	if raw == nil {
		return err
	}
	raw.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.Timeout / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if u, ok := s.CurrentUser(); ok {
		raw.Values[keyUserID] = u.ID
		raw.Values[keyUsername] = u.Username
		raw.Values[keyRole] = string(u.Role)
		raw.Values[keyLoginTime] = s.LoginTime().Unix()
	} else {
		raw.Values = make(map[any]any)
		raw.Options.MaxAge = -1
	}

	c.Set(ctxSession, s)
	return raw.Save(c.Request(), c.Response())
}

// FromContext returns the session attached by Load. Without one it returns a
// fresh anonymous session so callers never deal with nil.
func FromContext(c echo.Context) *domain.Session {
	if s, ok := c.Get(ctxSession).(*domain.Session); ok && s != nil {
		return s
	}
	opts, ok := c.Get(ctxOptions).(Options)
	if !ok {
		opts = Options{}.withDefaults()
	}
	s := domain.NewSession(opts.Timeout, domain.WithClock(opts.Clock))
	c.Set(ctxSession, s)
	return s
}

// Attach puts s on c in place of whatever Load found.
func Attach(c echo.Context, s *domain.Session) {
	c.Set(ctxSession, s)
}

func decode(values map[any]any) (domain.PublicUser, time.Time, bool) {
	id, ok1 := values[keyUserID].(int64)
	username, ok2 := values[keyUsername].(string)
	role, ok3 := values[keyRole].(string)
	loginUnix, ok4 := values[keyLoginTime].(int64)
	if !ok1 || !ok2 || !ok3 || !ok4 || username == "" || loginUnix <= 0 {
		return domain.PublicUser{}, time.Time{}, false
	}
	r := domain.Role(role)
	if !r.Valid() {
		return domain.PublicUser{}, time.Time{}, false
	}
	return domain.PublicUser{ID: id, Username: username, Role: r}, time.Unix(loginUnix, 0), true
}
