package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/api/metrics"
	"github.com/portalkit/portal/internal/api/websession"
)

// Session loads the request's session from its cookie. A session that timed
// out has its cookie dropped before the handler runs.
//
// It must run after echo-contrib's session.Middleware.
func Session(opts websession.Options, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := websession.Load(c, opts)

			// State runs the expiry check.
			s.State()
			if s.Expired() {
				metrics.SessionExpirationsTotal.Inc()
				log.Info().Str("path", c.Path()).Msg("session expired")
				if err := websession.Save(c, s); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}
