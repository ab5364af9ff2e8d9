// Package middleware holds echo middleware shared by the API routes.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for a JSON-only API that is never
// framed or cached.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			if c.Path() != "/health" {
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
			}

			return next(c)
		}
	}
}

// TokenExtractor pulls the caller's credential from a request.
type TokenExtractor func(c echo.Context) string

// Authenticator checks a presented token.
type Authenticator func(token string) error

// FailureRecorder is told about the outcome of each token check.
type FailureRecorder interface {
	RecordFailure(ip string)
	RecordSuccess(ip string)
}

// RequireToken rejects requests whose token fails auth with 401. A nil
// recorder skips lockout bookkeeping.
func RequireToken(extract TokenExtractor, auth Authenticator, recorder FailureRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth(extract(c)); err != nil {
				if recorder != nil {
					recorder.RecordFailure(c.RealIP())
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			if recorder != nil {
				recorder.RecordSuccess(c.RealIP())
			}
			return next(c)
		}
	}
}
