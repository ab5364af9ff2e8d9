// Package ratelimit locks out clients that keep presenting bad webhook tokens.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DefaultMaxFailedAttempts = 5
	DefaultFailureWindow     = 10 * time.Minute
	DefaultLockoutDuration   = 15 * time.Minute
	MaxLockoutDuration       = time.Hour
)

type clientLockout struct {
	failedAttempts int
	firstFailure   time.Time
	lockedUntil    time.Time
	lockoutCount   int
}

// AuthLimiter tracks failed token checks per client IP. After
// maxFailedAttempts failures inside failureWindow the IP is locked out,
// each further lockout lasting longer up to MaxLockoutDuration.
type AuthLimiter struct {
	mu       sync.Mutex
	lockouts map[string]*clientLockout

	maxFailedAttempts   int
	failureWindow       time.Duration
	baseLockoutDuration time.Duration
	now                 func() time.Time
}

func NewAuthLimiter() *AuthLimiter {
	return &AuthLimiter{
		lockouts:            make(map[string]*clientLockout),
		maxFailedAttempts:   DefaultMaxFailedAttempts,
		failureWindow:       DefaultFailureWindow,
		baseLockoutDuration: DefaultLockoutDuration,
		now:                 time.Now,
	}
}

// Middleware rejects requests from locked out IPs with 429 before any
// handler runs.
func (l *AuthLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if remaining := l.LockoutRemaining(c.RealIP()); remaining > 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many failed authentication attempts, please try again later")
			}
			return next(c)
		}
	}
}

// LockoutRemaining returns how long ip stays locked out, zero if it is not.
func (l *AuthLimiter) LockoutRemaining(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	lockout, exists := l.lockouts[ip]
	if !exists {
		return 0
	}

	remaining := lockout.lockedUntil.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailure counts a failed token check from ip.
func (l *AuthLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	lockout, exists := l.lockouts[ip]
	if !exists {
		lockout = &clientLockout{}
		l.lockouts[ip] = lockout
	}

	if lockout.failedAttempts == 0 || now.Sub(lockout.firstFailure) > l.failureWindow || lockout.failedAttempts >= l.maxFailedAttempts {
		lockout.failedAttempts = 0
		lockout.firstFailure = now
	}

	lockout.failedAttempts++

	if lockout.failedAttempts >= l.maxFailedAttempts {
		lockout.lockoutCount++
		duration := l.baseLockoutDuration * time.Duration(lockout.lockoutCount)
		if duration > MaxLockoutDuration {
			duration = MaxLockoutDuration
		}
		lockout.lockedUntil = now.Add(duration)
	}
}

// RecordSuccess forgets earlier failures from ip.
func (l *AuthLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.lockouts, ip)
}

// Cleanup drops entries whose lockout and failure window have both passed,
// returning how many were removed.
func (l *AuthLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for ip, lockout := range l.lockouts {
		if now.After(lockout.lockedUntil) && now.Sub(lockout.firstFailure) > l.failureWindow {
			delete(l.lockouts, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *AuthLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lockouts)
}
