// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/olegiv/kanri-go/internal/i18n"
)

// LoginProtection combines per-IP rate limiting with a per-email
// failed-attempt counter. It only reduces load on the remote API, which
// stays the authority on credentials.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failures *cache.Cache // email -> failed attempt count
	lockouts *cache.Cache // email -> lock expiry

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRatePerMinute is the number of login posts allowed per IP per minute.
	IPRatePerMinute int
	// IPBurst is the maximum burst size for IP rate limiting.
	IPBurst int
	// MaxFailedAttempts before further attempts for an email are refused.
	MaxFailedAttempts int
	// LockoutDuration is how long an email stays refused.
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts.
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRatePerMinute:   10,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRatePerMinute <= 0 {
		cfg.IPRatePerMinute = def.IPRatePerMinute
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	return &LoginProtection{
		ipLimiters:        newLimiterCache[string](float64(cfg.IPRatePerMinute)/60, cfg.IPBurst),
		failures:          cache.New(cfg.AttemptWindow, 10*time.Minute),
		lockouts:          cache.New(cfg.LockoutDuration, 10*time.Minute),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}
}

// CheckIPRateLimit reports whether a login post from ip may proceed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared login rate limiters due to size")
	}
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked reports whether attempts for email are currently refused
// and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	_, until, found := lp.lockouts.GetWithExpiration(normalizeEmail(email))
	if !found {
		return false, 0
	}
	remaining := time.Until(until)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailedAttempt counts a failed login for email. It returns true and
// the lock duration when this attempt triggered a lockout.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := normalizeEmail(email)

	count := 1
	if err := lp.failures.Add(key, 1, lp.attemptWindow); err != nil {
		n, err := lp.failures.IncrementInt(key, 1)
		if err != nil {
			lp.failures.Set(key, 1, lp.attemptWindow)
			n = 1
		}
		count = n
	}
	slog.Debug("failed login recorded", "email", key, "count", count)

	if count < lp.maxFailedAttempts {
		return false, 0
	}

	lp.failures.Delete(key)
	lp.lockouts.Set(key, struct{}{}, lp.lockoutDuration)
	slog.Warn("login locked after failed attempts", "email", key, "duration", lp.lockoutDuration)
	return true, lp.lockoutDuration
}

// RecordSuccessfulLogin clears failed attempt tracking for email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	key := normalizeEmail(email)
	lp.failures.Delete(key)
	lp.lockouts.Delete(key)
}

// GetRemainingAttempts returns how many failures email may still accrue
// before it is locked.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	v, found := lp.failures.Get(normalizeEmail(email))
	if !found {
		return lp.maxFailedAttempts
	}
	count, _ := v.(int)
	if remaining := lp.maxFailedAttempts - count; remaining > 0 {
		return remaining
	}
	return 0
}

// Middleware returns HTTP middleware for IP rate limiting on login.
// Only POST requests are limited.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
				lang := i18n.FromContext(r.Context())
				http.Error(w, i18n.T(lang, "login.throttled"), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware has
// already applied X-Real-IP / X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// limiterCache is a rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds drops all entries once the cache grows past maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}
