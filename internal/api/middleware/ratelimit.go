package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ratiba-events/server/internal/api/problem"
	"github.com/ratiba-events/server/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic    RateLimitTier = "public"
	TierOrganizer RateLimitTier = "organizer"
)

const (
	limiterTTL      = 15 * time.Minute
	cleanupInterval = 5 * time.Minute
)

type rateLimitKey string

const rateLimitTierKey rateLimitKey = "rateLimitTier"

func WithRateLimitTier(ctx context.Context, tier RateLimitTier) context.Context {
	return context.WithValue(ctx, rateLimitTierKey, tier)
}

func WithRateLimitTierHandler(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithRateLimitTier(r.Context(), tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimiter enforces per-client token buckets. The tier comes from the
// request context and defaults to public.
type RateLimiter struct {
	store   *limiterStore
	proxies []*net.IPNet
	env     string
}

func NewRateLimiter(cfg config.RateLimitConfig, env string) *RateLimiter {
	return &RateLimiter{
		store:   newLimiterStore(cfg),
		proxies: parseCIDRs(cfg.TrustedProxyCIDRs),
		env:     env,
	}
}

// Stop ends the background cleanup of idle limiters.
func (l *RateLimiter) Stop() {
	l.store.Stop()
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		tier := TierPublic
		if value, ok := r.Context().Value(rateLimitTierKey).(RateLimitTier); ok {
			tier = value
		}

		limiter := l.store.limiter(tier, clientKey(r, l.proxies))
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !limiter.Allow() {
			retryAfter := l.store.interval(tier)
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited, "Too many requests", problem.ErrRateLimited, l.env)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute map[RateLimitTier]int
	stopOnce  sync.Once
	stop      chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg config.RateLimitConfig) *limiterStore {
	store := &limiterStore{
		limiters: make(map[string]*limiterEntry),
		perMinute: map[RateLimitTier]int{
			TierPublic:    cfg.PublicPerMinute,
			TierOrganizer: cfg.OrganizerPerMinute,
		},
		stop: make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

func (s *limiterStore) interval(tier RateLimitTier) time.Duration {
	limit := s.perMinute[tier]
	if limit <= 0 {
		return 0
	}
	return time.Minute / time.Duration(limit)
}

func (s *limiterStore) limiter(tier RateLimitTier, key string) *rate.Limiter {
	limit := s.perMinute[tier]
	if limit <= 0 {
		return nil
	}

	lookup := string(tier) + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limiters[lookup]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Every(s.interval(tier)), limit)
	s.limiters[lookup] = &limiterEntry{
		limiter:  limiter,
		lastSeen: time.Now(),
	}
	return limiter
}

func (s *limiterStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *limiterStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(s.limiters, key)
		}
	}
}

func (s *limiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// clientKey identifies the caller. Forwarding headers are honoured only
// when the connection comes from a trusted proxy.
func clientKey(r *http.Request, trusted []*net.IPNet) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trusted) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	return remoteIP
}

func parseCIDRs(values []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(values))
	for _, value := range values {
		_, cidr, err := net.ParseCIDR(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		nets = append(nets, cidr)
	}
	return nets
}

func isTrustedProxy(ip string, trusted []*net.IPNet) bool {
	if len(trusted) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range trusted {
		if cidr.Contains(parsed) {
			return true
		}
	}
	return false
}
