package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ahoyindiemedia/community-events/internal/analytics"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Access log ───────────────────────────────────────────────────────────────

// accessLog writes one structured line per request.
func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// ─── Prometheus metrics ───────────────────────────────────────────────────────

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ahoy_http_requests_total",
		Help: "HTTP requests handled, by method and status code.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ahoy_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// ─── Visit tracking ───────────────────────────────────────────────────────────

// trackVisits appends one visit record per request to the analytics
// log. Logging failures never fail the request.
func (h *Handler) trackVisits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := requestMeta(r)
		visit := analytics.Visit{
			VisitorID:   h.tracker.VisitorID(meta.RemoteIP, meta.UserAgent),
			Page:        r.URL.Path,
			Method:      r.Method,
			Referrer:    meta.Referrer,
			Device:      analytics.ParseUserAgent(meta.UserAgent),
			QueryParams: meta.Query,
		}
		if err := h.tracker.Record(visit); err != nil {
			h.logger.Warn("visit tracking failed", slog.String("error", err.Error()))
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Admin sessions ───────────────────────────────────────────────────────────

const sessionCookie = "ahoy_admin"

// sessionStore keeps admin session tokens in memory. A restart logs
// every admin out, which is acceptable for a single-admin site.
type sessionStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &sessionStore{tokens: map[string]time.Time{}, ttl: ttl}
}

func (s *sessionStore) create() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	for t, expires := range s.tokens {
		if time.Now().After(expires) {
			delete(s.tokens, t)
		}
	}
	s.tokens[token] = time.Now().Add(s.ttl)
	return token
}

func (s *sessionStore) valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.tokens[token]
	return ok && time.Now().Before(expires)
}

// AdminLogin handles POST /admin/login. The password arrives as a form
// field or JSON body; a valid login returns a session token and sets
// it as a cookie for browser use.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	password := formOrJSONField(r, "password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Admin.Password)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}
	token := h.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// requireAdmin guards the admin routes. The token is taken from the
// session cookie or an Authorization: Bearer header.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
		if !h.sessions.valid(token) {
			writeError(w, http.StatusUnauthorized, "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
