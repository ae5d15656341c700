package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/car-market/internal/metrics"
	"github.com/pribylovaa/car-market/internal/pkg/log"
	"github.com/pribylovaa/car-market/internal/storage/memory"
	"github.com/pribylovaa/car-market/internal/tokens"
)

const backendSecret = "backend-secret"

// backend - фейковый REST-бэкенд: принимает только выданные им access-токены.
type backend struct {
	t      *testing.T
	router chi.Router
	srv    *httptest.Server

	mu       sync.Mutex
	accepted map[string]bool
	hits     map[string]int
	refresh  string

	refreshCalls atomic.Int32
	refreshDelay time.Duration
	// refreshStatus != 0 - /auth/refresh отвечает этим статусом.
	refreshStatus int
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{
		t:        t,
		accepted: map[string]bool{},
		hits:     map[string]int{},
		refresh:  "refresh-" + uuid.NewString(),
	}

	r := chi.NewRouter()
	r.Use(b.count)
	r.Post("/auth/refresh", b.handleRefresh)

	b.router = r
	b.srv = httptest.NewServer(r)
	t.Cleanup(b.srv.Close)

	return b
}

func (b *backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// protected регистрирует маршрут за проверкой Bearer.
func (b *backend) protected(method, pattern string, h http.HandlerFunc) {
	b.router.With(b.auth).Method(method, pattern, h)
}

func (b *backend) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if tok == "" || !b.isAccepted(tok) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
			return
		}

		_, err := jwt.Parse(tok, func(*jwt.Token) (any, error) { return []byte(backendSecret), nil })
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (b *backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	if b.refreshDelay > 0 {
		time.Sleep(b.refreshDelay)
	}

	if b.refreshStatus != 0 {
		writeJSON(w, b.refreshStatus, map[string]any{"message": "invalid refresh token"})
		return
	}

	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RefreshToken != b.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid refresh token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accessToken": b.issue(time.Hour)})
}

// issue выпускает и запоминает действующий access-токен.
func (b *backend) issue(ttl time.Duration) string {
	tok := mint(b.t, ttl)

	b.mu.Lock()
	b.accepted[tok] = true
	b.mu.Unlock()

	return tok
}

func (b *backend) isAccepted(tok string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accepted[tok]
}

func (b *backend) hitsOf(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

// mint выпускает подписанный токен, который бэкенд ещё не принимает.
func mint(t *testing.T, ttl time.Duration) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"jti": uuid.NewString(),
		"exp": time.Now().Add(ttl).Unix(),
	}).SignedString([]byte(backendSecret))
	require.NoError(t, err)

	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type testEnv struct {
	client *Client
	tm     *tokens.Manager
	store  *memory.Store
	reg    *prometheus.Registry
}

func newTestClient(t *testing.T, b *backend) testEnv {
	t.Helper()

	store := memory.New()
	tm := tokens.New(store)
	reg := prometheus.NewRegistry()

	c, err := New(Options{
		BaseURL:    b.srv.URL + "/",
		UserAgent:  "carctl-test",
		Timeout:    5 * time.Second,
		Logger:     log.Discard(),
		Metrics:    metrics.New(reg),
		HTTPClient: b.srv.Client(),
	}, tm)
	require.NoError(t, err)

	return testEnv{client: c, tm: tm, store: store, reg: reg}
}

// counterValue читает значение счётчика с меткой label=value из реестра.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}
