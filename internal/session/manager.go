package session

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/foxzi/leadboard/internal/apiclient"
)

type contextKey struct{}

// ManagerConfig configures the browser cookie
type ManagerConfig struct {
	Secret     string
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Manager issues the signed browser cookie and opens sessions from the store
type Manager struct {
	store  *Store
	api    *apiclient.Client
	codec  *securecookie.SecureCookie
	cfg    ManagerConfig
	logger *slog.Logger
	now    func() time.Time
}

type cookiePayload struct {
	ID string `json:"id"`
}

// NewManager creates a session manager. The cookie is signed and encrypted
// with keys derived from cfg.Secret.
func NewManager(store *Store, api *apiclient.Client, cfg ManagerConfig, logger *slog.Logger) *Manager {
	hashKey := sha256.Sum256([]byte("leadboard-cookie-hash:" + cfg.Secret))
	blockKey := sha256.Sum256([]byte("leadboard-cookie-block:" + cfg.Secret))

	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.TTL.Seconds()))

	if cfg.CookieName == "" {
		cfg.CookieName = "leadboard_session"
	}

	return &Manager{
		store:  store,
		api:    api,
		codec:  codec,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the session of the request, issuing a new cookie when the
// browser has none or an invalid one. The session is hydrated before return.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	id := m.readID(r)
	if id == "" {
		id = uuid.New().String()
		m.writeCookie(w, id)
	}

	kv := m.store.Session(id)
	if err := kv.Touch(m.now()); err != nil {
		m.logger.Warn("failed to touch session", "error", err)
	}

	s := New(id, kv, m.api, m.logger)
	s.Hydrate()
	return s
}

// Middleware loads the session and places it in the request context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(w, r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// Sweep removes sessions idle for longer than the TTL
func (m *Manager) Sweep() (int, error) {
	return m.store.Sweep(m.now().Add(-m.cfg.TTL))
}

// RunSweeper removes idle sessions every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep()
			if err != nil {
				m.logger.Error("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				m.logger.Info("removed idle sessions", "count", n)
			}
		}
	}
}

func (m *Manager) readID(r *http.Request) string {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return ""
	}
	var p cookiePayload
	if err := m.codec.Decode(m.cfg.CookieName, c.Value, &p); err != nil {
		m.logger.Debug("ignoring invalid session cookie", "error", err)
		return ""
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return ""
	}
	return p.ID
}

func (m *Manager) writeCookie(w http.ResponseWriter, id string) {
	value, err := m.codec.Encode(m.cfg.CookieName, cookiePayload{ID: id})
	if err != nil {
		m.logger.Error("failed to encode session cookie", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// NewContext returns ctx carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
