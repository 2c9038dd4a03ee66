package session

import (
	"net/http"
	"sync"
	"time"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
	"linkboard/internal/hooks"
	"linkboard/internal/metrics"
	"linkboard/internal/notify"
	"linkboard/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieName identifies the browser's view session
const CookieName = "linkboard_session"

// DefaultIdleTTL is how long an unused session is kept in memory
const DefaultIdleTTL = 30 * time.Minute

// DefaultMaxSessions bounds the sessions held in memory at once
const DefaultMaxSessions = 10000

// LinkBackend is everything the per-session hooks need from the link service
type LinkBackend interface {
	hooks.LinkAPI
	hooks.AnalyticsAPI
	hooks.RecentAPI
}

// Session is the state one browser sees across page loads: its credential,
// its pending toasts and the hooks behind each view.
type Session struct {
	ID         string
	Credential apiclient.Credential
	Toasts     *notify.Queue
	Links      *hooks.Links
	Dashboard  *hooks.Resource[*domain.DashboardStats]
	Recent     *hooks.Resource[[]domain.Link]
	Analytics  *hooks.LinkAnalytics

	lastSeen time.Time

	mu      sync.Mutex
	created *domain.Link
}

// Remember keeps the link just created for the page the create redirects to
func (s *Session) Remember(link *domain.Link) {
	s.mu.Lock()
	s.created = link
	s.mu.Unlock()
}

// Created returns the remembered link when its id matches
func (s *Session) Created(id int64) (*domain.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created == nil || s.created.ID != id {
		return nil, false
	}
	return s.created, true
}

// Options tune session lifetimes
type Options struct {
	IdleTTL time.Duration
	// MaxSessions caps live sessions. The least recently seen one is evicted
	// to make room.
	MaxSessions int
	ToastTTL    time.Duration
	// Secure marks the cookie Secure, for HTTPS origins.
	Secure bool
}

// Manager creates, finds and evicts view sessions
type Manager struct {
	store  CredentialStore
	links  LinkBackend
	stats  hooks.StatsAPI
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

func NewManager(store CredentialStore, links LinkBackend, stats hooks.StatsAPI, opts Options, logger *zap.Logger) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Manager{
		store:    store,
		links:    links,
		stats:    stats,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
}

// Store exposes the credential store for the token page
func (m *Manager) Store() CredentialStore {
	return m.store
}

// Get returns the session with the given id, creating it when absent.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		if len(m.sessions) >= m.opts.MaxSessions {
			m.evictOldest()
		}
		s = m.newSession(id)
		m.sessions[id] = s
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
		m.logger.Debug("session created", zap.String("session", id))
	}
	s.lastSeen = m.now()
	return s
}

// evictOldest drops the least recently seen session. Callers hold m.mu.
func (m *Manager) evictOldest() {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	delete(m.sessions, oldest.ID)
	metrics.SessionsEvictedTotal.Inc()
	m.logger.Debug("session evicted", zap.String("session", oldest.ID))
}

func (m *Manager) newSession(id string) *Session {
	cred := NewCredential(m.store, id, m.logger)
	toasts := notify.NewQueue(m.opts.ToastTTL, m.logger)
	return &Session{
		ID:         id,
		Credential: cred,
		Toasts:     toasts,
		Links:      hooks.NewLinks(m.links, toasts, cred, service.DefaultPage, service.DefaultPageSize),
		Dashboard:  hooks.NewDashboard(m.stats, toasts, cred),
		Recent:     hooks.NewRecent(m.links, toasts, cred, service.DefaultRecentDays),
		Analytics:  hooks.NewLinkAnalytics(m.links, toasts, cred, 0, service.DefaultAnalyticsDays),
	}
}

// Load resolves the request's session from its cookie, issuing a new cookie
// when the request has none or carries a malformed id.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return m.Get(c.Value)
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return m.Get(id)
}

// Len reports the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the configured TTL. Their stored
// tokens are left alone so a returning browser keeps its credential.
func (m *Manager) Sweep() {
	m.mu.Lock()
	now := m.now()
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.opts.IdleTTL {
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if p, ok := m.store.(interface{ Purge() }); ok {
		p.Purge()
	}
}

// StartCleanup starts a background goroutine that sweeps idle sessions
func (m *Manager) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup goroutine
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}
