// Package browse keeps the UI state of every browser session the portal is
// serving, keyed by the X-SPA session id.
package browse

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/backend"
	"proptech/portal/internal/carousel"
	"proptech/portal/internal/config"
	"proptech/portal/internal/detail"
	"proptech/portal/internal/filter"
	"proptech/portal/internal/notify"
	"proptech/portal/internal/quota"
	"proptech/portal/internal/services"
	"proptech/portal/internal/session"
	"proptech/portal/internal/storage"
)

var ErrEmptySessionID = errors.New("browse session id is empty")

// Session is everything one browser tab owns.
type Session struct {
	ID       string
	Auth     *session.Manager
	Backend  *backend.Backend
	Filter   *filter.Controller
	Detail   *detail.Overlay
	Listings   services.IProfileListingService
	Properties services.IPropertyService
	Profile    services.IProfileService
	Discovery  services.IDiscoveryService
	Agents     services.IAgentService
	Wallets    services.IWalletService
	Accounts   services.IAccountService
	Packages   services.IPackageService
}

// Deps are shared by every session.
type Deps struct {
	Base     *apiclient.Client
	Storage  storage.Storage
	Ledger   quota.Ledger
	Notifier notify.Notifier
	// Frames returns the animation scheduler of a new session.
	Frames func() carousel.Scheduler
	Config *config.Config
	Log    *slog.Logger
}

type entry struct {
	sess     *Session
	lastSeen time.Time
}

// Registry creates sessions on first use and evicts idle ones.
type Registry struct {
	deps     Deps
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if deps.Frames == nil {
		deps.Frames = func() carousel.Scheduler {
			return carousel.NewTimerScheduler(deps.Config.CarouselFrame)
		}
	}
	return &Registry{
		deps:     deps,
		ttl:      idleTTL,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Get returns the session for id, rehydrating it from storage when it is not
// in memory.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.sess, nil
	}
	r.mu.Unlock()

	sess, err := r.build(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request for the same id may have won the race.
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		sess.Detail.Close()
		return e.sess, nil
	}
	r.sessions[id] = &entry{sess: sess, lastSeen: r.now()}
	return sess, nil
}

// ProfileListings gives the background worker the listing service of a
// session. Sessions not held in memory are rebuilt from storage for the call
// and not cached.
func (r *Registry) ProfileListings(ctx context.Context, sessionID string) (services.IProfileListingService, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	r.mu.Lock()
	e, ok := r.sessions[sessionID]
	r.mu.Unlock()

	var sess *Session
	if ok {
		sess = e.sess
	} else {
		var err error
		if sess, err = r.build(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	if _, state := sess.Auth.Current(); state == session.Anonymous {
		return nil, session.ErrNotLoggedIn
	}
	return sess.Listings, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops the in-memory state of id. Stored tokens survive.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.sess.Detail.Close()
	}
}

// Cleanup evicts sessions idle for longer than the TTL until ctx ends.
func (r *Registry) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				r.deps.Log.Debug("evicted idle browse sessions", "count", n)
			}
		}
	}
}

func (r *Registry) evictIdle() int {
	cutoff := r.now().Add(-r.ttl)
	var stale []*Session

	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Detail.Close()
	}
	return len(stale)
}

func (r *Registry) build(ctx context.Context, id string) (*Session, error) {
	log := r.deps.Log.With("browse_session", id)
	anon := backend.New(r.deps.Base)

	mgr, err := session.NewManager(ctx, session.NewStore(r.deps.Storage, id), anon.Auth, log)
	if err != nil {
		return nil, err
	}
	b := backend.New(r.deps.Base.WithTokens(mgr))
	cfg := r.deps.Config
	profile := services.NewProfileService(b.Users, log)

	return &Session{
		ID:      id,
		Auth:    mgr,
		Backend: b,
		Filter:  filter.NewController(b.Listings, r.deps.Notifier, id, log),
		Detail:  detail.NewOverlay(b.Sales, b.Rentals, profile, r.deps.Frames(), r.deps.Notifier, id, log),
		Listings: services.NewProfileListingService(b.Listings, b.Properties, b.Sales, b.Rentals,
			r.deps.Ledger, cfg.UploadProgressTick, uint(cfg.ImageMaxDimension), log),
		Properties: services.NewPropertyService(b.Properties, log),
		Profile:    profile,
		Discovery:  services.NewDiscoveryService(b.Listings, log),
		Agents:     services.NewAgentService(b.Listings, b.Wallets, b.Transactions, log),
		Wallets: services.NewWalletService(b.Wallets, b.Transactions, services.VietQR{
			BankID:      cfg.VietQRBankID,
			AccountNo:   cfg.VietQRAccountNo,
			AccountName: cfg.VietQRAccountName,
			Template:    cfg.VietQRTemplate,
		}, log),
		Accounts: services.NewAccountService(b.Users, b.Wallets, log),
		Packages: services.NewPackageService(r.deps.Ledger, b.Wallets, log),
	}, nil
}
