package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"proptech/portal/internal/models"
	"proptech/portal/internal/notify"
)

// Searcher runs a listing search with already derived query parameters.
type Searcher interface {
	Search(ctx context.Context, params url.Values) ([]models.Listing, error)
}

// ErrInvalidFilter wraps every rejected filter change.
var ErrInvalidFilter = errors.New("invalid filter")

// Snapshot is what the listing page shows at one moment.
type Snapshot struct {
	State       State            `json:"state"`
	Params      Params           `json:"params"`
	Listings    []models.Listing `json:"listings"`
	Loading     bool             `json:"loading"`
	Err         string           `json:"error,omitempty"`
	Generation  uint64           `json:"generation"`
	Initialized bool             `json:"initialized"`
}

// Controller owns the filter state of one browsing session. Every change
// after initialisation issues exactly one search; a response is only
// displayed when it belongs to the latest search issued.
type Controller struct {
	searcher  Searcher
	notifier  notify.Notifier
	sessionID string
	log       *slog.Logger

	mu          sync.Mutex
	state       State
	listings    []models.Listing
	loading     bool
	lastErr     string
	generation  uint64
	initialized bool
}

func NewController(searcher Searcher, notifier notify.Notifier, sessionID string, log *slog.Logger) *Controller {
	return &Controller{
		searcher:  searcher,
		notifier:  notifier,
		sessionID: sessionID,
		log:       log,
		state:     Default(),
		listings:  []models.Listing{},
	}
}

// Init mounts the listing page: the state is rebuilt from Default and the
// page URL, previous results are discarded and the first search runs.
// Updates that arrive before the first Init only change state; no search
// runs with filters the URL is about to override.
func (c *Controller) Init(ctx context.Context, query url.Values) Snapshot {
	c.mu.Lock()
	c.state = Default()
	c.listings = []models.Listing{}
	c.lastErr = ""
	seeded := c.state.Seed(query)
	c.initialized = true
	c.mu.Unlock()

	if seeded {
		c.log.Debug("filter seeded from url", "session", c.sessionID, "query", query.Encode())
	}
	return c.search(ctx)
}

// Update mutates the state and, once initialised, searches with it. An
// invalid result leaves the state unchanged.
func (c *Controller) Update(ctx context.Context, mutate func(*State) error) (Snapshot, error) {
	c.mu.Lock()
	next := c.state
	if err := mutate(&next); err != nil {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if err := next.Validate(); err != nil {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	c.state = next
	ready := c.initialized
	c.mu.Unlock()

	if !ready {
		return c.Snapshot(), nil
	}
	return c.search(ctx), nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	listings := make([]models.Listing, len(c.listings))
	copy(listings, c.listings)
	return Snapshot{
		State:       c.state,
		Params:      c.state.Params(),
		Listings:    listings,
		Loading:     c.loading,
		Err:         c.lastErr,
		Generation:  c.generation,
		Initialized: c.initialized,
	}
}

func (c *Controller) search(ctx context.Context) Snapshot {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	state := c.state
	c.mu.Unlock()

	found, err := c.searcher.Search(ctx, state.Params().Values())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.log.Debug("dropping superseded search result", "session", c.sessionID,
			"generation", gen, "latest", c.generation)
		return c.snapshotLocked()
	}
	c.loading = false
	if err != nil {
		// Keep the previous results on screen.
		c.lastErr = err.Error()
		c.log.Warn("listing search failed", "session", c.sessionID, "error", err)
		if nerr := c.notifier.Notify(ctx, notify.FromError(c.sessionID, "Failed to load listings", err)); nerr != nil {
			c.log.Error("failed to deliver notification", "error", nerr)
		}
		return c.snapshotLocked()
	}

	filtered := make([]models.Listing, 0, len(found))
	for _, l := range found {
		if state.Matches(l) {
			filtered = append(filtered, l)
		}
	}
	c.listings = filtered
	c.lastErr = ""
	return c.snapshotLocked()
}
