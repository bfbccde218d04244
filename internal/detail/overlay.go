// Package detail controls the listing detail overlay: which listing is open,
// its price history and the image carousel.
package detail

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"proptech/portal/internal/carousel"
	"proptech/portal/internal/models"
	"proptech/portal/internal/notify"
	"proptech/portal/internal/render"
)

type Phase int

const (
	Closed Phase = iota
	LoadingHistory
	HistoryLoaded
	HistoryFailed
)

func (p Phase) String() string {
	switch p {
	case LoadingHistory:
		return "loadingHistory"
	case HistoryLoaded:
		return "historyLoaded"
	case HistoryFailed:
		return "historyFailed"
	default:
		return "closed"
	}
}

var ErrClosed = errors.New("detail overlay is closed")

// View is what the overlay shows. HistoryFailed distinguishes a failed
// history fetch from a listing without history.
type View struct {
	Open          bool            `json:"open"`
	Phase         string          `json:"phase"`
	Path          string          `json:"path,omitempty"`
	Listing       *models.Listing `json:"listing,omitempty"`
	Address       string          `json:"address,omitempty"`
	PriceLabel    string          `json:"priceLabel,omitempty"`
	Images        []string        `json:"images"`
	History       []Row           `json:"history"`
	HistoryFailed bool            `json:"historyFailed"`
	Agent         *Agent          `json:"agent,omitempty"`
	Carousel      *carousel.State `json:"carousel,omitempty"`
}

// Overlay is the detail controller of one browsing session.
type Overlay struct {
	sales     SaleHistory
	rentals   RentalHistory
	agents    AgentDirectory
	frames    carousel.Scheduler
	notifier  notify.Notifier
	sessionID string
	log       *slog.Logger

	mu         sync.Mutex
	phase      Phase
	listing    *models.Listing
	rows       []Row
	agent      *Agent
	generation uint64
	car        *carousel.Carousel
}

// NewOverlay builds the overlay. agents may be nil, in which case the agent
// block only carries the fallback name.
func NewOverlay(sales SaleHistory, rentals RentalHistory, agents AgentDirectory, frames carousel.Scheduler, notifier notify.Notifier, sessionID string, log *slog.Logger) *Overlay {
	return &Overlay{
		sales:     sales,
		rentals:   rentals,
		agents:    agents,
		frames:    frames,
		notifier:  notifier,
		sessionID: sessionID,
		log:       log,
	}
}

// Open shows listing, starts its carousel and loads the price history and
// the agent card.
// Opening another listing while a history fetch is in flight discards the
// older response.
func (o *Overlay) Open(ctx context.Context, listing models.Listing) View {
	o.mu.Lock()
	o.stopCarouselLocked()
	o.generation++
	gen := o.generation
	o.phase = LoadingHistory
	o.listing = &listing
	o.rows = []Row{}
	o.agent = nil
	o.car = carousel.New(o.frames, len(listing.Images()))
	o.car.Start()
	o.mu.Unlock()

	rows, err := o.fetch(ctx, listing)
	agent := o.fetchAgent(ctx, listing.AgentID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.log.Debug("dropping stale price history", "listing_id", listing.ID)
		return o.viewLocked()
	}
	o.agent = agent
	if err != nil {
		o.phase = HistoryFailed
		o.rows = []Row{}
		o.log.Warn("price history fetch failed", "listing_id", listing.ID, "error", err)
		if nerr := o.notifier.Notify(ctx, notify.FromError(o.sessionID, "Price history is unavailable", err)); nerr != nil {
			o.log.Error("failed to deliver notification", "error", nerr)
		}
		return o.viewLocked()
	}
	o.phase = HistoryLoaded
	o.rows = Annotate(rows, listing.Area)
	return o.viewLocked()
}

func (o *Overlay) fetch(ctx context.Context, listing models.Listing) ([]Row, error) {
	if listing.PropertyID == "" {
		return []Row{}, nil
	}
	switch listing.ListingType {
	case models.ListingTypeSale:
		txs, err := o.sales.ByProperty(ctx, listing.PropertyID)
		if err != nil {
			return nil, err
		}
		return salesToRows(txs), nil
	case models.ListingTypeRent:
		txs, err := o.rentals.ByProperty(ctx, listing.PropertyID)
		if err != nil {
			return nil, err
		}
		return rentalsToRows(txs), nil
	}
	return []Row{}, nil
}

// Close hides the overlay and cancels the carousel.
func (o *Overlay) Close() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopCarouselLocked()
	o.generation++
	o.phase = Closed
	o.listing = nil
	o.rows = nil
	o.agent = nil
	return o.viewLocked()
}

// Back is the history pop of the synthetic detail path; it closes the overlay.
func (o *Overlay) Back() View {
	return o.Close()
}

// SelectSlide jumps the carousel to image i.
func (o *Overlay) SelectSlide(i int) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase == Closed || o.car == nil {
		return o.viewLocked(), ErrClosed
	}
	if err := o.car.Select(i); err != nil {
		return o.viewLocked(), err
	}
	return o.viewLocked(), nil
}

func (o *Overlay) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Overlay) stopCarouselLocked() {
	if o.car != nil {
		o.car.Cancel()
		o.car = nil
	}
}

func (o *Overlay) viewLocked() View {
	v := View{Phase: o.phase.String(), Images: []string{}, History: []Row{}}
	if o.phase == Closed || o.listing == nil {
		return v
	}
	l := *o.listing
	v.Open = true
	v.Path = render.DetailPath(l.ID)
	v.Listing = &l
	v.Address = l.AddressLine()
	v.PriceLabel = render.FormatPrice(l.Price)
	if imgs := l.Images(); imgs != nil {
		v.Images = imgs
	}
	v.History = append(v.History, o.rows...)
	v.HistoryFailed = o.phase == HistoryFailed
	if o.agent != nil {
		a := *o.agent
		v.Agent = &a
	}
	if o.car != nil {
		st := o.car.State()
		v.Carousel = &st
	}
	return v
}
