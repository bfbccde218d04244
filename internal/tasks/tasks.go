package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/notify"
	"proptech/portal/internal/services"
	"proptech/portal/internal/session"
)

// TaskType defines the type of a background task.
const (
	TypeMarkSold = "listing:mark_sold"
)

const (
	QueueDefault  = "default"
	markSoldRetry = 5
)

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// MarkSoldPayload identifies the browse session whose stored login the
// worker acts with, and what was sold to whom.
type MarkSoldPayload struct {
	SessionID string                   `json:"session_id"`
	ListingID string                   `json:"listing_id"`
	Request   services.MarkSoldRequest `json:"request"`
}

// Enqueuer schedules background work.
type Enqueuer interface {
	EnqueueMarkSold(ctx context.Context, p MarkSoldPayload) (string, error)
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return &asynqEnqueuer{client: client}
}

func (e *asynqEnqueuer) EnqueueMarkSold(ctx context.Context, p MarkSoldPayload) (string, error) {
	task, err := NewMarkSoldTask(p)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", TypeMarkSold, err)
	}
	return info.ID, nil
}

func NewMarkSoldTask(p MarkSoldPayload) (*asynq.Task, error) {
	if p.SessionID == "" || p.ListingID == "" {
		return nil, errors.New("mark sold task needs a session and a listing")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mark sold payload: %w", err)
	}
	return asynq.NewTask(TypeMarkSold, payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(markSoldRetry),
		asynq.Timeout(time.Minute),
		// One pending task per listing.
		asynq.TaskID(TypeMarkSold+":"+p.ListingID),
	), nil
}

// --- Task Server (Processing tasks) ---

// ListingServices resolves the listing service acting for a browse session.
type ListingServices interface {
	ProfileListings(ctx context.Context, sessionID string) (services.IProfileListingService, error)
}

// TaskProcessor handles the processing of tasks.
type TaskProcessor struct {
	listings ListingServices
	notifier notify.Notifier
	log      *slog.Logger
}

func NewTaskProcessor(listings ListingServices, notifier notify.Notifier, log *slog.Logger) *TaskProcessor {
	return &TaskProcessor{listings: listings, notifier: notifier, log: log.With("component", "tasks")}
}

// SetupServer configures the asynq server and the mux of its handlers.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, log *slog.Logger) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				"critical":   6,
				QueueDefault: 3,
				"low":        1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				log.Error("task failed", "type", task.Type(), "retry", retried, "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMarkSold, processor.HandleMarkSoldTask)
	return srv, mux
}

// --- Task Handlers ---

func (p *TaskProcessor) HandleMarkSoldTask(ctx context.Context, t *asynq.Task) error {
	var payload MarkSoldPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal mark sold payload: %v: %w", err, asynq.SkipRetry)
	}
	log := p.log.With("listing_id", payload.ListingID, "browse_session", payload.SessionID)

	svc, err := p.listings.ProfileListings(ctx, payload.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			log.Warn("session logged out before mark sold ran")
			return fmt.Errorf("session %s is anonymous: %w", payload.SessionID, asynq.SkipRetry)
		}
		return err
	}

	listing, err := svc.MarkSold(ctx, payload.ListingID, &payload.Request)
	if err != nil {
		if apiclient.Classify(err) == apiclient.Transient && !isLastAttempt(ctx) {
			log.Info("mark sold will be retried", "error", err)
			return err
		}
		p.notify(ctx, notify.FromError(payload.SessionID, "Failed to mark the listing as sold", err))
		return fmt.Errorf("mark sold %s: %v: %w", payload.ListingID, err, asynq.SkipRetry)
	}

	log.Info("listing marked sold in background")
	p.notify(ctx, notify.New(payload.SessionID, notify.Success, fmt.Sprintf("%s was marked as sold", listingName(listing.Name, listing.ID))))
	return nil
}

func (p *TaskProcessor) notify(ctx context.Context, n notify.Notification) {
	if err := p.notifier.Notify(ctx, n); err != nil {
		p.log.Warn("failed to deliver notification", "error", err)
	}
}

func isLastAttempt(ctx context.Context) bool {
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	return ok1 && ok2 && retried >= maxRetry
}

func listingName(name, id string) string {
	if name != "" {
		return name
	}
	return "Listing " + id
}
