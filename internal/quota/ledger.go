// Package quota keeps the per-user count of listing postings left and the
// history of how it changed. The ledger lives in client storage only and has
// no server reconciliation: two browser sessions of the same user (or two
// portal instances sharing a store) can spend the same unit twice.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"proptech/portal/internal/models"
	"proptech/portal/internal/storage"
)

var (
	ErrQuotaExhausted = errors.New("listing quota exhausted")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// Ledger is the quota bookkeeping surface used by the services.
type Ledger interface {
	Remaining(ctx context.Context, userID string) (models.QuotaState, error)
	Spend(ctx context.Context, userID string, n int, reason string) (models.QuotaState, error)
	Grant(ctx context.Context, userID string, n int, reason string) (models.QuotaState, error)
	// Activate selects pkg and grants its quota in the same write.
	Activate(ctx context.Context, userID string, pkg models.Package) (models.QuotaState, error)
	History(ctx context.Context, userID string) ([]models.QuotaEntry, error)
}

func stateKey(userID string) string   { return "user_package_" + userID }
func historyKey(userID string) string { return "user_package_history_" + userID }

type storageLedger struct {
	st  storage.Storage
	now func() time.Time
	// mu serialises read-modify-write cycles inside this process.
	mu sync.Mutex
}

// NewLedger returns a Ledger persisted in st.
func NewLedger(st storage.Storage) Ledger {
	return &storageLedger{st: st, now: time.Now}
}

func (l *storageLedger) Remaining(ctx context.Context, userID string) (models.QuotaState, error) {
	return l.loadState(ctx, userID)
}

func (l *storageLedger) Spend(ctx context.Context, userID string, n int, reason string) (models.QuotaState, error) {
	if n <= 0 {
		return models.QuotaState{}, ErrInvalidAmount
	}
	return l.apply(ctx, userID, func(s *models.QuotaState) error {
		if s.Remaining < n {
			return fmt.Errorf("%w: %d left, %d requested", ErrQuotaExhausted, s.Remaining, n)
		}
		s.Remaining -= n
		return nil
	}, reason, -n)
}

func (l *storageLedger) Grant(ctx context.Context, userID string, n int, reason string) (models.QuotaState, error) {
	if n <= 0 {
		return models.QuotaState{}, ErrInvalidAmount
	}
	return l.apply(ctx, userID, func(s *models.QuotaState) error {
		s.Remaining += n
		return nil
	}, reason, n)
}

func (l *storageLedger) Activate(ctx context.Context, userID string, pkg models.Package) (models.QuotaState, error) {
	return l.apply(ctx, userID, func(s *models.QuotaState) error {
		s.Selected = pkg.ID
		s.Remaining += pkg.Quota
		return nil
	}, "Mua "+pkg.Name, pkg.Quota)
}

func (l *storageLedger) History(ctx context.Context, userID string) ([]models.QuotaEntry, error) {
	raw, ok, err := l.st.Get(ctx, storage.UserNamespace(userID), historyKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read quota history: %w", err)
	}
	if !ok || raw == "" {
		return []models.QuotaEntry{}, nil
	}
	var entries []models.QuotaEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("corrupt quota history: %w", err)
	}
	return entries, nil
}

func (l *storageLedger) apply(ctx context.Context, userID string, mutate func(*models.QuotaState) error, action string, value int) (models.QuotaState, error) {
	if userID == "" {
		return models.QuotaState{}, errors.New("user id is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.loadState(ctx, userID)
	if err != nil {
		return models.QuotaState{}, err
	}
	history, err := l.History(ctx, userID)
	if err != nil {
		return models.QuotaState{}, err
	}
	if err := mutate(&state); err != nil {
		return models.QuotaState{}, err
	}

	entry := models.QuotaEntry{ID: uuid.NewString(), Action: action, Time: l.now(), Value: value}
	history = append([]models.QuotaEntry{entry}, history...)

	rawState, err := json.Marshal(state)
	if err != nil {
		return models.QuotaState{}, err
	}
	rawHistory, err := json.Marshal(history)
	if err != nil {
		return models.QuotaState{}, err
	}
	err = l.st.SetMany(ctx, storage.UserNamespace(userID), map[string]string{
		stateKey(userID):   string(rawState),
		historyKey(userID): string(rawHistory),
	})
	if err != nil {
		return models.QuotaState{}, fmt.Errorf("failed to persist quota: %w", err)
	}
	return state, nil
}

func (l *storageLedger) loadState(ctx context.Context, userID string) (models.QuotaState, error) {
	raw, ok, err := l.st.Get(ctx, storage.UserNamespace(userID), stateKey(userID))
	if err != nil {
		return models.QuotaState{}, fmt.Errorf("failed to read quota: %w", err)
	}
	if !ok || raw == "" {
		return models.QuotaState{Selected: models.PackageBasic.ID, Remaining: models.PackageBasic.Quota}, nil
	}
	var state models.QuotaState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return models.QuotaState{}, fmt.Errorf("corrupt quota state: %w", err)
	}
	return state, nil
}
