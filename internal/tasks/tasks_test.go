package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/logger"
	"proptech/portal/internal/models"
	"proptech/portal/internal/notify"
	"proptech/portal/internal/services"
	"proptech/portal/internal/session"
	"proptech/portal/internal/tasks"
	"proptech/portal/internal/upload"
)

// --- Mocks ---

type MockListingServices struct {
	mock.Mock
}

func (m *MockListingServices) ProfileListings(ctx context.Context, sessionID string) (services.IProfileListingService, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(services.IProfileListingService), args.Error(1)
}

type MockProfileListingService struct {
	mock.Mock
}

func (m *MockProfileListingService) MyListings(ctx context.Context, agentID string, page, size int) (*services.ListingPage, error) {
	args := m.Called(ctx, agentID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ListingPage), args.Error(1)
}
func (m *MockProfileListingService) Listing(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockProfileListingService) Properties(ctx context.Context, page, size int) ([]models.Property, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}
func (m *MockProfileListingService) Create(ctx context.Context, agentID string, req *models.AddListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, agentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockProfileListingService) Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockProfileListingService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockProfileListingService) MarkSold(ctx context.Context, listingID string, req *services.MarkSoldRequest) (*models.Listing, error) {
	args := m.Called(ctx, listingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockProfileListingService) UploadProgress() upload.Progress {
	return m.Called().Get(0).(upload.Progress)
}

// --- Tests ---

func markSoldTask(t *testing.T, sessionID, listingID string) *asynq.Task {
	t.Helper()
	task, err := tasks.NewMarkSoldTask(tasks.MarkSoldPayload{
		SessionID: sessionID,
		ListingID: listingID,
		Request:   services.MarkSoldRequest{BuyerName: "Trần B", BuyerIdentity: "079"},
	})
	require.NoError(t, err)
	return task
}

func TestNewMarkSoldTask_RequiresIDs(t *testing.T) {
	_, err := tasks.NewMarkSoldTask(tasks.MarkSoldPayload{ListingID: "l1"})
	assert.Error(t, err)

	task := markSoldTask(t, "tab-1", "l1")
	assert.Equal(t, tasks.TypeMarkSold, task.Type())
	var p tasks.MarkSoldPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "Trần B", p.Request.BuyerName)
}

func TestHandleMarkSoldTask_Success(t *testing.T) {
	lookup := new(MockListingServices)
	svc := new(MockProfileListingService)
	inbox := notify.NewMemoryInbox(notify.DefaultInboxSize)
	p := tasks.NewTaskProcessor(lookup, inbox, logger.Discard())

	lookup.On("ProfileListings", mock.Anything, "tab-1").Return(svc, nil)
	svc.On("MarkSold", mock.Anything, "l1", &services.MarkSoldRequest{BuyerName: "Trần B", BuyerIdentity: "079"}).
		Return(&models.Listing{ID: "l1", Name: "Căn hộ Q1", IsSold: true}, nil)

	err := p.HandleMarkSoldTask(context.Background(), markSoldTask(t, "tab-1", "l1"))
	require.NoError(t, err)

	notes, err := inbox.Drain(context.Background(), "tab-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notify.Success, notes[0].Severity)
	assert.Contains(t, notes[0].Message, "Căn hộ Q1")
	svc.AssertExpectations(t)
}

func TestHandleMarkSoldTask_TransientIsRetried(t *testing.T) {
	lookup := new(MockListingServices)
	svc := new(MockProfileListingService)
	inbox := notify.NewMemoryInbox(notify.DefaultInboxSize)
	p := tasks.NewTaskProcessor(lookup, inbox, logger.Discard())

	lookup.On("ProfileListings", mock.Anything, "tab-1").Return(svc, nil)
	svc.On("MarkSold", mock.Anything, "l1", mock.Anything).Return(nil, &apiclient.Error{StatusCode: 503})

	err := p.HandleMarkSoldTask(context.Background(), markSoldTask(t, "tab-1", "l1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	notes, _ := inbox.Drain(context.Background(), "tab-1")
	assert.Empty(t, notes, "no notification before the final attempt")
}

func TestHandleMarkSoldTask_TerminalSkipsRetry(t *testing.T) {
	lookup := new(MockListingServices)
	svc := new(MockProfileListingService)
	inbox := notify.NewMemoryInbox(notify.DefaultInboxSize)
	p := tasks.NewTaskProcessor(lookup, inbox, logger.Discard())

	lookup.On("ProfileListings", mock.Anything, "tab-1").Return(svc, nil)
	svc.On("MarkSold", mock.Anything, "l1", mock.Anything).Return(nil, services.ErrAlreadySold)

	err := p.HandleMarkSoldTask(context.Background(), markSoldTask(t, "tab-1", "l1"))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	notes, _ := inbox.Drain(context.Background(), "tab-1")
	require.Len(t, notes, 1)
	assert.Equal(t, notify.Error, notes[0].Severity)
}

func TestHandleMarkSoldTask_AnonymousSession(t *testing.T) {
	lookup := new(MockListingServices)
	p := tasks.NewTaskProcessor(lookup, notify.NewMemoryInbox(1), logger.Discard())
	lookup.On("ProfileListings", mock.Anything, "gone").Return(nil, session.ErrNotLoggedIn)

	err := p.HandleMarkSoldTask(context.Background(), markSoldTask(t, "gone", "l1"))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleMarkSoldTask_BadPayload(t *testing.T) {
	p := tasks.NewTaskProcessor(new(MockListingServices), notify.NewMemoryInbox(1), logger.Discard())
	err := p.HandleMarkSoldTask(context.Background(), asynq.NewTask(tasks.TypeMarkSold, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
