package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"proptech/portal/internal/models"
)

// IAccountService is the administrator's user management.
type IAccountService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
	SetEnabled(ctx context.Context, userID string, enabled bool) error
	AddRole(ctx context.Context, userID, role string) error
	RemoveRole(ctx context.Context, userID, role string) error
}

type accountService struct {
	users   UserAPI
	wallets WalletAPI
	log     *slog.Logger
}

func NewAccountService(users UserAPI, wallets WalletAPI, log *slog.Logger) IAccountService {
	return &accountService{users: users, wallets: wallets, log: log}
}

func (s *accountService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *accountService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return s.users.GetByUsername(ctx, username)
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (s *accountService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", userID, "by", actorID)
	return nil
}

func (s *accountService) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	if enabled {
		return s.users.Enable(ctx, userID)
	}
	return s.users.Disable(ctx, userID)
}

// AddRole grants role. New agents also get a wallet; failing to create one
// does not undo the grant.
func (s *accountService) AddRole(ctx context.Context, userID, role string) error {
	role, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if err := s.users.AddRole(ctx, userID, role); err != nil {
		return err
	}
	if role == models.RoleAgent {
		if _, err := s.wallets.Create(ctx, userID); err != nil {
			s.log.Warn("agent role granted without wallet", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *accountService) RemoveRole(ctx context.Context, userID, role string) error {
	role, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if role == models.RoleUser {
		return fmt.Errorf("%w: %s", ErrProtectedRole, role)
	}
	return s.users.RemoveRole(ctx, userID, role)
}

// NormalizeRole accepts "agent", "AGENT" or "ROLE_AGENT" style names.
func NormalizeRole(role string) (string, error) {
	r := strings.ToUpper(strings.TrimSpace(role))
	if !strings.HasPrefix(r, "ROLE_") {
		r = "ROLE_" + r
	}
	switch r {
	case models.RoleUser, models.RoleAgent, models.RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
}
