package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"proptech/portal/internal/models"
	"proptech/portal/internal/upload"
)

// IProfileService backs the personal info page of the signed in user.
type IProfileService interface {
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateMe(ctx context.Context, userID string, req *ProfileUpdate) (*models.User, error)
	// Contact is the public card of an agent shown next to a listing.
	Contact(ctx context.Context, userID string) (*models.User, error)
}

// ProfileUpdate changes the editable fields of the own profile. Nil fields
// are left alone; an avatar replaces the current one.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	Avatar      *models.ImageUpload
}

// AvatarMaxDimension bounds both sides of a stored avatar.
const AvatarMaxDimension = 256

type profileService struct {
	users UserAPI
	log   *slog.Logger
}

func NewProfileService(users UserAPI, log *slog.Logger) IProfileService {
	return &profileService{users: users, log: log}
}

func (s *profileService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *profileService) Contact(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		AvatarURL:   u.AvatarURL,
	}, nil
}

// UpdateMe sends the changed fields. The avatar is downscaled and stored
// inline as a data URL since the user API only keeps an avatar URL.
func (s *profileService) UpdateMe(ctx context.Context, userID string, req *ProfileUpdate) (*models.User, error) {
	body := &models.UpdateUserRequest{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name must not be empty", ErrInvalidInput)
		}
		body.FullName = &name
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if !validPhone(phone) {
			return nil, fmt.Errorf("%w: invalid phone number %q", ErrInvalidInput, phone)
		}
		body.PhoneNumber = &phone
	}
	if req.Avatar != nil {
		img, err := upload.Downscale(*req.Avatar, AvatarMaxDimension)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		dataURL := "data:" + http.DetectContentType(img.Data) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
		body.AvatarURL = &dataURL
	}
	if body.FullName == nil && body.PhoneNumber == nil && body.AvatarURL == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	updated, err := s.users.Update(ctx, userID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.log.Info("profile updated", "user_id", userID, "avatar", req.Avatar != nil)
	return updated, nil
}

// validPhone accepts an empty number (clearing it) or 9 to 15 digits with an
// optional leading plus.
func validPhone(p string) bool {
	if p == "" {
		return true
	}
	digits := strings.TrimPrefix(p, "+")
	if len(digits) < 9 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
