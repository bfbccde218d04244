package models

import "slices"

const (
	RoleUser  = "ROLE_USER"
	RoleAgent = "ROLE_AGENT"
	RoleAdmin = "ROLE_ADMIN"
)

// User is an account as returned by the security service.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Roles       []string  `json:"roles"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   Timestamp `json:"createdAt"`
	LastLoginAt Timestamp `json:"lastLoginAt"`
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Email           string `json:"email" binding:"required"`
	FullName        string `json:"fullName" binding:"required"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// JwtResponse is the token grant returned by login and refresh.
type JwtResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ID           string   `json:"id"`
	FullName     string   `json:"fullName"`
	AvatarURL    string   `json:"avatarUrl,omitempty"`
	Roles        []string `json:"roles"`
}

// SessionUser is the identity persisted next to the tokens.
type SessionUser struct {
	ID        string   `json:"id"`
	FullName  string   `json:"fullName"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Roles     []string `json:"roles"`
}

func (u SessionUser) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// SessionUserFromJwt extracts the persisted identity from a grant.
func SessionUserFromJwt(r *JwtResponse) SessionUser {
	return SessionUser{ID: r.ID, FullName: r.FullName, AvatarURL: r.AvatarURL, Roles: r.Roles}
}
