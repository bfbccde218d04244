package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/models"
)

const authPath = "/securities/auth"

// AuthClient calls the unauthenticated security endpoints. None of its
// requests carry a bearer token or take part in the refresh cycle.
type AuthClient struct {
	c *apiclient.Client
}

func (a *AuthClient) Login(ctx context.Context, req *models.LoginRequest) (*models.JwtResponse, error) {
	return a.grant(ctx, apiclient.Request{Method: http.MethodPost, Path: authPath + "/login", Body: req, NoAuth: true})
}

func (a *AuthClient) Register(ctx context.Context, req *models.RegisterRequest) (*models.JwtResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match")
	}
	return a.grant(ctx, apiclient.Request{Method: http.MethodPost, Path: authPath + "/register", Body: req, NoAuth: true})
}

// Refresh exchanges a refresh token. The token travels as a query parameter.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*models.JwtResponse, error) {
	return a.grant(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authPath + "/refresh",
		Query:  url.Values{"refreshToken": {refreshToken}},
		NoAuth: true,
	})
}

func (a *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := a.c.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authPath + "/forgot-password",
		Query:  url.Values{"email": {email}},
		NoAuth: true,
	})
	return err
}

func (a *AuthClient) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	_, err := a.c.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: authPath + "/reset-password", Body: req, NoAuth: true})
	return err
}

// ValidateResetToken reports whether a password reset token is still usable.
func (a *AuthClient) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	var valid bool
	err := a.c.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authPath + "/validate-token",
		Query:  url.Values{"token": {token}},
		NoAuth: true,
	}, &valid)
	return valid, err
}

func (a *AuthClient) grant(ctx context.Context, req apiclient.Request) (*models.JwtResponse, error) {
	resp, err := a.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	jwt, err := apiclient.DecodeOne[models.JwtResponse](resp.Body)
	if err != nil {
		return nil, err
	}
	if jwt.AccessToken == "" {
		return nil, fmt.Errorf("%s: response carries no access token", req.Path)
	}
	return jwt, nil
}
