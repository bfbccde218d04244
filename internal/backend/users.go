package backend

import (
	"context"
	"net/http"
	"net/url"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/models"
)

const usersPath = "/securities/users"

type UserClient struct {
	c *apiclient.Client
}

func (u *UserClient) List(ctx context.Context) ([]models.User, error) {
	resp, err := u.c.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: usersPath})
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeList[models.User](resp.Body)
}

func (u *UserClient) Get(ctx context.Context, id string) (*models.User, error) {
	return u.one(ctx, http.MethodGet, usersPath+"/"+url.PathEscape(id), nil)
}

func (u *UserClient) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return u.one(ctx, http.MethodGet, usersPath+"/username/"+url.PathEscape(username), nil)
}

func (u *UserClient) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	return u.one(ctx, http.MethodPut, usersPath+"/"+url.PathEscape(id), req)
}

func (u *UserClient) Delete(ctx context.Context, id string) error {
	_, err := u.c.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: usersPath + "/" + url.PathEscape(id)})
	return err
}

func (u *UserClient) Enable(ctx context.Context, id string) error {
	_, err := u.c.Do(ctx, apiclient.Request{Method: http.MethodPatch, Path: usersPath + "/" + url.PathEscape(id) + "/enable"})
	return err
}

func (u *UserClient) Disable(ctx context.Context, id string) error {
	_, err := u.c.Do(ctx, apiclient.Request{Method: http.MethodPatch, Path: usersPath + "/" + url.PathEscape(id) + "/disable"})
	return err
}

func (u *UserClient) AddRole(ctx context.Context, userID, role string) error {
	_, err := u.c.Do(ctx, apiclient.Request{Method: http.MethodPatch, Path: rolePath(userID, role)})
	return err
}

func (u *UserClient) RemoveRole(ctx context.Context, userID, role string) error {
	_, err := u.c.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: rolePath(userID, role)})
	return err
}

func (u *UserClient) one(ctx context.Context, method, path string, body interface{}) (*models.User, error) {
	req := apiclient.Request{Method: method, Path: path}
	if body != nil {
		req.Body = body
	}
	resp, err := u.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeOne[models.User](resp.Body)
}

func rolePath(userID, role string) string {
	return usersPath + "/" + url.PathEscape(userID) + "/roles/" + url.PathEscape(role)
}
