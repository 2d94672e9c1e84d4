package api

import (
	"context"
	"net/http"

	"github.com/hobbyhub/profile-client/internal/models"
)

const (
	usersPath       = "/api/users/"
	currentUserPath = "/api/users/current/"
	friendsPath     = "/api/users/current/friends/"
)

// GetUser calls GET /api/users/<id>/.
func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, userPath(id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetCurrentUser calls GET /api/users/current/.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, currentUserPath, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers calls GET /api/users/?<query>.
func (c *Client) ListUsers(ctx context.Context, q models.UserQuery) (*models.UserPage, error) {
	var page models.UserPage
	if err := c.do(ctx, http.MethodGet, usersPath, q.Values(), nil, &page); err != nil {
		return nil, err
	}
	if page.Users == nil {
		page.Users = []models.User{}
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return &page, nil
}

// UpdateUser calls PUT /api/users/<id>/ with a partial update. The returned
// user has a zero ID when the server answered with something other than a
// user record.
func (c *Client) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPut, userPath(id), nil, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListFriends calls GET /api/users/current/friends/.
func (c *Client) ListFriends(ctx context.Context) ([]models.User, error) {
	var friends []models.User
	if err := c.do(ctx, http.MethodGet, friendsPath, nil, nil, &friends); err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []models.User{}
	}
	return friends, nil
}
