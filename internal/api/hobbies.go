package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/hobbyhub/profile-client/internal/models"
)

const hobbiesPath = "/api/hobbies/"

// ListHobbies calls GET /api/hobbies/.
func (c *Client) ListHobbies(ctx context.Context) ([]models.Hobby, error) {
	var result models.HobbyList
	if err := c.do(ctx, http.MethodGet, hobbiesPath, nil, nil, &result); err != nil {
		return nil, err
	}
	if result.Hobbies == nil {
		result.Hobbies = []models.Hobby{}
	}
	return result.Hobbies, nil
}

// CreateHobby calls POST /api/hobbies/. The response body is not used.
func (c *Client) CreateHobby(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return Invalid(http.MethodPost+" "+hobbiesPath, "hobby name is required")
	}
	body := models.CreateHobbyRequest{HobbyName: name}
	return c.do(ctx, http.MethodPost, hobbiesPath, nil, body, nil)
}
