package api

import (
	"context"
	"net/http"

	"github.com/hobbyhub/profile-client/internal/models"
)

const friendRequestsPath = "/api/friend-requests/"

// SendFriendRequest calls POST /api/friend-requests/.
func (c *Client) SendFriendRequest(ctx context.Context, toUserID int64) (*models.FriendRequestResult, error) {
	var result models.FriendRequestResult
	body := models.SendFriendRequest{ToUserID: toUserID}
	if err := c.do(ctx, http.MethodPost, friendRequestsPath, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFriendRequests calls GET /api/friend-requests/ and returns the
// pending requests addressed to the session user.
func (c *Client) ListFriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := c.do(ctx, http.MethodGet, friendRequestsPath, nil, nil, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.FriendRequest{}
	}
	return requests, nil
}

// AcceptFriendRequest calls PUT /api/friend-requests/ with action "accept".
func (c *Client) AcceptFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequestResult, error) {
	var result models.FriendRequestResult
	body := models.RespondFriendRequest{FriendRequestID: requestID, Action: models.ActionAccept}
	if err := c.do(ctx, http.MethodPut, friendRequestsPath, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
