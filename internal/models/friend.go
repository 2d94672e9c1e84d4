package models

import "time"

// ActionAccept is the only action the friend-request endpoint understands.
const ActionAccept = "accept"

// FriendRequest is an invitation between two users.
type FriendRequest struct {
	ID        int64     `json:"id"`
	FromUser  *User     `json:"from_user,omitempty"`
	ToUser    *User     `json:"to_user,omitempty"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// SendFriendRequest is the JSON body for POST /api/friend-requests/.
type SendFriendRequest struct {
	ToUserID int64 `json:"to_user_id" validate:"required"`
}

// RespondFriendRequest is the JSON body for PUT /api/friend-requests/.
type RespondFriendRequest struct {
	FriendRequestID int64  `json:"friend_request_id" validate:"required"`
	Action          string `json:"action" validate:"required,oneof=accept"`
}

// FriendRequestResult is what the friend-request endpoint answers on a
// write. Depending on the backend revision it carries the request record,
// a message, or both.
type FriendRequestResult struct {
	FriendRequest
	Message string `json:"message,omitempty"`
}
