package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hobbyhub/profile-client/internal/api"
	"github.com/hobbyhub/profile-client/internal/models"
)

// ErrNoSession is returned by operations that need a session user before
// one has been loaded. No request is sent.
var ErrNoSession = errors.New("no session user loaded")

// UserAPI is the part of the REST client the user store needs.
type UserAPI interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetCurrentUser(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context, q models.UserQuery) (*models.UserPage, error)
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	SendFriendRequest(ctx context.Context, toUserID int64) (*models.FriendRequestResult, error)
	ListFriendRequests(ctx context.Context) ([]models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequestResult, error)
	ListFriends(ctx context.Context) ([]models.User, error)
}

// UserState is a consistent copy of everything the user store holds.
type UserState struct {
	CurrentUser           *models.User           `json:"current_user"`
	Users                 []models.User          `json:"users"`
	Page                  int                    `json:"page"`
	HasNext               bool                   `json:"has_next"`
	TotalPages            int                    `json:"total_pages"`
	PendingFriendRequests []models.FriendRequest `json:"pending_friend_requests"`
	Friends               []models.User          `json:"friends"`
}

// UserStore holds the session user, the last user search page, pending
// friend requests and the friends list. Every field is replaced whole by
// the operation that fetches it.
type UserStore struct {
	*notifier
	api UserAPI
	log zerolog.Logger

	mu    sync.RWMutex
	state UserState
}

func NewUserStore(client UserAPI, logger zerolog.Logger, opts ...Option) *UserStore {
	log := logger.With().Str("component", "user_store").Logger()
	return &UserStore{
		notifier: newNotifier("users", log, opts),
		api:      client,
		log:      log,
		state:    emptyUserState(),
	}
}

func emptyUserState() UserState {
	return UserState{
		Users:                 []models.User{},
		TotalPages:            1,
		PendingFriendRequests: []models.FriendRequest{},
		Friends:               []models.User{},
	}
}

// Snapshot returns a deep copy of the store state.
func (s *UserStore) Snapshot() UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.CurrentUser = s.state.CurrentUser.Clone()
	st.Users = cloneUsers(s.state.Users)
	st.Friends = cloneUsers(s.state.Friends)
	st.PendingFriendRequests = make([]models.FriendRequest, len(s.state.PendingFriendRequests))
	for i, fr := range s.state.PendingFriendRequests {
		fr.FromUser = fr.FromUser.Clone()
		fr.ToUser = fr.ToUser.Clone()
		st.PendingFriendRequests[i] = fr
	}
	return st
}

// CurrentUser returns a copy of the session user, or nil.
func (s *UserStore) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentUser.Clone()
}

// HasSession reports whether a session user is loaded.
func (s *UserStore) HasSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentUser != nil
}

// FetchMe loads user id into the current-user slot.
func (s *UserStore) FetchMe(ctx context.Context, id int64) error {
	u, err := s.api.GetUser(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("Error fetching user")
		return err
	}
	s.setCurrentUser(u)
	return nil
}

// FetchCurrentUser loads the user the session cookie identifies.
func (s *UserStore) FetchCurrentUser(ctx context.Context) error {
	u, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching current user")
		return err
	}
	s.setCurrentUser(u)
	return nil
}

func (s *UserStore) setCurrentUser(u *models.User) {
	s.mu.Lock()
	s.state.CurrentUser = u
	s.mu.Unlock()
	s.publish(FieldCurrentUser)
}

// FetchUsers runs a user search and replaces the users page, its number,
// has-next flag and page count together.
func (s *UserStore) FetchUsers(ctx context.Context, q models.UserQuery) error {
	page, err := s.api.ListUsers(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("query", q.Values().Encode()).Msg("Error fetching users")
		return err
	}

	s.mu.Lock()
	s.state.Users = page.Users
	s.state.Page = page.Page
	s.state.HasNext = page.HasNext
	s.state.TotalPages = page.TotalPages
	s.mu.Unlock()

	s.publish(FieldUsers)
	return nil
}

// UpdateProfile sends a partial update for user id and returns the stored
// record. When the server does not echo the user back it is read again.
// The result replaces the session user if ids match and the matching entry
// of the users page, whose common-hobby count is kept.
func (s *UserStore) UpdateProfile(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	updated, err := s.api.UpdateUser(ctx, id, update)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("Error updating profile")
		return nil, err
	}
	if updated.ID == 0 {
		updated, err = s.api.GetUser(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Int64("user_id", id).Msg("Profile updated but reload failed")
			return nil, err
		}
	}

	var changed []Field
	s.mu.Lock()
	if cur := s.state.CurrentUser; cur != nil && cur.ID == updated.ID {
		s.state.CurrentUser = updated.Clone()
		changed = append(changed, FieldCurrentUser)
	}
	for i := range s.state.Users {
		if s.state.Users[i].ID != updated.ID {
			continue
		}
		patched := updated.Clone()
		patched.CommonHobbies = s.state.Users[i].CommonHobbies
		s.state.Users[i] = *patched
		changed = append(changed, FieldUsers)
		break
	}
	s.mu.Unlock()

	s.publish(changed...)
	return updated.Clone(), nil
}

// AddHobbyToCurrentUser re-reads the session user and, when the hobby is
// not already in the fresh set, writes the set back with the hobby added.
// Two callers racing on the same user can still overwrite each other.
func (s *UserStore) AddHobbyToCurrentUser(ctx context.Context, hobbyName string) error {
	if strings.TrimSpace(hobbyName) == "" {
		return api.Invalid("add hobby to current user", "hobby name is required")
	}
	cur := s.CurrentUser()
	if cur == nil {
		return ErrNoSession
	}

	if err := s.FetchMe(ctx, cur.ID); err != nil {
		return err
	}
	fresh := s.CurrentUser()
	if fresh == nil {
		return ErrNoSession
	}
	if fresh.HasHobby(hobbyName) {
		s.log.Debug().Str("hobby", hobbyName).Msg("hobby already on profile")
		return nil
	}

	hobbies := append([]string{}, fresh.Hobbies...)
	hobbies = append(hobbies, hobbyName)
	_, err := s.UpdateProfile(ctx, fresh.ID, models.UserUpdate{Hobbies: &hobbies})
	return err
}

// SendFriendRequest invites toUserID and returns the server's record.
func (s *UserStore) SendFriendRequest(ctx context.Context, toUserID int64) (*models.FriendRequestResult, error) {
	result, err := s.api.SendFriendRequest(ctx, toUserID)
	if err != nil {
		s.log.Error().Err(err).Int64("to_user_id", toUserID).Msg("Error sending friend request")
		return nil, err
	}
	return result, nil
}

// FetchFriendRequests replaces the pending requests addressed to the
// session user.
func (s *UserStore) FetchFriendRequests(ctx context.Context) error {
	requests, err := s.api.ListFriendRequests(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching friend requests")
		return err
	}

	s.mu.Lock()
	s.state.PendingFriendRequests = requests
	s.mu.Unlock()

	s.publish(FieldFriendRequests)
	return nil
}

// AcceptFriendRequest accepts requestID. Pending requests and friends are
// left as they are; call RefreshFriendships to see the result.
func (s *UserStore) AcceptFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequestResult, error) {
	result, err := s.api.AcceptFriendRequest(ctx, requestID)
	if err != nil {
		s.log.Error().Err(err).Int64("friend_request_id", requestID).Msg("Error accepting friend request")
		return nil, err
	}
	return result, nil
}

// FetchFriends replaces the session user's friends list.
func (s *UserStore) FetchFriends(ctx context.Context) error {
	if !s.HasSession() {
		return ErrNoSession
	}

	friends, err := s.api.ListFriends(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching friends")
		return err
	}

	s.mu.Lock()
	s.state.Friends = friends
	s.mu.Unlock()

	s.publish(FieldFriends)
	return nil
}

// RefreshFriendships fetches pending requests and friends concurrently.
// Both fetches run to completion; a failure of one does not cancel the
// other. The first error is returned.
func (s *UserStore) RefreshFriendships(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.FetchFriendRequests(ctx) })
	g.Go(func() error { return s.FetchFriends(ctx) })
	return g.Wait()
}

// Reset drops all state, as on logout.
func (s *UserStore) Reset() {
	s.mu.Lock()
	s.state = emptyUserState()
	s.mu.Unlock()
	s.publish(FieldReset)
}

// Close resets the store and closes every subscription.
func (s *UserStore) Close() {
	s.Reset()
	s.notifier.close()
}

func cloneUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i := range users {
		out[i] = *users[i].Clone()
	}
	return out
}
