package pages

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hobbyhub/profile-client/internal/models"
	"github.com/hobbyhub/profile-client/internal/store"
)

// UserState is the part of the user store the pages use.
type UserState interface {
	Snapshot() store.UserState
	CurrentUser() *models.User
	FetchUsers(ctx context.Context, q models.UserQuery) error
	UpdateProfile(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	AddHobbyToCurrentUser(ctx context.Context, hobbyName string) error
	SendFriendRequest(ctx context.Context, toUserID int64) (*models.FriendRequestResult, error)
	AcceptFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequestResult, error)
	RefreshFriendships(ctx context.Context) error
	Reset()
}

// HobbyDirectory is the part of the hobby store the pages use.
type HobbyDirectory interface {
	Hobbies() []models.Hobby
	FetchHobbies(ctx context.Context) error
	AddHobby(ctx context.Context, name string) error
	Reset()
}

// SessionClearer forgets the session cookies on logout.
type SessionClearer interface {
	Clear()
}

// Handler serves the application's pages as JSON views over the stores.
type Handler struct {
	users    UserState
	hobbies  HobbyDirectory
	session  SessionClearer
	validate *validator.Validate
	log      zerolog.Logger
}

func NewHandler(users UserState, hobbies HobbyDirectory, session SessionClearer, logger zerolog.Logger) *Handler {
	validate := validator.New()
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		users:    users,
		hobbies:  hobbies,
		session:  session,
		validate: validate,
		log:      logger.With().Str("component", "pages").Logger(),
	}
}

// RegisterRoutes mounts the pages and their actions on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Main)
	r.Get("/profile", h.Profile)
	r.Put("/profile", h.UpdateProfile)
	r.Post("/profile/hobbies", h.AddProfileHobby)
	r.Get("/hobbies", h.Hobbies)
	r.Post("/hobbies", h.CreateHobby)
	r.Get("/users", h.Users)
	r.Get("/other", h.Other)
	r.Post("/friend-requests", h.SendFriendRequest)
	r.Put("/friend-requests", h.RespondFriendRequest)
	r.Post("/logout", h.Logout)
}

type hobbyNameRequest struct {
	HobbyName string `json:"hobby_name" validate:"required"`
}

// Main shows who is signed in.
func (h *Handler) Main(w http.ResponseWriter, r *http.Request) {
	current := h.users.CurrentUser()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"has_session":  current != nil,
		"current_user": current,
	})
}

// Profile shows the session user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	current := h.users.CurrentUser()
	if current == nil {
		writeError(w, http.StatusUnauthorized, "no session user")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// UpdateProfile applies a partial update to the session user.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current := h.users.CurrentUser()
	if current == nil {
		writeError(w, http.StatusUnauthorized, "no session user")
		return
	}

	var upd models.UserUpdate
	if !h.decodeAndValidate(w, r, &upd) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), current.ID, upd)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AddProfileHobby adds a hobby to the session user's profile.
func (h *Handler) AddProfileHobby(w http.ResponseWriter, r *http.Request) {
	var req hobbyNameRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.users.AddHobbyToCurrentUser(r.Context(), req.HobbyName); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.users.CurrentUser())
}

// Hobbies reloads and shows the hobby directory. A failed reload shows the
// previous list.
func (h *Handler) Hobbies(w http.ResponseWriter, r *http.Request) {
	err := h.hobbies.FetchHobbies(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hobbies": h.hobbies.Hobbies(),
		"fresh":   err == nil,
	})
}

// CreateHobby adds a hobby to the directory.
func (h *Handler) CreateHobby(w http.ResponseWriter, r *http.Request) {
	var req hobbyNameRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.hobbies.AddHobby(r.Context(), req.HobbyName); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"hobbies": h.hobbies.Hobbies()})
}

// Users runs a user search from min_age, max_age and page.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	q := models.UserQuery{}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"min_age", &q.MinAge},
		{"max_age", &q.MaxAge},
		{"page", &q.Page},
	} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+p.name)
			return
		}
		*p.dst = n
	}

	err := h.users.FetchUsers(r.Context(), q)
	st := h.users.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":       st.Users,
		"page":        st.Page,
		"has_next":    st.HasNext,
		"total_pages": st.TotalPages,
		"fresh":       err == nil,
	})
}

// Other shows friends and pending friend requests.
func (h *Handler) Other(w http.ResponseWriter, r *http.Request) {
	err := h.users.RefreshFriendships(r.Context())
	st := h.users.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"friends":                 st.Friends,
		"pending_friend_requests": st.PendingFriendRequests,
		"fresh":                   err == nil,
	})
}

// SendFriendRequest invites another user.
func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SendFriendRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.users.SendFriendRequest(r.Context(), req.ToUserID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// RespondFriendRequest accepts a friend request, then reloads friends and
// pending requests so the page shows the outcome.
func (h *Handler) RespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req models.RespondFriendRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.users.AcceptFriendRequest(r.Context(), req.FriendRequestID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := h.users.RefreshFriendships(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("refresh after accepting friend request failed")
	}

	st := h.users.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":                  result,
		"friends":                 st.Friends,
		"pending_friend_requests": st.PendingFriendRequests,
	})
}

// Logout forgets the session and every loaded record.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.users.Reset()
	h.hobbies.Reset()
	h.session.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
