// Package apitest runs an in-memory stand-in for the hobby/social REST API
// so the client and stores can be tested end to end.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hobbyhub/profile-client/internal/models"
)

const (
	CSRFToken = "test-csrf-token"
	SessionID = "test-session"
	pageSize  = 10
)

// Call is one request the server received.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// Server is a fake backend. The zero state has no users; add them with
// AddUser and pick the session user with SetCurrentUser.
type Server struct {
	*httptest.Server

	// EchoUpdates makes PUT /api/users/<id>/ answer with the updated user
	// instead of {"message": ...}.
	EchoUpdates bool

	mu        sync.Mutex
	users     map[int64]*models.User
	hobbies   []models.Hobby
	requests  []models.FriendRequest
	currentID int64
	nextID    int64
	calls     []Call
	failures  map[string][]failure
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		users:    make(map[int64]*models.User),
		failures: make(map[string][]failure),
		nextID:   100,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Cookies is the Cookie header a logged-in browser would hold.
func (s *Server) Cookies() string {
	return "csrftoken=" + CSRFToken + "; sessionid=" + SessionID
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)
	r.Use(s.requireCSRF)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hobbies/", s.listHobbies)
		r.Post("/hobbies/", s.createHobby)
		r.Get("/users/", s.listUsers)
		r.Get("/users/current/", s.currentUser)
		r.Get("/users/current/friends/", s.listFriends)
		r.Get("/users/{id}/", s.getUser)
		r.Put("/users/{id}/", s.updateUser)
		r.Get("/friend-requests/", s.listFriendRequests)
		r.Post("/friend-requests/", s.sendFriendRequest)
		r.Put("/friend-requests/", s.respondFriendRequest)
	})
	return r
}

// AddUser stores u and returns it. Hobby names are added to the directory.
func (s *Server) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.newID()
	}
	for _, h := range u.Hobbies {
		s.ensureHobby(h)
	}
	s.users[u.ID] = u.Clone()
	return u
}

// User returns the stored copy of user id.
func (s *Server) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u.Clone(), true
}

// SetCurrentUser selects the user the session cookie belongs to.
func (s *Server) SetCurrentUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
}

// AddHobby puts name in the directory.
func (s *Server) AddHobby(name string) models.Hobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureHobby(name)
}

// AddFriendRequest stores a pending request and returns its id.
func (s *Server) AddFriendRequest(from, to int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	fr := models.FriendRequest{
		ID:        s.newID(),
		FromUser:  s.users[from].Clone(),
		ToUser:    s.users[to].Clone(),
		CreatedAt: time.Now().UTC(),
	}
	s.requests = append(s.requests, fr)
	return fr.ID
}

// Fail makes the next request matching method and path answer status with
// body. Several calls queue up in order.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Calls returns the recorded requests for method and path; an empty
// method matches any.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if (method == "" || c.Method == method) && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many requests the server has seen.
func (s *Server) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			cookie, err := r.Cookie("csrftoken")
			if err != nil || cookie.Value == "" || r.Header.Get("X-CSRFToken") != cookie.Value {
				writeJSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed"})
				return
			}
		}
		if _, err := r.Cookie("sessionid"); err != nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listHobbies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	hobbies := append([]models.Hobby{}, s.hobbies...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.HobbyList{Hobbies: hobbies})
}

func (s *Server) createHobby(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HobbyName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No hobby name provided"})
		return
	}

	s.mu.Lock()
	_, existed := s.findHobby(req.HobbyName)
	hobby := s.ensureHobby(req.HobbyName)
	s.mu.Unlock()

	if existed {
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Hobby already exists", "hobby": hobby})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Hobby created", "hobby": hobby})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u, ok := s.users[s.currentID]
	var out wireUser
	if ok {
		out = s.toWire(u, nil)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	s.mu.Lock()
	u, ok := s.users[id]
	var out wireUser
	if ok {
		out = s.toWire(u, nil)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	var upd models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if upd.Email != nil && *upd.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"This field may not be blank."}})
		return
	}

	s.mu.Lock()
	u, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	applyUpdate(u, upd)
	for _, h := range u.Hobbies {
		s.ensureHobby(h)
	}
	out := s.toWire(u, nil)
	echo := s.EchoUpdates
	s.mu.Unlock()

	if echo {
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	me := s.users[s.currentID]
	type ranked struct {
		user   *models.User
		common int
	}
	var list []ranked
	for id, u := range s.users {
		if id == s.currentID || !matchesAge(u, q) {
			continue
		}
		list = append(list, ranked{user: u, common: commonHobbies(me, u)})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].common != list[j].common {
			return list[i].common > list[j].common
		}
		return list[i].user.ID < list[j].user.ID
	})

	totalPages := (len(list) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}

	users := make([]wireUser, 0, end-start)
	for _, item := range list[start:end] {
		common := item.common
		users = append(users, s.toWire(item.user, &common))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":       users,
		"page":        page,
		"total_pages": totalPages,
		"has_next":    page < totalPages,
	})
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	friends := []wireUser{}
	for _, fr := range s.requests {
		if !fr.Accepted {
			continue
		}
		var other int64
		switch s.currentID {
		case fr.FromUser.ID:
			other = fr.ToUser.ID
		case fr.ToUser.ID:
			other = fr.FromUser.ID
		default:
			continue
		}
		if u, ok := s.users[other]; ok {
			friends = append(friends, s.toWire(u, nil))
		}
	}
	writeJSON(w, http.StatusOK, friends)
}

func (s *Server) listFriendRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := []models.FriendRequest{}
	for _, fr := range s.requests {
		if !fr.Accepted && fr.ToUser.ID == s.currentID {
			pending = append(pending, fr)
		}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) sendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SendFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ToUserID == s.currentID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot send friend request to yourself"})
		return
	}
	to, ok := s.users[req.ToUserID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	for _, fr := range s.requests {
		if fr.FromUser.ID == s.currentID && fr.ToUser.ID == to.ID {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Friend request already exists"})
			return
		}
	}

	fr := models.FriendRequest{
		ID:        s.newID(),
		FromUser:  s.users[s.currentID].Clone(),
		ToUser:    to.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	s.requests = append(s.requests, fr)
	writeJSON(w, http.StatusCreated, models.FriendRequestResult{FriendRequest: fr, Message: "Friend request sent"})
}

func (s *Server) respondFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req models.RespondFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		fr := &s.requests[i]
		if fr.ID != req.FriendRequestID {
			continue
		}
		if fr.ToUser.ID != s.currentID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not authorised"})
			return
		}
		if req.Action != models.ActionAccept {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid action"})
			return
		}
		fr.Accepted = true
		writeJSON(w, http.StatusOK, models.FriendRequestResult{FriendRequest: *fr, Message: "Friend request accepted"})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

// wireUser mirrors the backend serializer, which sends hobbies as objects.
type wireUser struct {
	ID            int64          `json:"id"`
	Username      string         `json:"username"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	DateOfBirth   *string        `json:"date_of_birth"`
	Hobbies       []models.Hobby `json:"hobbies"`
	CommonHobbies *int           `json:"common_hobbies,omitempty"`
}

func (s *Server) toWire(u *models.User, common *int) wireUser {
	out := wireUser{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.Name,
		Email:         u.Email,
		DateOfBirth:   u.DateOfBirth,
		Hobbies:       []models.Hobby{},
		CommonHobbies: common,
	}
	for _, name := range u.Hobbies {
		if h, ok := s.findHobby(name); ok {
			out.Hobbies = append(out.Hobbies, h)
		}
	}
	return out
}

func (s *Server) findHobby(name string) (models.Hobby, bool) {
	for _, h := range s.hobbies {
		if h.Name == name {
			return h, true
		}
	}
	return models.Hobby{}, false
}

func (s *Server) ensureHobby(name string) models.Hobby {
	if h, ok := s.findHobby(name); ok {
		return h
	}
	h := models.Hobby{ID: s.newID(), Name: name}
	s.hobbies = append(s.hobbies, h)
	return h
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func applyUpdate(u *models.User, upd models.UserUpdate) {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.DateOfBirth != nil {
		dob := *upd.DateOfBirth
		u.DateOfBirth = &dob
	}
	if upd.Hobbies != nil {
		u.Hobbies = append(models.HobbyNames{}, (*upd.Hobbies)...)
	}
}

func commonHobbies(me, other *models.User) int {
	if me == nil {
		return 0
	}
	n := 0
	for _, h := range other.Hobbies {
		if me.HasHobby(h) {
			n++
		}
	}
	return n
}

// matchesAge applies the backend's min_age/max_age filters, which count a
// year as 365 days.
func matchesAge(u *models.User, q url.Values) bool {
	today := time.Now().UTC()
	check := func(param string, keep func(dob, bound time.Time) bool) bool {
		years, err := strconv.Atoi(q.Get(param))
		if err != nil {
			return true
		}
		if u.DateOfBirth == nil {
			return false
		}
		dob, err := time.Parse("2006-01-02", *u.DateOfBirth)
		if err != nil {
			return false
		}
		return keep(dob, today.AddDate(0, 0, -years*365))
	}
	return check("min_age", func(dob, bound time.Time) bool { return !dob.After(bound) }) &&
		check("max_age", func(dob, bound time.Time) bool { return !dob.Before(bound) })
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
