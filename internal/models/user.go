package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// User is a profile as returned by /api/users/.
type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	DateOfBirth   *string    `json:"date_of_birth,omitempty"`
	Hobbies       HobbyNames `json:"hobbies"`
	CommonHobbies *int       `json:"common_hobbies,omitempty"` // list/search responses only
}

// HasHobby reports whether name is in the user's hobby set (exact match).
func (u *User) HasHobby(name string) bool {
	for _, h := range u.Hobbies {
		if h == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Hobbies != nil {
		c.Hobbies = append(HobbyNames{}, u.Hobbies...)
	}
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	if u.CommonHobbies != nil {
		n := *u.CommonHobbies
		c.CommonHobbies = &n
	}
	return &c
}

// HobbyNames is a user's hobby set. The API serializes hobbies either as
// plain names or as {id, name} objects; both decode to names.
type HobbyNames []string

func (h *HobbyNames) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hobbies: %w", err)
	}
	if raw == nil {
		*h = nil
		return nil
	}
	names := make(HobbyNames, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj Hobby
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("hobbies: unexpected element %s", string(item))
		}
		names = append(names, obj.Name)
	}
	*h = names
	return nil
}

// UserUpdate is the body of PUT /api/users/<id>/. Nil fields are left
// untouched by the server.
type UserUpdate struct {
	Username    *string   `json:"username,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	Hobbies     *[]string `json:"hobbies,omitempty"`
	Password    *string   `json:"password,omitempty"`
}

// UserPage is one page of the filtered user listing.
type UserPage struct {
	Users      []User `json:"users"`
	Page       int    `json:"page"`
	HasNext    bool   `json:"has_next"`
	TotalPages int    `json:"total_pages"`
}

// UserQuery holds the filters accepted by GET /api/users/.
type UserQuery struct {
	MinAge int
	MaxAge int
	Page   int
	Extra  url.Values
}

// Values encodes the query. Zero fields are omitted.
func (q UserQuery) Values() url.Values {
	v := url.Values{}
	for k, vals := range q.Extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	if q.MinAge > 0 {
		v.Set("min_age", strconv.Itoa(q.MinAge))
	}
	if q.MaxAge > 0 {
		v.Set("max_age", strconv.Itoa(q.MaxAge))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// String returns a pointer to s, for building a UserUpdate.
func String(s string) *string { return &s }

// Hobbies returns a pointer to a copy of names, for building a UserUpdate.
func Hobbies(names ...string) *[]string {
	out := append([]string{}, names...)
	return &out
}
