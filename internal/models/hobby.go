package models

// Hobby is a tag from the global hobby directory.
type Hobby struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HobbyList is the body of GET /api/hobbies/.
type HobbyList struct {
	Hobbies []Hobby `json:"hobbies"`
}

// CreateHobbyRequest is the JSON body for POST /api/hobbies/.
type CreateHobbyRequest struct {
	HobbyName string `json:"hobby_name"`
}
