package entity

import "time"

const RoleAdmin = "admin"

// User is a seller profile. Email stays empty in listing and search views.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar,omitempty"`
	Rating   float64   `json:"rating"`
	Verified bool      `json:"verified"`
	Role     string    `json:"role,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Identity is the signed-in caller. A nil *Identity means nobody is signed in.
type Identity struct {
	UserID string
}

func (i *Identity) Is(userID string) bool {
	return i != nil && i.UserID != "" && i.UserID == userID
}
