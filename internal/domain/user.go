package domain

import "time"

// User is the domain model for registered authors.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Avatar       string
	PostCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile strips credential material for responses.
func (u *User) PublicProfile() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		PostCount: u.PostCount,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the externally visible shape of a user. The password hash
// never leaves the service.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	PostCount int       `json:"posts"`
	CreatedAt time.Time `json:"created_at"`
}
