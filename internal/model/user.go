package model

import (
	"strings"
	"time"
)

// User is a registered participant, identified by an externally assigned ID.
type User struct {
	ID        int64     `json:"id"`
	Handle    string    `json:"handle,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns "First Last", or just the first name if there is no last name.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeHandle trims whitespace and a leading "@". Case is preserved.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
