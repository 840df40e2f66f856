package model

import "time"

// Profile is the stored identity record for a user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is the authenticated identity scoping all reads and writes.
// A zero Session means "not signed in".
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Valid reports whether the session carries an authenticated user.
func (s Session) Valid() bool {
	return s.UserID != ""
}
