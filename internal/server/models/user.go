// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a person known to the tracker. ExternalID is the identity
// provider's subject and is empty for users who signed in by emailed code.
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"-"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	CreatedAt  time.Time `json:"-"`
}

// VerificationCode is the single outstanding one-time code for an email.
type VerificationCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be used at now.
func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
