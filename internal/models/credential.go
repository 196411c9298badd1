package models

import (
	"strings"
	"time"
)

// GoogleCredential holds the OAuth tokens a user granted during connect.
// The primary key is the user id, which enforces at most one credential per
// user at the schema level.
type GoogleCredential struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	AccessToken  string    `gorm:"type:text;not null" json:"access_token"`
	RefreshToken string    `gorm:"type:text" json:"refresh_token"`
	Scope        string    `gorm:"type:text" json:"scope"` // space-delimited scope URIs as granted
	ExpiryDate   time.Time `json:"expiry_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name used by GoogleCredential
func (GoogleCredential) TableName() string {
	return "google_credentials"
}

// UserID returns the owning user's id. Stored as the row id to keep the
// one-credential-per-user invariant in the schema.
func (c *GoogleCredential) UserID() string {
	return c.ID
}

// Scopes splits the stored scope string into the granted scope set.
func (c *GoogleCredential) Scopes() []string {
	return strings.Fields(c.Scope)
}

// HasScope reports whether the credential grants the given scope URI.
func (c *GoogleCredential) HasScope(scope string) bool {
	for _, granted := range c.Scopes() {
		if granted == scope {
			return true
		}
	}
	return false
}
