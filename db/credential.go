package db

import "time"

// Credential is the single stored token pair. The row always has ID 1.
type Credential struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	AccessToken   string     `json:"access_token,omitempty"`
	RefreshToken  string     `json:"refresh_token,omitempty"`
	AccessExpiry  *time.Time `json:"access_expiry,omitempty"`
	RefreshExpiry *time.Time `json:"refresh_expiry,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Empty reports whether the credential carries no tokens at all.
func (c *Credential) Empty() bool {
	return c == nil || (c.AccessToken == "" && c.RefreshToken == "")
}
