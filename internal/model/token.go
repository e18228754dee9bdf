package model

import (
	"time"
)

// Session is the identity carried by a signed session token. It is never
// persisted; Verify reconstructs it from the token claims.
type Session struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
