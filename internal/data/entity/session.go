package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one issued access token. Token is the JWT id, so revoking
// the session invalidates the token before it expires.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

func NewSession(userID uuid.UUID, now time.Time, ttl time.Duration) *Session {
	return &Session{
		BaseSimple: NewBaseSimple(now),
		UserID:     userID,
		Token:      uuid.New(),
		ExpiresAt:  now.Add(ttl),
	}
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
