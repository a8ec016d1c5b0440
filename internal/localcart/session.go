package localcart

import (
	"time"

	"github.com/example/storefront/internal/auth"
)

// Session is the stored authentication of the client
type Session struct {
	UserID int64     `json:"userId"`
	Phone  string    `json:"phone"`
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

// NewSession builds a session, reading the expiry from the token's exp claim
func NewSession(userID int64, phone, token string) (*Session, error) {
	expiry, err := auth.ExpiryOf(token)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, Phone: phone, Token: token, Expiry: expiry}, nil
}

// Expired reports whether the token can no longer authenticate at now
func (s *Session) Expired(now time.Time) bool {
	return s.Token == "" || !now.Before(s.Expiry)
}
