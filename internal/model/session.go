package model

import "time"

// Session is one authenticated relationship with the Gomanage upstream.
// The token is the cookie pair ("JSESSIONID=...") extracted at login and
// attached to every data call. Sessions live only in process memory.
type Session struct {
	Key        string    `json:"key"`
	Token      string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// Valid reports whether the session is still usable at the given instant:
// inside its absolute TTL and not idle past the idle limit.
func (s *Session) Valid(now time.Time, idleLimit time.Duration) bool {
	if !now.Before(s.ExpiresAt) {
		return false
	}
	return now.Sub(s.LastUsedAt) < idleLimit
}
