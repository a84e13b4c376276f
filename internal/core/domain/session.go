package domain

import "time"

// SessionToken is the stored record of one issued bearer credential.
//
// A token is active until it is revoked by logout or expired by the sweeper;
// both states are terminal and the record is deleted right after.
type SessionToken struct {
	ID          string    `json:"id"`
	Token       string    `json:"-"`
	PrincipalID string    `json:"principal_id"`
	Username    string    `json:"username"`
	Expired     bool      `json:"expired"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Active reports whether neither terminal flag is set and the embedded expiry
// has not passed at now.
func (t *SessionToken) Active(now time.Time) bool {
	if t.Expired || t.Revoked {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}

// Terminate sets both terminal flags.
func (t *SessionToken) Terminate() {
	t.Expired = true
	t.Revoked = true
}
