package authgate

import (
	"time"

	"github.com/sahilchouksey/smart-campus-api/model"
)

// Identity is what the identity backend knows about a signed-in user.
type Identity struct {
	UserID       uint           `json:"user_id"`
	Email        string         `json:"email"`
	FullName     string         `json:"full_name"`
	Role         model.UserRole `json:"role"`
	SessionKey   string         `json:"-"` // access token JTI
	AccessToken  string         `json:"-"`
	RefreshToken string         `json:"-"`
	ExpiresIn    int            `json:"-"`
	ExpiresAt    time.Time      `json:"-"` // when SessionKey stops being valid
}

// Resolution is one value from the identity backend's session source.
// A nil Identity means nobody is signed in.
type Resolution struct {
	Identity *Identity
}

// Anonymous is the resolution for a visitor without a session.
func Anonymous() Resolution {
	return Resolution{}
}

// Authenticated is the resolution for a signed-in identity.
func Authenticated(id *Identity) Resolution {
	return Resolution{Identity: id}
}

// Session is the gate's view of the current user.
type Session struct {
	Loading       bool           `json:"loading"`
	Authenticated bool           `json:"authenticated"`
	Role          model.UserRole `json:"role,omitempty"`
	Identity      *Identity      `json:"user,omitempty"`
}

// SessionOf is the resolved session for r.
func SessionOf(r Resolution) Session {
	if r.Identity == nil {
		return Session{}
	}
	id := *r.Identity
	return Session{Authenticated: true, Role: id.Role, Identity: &id}
}
