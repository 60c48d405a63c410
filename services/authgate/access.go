package authgate

import "fmt"

// Surface is a page of the app that the gate controls.
type Surface string

const (
	SurfaceAuth Surface = "auth"
	SurfaceChat Surface = "chat"
)

// Path is where the surface is served.
func (s Surface) Path() string {
	if s == SurfaceAuth {
		return "/auth"
	}
	return "/"
}

// Decision is the outcome of an access check.
type Decision int

const (
	// Pending means the session is still loading; render a neutral state.
	Pending Decision = iota
	Allow
	RedirectToChat
	RedirectToAuth
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectToChat:
		return "redirect_to_chat"
	case RedirectToAuth:
		return "redirect_to_auth"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Location is the redirect target, empty when no redirect applies.
func (d Decision) Location() string {
	switch d {
	case RedirectToChat:
		return SurfaceChat.Path()
	case RedirectToAuth:
		return SurfaceAuth.Path()
	default:
		return ""
	}
}

// Decide applies the access policy: authenticated users are sent away from
// the auth surface, anonymous users away from the chat surface.
func Decide(s Session, surface Surface) Decision {
	switch {
	case s.Loading:
		return Pending
	case s.Authenticated && surface == SurfaceAuth:
		return RedirectToChat
	case !s.Authenticated && surface == SurfaceChat:
		return RedirectToAuth
	default:
		return Allow
	}
}
