package authgate

import (
	"context"
	"sync"

	"github.com/sahilchouksey/smart-campus-api/model"
	"go.uber.org/zap"
)

// IdentityBackend verifies credentials and owns accounts.
type IdentityBackend interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password, fullName string, role model.UserRole) (*Identity, error)
	SignOut(ctx context.Context, id *Identity) error
}

// Notice is a transient, toast-style message for the auth form.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive"`
}

// Result is the outcome of a form submission.
type Result struct {
	OK      bool        `json:"ok"`
	Errors  FieldErrors `json:"errors,omitempty"`
	Notice  *Notice     `json:"notice,omitempty"`
	Session Session     `json:"session"`
	// Err is the backend failure behind Notice, nil otherwise.
	Err error `json:"-"`
}

// Gate owns one session: loading until the first resolution, then
// authenticated or anonymous, cleared again on sign-out.
type Gate struct {
	backend   IdentityBackend
	validator *Validator
	logger    *zap.Logger

	mu         sync.Mutex
	session    Session
	submitting bool
	listeners  []func(Session)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithValidator shares a validator between gates.
func WithValidator(v *Validator) GateOption {
	return func(g *Gate) { g.validator = v }
}

// WithGateLogger sets the gate logger.
func WithGateLogger(l *zap.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// NewGate returns a gate in the loading state.
func NewGate(backend IdentityBackend, opts ...GateOption) *Gate {
	g := &Gate{
		backend: backend,
		logger:  zap.NewNop(),
		session: Session{Loading: true},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.validator == nil {
		g.validator = NewValidator()
	}
	return g
}

// Resolve applies a session resolution and notifies listeners.
func (g *Gate) Resolve(r Resolution) {
	g.set(SessionOf(r))
}

// Observe applies resolutions until the channel closes or ctx ends.
func (g *Gate) Observe(ctx context.Context, updates <-chan Resolution) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-updates:
			if !ok {
				return nil
			}
			g.Resolve(r)
		}
	}
}

// OnChange registers fn to run after every session change.
func (g *Gate) OnChange(fn func(Session)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Session returns the current session.
func (g *Gate) Session() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Submitting reports whether a backend call is in flight.
func (g *Gate) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitting
}

// Access is Decide on the current session.
func (g *Gate) Access(surface Surface) Decision {
	return Decide(g.Session(), surface)
}

// SignIn validates the form and, when valid, signs in through the backend.
func (g *Gate) SignIn(ctx context.Context, form LoginForm) Result {
	form = form.Normalize()
	if errs := g.validator.ValidateLogin(form); len(errs) > 0 {
		return Result{Errors: errs, Session: g.Session()}
	}
	if !g.beginSubmit() {
		return g.busy()
	}
	id, err := g.backend.SignIn(ctx, form.Email, form.Password)
	g.endSubmit()

	if err != nil {
		g.logger.Info("sign in failed", zap.String("email", form.Email), zap.Error(err))
		return Result{
			Notice:  &Notice{Title: "Login failed", Description: DescribeSignInError(err), Destructive: true},
			Session: g.Session(),
			Err:     err,
		}
	}
	g.Resolve(Authenticated(id))
	return Result{OK: true, Session: g.Session()}
}

// SignUp validates the form and, when valid, registers through the backend.
func (g *Gate) SignUp(ctx context.Context, form SignupForm) Result {
	form = form.Normalize()
	if errs := g.validator.ValidateSignup(form); len(errs) > 0 {
		return Result{Errors: errs, Session: g.Session()}
	}
	if !g.beginSubmit() {
		return g.busy()
	}
	id, err := g.backend.SignUp(ctx, form.Email, form.Password, form.FullName, form.Role)
	g.endSubmit()

	if err != nil {
		g.logger.Info("sign up failed", zap.String("email", form.Email), zap.Error(err))
		return Result{
			Notice:  &Notice{Title: "Signup failed", Description: DescribeSignUpError(err), Destructive: true},
			Session: g.Session(),
			Err:     err,
		}
	}
	g.Resolve(Authenticated(id))
	return Result{
		OK:      true,
		Notice:  &Notice{Title: "Account created!", Description: "Welcome to SmartCampus!"},
		Session: g.Session(),
	}
}

// SignOut ends the session. The local session is cleared even when the
// backend call fails; the backend error is returned.
func (g *Gate) SignOut(ctx context.Context) error {
	id := g.Session().Identity
	var err error
	if id != nil {
		err = g.backend.SignOut(ctx, id)
	}
	g.Resolve(Anonymous())
	return err
}

func (g *Gate) busy() Result {
	return Result{
		Notice:  &Notice{Title: "Please wait", Description: "A request is already in progress.", Destructive: true},
		Session: g.Session(),
		Err:     ErrSubmitting,
	}
}

func (g *Gate) beginSubmit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitting {
		return false
	}
	g.submitting = true
	return true
}

func (g *Gate) endSubmit() {
	g.mu.Lock()
	g.submitting = false
	g.mu.Unlock()
}

func (g *Gate) set(s Session) {
	g.mu.Lock()
	g.session = s
	listeners := make([]func(Session), len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
