package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
	"warungpos/internal/store"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthStatus string

const (
	StatusLoading         AuthStatus = "loading"
	StatusAuthenticated   AuthStatus = "authenticated"
	StatusUnauthenticated AuthStatus = "unauthenticated"
	StatusError           AuthStatus = "error"
)

// AuthState is one point of the identity provider's notification
// stream. UserID names the user who signed in (Authenticated) or whose
// last session just ended (Unauthenticated). Err is only set for
// StatusError and is cleared explicitly so a displayed error does not
// re-trigger.
type AuthState struct {
	Status AuthStatus `json:"status"`
	UserID string     `json:"userId,omitempty"`
	Err    string     `json:"error,omitempty"`
}

// AuthService is the identity provider: credential checks against the
// users collection, an observable state stream, and sid-to-user session
// binding for the HTTP layer.
type AuthService struct {
	Store store.Store

	mu       sync.Mutex
	sessions map[string]string // sid -> uid
	state    *observe.Value[AuthState]
}

func NewAuthService(st store.Store) *AuthService {
	return &AuthService{
		Store:    st,
		sessions: make(map[string]string),
		state:    observe.NewValue(AuthState{Status: StatusUnauthenticated}),
	}
}

// State exposes the notification stream the session manager subscribes
// to.
func (s *AuthService) State() *observe.Value[AuthState] {
	return s.state
}

func (s *AuthService) Register(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Hash: string(hash)}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			s.state.Set(AuthState{Status: StatusError, Err: "email already registered"})
		}
		return err
	}
	return nil
}

// Login verifies the credentials, binds sid to the user and publishes
// Authenticated. The interim Loading state mirrors the provider's
// stream shape.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (string, error) {
	s.state.Set(AuthState{Status: StatusLoading})
	u, err := s.Store.UserByEmail(ctx, email)
	if err != nil {
		s.state.Set(AuthState{Status: StatusError, Err: ErrBadCreds.Error()})
		return "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		s.state.Set(AuthState{Status: StatusError, Err: ErrBadCreds.Error()})
		return "", ErrBadCreds
	}

	s.mu.Lock()
	s.sessions[sid] = u.ID
	s.mu.Unlock()

	s.state.Set(AuthState{Status: StatusAuthenticated, UserID: u.ID})
	return u.ID, nil
}

// Logout unbinds the sid. When the user's last session goes away the
// stream publishes Unauthenticated carrying that user's id, so
// listeners tear down only that user's state.
func (s *AuthService) Logout(sid string) {
	s.mu.Lock()
	uid, ok := s.sessions[sid]
	delete(s.sessions, sid)
	remaining := false
	if ok {
		for _, other := range s.sessions {
			if other == uid {
				remaining = true
				break
			}
		}
	}
	s.mu.Unlock()

	if ok && !remaining {
		s.state.Set(AuthState{Status: StatusUnauthenticated, UserID: uid})
	}
}

// CurrentUser resolves a sid to the signed-in user id, if any.
func (s *AuthService) CurrentUser(sid string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[sid]
	return uid, ok
}

// ClearError resets an Error state after it has been shown.
func (s *AuthService) ClearError() {
	if s.state.Get().Status == StatusError {
		s.state.Set(AuthState{Status: StatusUnauthenticated})
	}
}
