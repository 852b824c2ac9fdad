package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
)

// SessionKey is the key the signed session token is persisted under.
const SessionKey = "user"

const (
	ErrMsgInvalidCredentials = "Invalid email or password"
	ErrMsgLoginFailed        = "An error occurred during login"
)

// AuthState is the position of the Auth store in its login state machine.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticating
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// ErrSuperseded is returned by a login whose result was overtaken by a newer login or a logout.
var ErrSuperseded = errors.New("login superseded")

// Auth holds the single process-wide session.
type Auth struct {
	users    repositories.UserRepository
	sessions repositories.SessionStore
	codec    *SessionCodec
	notifier notify.Notifier
	logger   *zap.Logger
	delay    time.Duration

	mu      sync.RWMutex
	state   AuthState
	session *models.Session
	token   string
	lastErr string
	attempt uint64
	subs    subscribers
}

// NewAuth creates the Auth store and rehydrates any session persisted in sessions.
// A missing, malformed or expired token leaves the store unauthenticated.
func NewAuth(
	users repositories.UserRepository,
	sessions repositories.SessionStore,
	codec *SessionCodec,
	notifier notify.Notifier,
	logger *zap.Logger,
	delay time.Duration,
) *Auth {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	a := &Auth{
		users:    users,
		sessions: sessions,
		codec:    codec,
		notifier: notifier,
		logger:   logger,
		delay:    delay,
	}
	a.rehydrate()
	return a
}

func (a *Auth) rehydrate() {
	token, ok, err := a.sessions.Get(SessionKey)
	if err != nil {
		a.logger.Warn("could not read persisted session", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	session, err := a.codec.Decode(token)
	if err != nil {
		a.logger.Warn("discarding persisted session", zap.Error(err))
		if err := a.sessions.Remove(SessionKey); err != nil {
			a.logger.Warn("could not remove persisted session", zap.Error(err))
		}
		return
	}
	a.session = session
	a.token = token
	a.state = StateAuthenticated
	a.logger.Info("session restored", zap.String("email", session.Email), zap.String("role", string(session.Role)))
}

// Login checks email and password, and the role when roleHint is not empty, against the
// credential table after the simulated network delay. It is a single attempt: a failure
// clears the session and records the error message, and the caller must call Login again
// to retry. Cancelling ctx during the delay abandons the attempt without changing the session.
func (a *Auth) Login(ctx context.Context, email, password string, roleHint models.Role) (*models.Session, error) {
	a.mu.Lock()
	a.attempt++
	attempt := a.attempt
	a.state = StateAuthenticating
	a.lastErr = ""
	a.mu.Unlock()
	a.subs.notify()

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			a.abandon(attempt)
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	user, lookupErr := a.users.GetByEmail(email)
	if lookupErr != nil && !apperr.Is(lookupErr, apperr.KindNotFound) {
		a.fail(attempt, ErrMsgLoginFailed)
		return nil, fmt.Errorf("failed to look up %s: %w", email, lookupErr)
	}
	if lookupErr != nil ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil ||
		(roleHint != "" && user.Role != roleHint) {
		if !a.fail(attempt, ErrMsgInvalidCredentials) {
			return nil, ErrSuperseded
		}
		a.logger.Info("login rejected", zap.String("email", email), zap.String("role_hint", string(roleHint)))
		return nil, apperr.Authentication(ErrMsgInvalidCredentials)
	}

	session := user.Session()
	token, err := a.codec.Encode(session)
	if err != nil {
		a.fail(attempt, ErrMsgLoginFailed)
		return nil, err
	}

	a.mu.Lock()
	if attempt != a.attempt {
		a.mu.Unlock()
		return nil, ErrSuperseded
	}
	a.session = &session
	a.token = token
	a.state = StateAuthenticated
	if err := a.sessions.Set(SessionKey, token); err != nil {
		a.logger.Warn("could not persist session", zap.Error(err))
	}
	a.mu.Unlock()

	a.logger.Info("login succeeded", zap.String("email", session.Email), zap.String("role", string(session.Role)))
	a.notifier.Notify(notify.Info("Login successful", fmt.Sprintf("Welcome back, %s", session.Name)))
	a.subs.notify()
	out := session
	return &out, nil
}

// fail resolves attempt as a failure. It returns false when the attempt is stale.
func (a *Auth) fail(attempt uint64, message string) bool {
	a.mu.Lock()
	if attempt != a.attempt {
		a.mu.Unlock()
		return false
	}
	a.clearLocked()
	a.lastErr = message
	a.mu.Unlock()

	a.notifier.Notify(notify.Failure("Login failed", message))
	a.subs.notify()
	return true
}

// abandon drops attempt and restores the state implied by the current session.
func (a *Auth) abandon(attempt uint64) {
	a.mu.Lock()
	if attempt != a.attempt {
		a.mu.Unlock()
		return
	}
	a.attempt++
	if a.session != nil {
		a.state = StateAuthenticated
	} else {
		a.state = StateUnauthenticated
	}
	a.mu.Unlock()
	a.subs.notify()
}

// Logout clears the session and the persisted token. Any login still waiting is discarded.
func (a *Auth) Logout() {
	a.mu.Lock()
	a.attempt++
	a.clearLocked()
	a.lastErr = ""
	a.mu.Unlock()

	a.logger.Info("logged out")
	a.subs.notify()
}

// clearLocked drops the session in memory and in storage. a.mu must be held.
func (a *Auth) clearLocked() {
	a.session = nil
	a.token = ""
	a.state = StateUnauthenticated
	if err := a.sessions.Remove(SessionKey); err != nil {
		a.logger.Warn("could not remove persisted session", zap.Error(err))
	}
}

// Verify returns the session for token if token belongs to the active session.
func (a *Auth) Verify(token string) (*models.Session, error) {
	session, err := a.codec.Decode(token)
	if err != nil {
		return nil, apperr.Authentication("Invalid or expired token")
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil || a.token != token {
		return nil, apperr.Authentication("Session is no longer active")
	}
	return session, nil
}

// State returns the current login state.
func (a *Auth) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Session returns a copy of the active session, or nil.
func (a *Auth) Session() *models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// Token returns the signed token of the active session, or "".
func (a *Auth) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// IsAuthenticated reports whether a session is active.
func (a *Auth) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session != nil
}

// Error returns the message of the last failed login, or "".
func (a *Auth) Error() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// Subscribe registers fn to run after every state change.
func (a *Auth) Subscribe(fn func()) (unsubscribe func()) {
	return a.subs.add(fn)
}
