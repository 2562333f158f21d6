package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

type SessionState int

const (
	StateUnknown SessionState = iota
	StateLoggedOut
	StateLoggedIn
)

// Session tracks the authenticated identity of one chat and drives which
// view it sees. It starts in Unknown and resolves exactly once, when
// Restore runs the stored-session check; until then no data subscription
// may be started.
type Session struct {
	sessions repository.Sessions
	chatID   int64

	mu           sync.Mutex
	state        SessionState
	identity     *model.Identity
	nextCallback int
	onChange     map[int]func(*model.Identity)
}

func NewSession(sessions repository.Sessions, chatID int64) *Session {
	return &Session{
		sessions: sessions,
		chatID:   chatID,
		state:    StateUnknown,
		onChange: make(map[int]func(*model.Identity)),
	}
}

// OnChange registers a callback fired after every transition to LoggedIn
// or LoggedOut with the new identity, nil when logged out. Subscription
// teardown lives in the observer, not here. The returned func unregisters
// the callback; an observer that outlived its chat view must call it.
func (s *Session) OnChange(f func(*model.Identity)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextCallback
	s.nextCallback++
	s.onChange[id] = f
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.onChange, id)
	}
}

// callbacksLocked snapshots the registered callbacks; the caller holds mu
func (s *Session) callbacksLocked() []func(*model.Identity) {
	callbacks := make([]func(*model.Identity), 0, len(s.onChange))
	for _, f := range s.onChange {
		callbacks = append(callbacks, f)
	}
	return callbacks
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Identity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Restore resolves the Unknown state from the session storage. It does
// nothing when the state was already resolved.
func (s *Session) Restore(ctx context.Context) error {
	identity, err := s.sessions.Get(ctx, s.chatID)
	if err != nil {
		return fmt.Errorf("session restore error: %v", err)
	}

	s.mu.Lock()
	if s.state != StateUnknown {
		s.mu.Unlock()
		return nil
	}
	if identity == nil {
		s.state = StateLoggedOut
		s.mu.Unlock()
		logrus.Debugf("session for chat %d restored as logged out", s.chatID)
		return nil
	}
	s.state = StateLoggedIn
	s.identity = identity
	callbacks := s.callbacksLocked()
	s.mu.Unlock()

	logrus.Debugf("session for chat %d restored as %s", s.chatID, identity.UID)
	for _, f := range callbacks {
		f(identity)
	}
	return nil
}

// Login records the identity the interactive flow produced
func (s *Session) Login(ctx context.Context, identity *model.Identity) error {
	if err := s.sessions.Add(ctx, s.chatID, identity); err != nil {
		return fmt.Errorf("session login error: %v", err)
	}

	s.mu.Lock()
	s.state = StateLoggedIn
	s.identity = identity
	callbacks := s.callbacksLocked()
	s.mu.Unlock()

	logrus.Infof("chat %d logged in as %s", s.chatID, identity.UID)
	for _, f := range callbacks {
		f(identity)
	}
	return nil
}

// Logout invalidates the identity. Provider-driven external invalidation
// goes through here as well, there is no separate path.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.sessions.Delete(ctx, s.chatID); err != nil {
		return fmt.Errorf("session logout error: %v", err)
	}

	s.mu.Lock()
	uid := ""
	if s.identity != nil {
		uid = s.identity.UID
	}
	s.state = StateLoggedOut
	s.identity = nil
	callbacks := s.callbacksLocked()
	s.mu.Unlock()

	logrus.Infof("chat %d logged out from %s", s.chatID, uid)
	for _, f := range callbacks {
		f(nil)
	}
	return nil
}
