package repository

import (
	"context"
	"sync"

	"github.com/fintrack/fintrack/internal/model"
)

// Sessions remembers which identity a chat is signed in as, so a returning
// chat can be restored without a fresh login. Absence of a session is a
// valid state, not an error.
type Sessions interface {
	Add(ctx context.Context, chatID int64, identity *model.Identity) error
	Get(ctx context.Context, chatID int64) (*model.Identity, error)
	Delete(ctx context.Context, chatID int64) error
}

type SessionsLocalStorage struct {
	mu sync.Mutex
	m  map[int64]*model.Identity
}

func NewSessionsLocalStorage() *SessionsLocalStorage {
	return &SessionsLocalStorage{
		m: make(map[int64]*model.Identity),
	}
}

func (l *SessionsLocalStorage) Add(_ context.Context, chatID int64, identity *model.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[chatID] = identity
	return nil
}

func (l *SessionsLocalStorage) Get(_ context.Context, chatID int64) (*model.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	identity, ok := l.m[chatID]
	if !ok {
		return nil, nil
	}
	return identity, nil
}

func (l *SessionsLocalStorage) Delete(_ context.Context, chatID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.m, chatID)
	return nil
}
