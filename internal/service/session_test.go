package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

func TestSession_RestoreWithoutStoredSession(t *testing.T) {
	s := NewSession(repository.NewSessionsLocalStorage(), 125)
	require.Equal(t, StateUnknown, s.State())

	err := s.Restore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, StateLoggedOut, s.State())
	require.Nil(t, s.Identity())
}

func TestSession_RestoreStoredSession(t *testing.T) {
	sessions := repository.NewSessionsLocalStorage()
	identity := &model.Identity{UID: "Dima"}
	err := sessions.Add(context.Background(), 125, identity)
	if err != nil {
		t.Fatal(err)
	}

	s := NewSession(sessions, 125)
	var observed []*model.Identity
	s.OnChange(func(identity *model.Identity) {
		observed = append(observed, identity)
	})

	err = s.Restore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, StateLoggedIn, s.State())
	require.Equal(t, identity, s.Identity())
	require.Equal(t, []*model.Identity{identity}, observed)

	// the Unknown state resolves exactly once
	err = s.Restore(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, len(observed))
}

func TestSession_LoginLogout(t *testing.T) {
	sessions := repository.NewSessionsLocalStorage()
	s := NewSession(sessions, 125)

	var observed []*model.Identity
	s.OnChange(func(identity *model.Identity) {
		observed = append(observed, identity)
	})

	identity := &model.Identity{UID: "Dima", Avatar: "https://t.me/i/userpic/320/dima.jpg"}
	err := s.Login(context.Background(), identity)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, StateLoggedIn, s.State())
	require.Equal(t, identity, s.Identity())

	stored, err := sessions.Get(context.Background(), 125)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, identity, stored)

	err = s.Logout(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, StateLoggedOut, s.State())
	require.Nil(t, s.Identity())

	stored, err = sessions.Get(context.Background(), 125)
	if err != nil {
		t.Fatal(err)
	}
	require.Nil(t, stored)

	require.Equal(t, []*model.Identity{identity, nil}, observed)
}

func TestSession_OnChangeUnregister(t *testing.T) {
	s := NewSession(repository.NewSessionsLocalStorage(), 125)

	var kept, dropped int
	s.OnChange(func(*model.Identity) {
		kept++
	})
	unregister := s.OnChange(func(*model.Identity) {
		dropped++
	})

	identity := &model.Identity{UID: "Dima"}
	err := s.Login(context.Background(), identity)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, kept)
	require.Equal(t, 1, dropped)

	// an unregistered callback never fires again and doesn't linger in
	// the session across login cycles
	unregister()
	require.Equal(t, 1, len(s.onChange))

	err = s.Logout(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2, kept)
	require.Equal(t, 1, dropped)

	// unregistering twice is harmless
	unregister()
	require.Equal(t, 1, len(s.onChange))
}
