package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"go.uber.org/goleak"
)

func newTestStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()
	store := NewSessionStore(context.Background(), indicators.LoadDataset(), ttl, time.Hour, nil)
	t.Cleanup(store.Close)
	return store
}

func TestSessionStoreWithCreatesSession(t *testing.T) {
	store := newTestStore(t, time.Minute)

	id, err := store.With("", func(s *indicators.Session) error {
		return s.RecordActual("Población en pobreza", 13.0)
	})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("session id %q is not a uuid: %v", id, err)
	}

	again, _ := store.With(id, func(s *indicators.Session) error {
		if v, ok := s.Actual("Población en pobreza"); !ok || v != 13.0 {
			t.Errorf("Actual() = (%v, %v), want (13, true)", v, ok)
		}
		return nil
	})
	if again != id {
		t.Errorf("With(%q) returned id %q, want the same session", id, again)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestSessionStoreRejectsUnknownIDs(t *testing.T) {
	store := newTestStore(t, time.Minute)

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		got, _ := store.With(id, func(s *indicators.Session) error {
			if s.Len() != 0 {
				t.Errorf("session for %q is not fresh", id)
			}
			return nil
		})
		if got == id {
			t.Errorf("With(%q) reused an id the store never issued", id)
		}
	}
}

func TestSessionStoreSessionsAreIsolated(t *testing.T) {
	store := newTestStore(t, time.Minute)

	first, _ := store.With("", func(s *indicators.Session) error {
		return s.RecordActual("Rezago educativo", 14.0)
	})
	second, _ := store.With("", func(s *indicators.Session) error { return nil })
	if first == second {
		t.Fatal("two new sessions share an id")
	}

	_, _ = store.With(second, func(s *indicators.Session) error {
		if _, ok := s.Actual("Rezago educativo"); ok {
			t.Error("value recorded in one session is visible in another")
		}
		return nil
	})
}

func TestSessionStoreExpiry(t *testing.T) {
	store := newTestStore(t, time.Minute)
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id, _ := store.With("", func(s *indicators.Session) error {
		return s.RecordActual("Población en pobreza", 13.0)
	})

	now = now.Add(30 * time.Second)
	if n := store.Sweep(); n != 0 {
		t.Fatalf("Sweep() evicted %d active sessions", n)
	}

	now = now.Add(2 * time.Minute)
	got, _ := store.With(id, func(s *indicators.Session) error {
		if s.Len() != 0 {
			t.Error("expired session was handed back")
		}
		return nil
	})
	if got == id {
		t.Error("expired id was reused")
	}

	now = now.Add(2 * time.Minute)
	if n := store.Sweep(); n != 2 {
		t.Errorf("Sweep() evicted %d sessions, want 2", n)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", store.Len())
	}
}

func TestSessionStoreSweeperEvicts(t *testing.T) {
	store := NewSessionStore(context.Background(), indicators.LoadDataset(), time.Nanosecond, 5*time.Millisecond, nil)
	defer store.Close()

	_, _ = store.With("", func(s *indicators.Session) error { return nil })

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never evicted the idle session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionStoreCloseStopsSweeper(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := NewSessionStore(context.Background(), indicators.LoadDataset(), time.Minute, time.Millisecond, nil)
	time.Sleep(5 * time.Millisecond)
	store.Close()
}

func TestSessionStoreStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	store := NewSessionStore(ctx, indicators.LoadDataset(), time.Minute, time.Millisecond, nil)
	cancel()

	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
	store.Close()
}

func TestSessionStoreExisting(t *testing.T) {
	store := newTestStore(t, time.Minute)

	stored, err := store.Existing(uuid.NewString(), func(s *indicators.Session) error {
		return s.RecordActual("Población en pobreza", 13.0)
	})
	if err != nil {
		t.Fatalf("Existing() error = %v", err)
	}
	if stored {
		t.Error("Existing() reported a stored session for an id the store never issued")
	}
	if store.Len() != 0 {
		t.Fatalf("Len() = %d after Existing on an unknown id, want 0", store.Len())
	}

	id, _ := store.With("", func(s *indicators.Session) error {
		return s.RecordActual("Población en pobreza", 13.0)
	})
	stored, _ = store.Existing(id, func(s *indicators.Session) error {
		if v, ok := s.Actual("Población en pobreza"); !ok || v != 13.0 {
			t.Errorf("Actual() = %v, %v, want 13, true", v, ok)
		}
		return nil
	})
	if !stored {
		t.Errorf("Existing(%q) did not find the stored session", id)
	}
}
