package service

import (
	"testing"
	"time"

	"perplexacare/internal/domain"
)

func TestAuthStateSubscribe_DeliversCurrentFirst(t *testing.T) {
	state := NewAuthState()
	user := &domain.User{ID: "u1", Email: "a@example.com"}
	state.SetCurrent(user)

	ch, unsubscribe := state.Subscribe()
	defer unsubscribe()

	select {
	case change := <-ch:
		if change.User == nil || change.User.ID != "u1" {
			t.Fatalf("first event should carry the current user, got %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the current state as first event")
	}
}

func TestAuthStateSubscribe_ReceivesChanges(t *testing.T) {
	state := NewAuthState()
	ch, unsubscribe := state.Subscribe()
	defer unsubscribe()

	// Estado inicial: sin sesión.
	first := <-ch
	if first.User != nil {
		t.Fatalf("expected nil current user, got %+v", first.User)
	}

	state.SetCurrent(&domain.User{ID: "u1"})
	state.SetCurrent(nil)

	signedIn := <-ch
	if signedIn.User == nil || signedIn.User.ID != "u1" {
		t.Fatalf("expected sign-in event, got %+v", signedIn)
	}
	signedOut := <-ch
	if signedOut.User != nil {
		t.Fatalf("expected sign-out event, got %+v", signedOut)
	}
}

func TestAuthStateUnsubscribe_ClosesChannel(t *testing.T) {
	state := NewAuthState()
	ch, unsubscribe := state.Subscribe()
	<-ch
	unsubscribe()

	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after unsubscribe")
	}

	// Publicar después de cancelar no debe entrar en pánico.
	state.SetCurrent(&domain.User{ID: "u2"})
}

func TestAuthStateSlowSubscriberDropsEvents(t *testing.T) {
	state := NewAuthState()
	ch, unsubscribe := state.Subscribe()
	defer unsubscribe()

	// Llenar el buffer sin drenar; el publisher nunca bloquea.
	for i := 0; i < 20; i++ {
		state.SetCurrent(&domain.User{ID: "u"})
	}

	if got := state.Current(); got == nil || got.ID != "u" {
		t.Fatalf("current user should reflect the last publish, got %+v", got)
	}
	if len(ch) == 0 {
		t.Fatalf("subscriber should still hold buffered events")
	}
}
