package abort

import (
	"context"
	"sync"
	"testing"
)

func TestCreateController_PreemptsPrevious(t *testing.T) {
	c := NewCoordinator()

	var tokens []*Token
	for i := 0; i < 5; i++ {
		tok := c.CreateController(context.Background())
		if tok.Cancelled() {
			t.Fatalf("token %d cancelled on creation", i)
		}
		if len(tokens) > 0 && !tokens[len(tokens)-1].Cancelled() {
			t.Fatalf("token %d still active after token %d was created", i-1, i)
		}
		tokens = append(tokens, tok)
	}

	for i, tok := range tokens[:len(tokens)-1] {
		if !tok.Cancelled() {
			t.Errorf("token %d should be cancelled", i)
		}
	}
	if c.Current() != tokens[len(tokens)-1] {
		t.Error("last created token should be current")
	}
}

func TestClear_IgnoresSupersededToken(t *testing.T) {
	c := NewCoordinator()
	first := c.CreateController(context.Background())
	second := c.CreateController(context.Background())

	c.Clear(first)
	if c.Current() != second {
		t.Fatal("clearing a superseded token must not touch the current one")
	}
	if second.Cancelled() {
		t.Error("current token should still be active")
	}
}

func TestClear_Idempotent(t *testing.T) {
	c := NewCoordinator()
	tok := c.CreateController(context.Background())

	c.Clear(tok)
	if c.Active() {
		t.Fatal("expected no current token after Clear")
	}
	c.Clear(tok)
	if c.Active() {
		t.Fatal("second Clear should be a no-op")
	}
	if tok.Cancelled() {
		t.Error("Clear must not cancel the token")
	}

	next := c.CreateController(context.Background())
	c.Clear(tok)
	if c.Current() != next {
		t.Error("stale Clear removed a newer token")
	}
}

func TestAbort(t *testing.T) {
	c := NewCoordinator()
	c.Abort() // no current token

	tok := c.CreateController(context.Background())
	c.Abort()
	if !tok.Cancelled() {
		t.Error("Abort should cancel the current token")
	}
	if c.Active() {
		t.Error("Abort should clear the current token")
	}
	select {
	case <-tok.Done():
	default:
		t.Error("Done channel should be closed after Abort")
	}
}

func TestToken_CancelIsMonotonic(t *testing.T) {
	tok := newToken(context.Background())
	tok.Cancel()
	tok.Cancel()
	if !tok.Cancelled() {
		t.Fatal("expected cancelled")
	}
}

func TestToken_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	c := NewCoordinator()
	tok := c.CreateController(parent)
	cancel()
	if !tok.Cancelled() {
		t.Error("token should observe parent cancellation")
	}
}

func TestCoordinator_ConcurrentCreate(t *testing.T) {
	c := NewCoordinator()
	var wg sync.WaitGroup
	tokens := make([]*Token, 50)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = c.CreateController(context.Background())
		}(i)
	}
	wg.Wait()

	active := 0
	for _, tok := range tokens {
		if !tok.Cancelled() {
			active++
		}
	}
	if active != 1 {
		t.Errorf("got %d active tokens, want exactly 1", active)
	}
}
