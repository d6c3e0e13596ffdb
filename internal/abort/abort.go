package abort

import (
	"context"
	"sync"
)

// Token is a cancellation handle for one operation. It moves from active to
// cancelled exactly once and never back.
type Token struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newToken(parent context.Context) *Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Context returns a context that is done once the token is cancelled.
func (t *Token) Context() context.Context { return t.ctx }

// Done is shorthand for Context().Done().
func (t *Token) Done() <-chan struct{} { return t.ctx.Done() }

// Cancel cancels the token. Calling it more than once is harmless.
func (t *Token) Cancel() { t.cancel() }

// Cancelled reports whether the token, or the context it was derived from,
// has been cancelled.
func (t *Token) Cancelled() bool { return t.ctx.Err() != nil }

// Coordinator owns the current operation's token.
type Coordinator struct {
	mu      sync.Mutex
	current *Token
}

// NewCoordinator returns a coordinator with no active token.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// CreateController cancels the current token, if any, and installs a fresh
// one derived from parent.
func (c *Coordinator) CreateController(parent context.Context) *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.Cancel()
		c.current = nil
	}
	tok := newToken(parent)
	c.current = tok
	return tok
}

// Clear forgets tok if it is still the current token. A superseded
// operation calling Clear must not drop the newer operation's token.
func (c *Coordinator) Clear(tok *Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok != nil && c.current == tok {
		c.current = nil
	}
}

// Abort cancels and clears the current token.
func (c *Coordinator) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.Cancel()
		c.current = nil
	}
}

// Active reports whether an operation currently holds a token.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Current returns the current token, or nil.
func (c *Coordinator) Current() *Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
