package apiclient

import (
	"context"
	"sync"
)

// Credential carries the bearer token for one caller. It is passed explicitly on
// every request so no request depends on hidden global state.
type Credential interface {
	// Token returns the current token, or "" when none is stored.
	Token(ctx context.Context) string
	// Clear forgets the token. Called by the client whenever the backend answers 401.
	Clear(ctx context.Context)
}

// Anonymous is a Credential that never carries a token.
var Anonymous Credential = anonymous{}

type anonymous struct{}

func (anonymous) Token(context.Context) string { return "" }
func (anonymous) Clear(context.Context)        {}

// StaticCredential holds a token in memory. Used by the CLI and by tests.
type StaticCredential struct {
	mu    sync.RWMutex
	token string
}

func NewStaticCredential(token string) *StaticCredential {
	return &StaticCredential{token: token}
}

func (c *StaticCredential) Token(context.Context) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *StaticCredential) Clear(context.Context) {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
