package session

import (
	"context"

	"linkboard/internal/apiclient"

	"go.uber.org/zap"
)

var _ apiclient.Credential = (*storeCredential)(nil)

// storeCredential reads the session's token from the store on every request,
// so a token saved or cleared on one page is seen by the next.
type storeCredential struct {
	store     CredentialStore
	sessionID string
	logger    *zap.Logger
}

// NewCredential binds a session id to a store as an apiclient.Credential
func NewCredential(store CredentialStore, sessionID string, logger *zap.Logger) apiclient.Credential {
	return &storeCredential{store: store, sessionID: sessionID, logger: logger}
}

func (c *storeCredential) Token(ctx context.Context) string {
	token, err := c.store.Get(ctx, c.sessionID)
	if err != nil {
		c.logger.Warn("failed to read token", zap.String("session", c.sessionID), zap.Error(err))
		return ""
	}
	return token
}

func (c *storeCredential) Clear(ctx context.Context) {
	// The request that got the 401 may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := c.store.Delete(ctx, c.sessionID); err != nil {
		c.logger.Warn("failed to clear token", zap.String("session", c.sessionID), zap.Error(err))
		return
	}
	c.logger.Info("token cleared", zap.String("session", c.sessionID))
}
