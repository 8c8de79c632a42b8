package domain

import (
	"context"
	"time"
)

// AgentResponse is the opaque result of one natural-language instruction.
// Parsed carries a pre-parsed structured payload when the provider produced
// one; Text carries the raw free-form response, which may embed a JSON object.
type AgentResponse struct {
	Parsed map[string]interface{}
	Text   string
}

// AgentSession is one interactive browsing session. Sessions are sequential:
// one session is live at a time and serves one item's full step sequence.
type AgentSession interface {
	// Act executes a single natural-language instruction against the page.
	Act(ctx context.Context, instruction string) (*AgentResponse, error)

	// PageURL reports the browser's current page URL.
	PageURL(ctx context.Context) (string, error)

	Close() error
}

// Agent is the opaque browsing-agent capability.
type Agent interface {
	// NewSession opens a browsing session on the given starting page.
	NewSession(ctx context.Context, startingPage string) (AgentSession, error)

	// SessionAvailable reports whether a persisted login profile exists,
	// which interactive cart actions require.
	SessionAvailable() bool
}

// CacheRepository stores nutrition records under normalized keys.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*NutritionRecord, error)
	Set(ctx context.Context, key string, record *NutritionRecord, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
