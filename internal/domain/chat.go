package domain

import (
	"context"
	"time"
)

// ChatRole distinguishes who authored a transcript turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	// ChatRoleError marks a visible bridge-failure turn. The transcript
	// stays usable after a failure instead of surfacing a global error.
	ChatRoleError ChatRole = "error"
)

// ChatMessage is one persisted transcript turn.
type ChatMessage struct {
	ID        string
	TenantID  string
	UserID    string
	Role      ChatRole
	Text      string
	CreatedAt time.Time
}

// ChatRepository persists conversation transcripts per user.
type ChatRepository interface {
	AppendChatMessage(ctx context.Context, msg ChatMessage) error
	ChatHistory(ctx context.Context, tenantID, userID string, limit int) ([]ChatMessage, error)
}

// BridgeTurn is a prior conversation turn forwarded to the assistant
// endpoint.
type BridgeTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// AssistantBridge forwards a user message plus identity metadata to the
// remote assistant and returns its reply as plain text.
type AssistantBridge interface {
	Reply(ctx context.Context, userID, userName, message string, history []BridgeTurn) (string, error)
}
