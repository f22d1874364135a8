package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidRole = goerr.New("invalid message role")

type ConversationID string

// NewConversationID generates a new unique ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

type MessageID string

// NewMessageID generates a new unique MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return nil
	default:
		return goerr.Wrap(ErrInvalidRole, "unknown role", goerr.V("role", r))
	}
}

// ResponseSource records where an assistant answer came from. Grounded
// responses had retrieved knowledge injected (statically or via tool call),
// plain model responses did not.
type ResponseSource string

const (
	SourceModel             ResponseSource = "model"
	SourceKnowledgeGrounded ResponseSource = "knowledge-grounded"
)

// PerformanceMetrics captures inference timing reported by the engine
type PerformanceMetrics struct {
	TokensPerSecond    float64 `json:"tokens_per_second" firestore:"tokens_per_second"`
	TimeToFirstTokenMs int64   `json:"time_to_first_token_ms" firestore:"time_to_first_token_ms"`
	TotalTimeMs        int64   `json:"total_time_ms" firestore:"total_time_ms"`
	TotalTokens        int     `json:"total_tokens" firestore:"total_tokens"`
}

// Merge combines metrics from two sequential generation rounds. Totals are
// summed; time-to-first-token of the first round is authoritative.
func (m PerformanceMetrics) Merge(second PerformanceMetrics) PerformanceMetrics {
	merged := PerformanceMetrics{
		TimeToFirstTokenMs: m.TimeToFirstTokenMs,
		TotalTimeMs:        m.TotalTimeMs + second.TotalTimeMs,
		TotalTokens:        m.TotalTokens + second.TotalTokens,
	}
	if merged.TotalTimeMs > 0 {
		merged.TokensPerSecond = float64(merged.TotalTokens) / (float64(merged.TotalTimeMs) / 1000.0)
	}
	return merged
}

// ChatMessage is a single turn in a conversation. Immutable once created.
type ChatMessage struct {
	ID             MessageID           `json:"id" firestore:"id"`
	ConversationID ConversationID      `json:"conversation_id" firestore:"conversation_id"`
	Role           Role                `json:"role" firestore:"role"`
	Content        string              `json:"content" firestore:"content"`
	Timestamp      time.Time           `json:"timestamp" firestore:"timestamp"`
	Images         []string            `json:"images,omitempty" firestore:"images,omitempty"`
	Source         ResponseSource      `json:"source,omitempty" firestore:"source,omitempty"`
	KnowledgeID    string              `json:"knowledge_entry_id,omitempty" firestore:"knowledge_entry_id,omitempty"`
	Metrics        *PerformanceMetrics `json:"metrics,omitempty" firestore:"metrics,omitempty"`
}

// Conversation is an ordered series of messages with display metadata
type Conversation struct {
	ID           ConversationID `json:"id" firestore:"id"`
	Title        string         `json:"title" firestore:"title"`
	CreatedAt    time.Time      `json:"created_at" firestore:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" firestore:"updated_at"`
	MessageCount int            `json:"message_count" firestore:"message_count"`
	Preview      string         `json:"preview" firestore:"preview"`
}

const (
	titleMaxLen   = 50
	previewMaxLen = 100
)

// TitleFromContent derives a conversation title from its first user message
func TitleFromContent(content string) string {
	cleaned := strings.TrimSpace(content)
	if len(cleaned) <= titleMaxLen {
		return cleaned
	}
	return cleaned[:titleMaxLen] + "..."
}

// PreviewFromContent derives the conversation list preview text
func PreviewFromContent(content string) string {
	if len(content) <= previewMaxLen {
		return content
	}
	return content[:previewMaxLen]
}
