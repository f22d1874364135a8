package adapter

import (
	"context"

	"github.com/surviveos/ranger/pkg/model"
	"google.golang.org/genai"
)

// Role of a conversation message as the engine sees it
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Attachment is binary content accompanying a message, such as an image for
// vision-capable models
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Message is one turn of conversation sent to the engine
type Message struct {
	Role        string
	Content     string
	Attachments []Attachment
}

// FunctionCall is a tool invocation requested by the engine
type FunctionCall struct {
	Name string
	Args map[string]any
}

// CompletionRequest carries everything needed for one generation round.
// OnToken, when set, receives incremental text as it streams in; the full
// response is still returned at the end.
type CompletionRequest struct {
	Model     string
	System    string
	Messages  []Message
	Tools     []*genai.Tool
	MaxTokens int32
	OnToken   func(token string)
}

// CompletionResult is the outcome of one generation round. FunctionCalls is
// non-empty when the engine wants tools executed before it can answer.
type CompletionResult struct {
	Response      string
	FunctionCalls []FunctionCall
	Metrics       model.PerformanceMetrics
}

// Engine generates completions. Implementations must be safe for concurrent
// use.
type Engine interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}
