// Package repository persists conversations and their messages.
package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/model"
)

var ErrConversationNotFound = goerr.New("conversation not found")

// Repository defines the interface for conversation persistence
type Repository interface {
	// PutConversation creates or updates conversation metadata
	PutConversation(ctx context.Context, conv *model.Conversation) error

	// GetConversation retrieves a conversation by ID
	GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListConversations retrieves conversations ordered by most recent update
	ListConversations(ctx context.Context, offset, limit int) ([]*model.Conversation, error)

	// DeleteConversation removes a conversation and all of its messages
	DeleteConversation(ctx context.Context, id model.ConversationID) error

	// PutMessage appends a message to a conversation
	PutMessage(ctx context.Context, msg *model.ChatMessage) error

	// ListMessages retrieves a conversation's messages in chronological order
	ListMessages(ctx context.Context, id model.ConversationID) ([]*model.ChatMessage, error)

	// Close releases underlying connections
	Close() error
}
