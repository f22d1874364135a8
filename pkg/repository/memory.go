package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/model"
)

// Memory is an in-process Repository used when no Firestore project is
// configured, and by tests
type Memory struct {
	mu    sync.RWMutex
	convs map[model.ConversationID]*model.Conversation
	msgs  map[model.ConversationID][]*model.ChatMessage
}

func NewMemory() *Memory {
	return &Memory{
		convs: make(map[model.ConversationID]*model.Conversation),
		msgs:  make(map[model.ConversationID][]*model.ChatMessage),
	}
}

func (r *Memory) PutConversation(_ context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *conv
	r.convs[conv.ID] = &copied
	return nil
}

func (r *Memory) GetConversation(_ context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil, goerr.Wrap(ErrConversationNotFound, "no such conversation", goerr.V("id", id))
	}
	copied := *conv
	return &copied, nil
}

func (r *Memory) ListConversations(_ context.Context, offset, limit int) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	convs := make([]*model.Conversation, 0, len(r.convs))
	for _, conv := range r.convs {
		copied := *conv
		convs = append(convs, &copied)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	if offset >= len(convs) {
		return nil, nil
	}
	convs = convs[offset:]
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

func (r *Memory) DeleteConversation(_ context.Context, id model.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.convs, id)
	delete(r.msgs, id)
	return nil
}

func (r *Memory) PutMessage(_ context.Context, msg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *msg
	r.msgs[msg.ConversationID] = append(r.msgs[msg.ConversationID], &copied)
	return nil
}

func (r *Memory) ListMessages(_ context.Context, id model.ConversationID) ([]*model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := make([]*model.ChatMessage, 0, len(r.msgs[id]))
	for _, msg := range r.msgs[id] {
		copied := *msg
		msgs = append(msgs, &copied)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (r *Memory) Close() error {
	return nil
}
