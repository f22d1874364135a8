package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	conversationCollection = "conversations"
	messageCollection      = "messages"
)

// Firestore implements Repository using Cloud Firestore. Messages live in a
// subcollection under their conversation document.
type Firestore struct {
	client *firestore.Client
}

// New creates a Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) conversationDoc(id model.ConversationID) *firestore.DocumentRef {
	return r.client.Collection(conversationCollection).Doc(string(id))
}

func (r *Firestore) PutConversation(ctx context.Context, conv *model.Conversation) error {
	if _, err := r.conversationDoc(conv.ID).Set(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to put conversation", goerr.V("id", conv.ID))
	}
	return nil
}

func (r *Firestore) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	doc, err := r.conversationDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrConversationNotFound, "no such document", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	var conv model.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("id", id))
	}
	return &conv, nil
}

func (r *Firestore) ListConversations(ctx context.Context, offset, limit int) ([]*model.Conversation, error) {
	query := r.client.Collection(conversationCollection).
		OrderBy("updated_at", firestore.Desc).
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	it := query.Documents(ctx)
	defer it.Stop()

	var convs []*model.Conversation
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list conversations")
		}

		var conv model.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("doc", doc.Ref.ID))
		}
		convs = append(convs, &conv)
	}
	return convs, nil
}

func (r *Firestore) DeleteConversation(ctx context.Context, id model.ConversationID) error {
	msgs := r.conversationDoc(id).Collection(messageCollection).Documents(ctx)
	defer msgs.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := msgs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to list messages for deletion", goerr.V("id", id))
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to enqueue message deletion", goerr.V("id", id))
		}
	}
	if _, err := bw.Delete(r.conversationDoc(id)); err != nil {
		return goerr.Wrap(err, "failed to enqueue conversation deletion", goerr.V("id", id))
	}
	bw.End()

	return nil
}

func (r *Firestore) PutMessage(ctx context.Context, msg *model.ChatMessage) error {
	doc := r.conversationDoc(msg.ConversationID).Collection(messageCollection).Doc(string(msg.ID))
	if _, err := doc.Set(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to put message",
			goerr.V("conversation", msg.ConversationID), goerr.V("message", msg.ID))
	}
	return nil
}

func (r *Firestore) ListMessages(ctx context.Context, id model.ConversationID) ([]*model.ChatMessage, error) {
	it := r.conversationDoc(id).Collection(messageCollection).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)
	defer it.Stop()

	var msgs []*model.ChatMessage
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list messages", goerr.V("id", id))
		}

		var msg model.ChatMessage
		if err := doc.DataTo(&msg); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message", goerr.V("doc", doc.Ref.ID))
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

func (r *Firestore) Close() error {
	return r.client.Close()
}
