package adapter

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/model"
	"google.golang.org/api/iterator"
)

// Archive stores exported conversation transcripts as JSON blobs. Keys are
// conversation IDs; the archive has no notion of message ordering beyond
// what the transcript itself encodes.
type Archive interface {
	// Put returns a writer for a transcript blob
	Put(ctx context.Context, id model.ConversationID) (io.WriteCloser, error)
	// Get opens a stored transcript
	Get(ctx context.Context, id model.ConversationID) (io.ReadCloser, error)
	// List returns the conversation IDs with stored transcripts
	List(ctx context.Context) ([]model.ConversationID, error)
}

const transcriptPrefix = "transcripts/"

// archiveClient implements Archive on Cloud Storage
type archiveClient struct {
	bucketName string
	client     *storage.Client
}

// NewArchive creates a Cloud Storage backed transcript archive
func NewArchive(ctx context.Context, bucketName string) (Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &archiveClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (a *archiveClient) Put(ctx context.Context, id model.ConversationID) (io.WriteCloser, error) {
	obj := a.client.Bucket(a.bucketName).Object(objectKey(id))
	return obj.NewWriter(ctx), nil
}

func (a *archiveClient) Get(ctx context.Context, id model.ConversationID) (io.ReadCloser, error) {
	obj := a.client.Bucket(a.bucketName).Object(objectKey(id))
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read transcript", goerr.V("conversation", id))
	}
	return reader, nil
}

func (a *archiveClient) List(ctx context.Context) ([]model.ConversationID, error) {
	it := a.client.Bucket(a.bucketName).Objects(ctx, &storage.Query{Prefix: transcriptPrefix})

	var ids []model.ConversationID
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list transcripts")
		}
		name := strings.TrimSuffix(strings.TrimPrefix(attrs.Name, transcriptPrefix), ".json")
		ids = append(ids, model.ConversationID(name))
	}
	return ids, nil
}

func objectKey(id model.ConversationID) string {
	return transcriptPrefix + string(id) + ".json"
}
