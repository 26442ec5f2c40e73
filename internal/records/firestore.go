package records

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andresuchdata/bizdir-ops/internal/credentials"
)

// FirestoreScopes are requested when resolving credentials for Firestore.
var FirestoreScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
}

// FirestoreStore implements Store on Cloud Firestore through a Firebase app.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes a Firebase app for projectID and opens its
// Firestore client. An empty projectID falls back to the credentials' project.
func NewFirestoreStore(ctx context.Context, projectID string, creds *credentials.Resolved, opts ...option.ClientOption) (*FirestoreStore, error) {
	if projectID == "" {
		projectID = creds.ProjectID()
	}
	if projectID == "" {
		return nil, fmt.Errorf("firebase project id must be provided")
	}
	if creds != nil && creds.Google != nil {
		opts = append(opts, option.WithCredentials(creds.Google))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection, field, op string, value interface{}) ([]*Document, error) {
	iter := s.client.Collection(collection).Where(field, op, value).Documents(ctx)
	defer iter.Stop()

	var docs []*Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s where %s %s %v: %w", collection, field, op, value, err)
		}
		docs = append(docs, &Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Put(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
		}
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

var _ Store = (*FirestoreStore)(nil)
