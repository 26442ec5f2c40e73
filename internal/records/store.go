package records

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by Get and Delete for a missing document.
var ErrDocumentNotFound = errors.New("document not found")

// Document is one stored record.
type Document struct {
	ID   string                 `json:"id"`
	Data map[string]interface{} `json:"data"`
}

// Store is the document database capability the web app's data lives in.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection, field, op string, value interface{}) ([]*Document, error)
	Put(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}
