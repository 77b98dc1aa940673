package repository

import (
	"context"
	"errors"

	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Store is the query surface the resource handlers run against. Each method
// issues one logical query; errors are returned as produced by the backend.
type Store interface {
	List(ctx context.Context, coll string) ([]resource.Document, error)
	// Get returns nil, nil when no document has the given id.
	Get(ctx context.Context, coll, id string) (resource.Document, error)
	// Insert stores doc, assigning an id when it has none, and returns the
	// stored state.
	Insert(ctx context.Context, coll string, doc resource.Document) (resource.Document, error)
	// Update merges patch into the document and returns its new state, or
	// nil, nil when no document matched.
	Update(ctx context.Context, coll, id string, patch resource.Document) (resource.Document, error)
	// Delete reports whether exactly one document was removed.
	Delete(ctx context.Context, coll, id string) (bool, error)
	Filter(ctx context.Context, coll string, f resource.Filter) ([]resource.Document, error)
	// Join returns the document with the matching member documents attached
	// under spec.Member.
	Join(ctx context.Context, coll, id string, spec resource.JoinSpec) (resource.Document, error)
	// Members returns the documents of spec.Member whose spec.Column equals id.
	Members(ctx context.Context, spec resource.JoinSpec, id string) ([]resource.Document, error)
}
