package handler

import (
	"context"
	"time"

	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/repository"
)

// Request is what an action sees of an inbound HTTP request: the named path
// segments and, for post and put, the decoded JSON object body.
type Request struct {
	Params map[string]string
	Body   resource.Document
}

func (r Request) Param(name string) string { return r.Params[name] }

// Handler serves the actions of one collection. It is immutable after New and
// safe for concurrent use; every action issues one query against the store.
type Handler struct {
	collection string
	store      repository.Store
	now        func() time.Time
}

func New(collection string, store repository.Store) *Handler {
	return &Handler{collection: collection, store: store, now: time.Now}
}

func (h *Handler) Collection() string { return h.collection }

// timestamp is truncated to the millisecond precision BSON dates keep, so a
// reply and a later read of the same document agree.
func (h *Handler) timestamp() time.Time { return h.now().UTC().Truncate(time.Millisecond) }

// Index returns every document of the collection.
func (h *Handler) Index(ctx context.Context, _ Request, _ resource.JoinSpec) (any, error) {
	return h.store.List(ctx, h.collection)
}

// Show returns the document with the path id, or nil (JSON null) when absent.
func (h *Handler) Show(ctx context.Context, req Request, _ resource.JoinSpec) (any, error) {
	d, err := h.store.Get(ctx, h.collection, req.Param("id"))
	if err != nil || d == nil {
		return nil, err
	}
	return d, nil
}

// Post inserts the body with createdAt set and updatedAt null.
func (h *Handler) Post(ctx context.Context, req Request, _ resource.JoinSpec) (any, error) {
	doc := req.Body.Clone()
	if doc == nil {
		doc = resource.Document{}
	}
	doc[resource.FieldCreatedAt] = h.timestamp()
	doc[resource.FieldUpdatedAt] = nil
	return h.store.Insert(ctx, h.collection, doc)
}

// Put merges the body into the document and refreshes updatedAt. A missing
// document yields nil.
func (h *Handler) Put(ctx context.Context, req Request, _ resource.JoinSpec) (any, error) {
	patch := req.Body.Clone()
	if patch == nil {
		patch = resource.Document{}
	}
	patch[resource.FieldUpdatedAt] = h.timestamp()
	d, err := h.store.Update(ctx, h.collection, req.Param("id"), patch)
	if err != nil || d == nil {
		return nil, err
	}
	return d, nil
}

// Delete reports whether exactly one document was removed.
func (h *Handler) Delete(ctx context.Context, req Request, _ resource.JoinSpec) (any, error) {
	return h.store.Delete(ctx, h.collection, req.Param("id"))
}

// Search filters the collection on key == value, with value coerced to a bool,
// number or string.
func (h *Handler) Search(ctx context.Context, req Request, _ resource.JoinSpec) (any, error) {
	f := resource.NewFilter(req.Param("key"), req.Param("value"))
	return h.store.Filter(ctx, h.collection, f)
}

// Join returns the document with the matching member documents attached under
// the member collection's name.
func (h *Handler) Join(ctx context.Context, req Request, spec resource.JoinSpec) (any, error) {
	return h.store.Join(ctx, h.collection, req.Param("id"), spec)
}

// Member lists the member documents referencing the path id.
func (h *Handler) Member(ctx context.Context, req Request, spec resource.JoinSpec) (any, error) {
	return h.store.Members(ctx, spec, req.Param("id"))
}
