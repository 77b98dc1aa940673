package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps collections in process memory. It is used by the tests and
// as the fallback store when no MongoDB is configured. Reads of a collection
// that was never declared or written fail with ErrCollectionNotFound.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]resource.Document
}

// NewMemoryStore returns a store with the given (empty) collections declared.
func NewMemoryStore(collections ...string) *MemoryStore {
	m := &MemoryStore{collections: make(map[string]*memCollection)}
	for _, c := range collections {
		m.collections[c] = newMemCollection()
	}
	return m
}

func newMemCollection() *memCollection {
	return &memCollection{docs: make(map[string]resource.Document)}
}

// CreateCollection declares a collection; it is a no-op when it exists.
func (m *MemoryStore) CreateCollection(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = newMemCollection()
	}
}

func (m *MemoryStore) collection(name string) (*memCollection, error) {
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return c, nil
}

func (c *memCollection) all() []resource.Document {
	out := make([]resource.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id].Clone())
	}
	return out
}

func (c *memCollection) where(f resource.Filter) []resource.Document {
	out := []resource.Document{}
	for _, id := range c.order {
		d := c.docs[id]
		if v, ok := d[f.Field]; ok && f.Value.Equal(v) {
			out = append(out, d.Clone())
		}
	}
	return out
}

func (m *MemoryStore) List(ctx context.Context, coll string) ([]resource.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.collection(coll)
	if err != nil {
		return nil, err
	}
	return c.all(), nil
}

func (m *MemoryStore) Get(ctx context.Context, coll, id string) (resource.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.collection(coll)
	if err != nil {
		return nil, err
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return d.Clone(), nil
}

func (m *MemoryStore) Insert(ctx context.Context, coll string, doc resource.Document) (resource.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[coll]
	if !ok {
		c = newMemCollection()
		m.collections[coll] = c
	}
	d := doc.Clone()
	if d == nil {
		d = resource.Document{}
	}
	id := d.ID()
	if id == "" {
		id = primitive.NewObjectID().Hex()
		d[resource.FieldID] = id
	}
	if _, exists := c.docs[id]; exists {
		return nil, fmt.Errorf("duplicate primary key %q in collection %s", id, coll)
	}
	c.docs[id] = d
	c.order = append(c.order, id)
	return d.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, coll, id string, patch resource.Document) (resource.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.collection(coll)
	if err != nil {
		return nil, err
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	if v, ok := patch[resource.FieldID]; ok && fmt.Sprint(v) != id {
		return nil, fmt.Errorf("primary key %q cannot be changed", resource.FieldID)
	}
	for k, v := range patch {
		d[k] = v
	}
	return d.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, coll, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.collection(coll)
	if err != nil {
		return false, err
	}
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryStore) Filter(ctx context.Context, coll string, f resource.Filter) ([]resource.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.collection(coll)
	if err != nil {
		return nil, err
	}
	return c.where(f), nil
}

func (m *MemoryStore) Join(ctx context.Context, coll, id string, spec resource.JoinSpec) (resource.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.collection(coll)
	if err != nil {
		return nil, err
	}
	mc, err := m.collection(spec.Member)
	if err != nil {
		return nil, err
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, coll, id)
	}
	out := d.Clone()
	out[spec.Member] = mc.where(resource.Filter{Field: spec.Column, Value: resource.String(id)})
	return out, nil
}

func (m *MemoryStore) Members(ctx context.Context, spec resource.JoinSpec, id string) ([]resource.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mc, err := m.collection(spec.Member)
	if err != nil {
		return nil, err
	}
	return mc.where(resource.Filter{Field: spec.Column, Value: resource.String(id)}), nil
}
