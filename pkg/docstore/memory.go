package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryCollection stores documents as decoded BSON so that filters and
// unique indexes compare exactly what MongoDB would compare.
type MemoryCollection[T any] struct {
	name    string
	indexes []Index

	mu    sync.RWMutex
	order []string
	docs  map[string]bson.M
}

func NewMemoryCollection[T any](name string, indexes ...Index) *MemoryCollection[T] {
	return &MemoryCollection[T]{
		name:    name,
		indexes: indexes,
		docs:    make(map[string]bson.M),
	}
}

func (c *MemoryCollection[T]) Name() string {
	return c.name
}

func (c *MemoryCollection[T]) Insert(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := toDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", c.name, err)
	}
	id, ok := m[IDField].(string)
	if !ok || id == "" {
		return ErrMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; exists {
		return fmt.Errorf("%w: %s: _id %s", ErrDuplicateKey, c.name, id)
	}
	if idx, clash := c.uniqueClash(m, ""); clash {
		return fmt.Errorf("%w: %s: %v", ErrDuplicateKey, c.name, idx.Fields)
	}

	c.docs[id] = m
	c.order = append(c.order, id)
	return nil
}

func (c *MemoryCollection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	docs, err := c.find(ctx, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (c *MemoryCollection[T]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	return c.find(ctx, filter, 0)
}

func (c *MemoryCollection[T]) find(ctx context.Context, filter Filter, limit int) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []*T{}
	for _, id := range c.order {
		m := c.docs[id]
		if !matches(m, f) {
			continue
		}
		doc, err := fromDocument[T](m)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s document %s: %w", c.name, id, err)
		}
		out = append(out, doc)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *MemoryCollection[T]) Update(ctx context.Context, filter Filter, fields Fields) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, ErrEmptyUpdate
	}
	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	set, err := normalizeFilter(Filter(fields))
	if err != nil {
		return 0, err
	}
	if _, touchesID := set[IDField]; touchesID {
		return 0, fmt.Errorf("cannot update %s", IDField)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	updated := make(map[string]bson.M)
	for _, id := range c.order {
		m := c.docs[id]
		if !matches(m, f) {
			continue
		}
		next := make(bson.M, len(m)+len(set))
		for k, v := range m {
			next[k] = v
		}
		for k, v := range set {
			next[k] = v
		}
		if idx, clash := c.uniqueClash(next, id); clash {
			return 0, fmt.Errorf("%w: %s: %v", ErrDuplicateKey, c.name, idx.Fields)
		}
		updated[id] = next
	}

	for id, m := range updated {
		c.docs[id] = m
	}
	return int64(len(updated)), nil
}

func (c *MemoryCollection[T]) Remove(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	var removed int64
	for _, id := range c.order {
		if matches(c.docs[id], f) {
			delete(c.docs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return removed, nil
}

func (c *MemoryCollection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, id := range c.order {
		if matches(c.docs[id], f) {
			n++
		}
	}
	return n, nil
}

func (c *MemoryCollection[T]) Ping(ctx context.Context) error {
	return ctx.Err()
}

// uniqueClash must be called with c.mu held.
func (c *MemoryCollection[T]) uniqueClash(candidate bson.M, skipID string) (Index, bool) {
	for _, idx := range c.indexes {
		if !idx.Unique {
			continue
		}
		for id, existing := range c.docs {
			if id == skipID {
				continue
			}
			if sameKey(idx.Fields, candidate, existing) {
				return idx, true
			}
		}
	}
	return Index{}, false
}

func sameKey(fields []string, a, b bson.M) bool {
	for _, field := range fields {
		if !reflect.DeepEqual(a[field], b[field]) {
			return false
		}
	}
	return true
}

func matches(doc bson.M, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			if want != nil {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// normalizeFilter round-trips the filter through BSON so its values have the
// same dynamic types as decoded documents.
func normalizeFilter(filter Filter) (bson.M, error) {
	if len(filter) == 0 {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(bson.M(filter))
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return out, nil
}

func toDocument[T any](doc *T) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromDocument[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
