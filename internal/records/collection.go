package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/metrics"
)

// Record is a stored entity with an id.
type Record interface {
	RecordID() domain.ID
}

// Fields is a record body without an id.
type Fields[T Record] interface {
	WithID(domain.ID) T
}

// Patch is a partial update; fields it does not name are preserved.
type Patch[T Record] interface {
	Apply(T) T
}

// IDSource issues candidate record ids.
type IDSource interface {
	Next() int64
}

// Collection is one insertion-ordered record set written through to a
// single backend key on every mutation.
//
// A mutation serializes the complete next collection and writes it before
// replacing the in-memory copy, so a failed write leaves both unchanged.
type Collection[T Record, F Fields[T], P Patch[T]] struct {
	name    string
	backend kv.Backend
	ids     IDSource
	logger  *slog.Logger
	metrics *metrics.Metrics
	items   []T
}

// List returns a copy of the collection in insertion order.
func (c *Collection[T, F, P]) List() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of records.
func (c *Collection[T, F, P]) Len() int {
	return len(c.items)
}

// Get returns the record with id.
func (c *Collection[T, F, P]) Get(id domain.ID) (T, bool) {
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Lookup resolves a string reference such as a selection value.
// References that are not integers never match.
func (c *Collection[T, F, P]) Lookup(ref string) (T, bool) {
	id, err := domain.ParseID(ref)
	if err != nil {
		var zero T
		return zero, false
	}
	return c.Get(id)
}

// Add assigns a fresh id, appends the record and persists the collection.
func (c *Collection[T, F, P]) Add(ctx context.Context, fields F) (T, error) {
	id := c.nextID()
	rec := fields.WithID(id)

	next := make([]T, 0, len(c.items)+1)
	next = append(next, c.items...)
	next = append(next, rec)
	if err := c.commit(ctx, next); err != nil {
		var zero T
		return zero, fmt.Errorf("add %s: %w", c.name, err)
	}
	c.metrics.Mutation(c.name, "add")
	c.logger.Debug("record added", "collection", c.name, "id", id)
	return rec, nil
}

// Update merges patch over the record with id and persists the collection.
// An absent id is a no-op: nothing is written.
func (c *Collection[T, F, P]) Update(ctx context.Context, id domain.ID, patch P) error {
	next := make([]T, len(c.items))
	found := false
	for i, item := range c.items {
		if item.RecordID() == id {
			item = patch.Apply(item)
			found = true
		}
		next[i] = item
	}
	if !found {
		c.logger.Debug("update skipped, no such record", "collection", c.name, "id", id)
		return nil
	}
	if err := c.commit(ctx, next); err != nil {
		return fmt.Errorf("update %s %d: %w", c.name, id, err)
	}
	c.metrics.Mutation(c.name, "update")
	c.logger.Debug("record updated", "collection", c.name, "id", id)
	return nil
}

// Remove deletes the record with id and persists the collection.
// An absent id is a no-op: nothing is written.
func (c *Collection[T, F, P]) Remove(ctx context.Context, id domain.ID) error {
	next := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if item.RecordID() != id {
			next = append(next, item)
		}
	}
	if len(next) == len(c.items) {
		c.logger.Debug("remove skipped, no such record", "collection", c.name, "id", id)
		return nil
	}
	if err := c.commit(ctx, next); err != nil {
		return fmt.Errorf("remove %s %d: %w", c.name, id, err)
	}
	c.metrics.Mutation(c.name, "remove")
	c.logger.Debug("record removed", "collection", c.name, "id", id)
	return nil
}

// nextID draws ids until one is unused. The wall clock is already above
// any seeded id; the loop matters for deterministic test clocks.
func (c *Collection[T, F, P]) nextID() domain.ID {
	for {
		id := domain.ID(c.ids.Next())
		if _, taken := c.Get(id); !taken {
			return id
		}
	}
}

// commit persists next, then makes it current.
func (c *Collection[T, F, P]) commit(ctx context.Context, next []T) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := c.backend.Set(ctx, c.name, string(data)); err != nil {
		return err
	}
	c.items = next
	c.metrics.SetSize(c.name, len(next))
	return nil
}

// loadCollection reads key from the backend. An absent key is initialized
// from seed and written immediately; a present key must satisfy def.
func loadCollection[T Record, F Fields[T], P Patch[T]](ctx context.Context, key, def string, seed []T, o *options) (*Collection[T, F, P], error) {
	c := &Collection[T, F, P]{
		name:    key,
		backend: o.backend,
		ids:     o.ids,
		logger:  o.logger,
		metrics: o.metrics,
	}

	raw, ok, err := o.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		if seed == nil {
			seed = []T{}
		}
		if err := c.commit(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed %s: %w", key, err)
		}
		o.logger.Info("collection seeded", "collection", key, "records", len(seed))
		return c, nil
	}

	if err := o.schema.Check(def, []byte(raw)); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.metrics.SetSize(key, len(items))
	return c, nil
}
