package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is anything stored in a Collection, identified by a stable id.
type Record interface {
	RecordID() string
}

// normalizer is implemented by records that need defaults filled in after decoding.
type normalizer interface {
	Normalize()
}

// Collection is a typed view over one backing document. Every
// load-modify-save goes through mu, so concurrent writers in this process
// cannot lose each other's updates.
type Collection[T Record] struct {
	kind    Kind
	backend Backend
	logger  *zap.Logger
	mu      sync.Mutex
}

func NewCollection[T Record](kind Kind, backend Backend, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		kind:    kind,
		backend: backend,
		logger:  logger.With(zap.String("collection", string(kind))),
	}
}

// Load reads every record in storage order. A missing document is an empty
// collection; an undecodable one is a *CorruptionError.
func (c *Collection[T]) Load(ctx context.Context) (records []T, err error) {
	defer func(start time.Time) { observe(c.kind, "load", start, err) }(time.Now())

	docs, err := c.backend.Read(ctx, c.kind)
	if err != nil {
		c.logReadError(err)
		return nil, err
	}
	records, err = c.decode(docs)
	if err != nil {
		c.logReadError(err)
		return nil, err
	}
	return records, nil
}

// List is Load under the name used by callers that only browse.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return c.Load(ctx)
}

// Save overwrites the whole collection with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, records)
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	return c.Find(ctx, func(r T) bool { return r.RecordID() == id })
}

// Find returns the first record, in storage order, for which match is true.
func (c *Collection[T]) Find(ctx context.Context, match func(T) bool) (T, bool, error) {
	var zero T
	records, err := c.Load(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, r := range records {
		if match(r) {
			return r, true, nil
		}
	}
	return zero, false, nil
}

// FindByField returns the first record whose field decodes to the same JSON
// value as value. Values are compared decoded, so escapes written by other
// encoders ("\u00e9", a literal "&") still match.
func (c *Collection[T]) FindByField(ctx context.Context, field string, value any) (result T, found bool, err error) {
	defer func(start time.Time) { observe(c.kind, "find_by_field", start, err) }(time.Now())

	want, err := normalizeJSON(value)
	if err != nil {
		return result, false, fmt.Errorf("encode %s lookup value: %w", field, err)
	}
	docs, err := c.backend.Read(ctx, c.kind)
	if err != nil {
		c.logReadError(err)
		return result, false, err
	}
	for _, doc := range docs {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(doc.Body, &fields); err != nil {
			return result, false, &CorruptionError{Kind: c.kind, Err: err}
		}
		raw, ok := fields[field]
		if !ok {
			continue
		}
		var got any
		if err := json.Unmarshal(raw, &got); err != nil {
			return result, false, &CorruptionError{Kind: c.kind, Err: err}
		}
		if reflect.DeepEqual(got, want) {
			rec, err := c.decodeOne(doc.Body)
			if err != nil {
				return result, false, err
			}
			return rec, true, nil
		}
	}
	return result, false, nil
}

// Upsert replaces the record with the same id, or appends it.
func (c *Collection[T]) Upsert(ctx context.Context, record T) error {
	return c.Mutate(ctx, func(records []T) ([]T, error) {
		return upsert(records, record), nil
	})
}

// Update applies fn to the stored record with id and saves the result. The
// whole read-modify-write runs under the collection lock.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var updated T
	err := c.Mutate(ctx, func(records []T) ([]T, error) {
		for i := range records {
			if records[i].RecordID() != id {
				continue
			}
			if err := fn(&records[i]); err != nil {
				return nil, err
			}
			updated = records[i]
			return records, nil
		}
		return nil, fmt.Errorf("%s %q: %w", c.kind, id, ErrNotFound)
	})
	return updated, err
}

// Mutate loads the collection, passes it to fn and saves what fn returns,
// holding the collection lock throughout. Nothing is written if fn fails.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.Load(ctx)
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return c.save(ctx, records)
}

func (c *Collection[T]) save(ctx context.Context, records []T) (err error) {
	defer func(start time.Time) { observe(c.kind, "save", start, err) }(time.Now())

	docs := make([]Document, len(records))
	for i, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return &StorageError{Kind: c.kind, Op: "encode", Err: err}
		}
		docs[i] = Document{ID: r.RecordID(), Body: body}
	}
	if err := c.backend.Write(ctx, c.kind, docs); err != nil {
		c.logger.Error("Couldn't save collection", zap.Int("records", len(records)), zap.Error(err))
		return err
	}
	c.logger.Debug("Saved collection", zap.Int("records", len(records)))
	return nil
}

func (c *Collection[T]) decode(docs []Document) ([]T, error) {
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := c.decodeOne(doc.Body)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Collection[T]) decodeOne(body []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, &CorruptionError{Kind: c.kind, Err: err}
	}
	if n, ok := any(&rec).(normalizer); ok {
		n.Normalize()
	}
	return rec, nil
}

func (c *Collection[T]) logReadError(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	c.logger.Error("Couldn't load collection", zap.Error(err))
}

func upsert[T Record](records []T, record T) []T {
	for i := range records {
		if records[i].RecordID() == record.RecordID() {
			records[i] = record
			return records
		}
	}
	return append(records, record)
}

// normalizeJSON round-trips v through encoding/json so it compares equal to
// a field decoded from a stored document.
func normalizeJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
