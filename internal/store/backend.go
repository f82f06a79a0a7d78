// Package store persists whole collections of records as JSON documents and
// layers record-level operations (get, find, upsert, update) on top.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names a collection.
type Kind string

const (
	KindUsers Kind = "users"
	KindPosts Kind = "posts"
)

// Kinds lists every collection the application stores.
var Kinds = []Kind{KindUsers, KindPosts}

// Document is one serialized record. ID may be empty when a backend does not
// keep it separately from Body.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Backend reads and writes entire collections. A collection that was never
// written reads as empty. Implementations must replace a collection
// atomically: a reader sees either the old or the new contents.
type Backend interface {
	Read(ctx context.Context, kind Kind) ([]Document, error)
	Write(ctx context.Context, kind Kind, docs []Document) error
	Close() error
}

var (
	// ErrStorage matches every failure to read or write a backing document.
	ErrStorage = errors.New("store: storage failure")
	// ErrCorrupt matches documents that exist but cannot be decoded.
	ErrCorrupt = errors.New("store: corrupt document")
	// ErrNotFound is returned by Update when no record has the given id.
	ErrNotFound = errors.New("store: record not found")
)

// StorageError reports an I/O failure on a collection.
type StorageError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// CorruptionError reports a backing document that could not be decoded.
// It matches both ErrCorrupt and ErrStorage.
type CorruptionError struct {
	Kind Kind
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("store: corrupt %s document: %v", e.Kind, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

func (e *CorruptionError) Is(target error) bool {
	return target == ErrCorrupt || target == ErrStorage
}

// decodeArray splits a JSON array document into its elements.
func decodeArray(kind Kind, data []byte) ([]Document, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &CorruptionError{Kind: kind, Err: err}
	}
	docs := make([]Document, len(raws))
	for i, raw := range raws {
		docs[i] = Document{Body: raw}
	}
	return docs, nil
}

// encodeArray joins documents into one indented JSON array.
func encodeArray(docs []Document) ([]byte, error) {
	raws := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		raws[i] = d.Body
	}
	return json.MarshalIndent(raws, "", "  ")
}
