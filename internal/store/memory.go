package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps serialized collections in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[Kind][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[Kind][]byte)}
}

func (b *MemoryBackend) Read(ctx context.Context, kind Kind) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	raw, ok := b.data[kind]
	b.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeArray(kind, raw)
}

func (b *MemoryBackend) Write(ctx context.Context, kind Kind, docs []Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeArray(docs)
	if err != nil {
		return &StorageError{Kind: kind, Op: "encode", Err: err}
	}
	b.mu.Lock()
	b.data[kind] = raw
	b.mu.Unlock()
	return nil
}

// Raw returns the serialized form of kind as last written.
func (b *MemoryBackend) Raw(kind Kind) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), b.data[kind]...)
}

// Put replaces the serialized form of kind verbatim.
func (b *MemoryBackend) Put(kind Kind, raw []byte) {
	b.mu.Lock()
	b.data[kind] = append([]byte(nil), raw...)
	b.mu.Unlock()
}

func (b *MemoryBackend) Close() error { return nil }
