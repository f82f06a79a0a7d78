package cache

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      []byte
	expiresAt time.Time
}

// LRU is a bounded in-process cache; entries also expire after their TTL.
type LRU struct {
	entries *lru.Cache[string, item]
	now     func() time.Time
}

func NewLRU(size int) (*LRU, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &LRU{entries: l, now: time.Now}, nil
}

func (c *LRU) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	val, ok := c.entries.Get(key)
	if !ok {
		return false, nil
	}
	if c.now().After(val.expiresAt) {
		c.entries.Remove(key)
		return false, nil
	}
	if err := json.Unmarshal(val.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *LRU) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries.Add(key, item{data: b, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *LRU) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}
