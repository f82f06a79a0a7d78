package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLRU_ExpiresEntries(t *testing.T) {
	c, err := NewLRU(8)
	require.NoError(t, err)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "a", Count: 1}, time.Minute))

	var got payload
	found, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 1}, got)

	now = now.Add(2 * time.Minute)
	found, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	ctx := context.Background()

	c, err := NewRedis(ctx, mr.Addr())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "b", Count: 2}, time.Minute))
	assert.True(t, mr.Exists("socialfeed:k"))

	var got payload
	found, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, got.Count)

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "gone", payload{}, time.Minute))
	require.NoError(t, c.Delete(ctx, "gone"))
	assert.False(t, mr.Exists("socialfeed:gone"))
}

func TestAside_FetchesOnceThenServesCache(t *testing.T) {
	c, err := NewLRU(8)
	require.NoError(t, err)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "fresh", Count: calls}
			return nil
		}
	}

	var first, second payload
	require.NoError(t, Aside(ctx, c, "k", &first, time.Minute, fetch(&first)))
	require.NoError(t, Aside(ctx, c, "k", &second, time.Minute, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestAside_PropagatesFetchError(t *testing.T) {
	boom := errors.New("boom")
	var dest payload
	err := Aside(context.Background(), nil, "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestAside_DropsUndecodableEntry(t *testing.T) {
	c, err := NewLRU(8)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, "k", "not a payload", time.Minute))

	boom := errors.New("boom")
	var dest payload
	err = Aside(ctx, c, "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	var raw string
	found, err := c.GetJSON(ctx, "k", &raw)
	require.NoError(t, err)
	assert.False(t, found)
}
