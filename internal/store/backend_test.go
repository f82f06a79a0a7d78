package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"socialfeed/internal/models"
)

func newSQLiteBackend(t *testing.T) (*SQLBackend, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	backend, err := NewSQLBackend(gdb)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend, gdb
}

func TestSQLBackend_RoundTripKeepsOrder(t *testing.T) {
	backend, _ := newSQLiteBackend(t)
	s := New(backend, nil)
	ctx := context.Background()

	posts, err := s.Posts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Posts.Upsert(ctx, newTestPost(t, id, 1)))
	}
	_, err = s.Posts.Update(ctx, "a", func(p *models.Post) error {
		return p.React("laugh", 9)
	})
	require.NoError(t, err)

	posts, err = s.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "c", posts[0].ID)
	assert.Equal(t, "a", posts[1].ID)
	assert.Equal(t, "b", posts[2].ID)
	assert.Equal(t, []int{9}, posts[1].Reactions[models.ReactionLaugh])

	// collections do not bleed into each other
	users, err := s.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSQLBackend_CorruptRow(t *testing.T) {
	backend, gdb := newSQLiteBackend(t)
	s := New(backend, nil)
	ctx := context.Background()

	require.NoError(t, gdb.Create(&document{Kind: string(KindPosts), Position: 0, RecordID: "p1", Body: "{broken"}).Error)

	_, err := s.Posts.List(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMemoryBackend_CorruptAndRaw(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend, nil)
	ctx := context.Background()

	require.NoError(t, s.Users.Upsert(ctx, models.User{ID: 1, Username: "alice1!", CreatedAt: models.Now()}))
	assert.Contains(t, string(backend.Raw(KindUsers)), `"username": "alice1!"`)

	backend.Put(KindUsers, []byte("not json"))
	_, err := s.Users.List(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestStore_CopyToAndCheck(t *testing.T) {
	ctx := context.Background()
	src := New(NewMemoryBackend(), nil)
	require.NoError(t, src.Users.Upsert(ctx, models.User{ID: 1, Username: "alice1!", CreatedAt: models.Now()}))
	require.NoError(t, src.Posts.Upsert(ctx, newTestPost(t, "p1", 1)))

	sqlBackend, _ := newSQLiteBackend(t)
	dst := New(sqlBackend, nil)
	require.NoError(t, src.CopyTo(ctx, dst))

	counts, err := dst.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[KindUsers])
	assert.Equal(t, 1, counts[KindPosts])
}

func TestOpenBackend_UnknownName(t *testing.T) {
	_, err := OpenBackend(Options{Backend: "mongo"}, nil)
	assert.Error(t, err)
}
