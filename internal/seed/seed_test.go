package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialfeed/internal/models"
	"socialfeed/internal/services"
	"socialfeed/internal/store"
)

func TestFactory_Run(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryBackend(), zap.NewNop())
	auth := services.NewAuthService(st.Users, zap.NewNop())
	posts := services.NewPostService(st.Posts, zap.NewNop())

	res, err := NewFactory(auth, posts, 42, zap.NewNop()).Run(ctx, Options{Users: 4, Posts: 6})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Users)
	assert.Equal(t, 6, res.Posts)

	users, err := st.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	for i, u := range users {
		assert.Equal(t, i+1, u.ID)
		assert.NoError(t, models.ValidateUsername(u.Username))
	}

	_, err = auth.Authenticate(ctx, users[0].Username, DemoPassword)
	assert.NoError(t, err)

	stored, err := st.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 6)
	comments, likes := 0, 0
	for _, p := range stored {
		comments += len(p.Comments)
		likes += p.LikeCount()
		assert.NotContains(t, p.Likes, p.UserID)

		seen := map[int]bool{}
		for _, kind := range models.ReactionKinds {
			for _, id := range p.Reactions[kind] {
				assert.False(t, seen[id], "user %d holds two reactions", id)
				seen[id] = true
			}
		}
	}
	assert.Equal(t, res.Comments, comments)
	assert.Equal(t, res.Likes, likes)
}

func TestFactory_RequiresUsers(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), zap.NewNop())
	f := NewFactory(services.NewAuthService(st.Users, zap.NewNop()), services.NewPostService(st.Posts, zap.NewNop()), 1, zap.NewNop())
	_, err := f.Run(context.Background(), Options{Posts: 3})
	assert.Error(t, err)
}
