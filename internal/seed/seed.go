// Package seed creates demo users and posts for local development. It goes
// through the services so seeded data obeys the same rules as real traffic.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"socialfeed/internal/models"
	"socialfeed/internal/services"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password1!"

type Options struct {
	Users int
	Posts int
	Seed  int64 // 0 picks a random seed
}

type Result struct {
	Users    int `json:"users" yaml:"users"`
	Posts    int `json:"posts" yaml:"posts"`
	Comments int `json:"comments" yaml:"comments"`
	Likes    int `json:"likes" yaml:"likes"`
}

// Factory builds demo records and persists them through the services.
type Factory struct {
	auth   *services.AuthService
	posts  *services.PostService
	faker  *gofakeit.Faker
	rnd    *rand.Rand
	logger *zap.Logger
}

func NewFactory(auth *services.AuthService, posts *services.PostService, seed int64, logger *zap.Logger) *Factory {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Factory{
		auth:   auth,
		posts:  posts,
		faker:  gofakeit.New(seed),
		rnd:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Run registers opts.Users accounts and spreads opts.Posts posts across
// them, each with a few likes, reactions and comments from other accounts.
func (f *Factory) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	if opts.Users <= 0 {
		return res, fmt.Errorf("seed needs at least one user")
	}

	users := make([]*models.User, 0, opts.Users)
	for len(users) < opts.Users {
		u, err := f.auth.Register(ctx, services.RegisterInput{
			Username:        f.username(),
			Password:        DemoPassword,
			ConfirmPassword: DemoPassword,
		})
		if models.ErrorCode(err) == models.CodeConflict {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("register demo user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	for i := 0; i < opts.Posts; i++ {
		author := users[f.rnd.Intn(len(users))]
		post, err := f.posts.Create(ctx, author, f.faker.Paragraph(1, f.rnd.Intn(3)+1, 12, "\n"))
		if err != nil {
			return res, fmt.Errorf("create demo post: %w", err)
		}
		res.Posts++

		for _, u := range users {
			if u.ID == author.ID {
				continue
			}
			switch f.rnd.Intn(4) {
			case 0:
				if _, _, err := f.posts.ToggleLike(ctx, post.ID, u.ID); err != nil {
					return res, err
				}
				res.Likes++
			case 1:
				kind := models.ReactionKinds[f.rnd.Intn(len(models.ReactionKinds))]
				if _, err := f.posts.React(ctx, post.ID, u.ID, string(kind)); err != nil {
					return res, err
				}
			case 2:
				if _, err := f.posts.AddComment(ctx, post.ID, u, f.faker.Sentence(8)); err != nil {
					return res, err
				}
				res.Comments++
			}
		}
	}

	f.logger.Info("Seeded demo data",
		zap.Int("users", res.Users),
		zap.Int("posts", res.Posts),
		zap.Int("comments", res.Comments),
		zap.Int("likes", res.Likes))
	return res, nil
}

// username satisfies the registration rules: a digit and a '!'.
func (f *Factory) username() string {
	return fmt.Sprintf("%s%d!", f.faker.Username(), f.faker.Number(10, 99))
}
