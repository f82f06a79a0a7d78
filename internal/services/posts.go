package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialfeed/internal/models"
	"socialfeed/internal/store"
)

// PostService applies feed operations to the posts collection. Every
// mutation is a locked read-modify-write of the stored post.
type PostService struct {
	posts  *store.Collection[models.Post]
	newID  func() string
	logger *zap.Logger
}

func NewPostService(posts *store.Collection[models.Post], logger *zap.Logger) *PostService {
	return &PostService{
		posts:  posts,
		newID:  func() string { return uuid.NewString() },
		logger: logger,
	}
}

func (s *PostService) Create(ctx context.Context, author *models.User, content string) (*models.Post, error) {
	post, err := models.NewPost(s.newID(), author, content)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Upsert(ctx, *post); err != nil {
		return nil, err
	}
	s.logger.Debug("Created post", zap.String("post_id", post.ID), zap.Int("user_id", author.ID))
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, found, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &post, nil
}

// ToggleLike flips userID's like and returns the new state and like count.
func (s *PostService) ToggleLike(ctx context.Context, postID string, userID int) (liked bool, count int, err error) {
	post, err := s.update(ctx, postID, func(p *models.Post) error {
		liked = p.ToggleLike(userID)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, post.LikeCount(), nil
}

// React sets userID's reaction and returns the per-kind counts.
func (s *PostService) React(ctx context.Context, postID string, userID int, kind string) (map[models.ReactionKind]int, error) {
	post, err := s.update(ctx, postID, func(p *models.Post) error {
		return p.React(kind, userID)
	})
	if err != nil {
		return nil, err
	}
	return post.Reactions.Counts(), nil
}

func (s *PostService) AddComment(ctx context.Context, postID string, author *models.User, content string) (*models.Comment, error) {
	var comment *models.Comment
	_, err := s.update(ctx, postID, func(p *models.Post) error {
		c, err := models.NewComment(s.newID(), p.ID, author, content)
		if err != nil {
			return err
		}
		p.AddComment(*c)
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Feed returns every post, newest first.
func (s *PostService) Feed(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(posts)
	return posts, nil
}

// ByUser returns the posts written by userID, newest first.
func (s *PostService) ByUser(ctx context.Context, userID int) ([]models.Post, error) {
	all, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	for _, p := range all {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *PostService) update(ctx context.Context, postID string, fn func(*models.Post) error) (models.Post, error) {
	post, err := s.posts.Update(ctx, postID, fn)
	if errors.Is(err, store.ErrNotFound) {
		return post, models.NewNotFoundError("Post", postID)
	}
	return post, err
}

func sortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp.Time)
	})
}
