package models

import (
	"strings"
)

type Post struct {
	ID        string    `json:"id"`       // random UUID
	UserID    int       `json:"user_id"`  // author
	Username  string    `json:"username"` // author name at post time, never re-synced
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
	Likes     []int     `json:"likes"`
	Comments  []Comment `json:"comments"` // append-only, display order
	Reactions Reactions `json:"reactions"`
}

func NewPost(id string, author *User, content string) (*Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("Post content cannot be empty")
	}
	return &Post{
		ID:        id,
		UserID:    author.ID,
		Username:  author.Username,
		Content:   content,
		Timestamp: Now(),
		Likes:     []int{},
		Comments:  []Comment{},
		Reactions: NewReactions(),
	}, nil
}

func (p Post) RecordID() string {
	return p.ID
}

// Normalize replaces absent collections with empty ones after decoding.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []int{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if p.Reactions == nil {
		p.Reactions = NewReactions()
	}
	p.Reactions.normalize()
}

// ToggleLike flips userID's membership in the like set and reports the new state.
func (p *Post) ToggleLike(userID int) bool {
	if containsID(p.Likes, userID) {
		p.Likes = removeID(p.Likes, userID)
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

func (p *Post) LikedBy(userID int) bool {
	return containsID(p.Likes, userID)
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// React records kind for userID, replacing any earlier reaction by that user.
func (p *Post) React(kind string, userID int) error {
	k, err := ParseReactionKind(kind)
	if err != nil {
		return err
	}
	if p.Reactions == nil {
		p.Reactions = NewReactions()
	}
	p.Reactions.normalize()
	p.Reactions.Set(k, userID)
	return nil
}

func (p *Post) AddComment(c Comment) {
	p.Comments = append(p.Comments, c)
}
