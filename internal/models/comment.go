package models

import (
	"strings"
)

// Comment is embedded in its Post and has no lifecycle of its own.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"` // author name at comment time
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

func NewComment(id, postID string, author *User, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("Comment content cannot be empty")
	}
	return &Comment{
		ID:        id,
		PostID:    postID,
		UserID:    author.ID,
		Username:  author.Username,
		Content:   content,
		Timestamp: Now(),
	}, nil
}
