package models

import (
	"strconv"
	"strings"
	"unicode"
)

type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"password_hash"`             // bcrypt hash
	ProfilePicture *string   `json:"profile_picture"`           // optional avatar reference
	CreatedAt      Timestamp `json:"created_at"`                // set once at registration
}

func (u User) RecordID() string {
	return strconv.Itoa(u.ID)
}

const minUsernameLength = 6

// ValidateUsername enforces the registration rules: at least six characters,
// one digit and one exclamation mark.
func ValidateUsername(username string) error {
	if len([]rune(username)) < minUsernameLength {
		return NewValidationError("Username must be at least 6 characters long")
	}
	if strings.IndexFunc(username, unicode.IsDigit) < 0 {
		return NewValidationError("Username must contain at least one number")
	}
	if !strings.Contains(username, "!") {
		return NewValidationError("Username must contain at least one exclamation mark (!)")
	}
	return nil
}
