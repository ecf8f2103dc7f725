package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	Roles        []Role    `json:"roles,omitempty"`
}

// RoleNames flattens the user's roles for token claims.
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		names[i] = role.Name
	}
	return names
}

type Role struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// News is a published article. Date is a calendar date (midnight UTC).
type News struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Text         string    `json:"text" db:"text"`
	Date         time.Time `json:"date" db:"date"`
	CommentCount int       `json:"comment_count" db:"comment_count"`
}

type Comment struct {
	ID             int64     `json:"id" db:"id"`
	NewsID         int64     `json:"news_id" db:"news_id"`
	AuthorID       uuid.UUID `json:"author_id" db:"author_id"`
	AuthorUsername string    `json:"author" db:"username"`
	Text           string    `json:"text" db:"text"`
	Created        time.Time `json:"created" db:"created"`
}

// DateOf truncates a timestamp to the calendar date a news item is filed under.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
