package repository

import (
	"context"

	"github.com/fedutinova/yanews/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store is the content store behind the site. Lookups of missing rows return
// the matching common.Err*NotFound error.
//
// UpdateCommentText and DeleteComment only touch a comment written by
// authorID; for anyone else they report common.ErrCommentNotFound.
type Store interface {
	Ping(ctx context.Context) error

	CreateNews(ctx context.Context, news *models.News) error
	LatestNews(ctx context.Context, limit int) ([]models.News, error)
	GetNewsByID(ctx context.Context, id int64) (*models.News, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id int64) (*models.Comment, error)
	GetCommentsByNewsID(ctx context.Context, newsID int64) ([]models.Comment, error)
	UpdateCommentText(ctx context.Context, id int64, authorID uuid.UUID, text string) error
	DeleteComment(ctx context.Context, id int64, authorID uuid.UUID) error

	CreateUser(ctx context.Context, user *models.User, roles ...string) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
