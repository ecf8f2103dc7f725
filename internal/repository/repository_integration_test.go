package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/database"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgres(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewDB(ctx, dsn)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool().Exec(ctx, `TRUNCATE comments, news, user_roles, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return New(db)
}

func TestRepository_NewsAndComments(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	today := models.DateOf(time.Now())
	for i := 0; i < 11; i++ {
		n := &models.News{Title: fmt.Sprintf("Новость %d", i), Text: "Просто текст.", Date: today.AddDate(0, 0, -i)}
		require.NoError(t, repo.CreateNews(ctx, n))
	}

	news, err := repo.LatestNews(ctx, 10)
	require.NoError(t, err)
	require.Len(t, news, 10)
	for i := 1; i < len(news); i++ {
		assert.False(t, news[i].Date.After(news[i-1].Date))
	}

	author := &models.User{Username: "author", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, author, models.RoleUser))
	assert.Equal(t, []string{"user"}, author.RoleNames())

	other := &models.User{Username: "reader", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, other, models.RoleUser))

	err = repo.CreateUser(ctx, &models.User{Username: "author", PasswordHash: "hash"}, models.RoleUser)
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	target := news[0]
	now := time.Now()
	var last *models.Comment
	for i := 0; i < 3; i++ {
		c := &models.Comment{NewsID: target.ID, AuthorID: author.ID, Text: fmt.Sprintf("Текст %d", i), Created: now.Add(time.Duration(3-i) * time.Minute)}
		require.NoError(t, repo.CreateComment(ctx, c))
		assert.Equal(t, "author", c.AuthorUsername)
		last = c
	}

	comments, err := repo.GetCommentsByNewsID(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i := 1; i < len(comments); i++ {
		assert.False(t, comments[i].Created.Before(comments[i-1].Created))
	}
	assert.Equal(t, "author", comments[0].AuthorUsername)

	assert.ErrorIs(t, repo.UpdateCommentText(ctx, last.ID, other.ID, "чужой"), common.ErrCommentNotFound)
	assert.ErrorIs(t, repo.DeleteComment(ctx, last.ID, other.ID), common.ErrCommentNotFound)

	require.NoError(t, repo.UpdateCommentText(ctx, last.ID, author.ID, "Текст изменённого комментария"))
	got, err := repo.GetCommentByID(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, "Текст изменённого комментария", got.Text)

	require.NoError(t, repo.DeleteComment(ctx, last.ID, author.ID))
	_, err = repo.GetCommentByID(ctx, last.ID)
	assert.ErrorIs(t, err, common.ErrCommentNotFound)

	err = repo.CreateComment(ctx, &models.Comment{NewsID: 999999, AuthorID: author.ID, Text: "x"})
	assert.ErrorIs(t, err, common.ErrNewsNotFound)

	err = repo.CreateComment(ctx, &models.Comment{NewsID: target.ID, AuthorID: uuid.New(), Text: "x"})
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.NotErrorIs(t, err, common.ErrNewsNotFound)

	byID, err := repo.GetUserByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", byID.Username)

	_, err = repo.GetNewsByID(ctx, 999999)
	assert.ErrorIs(t, err, common.ErrNewsNotFound)
}
