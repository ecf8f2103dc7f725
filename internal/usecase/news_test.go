package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/fedutinova/yanews/internal/repository"
	"github.com/fedutinova/yanews/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noOpLogger creates a logger that discards all output for tests
func noOpLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

type fixture struct {
	store  *repository.Memory
	news   *NewsUseCase
	auth   *AuthUseCase
	author *models.User
	reader *models.User
	item   *models.News
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemory()

	f := &fixture{
		store: store,
		news:  NewNewsUseCase(store, noOpLogger(), 10),
		auth:  NewAuthUseCase(store, auth.NewMemoryBlacklist(), noOpLogger(), "secret", "yanews", time.Hour),
	}

	f.author = &models.User{Username: "Автор", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, f.author, models.RoleUser))
	f.reader = &models.User{Username: "НеАвтор", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, f.reader, models.RoleUser))

	f.item = &models.News{Title: "Заголовок", Text: "Текст новости"}
	require.NoError(t, store.CreateNews(ctx, f.item))
	return f
}

func TestNewsUseCase_Home_Limit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		n := &models.News{Title: fmt.Sprintf("Новость %d", i), Date: models.DateOf(time.Now()).AddDate(0, 0, -i-1)}
		require.NoError(t, f.store.CreateNews(ctx, n))
	}

	news, err := f.news.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, news, 10)
	assert.Equal(t, f.item.ID, news[0].ID)
}

func TestNewsUseCase_Detail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.news.AddComment(ctx, f.item.ID, f.author.ID, validation.CommentForm{Text: "Первый"})
	require.NoError(t, err)
	_, err = f.news.AddComment(ctx, f.item.ID, f.reader.ID, validation.CommentForm{Text: "Второй"})
	require.NoError(t, err)

	detail, err := f.news.Detail(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Заголовок", detail.News.Title)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "Первый", detail.Comments[0].Text)
	assert.Equal(t, "Второй", detail.Comments[1].Text)

	_, err = f.news.Detail(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNewsNotFound)
}

func TestNewsUseCase_AddComment_BadWords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, word := range validation.BadWords {
		_, err := f.news.AddComment(ctx, f.item.ID, f.author.ID, validation.CommentForm{Text: "Какой-то текст, " + word + ", еще текст"})
		var errs common.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, []string{validation.Warning}, errs.Field("text"))
	}

	comments, err := f.store.GetCommentsByNewsID(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestNewsUseCase_AddComment_UnknownNews(t *testing.T) {
	f := newFixture(t)
	_, err := f.news.AddComment(context.Background(), 404, f.author.ID, validation.CommentForm{Text: "Текст"})
	assert.ErrorIs(t, err, common.ErrNewsNotFound)
}

func TestNewsUseCase_EditAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.news.AddComment(ctx, f.item.ID, f.author.ID, validation.CommentForm{Text: "Текст комментария"})
	require.NoError(t, err)

	t.Run("non-author cannot edit", func(t *testing.T) {
		_, err := f.news.EditComment(ctx, comment.ID, f.reader.ID, validation.CommentForm{Text: "Чужой текст"})
		assert.ErrorIs(t, err, common.ErrCommentNotFound)
	})

	t.Run("non-author cannot delete", func(t *testing.T) {
		_, err := f.news.DeleteComment(ctx, comment.ID, f.reader.ID)
		assert.ErrorIs(t, err, common.ErrCommentNotFound)
	})

	t.Run("edit with bad word keeps text", func(t *testing.T) {
		stored, err := f.news.EditComment(ctx, comment.ID, f.author.ID, validation.CommentForm{Text: "негодяй"})
		assert.True(t, common.IsValidation(err))
		require.NotNil(t, stored)
		assert.Equal(t, "Текст комментария", stored.Text)
	})

	got, err := f.store.GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Текст комментария", got.Text)

	updated, err := f.news.EditComment(ctx, comment.ID, f.author.ID, validation.CommentForm{Text: "Текст изменённого комментария"})
	require.NoError(t, err)
	assert.Equal(t, "Текст изменённого комментария", updated.Text)

	deleted, err := f.news.DeleteComment(ctx, comment.ID, f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, f.item.ID, deleted.NewsID)

	_, err = f.store.GetCommentByID(ctx, comment.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestNewsUseCase_PublishNews(t *testing.T) {
	f := newFixture(t)

	news, err := f.news.PublishNews(context.Background(), validation.NewsForm{Title: "Новая", Text: "**Текст**"})
	require.NoError(t, err)
	assert.NotZero(t, news.ID)

	_, err = f.news.PublishNews(context.Background(), validation.NewsForm{Text: "Без заголовка"})
	assert.True(t, common.IsValidation(err))
}

func TestAuthUseCase_SignupLoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, validation.SignupForm{Username: "reader", Password1: "long-password", Password2: "long-password"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, user.RoleNames())

	_, err = f.auth.Signup(ctx, validation.SignupForm{Username: "reader", Password1: "long-password", Password2: "long-password"})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	_, _, err = f.auth.Login(ctx, validation.LoginForm{Username: "reader", Password: "wrong-password"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, validation.LoginForm{Username: "nobody", Password: "long-password"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	token, logged, err := f.auth.Login(ctx, validation.LoginForm{Username: "reader", Password: "long-password"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	authn := &auth.Authenticator{Secret: "secret", Issuer: "yanews", Blacklist: f.auth.blacklist}
	cl, err := authn.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "reader", cl.Username)

	require.NoError(t, f.auth.Logout(ctx, cl))
	_, err = authn.Resolve(ctx, token)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestAuthUseCase_EnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.auth.EnsureAdmin(ctx, "admin", "admin-password"))
	require.NoError(t, f.auth.EnsureAdmin(ctx, "admin", "admin-password"))

	admin, err := f.store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, admin.RoleNames())
}
