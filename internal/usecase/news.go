package usecase

import (
	"context"
	"log/slog"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/fedutinova/yanews/internal/repository"
	"github.com/fedutinova/yanews/internal/validation"
	"github.com/google/uuid"
)

// NewsDetail is a news item together with its comments, oldest first.
type NewsDetail struct {
	News     *models.News     `json:"news"`
	Comments []models.Comment `json:"comments"`
}

// NewsUseCase holds the news and comment rules shared by the HTML pages and
// the JSON API.
type NewsUseCase struct {
	store    repository.Store
	log      *slog.Logger
	pageSize int
}

func NewNewsUseCase(store repository.Store, log *slog.Logger, pageSize int) *NewsUseCase {
	return &NewsUseCase{
		store:    store,
		log:      log,
		pageSize: pageSize,
	}
}

// Home returns the latest news, newest date first, at most pageSize items.
func (u *NewsUseCase) Home(ctx context.Context) ([]models.News, error) {
	news, err := u.store.LatestNews(ctx, u.pageSize)
	if err != nil {
		u.log.Error("failed to get latest news", "error", err)
		return nil, err
	}
	return news, nil
}

func (u *NewsUseCase) Detail(ctx context.Context, newsID int64) (*NewsDetail, error) {
	news, err := u.store.GetNewsByID(ctx, newsID)
	if err != nil {
		if !common.IsNotFound(err) {
			u.log.Error("failed to get news", "error", err, "newsID", newsID)
		}
		return nil, err
	}

	comments, err := u.store.GetCommentsByNewsID(ctx, newsID)
	if err != nil {
		u.log.Error("failed to get comments", "error", err, "newsID", newsID)
		return nil, err
	}

	return &NewsDetail{News: news, Comments: comments}, nil
}

func (u *NewsUseCase) PublishNews(ctx context.Context, form validation.NewsForm) (*models.News, error) {
	if err := validation.Validate(&form); err != nil {
		return nil, err
	}

	news := &models.News{Title: form.Title, Text: form.Text}
	if err := u.store.CreateNews(ctx, news); err != nil {
		u.log.Error("failed to create news", "error", err)
		return nil, err
	}

	u.log.Info("news published", "newsID", news.ID)
	return news, nil
}

// AddComment moderates form and stores it as a comment by author. Rejected
// text returns common.ValidationErrors and stores nothing.
func (u *NewsUseCase) AddComment(ctx context.Context, newsID int64, author uuid.UUID, form validation.CommentForm) (*models.Comment, error) {
	if _, err := u.store.GetNewsByID(ctx, newsID); err != nil {
		return nil, err
	}
	if err := validation.Validate(&form); err != nil {
		u.log.Info("comment rejected", "newsID", newsID, "author", author, "reason", err)
		return nil, err
	}

	comment := &models.Comment{
		NewsID:   newsID,
		AuthorID: author,
		Text:     form.Text,
	}
	if err := u.store.CreateComment(ctx, comment); err != nil {
		u.log.Error("failed to create comment", "error", err, "newsID", newsID)
		return nil, err
	}

	return comment, nil
}

// CommentForAuthor loads a comment only if author wrote it. Everybody else
// gets common.ErrCommentNotFound, as if the comment did not exist.
func (u *NewsUseCase) CommentForAuthor(ctx context.Context, commentID int64, author uuid.UUID) (*models.Comment, error) {
	comment, err := u.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != author {
		u.log.Warn("comment access by non-author", "commentID", commentID, "user", author)
		return nil, common.ErrCommentNotFound
	}
	return comment, nil
}

// EditComment replaces the text of the author's own comment. On a validation
// failure the stored comment is returned alongside the error.
func (u *NewsUseCase) EditComment(ctx context.Context, commentID int64, author uuid.UUID, form validation.CommentForm) (*models.Comment, error) {
	comment, err := u.CommentForAuthor(ctx, commentID, author)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(&form); err != nil {
		return comment, err
	}

	if err := u.store.UpdateCommentText(ctx, commentID, author, form.Text); err != nil {
		if !common.IsNotFound(err) {
			u.log.Error("failed to update comment", "error", err, "commentID", commentID)
		}
		return nil, err
	}

	comment.Text = form.Text
	return comment, nil
}

// DeleteComment removes the author's own comment and returns what was removed.
func (u *NewsUseCase) DeleteComment(ctx context.Context, commentID int64, author uuid.UUID) (*models.Comment, error) {
	comment, err := u.CommentForAuthor(ctx, commentID, author)
	if err != nil {
		return nil, err
	}

	if err := u.store.DeleteComment(ctx, commentID, author); err != nil {
		if !common.IsNotFound(err) {
			u.log.Error("failed to delete comment", "error", err, "commentID", commentID)
		}
		return nil, err
	}

	u.log.Info("comment deleted", "commentID", commentID, "newsID", comment.NewsID)
	return comment, nil
}
