package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/database"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	commentsNewsFK   = "comments_news_id_fkey"
	commentsAuthorFK = "comments_author_id_fkey"
)

// Repository is the PostgreSQL Store.
type Repository struct {
	db *database.DB
}

var _ Store = (*Repository)(nil)

func New(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) CreateNews(ctx context.Context, news *models.News) error {
	if news.Date.IsZero() {
		news.Date = models.DateOf(time.Now())
	}

	query := `
		INSERT INTO news (title, text, date)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.Pool().QueryRow(ctx, query, news.Title, news.Text, news.Date).Scan(&news.ID)
	if err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

func (r *Repository) LatestNews(ctx context.Context, limit int) ([]models.News, error) {
	query := `
		SELECT n.id, n.title, n.text, n.date, COUNT(c.id)
		FROM news n
		LEFT JOIN comments c ON c.news_id = n.id
		GROUP BY n.id
		ORDER BY n.date DESC, n.id DESC
		LIMIT $1
	`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select latest news: %w", err)
	}
	defer rows.Close()

	news := make([]models.News, 0, limit)
	for rows.Next() {
		var n models.News
		if err := rows.Scan(&n.ID, &n.Title, &n.Text, &n.Date, &n.CommentCount); err != nil {
			return nil, err
		}
		news = append(news, n)
	}

	return news, rows.Err()
}

func (r *Repository) GetNewsByID(ctx context.Context, id int64) (*models.News, error) {
	query := `
		SELECT n.id, n.title, n.text, n.date,
			(SELECT COUNT(*) FROM comments c WHERE c.news_id = n.id)
		FROM news n
		WHERE n.id = $1
	`

	var n models.News
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(&n.ID, &n.Title, &n.Text, &n.Date, &n.CommentCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNewsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select news %d: %w", id, err)
	}

	return &n, nil
}

func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = time.Now()
	}

	query := `
		WITH inserted AS (
			INSERT INTO comments (news_id, author_id, text, created)
			VALUES ($1, $2, $3, $4)
			RETURNING id, author_id
		)
		SELECT i.id, u.username
		FROM inserted i
		JOIN users u ON u.id = i.author_id
	`

	err := r.db.Pool().QueryRow(ctx, query,
		comment.NewsID,
		comment.AuthorID,
		comment.Text,
		comment.Created,
	).Scan(&comment.ID, &comment.AuthorUsername)
	if isPgError(err, pgForeignKeyViolation) {
		switch pgConstraint(err) {
		case commentsNewsFK:
			return common.ErrNewsNotFound
		case commentsAuthorFK:
			return fmt.Errorf("insert comment: %w", common.ErrUserNotFound)
		}
	}
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *Repository) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT c.id, c.news_id, c.author_id, u.username, c.text, c.created
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`

	var c models.Comment
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.NewsID,
		&c.AuthorID,
		&c.AuthorUsername,
		&c.Text,
		&c.Created,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select comment %d: %w", id, err)
	}

	return &c, nil
}

func (r *Repository) GetCommentsByNewsID(ctx context.Context, newsID int64) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.news_id, c.author_id, u.username, c.text, c.created
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.news_id = $1
		ORDER BY c.created ASC, c.id ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, newsID)
	if err != nil {
		return nil, fmt.Errorf("select comments of news %d: %w", newsID, err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID,
			&c.NewsID,
			&c.AuthorID,
			&c.AuthorUsername,
			&c.Text,
			&c.Created,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (r *Repository) UpdateCommentText(ctx context.Context, id int64, authorID uuid.UUID, text string) error {
	query := `
		UPDATE comments
		SET text = $3
		WHERE id = $1 AND author_id = $2
	`

	tag, err := r.db.Pool().Exec(ctx, query, id, authorID, text)
	if err != nil {
		return fmt.Errorf("update comment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, id int64, authorID uuid.UUID) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM comments WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User, roles ...string) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (id, username, password_hash, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING created_at
		`
		err := tx.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash).Scan(&user.CreatedAt)
		if isPgError(err, pgUniqueViolation) {
			return common.ErrUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		for _, role := range roles {
			if err := assignRole(ctx, tx, user.ID, role); err != nil {
				return err
			}
		}

		user.Roles, err = userRoles(ctx, tx, user.ID)
		return err
	})
}

func assignRole(ctx context.Context, q database.Querier, userID uuid.UUID, roleName string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, userID, roleName)
	if err != nil {
		return fmt.Errorf("assign role %q: %w", roleName, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assign role %q: %w", roleName, common.ErrNotFound)
	}
	return nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`
	return r.getUser(ctx, query, username)
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return r.getUser(ctx, query, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.Pool().QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	user.Roles, err = userRoles(ctx, r.db.Pool(), user.ID)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func userRoles(ctx context.Context, q database.Querier, userID uuid.UUID) ([]models.Role, error) {
	query := `
		SELECT r.id, r.name, r.description, r.created_at
		FROM roles r
		INNER JOIN user_roles ur ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
