package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process Store for local runs and tests.
type Memory struct {
	mu sync.RWMutex

	news     map[int64]models.News
	comments map[int64]models.Comment
	users    map[uuid.UUID]models.User
	roles    map[string]models.Role

	lastNewsID    int64
	lastCommentID int64
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	now := time.Now()
	return &Memory{
		news:     make(map[int64]models.News),
		comments: make(map[int64]models.Comment),
		users:    make(map[uuid.UUID]models.User),
		roles: map[string]models.Role{
			models.RoleUser:  {ID: 1, Name: models.RoleUser, Description: "may read news and comment", CreatedAt: now},
			models.RoleAdmin: {ID: 2, Name: models.RoleAdmin, Description: "may publish news", CreatedAt: now},
		},
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) CreateNews(ctx context.Context, news *models.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if news.Date.IsZero() {
		news.Date = models.DateOf(time.Now())
	}
	m.lastNewsID++
	news.ID = m.lastNewsID
	news.CommentCount = 0
	m.news[news.ID] = *news
	return nil
}

func (m *Memory) LatestNews(ctx context.Context, limit int) ([]models.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	news := make([]models.News, 0, len(m.news))
	for _, n := range m.news {
		n.CommentCount = m.countComments(n.ID)
		news = append(news, n)
	}
	sort.Slice(news, func(i, j int) bool {
		if !news[i].Date.Equal(news[j].Date) {
			return news[i].Date.After(news[j].Date)
		}
		return news[i].ID > news[j].ID
	})

	if len(news) > limit {
		news = news[:limit]
	}
	return news, nil
}

func (m *Memory) GetNewsByID(ctx context.Context, id int64) (*models.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.news[id]
	if !ok {
		return nil, common.ErrNewsNotFound
	}
	n.CommentCount = m.countComments(id)
	return &n, nil
}

func (m *Memory) countComments(newsID int64) int {
	count := 0
	for _, c := range m.comments {
		if c.NewsID == newsID {
			count++
		}
	}
	return count
}

func (m *Memory) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.news[comment.NewsID]; !ok {
		return common.ErrNewsNotFound
	}
	author, ok := m.users[comment.AuthorID]
	if !ok {
		return fmt.Errorf("insert comment: %w", common.ErrUserNotFound)
	}

	if comment.Created.IsZero() {
		comment.Created = time.Now()
	}
	m.lastCommentID++
	comment.ID = m.lastCommentID
	comment.AuthorUsername = author.Username
	m.comments[comment.ID] = *comment
	return nil
}

func (m *Memory) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, common.ErrCommentNotFound
	}
	return &c, nil
}

func (m *Memory) GetCommentsByNewsID(ctx context.Context, newsID int64) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var comments []models.Comment
	for _, c := range m.comments {
		if c.NewsID == newsID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.Before(comments[j].Created)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (m *Memory) UpdateCommentText(ctx context.Context, id int64, authorID uuid.UUID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok || c.AuthorID != authorID {
		return common.ErrCommentNotFound
	}
	c.Text = text
	m.comments[id] = c
	return nil
}

func (m *Memory) DeleteComment(ctx context.Context, id int64, authorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok || c.AuthorID != authorID {
		return common.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User, roles ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return common.ErrUsernameTaken
		}
	}

	assigned := make([]models.Role, 0, len(roles))
	for _, name := range roles {
		role, ok := m.roles[name]
		if !ok {
			return fmt.Errorf("assign role %q: %w", name, common.ErrNotFound)
		}
		assigned = append(assigned, role)
	}
	sort.Slice(assigned, func(i, j int) bool { return assigned[i].Name < assigned[j].Name })

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.Roles = assigned
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (m *Memory) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return &u, nil
}
