package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/fedutinova/yanews/internal/repository"
	"github.com/fedutinova/yanews/internal/validation"
)

type AuthUseCase struct {
	store     repository.Store
	blacklist auth.Blacklist
	log       *slog.Logger
	secret    string
	issuer    string
	ttl       time.Duration
}

func NewAuthUseCase(store repository.Store, blacklist auth.Blacklist, log *slog.Logger, secret, issuer string, ttl time.Duration) *AuthUseCase {
	return &AuthUseCase{
		store:     store,
		blacklist: blacklist,
		log:       log,
		secret:    secret,
		issuer:    issuer,
		ttl:       ttl,
	}
}

func (u *AuthUseCase) TTL() time.Duration {
	return u.ttl
}

// Signup registers a new user with the "user" role.
func (u *AuthUseCase) Signup(ctx context.Context, form validation.SignupForm) (*models.User, error) {
	if err := validation.Validate(&form); err != nil {
		return nil, err
	}
	return u.createUser(ctx, form.Username, form.Password1, models.RoleUser)
}

// EnsureAdmin creates an admin account unless the username is already taken.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := u.createUser(ctx, username, password, models.RoleUser, models.RoleAdmin)
	if errors.Is(err, common.ErrUsernameTaken) {
		return nil
	}
	return err
}

func (u *AuthUseCase) createUser(ctx context.Context, username, password string, roles ...string) (*models.User, error) {
	hash, err := repository.HashPassword(password)
	if err != nil {
		return nil, common.WrapInternal("hash password", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := u.store.CreateUser(ctx, user, roles...); err != nil {
		if !common.IsConflict(err) {
			u.log.Error("failed to create user", "error", err)
		}
		return nil, err
	}

	u.log.Info("user registered", "userID", user.ID, "roles", roles)
	return user, nil
}

// Login checks credentials and issues a session token.
func (u *AuthUseCase) Login(ctx context.Context, form validation.LoginForm) (string, *models.User, error) {
	if err := validation.Validate(&form); err != nil {
		return "", nil, err
	}

	user, err := u.store.GetUserByUsername(ctx, form.Username)
	if err != nil {
		if common.IsNotFound(err) {
			u.log.Warn("login attempt with unknown username", "username", form.Username)
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !repository.CheckPassword(form.Password, user.PasswordHash) {
		u.log.Warn("login attempt with invalid password", "username", form.Username)
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := auth.NewToken(u.secret, u.issuer, user.ID.String(), user.Username, user.RoleNames(), u.ttl)
	if err != nil {
		return "", nil, common.WrapInternal("sign token", err)
	}
	return token, user, nil
}

// Logout revokes the token described by cl for the rest of its lifetime.
func (u *AuthUseCase) Logout(ctx context.Context, cl *auth.Claims) error {
	if err := u.blacklist.StoreBlacklistedToken(ctx, cl.ID, cl.TTL()); err != nil {
		u.log.Error("failed to revoke token", "error", err)
		return err
	}
	return nil
}
