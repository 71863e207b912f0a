package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/limiter"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/pkg/entity"
	"github.com/verdant/sprout/pkg/passhash"
)

type UserService struct {
	repo repository.UsersRepositoryI
	lim  limiter.Limiter
}

func NewUserService(usersRepo repository.UsersRepositoryI, lim limiter.Limiter) *UserService {
	return &UserService{
		repo: usersRepo,
		lim:  lim,
	}
}

func (us *UserService) Register(ctx context.Context, req *RegisterRequest, ip string) (*entity.User, error) {
	allowed, retryAfter, err := us.lim.Attempt(ctx, limiter.ScopeRegister, ip)
	if err != nil {
		return nil, errors.New("limiter error: " + err.Error())
	}
	if !allowed {
		return nil, fmt.Errorf("%w: retry after %d seconds", errorvalues.ErrRateLimited, int(retryAfter.Seconds())+1)
	}
	if err = validateStruct(req); err != nil {
		return nil, err
	}
	passwordHash, err := passhash.Hash(req.Password)
	if err != nil {
		return nil, errors.New("hashing password error: " + err.Error())
	}
	user := entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
	}
	err = us.repo.Create(ctx, &user)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserExists) {
			return nil, errorvalues.ErrUserExists
		}
		return nil, errors.New("repository creating error: " + err.Error())
	}
	return &user, nil
}

// Login deliberately collapses "no such user" and "wrong password" into the
// same sentinel so callers cannot enumerate accounts.
func (us *UserService) Login(ctx context.Context, username, password, ip string) (*entity.User, error) {
	allowed, retryAfter, err := us.lim.Attempt(ctx, limiter.ScopeLogin, ip)
	if err != nil {
		return nil, errors.New("limiter error: " + err.Error())
	}
	if !allowed {
		return nil, fmt.Errorf("%w: retry after %d seconds", errorvalues.ErrRateLimited, int(retryAfter.Seconds())+1)
	}
	user, err := us.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrWrongCredentials
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if !passhash.Verify(password, user.PasswordHash) {
		return nil, errorvalues.ErrWrongCredentials
	}
	if passhash.IsLegacy(user.PasswordHash) {
		us.upgradeLegacyHash(ctx, user, password)
	}
	now := time.Now()
	if err = us.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("stamping last login failed", slog.String("error", err.Error()))
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

// upgradeLegacyHash transparently re-hashes a bcrypt credential under the
// primary scheme. Login proceeds even if the upgrade write fails.
func (us *UserService) upgradeLegacyHash(ctx context.Context, user *entity.User, password string) {
	upgraded, err := passhash.Hash(password)
	if err != nil {
		slog.Warn("re-hashing legacy password failed", slog.String("error", err.Error()))
		return
	}
	if err = us.repo.UpdatePasswordHash(ctx, user.ID, upgraded); err != nil {
		slog.Warn("persisting upgraded password hash failed", slog.String("error", err.Error()))
		return
	}
	user.PasswordHash = upgraded
}

func (us *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}
