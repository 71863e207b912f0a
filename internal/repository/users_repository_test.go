package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/pkg/entity"
)

func TestCreateUser(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	user := entity.User{
		Username:     "test_user",
		Email:        "test@example.com",
		PasswordHash: "test_password_hash",
		DisplayName:  "Test User",
	}
	query := regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash, display_name) VALUES ($1, $2, $3, $4) RETURNING id, created_at;`)
	ctx := context.Background()
	repo := repository.NewUsersRepoWithConn(conn)
	t.Run("successfully created", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))
		err := repo.Create(ctx, &user)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.UUID{}, user.ID)
	})
	t.Run("unique violation error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnError(&pgconn.PgError{
				Code: "23505",
			})
		err := repo.Create(ctx, &user)
		assert.ErrorIs(t, err, errorvalues.ErrUserExists)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnError(errors.New("db error"))
		err := repo.Create(ctx, &user)
		assert.Error(t, err)
	})
}

func TestFindByUsername(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewUsersRepoWithConn(conn)
	user := entity.User{
		ID:           uuid.New(),
		Username:     "test_user",
		Email:        "test@example.com",
		PasswordHash: "test_password_hash",
		DisplayName:  "Test User",
		CreatedAt:    time.Now(),
	}
	query := regexp.QuoteMeta(`SELECT id, username, email, password_hash, display_name, last_login, created_at FROM users WHERE username = $1;`)
	t.Run("found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.Username).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "display_name", "last_login", "created_at"}).
				AddRow(user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName, user.LastLogin, user.CreatedAt))
		result, err := repo.FindByUsername(ctx, user.Username)
		assert.NoError(t, err)
		assert.Equal(t, user, *result)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.Username).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.FindByUsername(ctx, user.Username)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.Username).
			WillReturnError(errors.New("db error"))
		_, err := repo.FindByUsername(ctx, user.Username)
		assert.Error(t, err)
	})
}

func TestFindByID(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewUsersRepoWithConn(conn)
	user := entity.User{
		ID:           uuid.New(),
		Username:     "test_user",
		Email:        "test@example.com",
		PasswordHash: "test_password_hash",
		DisplayName:  "Test User",
		CreatedAt:    time.Now(),
	}
	query := regexp.QuoteMeta(`SELECT id, username, email, password_hash, display_name, last_login, created_at FROM users WHERE id = $1;`)
	t.Run("found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.ID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "display_name", "last_login", "created_at"}).
				AddRow(user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName, user.LastLogin, user.CreatedAt))
		result, err := repo.FindByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, user, *result)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.ID).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.FindByID(ctx, user.ID)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(user.ID).
			WillReturnError(errors.New("db error"))
		_, err := repo.FindByID(ctx, user.ID)
		assert.Error(t, err)
	})
}

func TestUpdatePasswordHash(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewUsersRepoWithConn(conn)
	uid := uuid.New()
	hash := "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"
	query := regexp.QuoteMeta(`UPDATE users SET password_hash = $1 WHERE id = $2;`)
	t.Run("updated", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(hash, uid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.UpdatePasswordHash(ctx, uid, hash)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(hash, uid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.UpdatePasswordHash(ctx, uid, hash)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(hash, uid).
			WillReturnError(errors.New("db error"))
		err := repo.UpdatePasswordHash(ctx, uid, hash)
		assert.Error(t, err)
	})
}

func TestUpdateLastLogin(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewUsersRepoWithConn(conn)
	uid := uuid.New()
	at := time.Now()
	query := regexp.QuoteMeta(`UPDATE users SET last_login = $1 WHERE id = $2;`)
	t.Run("updated", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(at, uid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.UpdateLastLogin(ctx, uid, at)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(at, uid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.UpdateLastLogin(ctx, uid, at)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(at, uid).
			WillReturnError(errors.New("db error"))
		err := repo.UpdateLastLogin(ctx, uid, at)
		assert.Error(t, err)
	})
}
