package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/pkg/cleanup"
	"github.com/verdant/sprout/pkg/entity"
)

type SessionsRepository struct {
	conn PgConnection
}

func NewSessionsRepo(cfg DBConfig) *SessionsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for sessionsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for sessionsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &SessionsRepository{
		conn: pool,
	}
}

func NewSessionsRepoWithConn(conn PgConnection) *SessionsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for sessionsRepo: " + err.Error())
	}
	return &SessionsRepository{
		conn: conn,
	}
}

func (sr *SessionsRepository) Create(ctx context.Context, session *entity.Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	_, err := sr.conn.Exec(ctx,
		`INSERT INTO sessions (token_hash, user_id, csrf_token, expires_at) VALUES ($1, $2, $3, $4);`,
		session.TokenHash,
		session.UserID,
		session.CSRFToken,
		session.ExpiresAt,
	)
	if err != nil {
		return errors.New("creating session db error: " + err.Error())
	}
	return nil
}

func (sr *SessionsRepository) Get(ctx context.Context, tokenHash []byte) (*entity.Session, error) {
	var session entity.Session
	session.TokenHash = tokenHash
	row := sr.conn.QueryRow(ctx,
		`SELECT user_id, csrf_token, expires_at, created_at FROM sessions WHERE token_hash = $1;`,
		tokenHash,
	)
	if err := row.Scan(&session.UserID, &session.CSRFToken, &session.ExpiresAt, &session.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrSessionNotFound
		}
		return nil, errors.New("searching session error: " + err.Error())
	}
	return &session, nil
}

func (sr *SessionsRepository) Delete(ctx context.Context, tokenHash []byte) error {
	ct, err := sr.conn.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1;`, tokenHash)
	if err != nil {
		return errors.New("deleting session error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrSessionNotFound
	}
	return nil
}

func (sr *SessionsRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := sr.conn.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, errors.New("deleting expired sessions error: " + err.Error())
	}
	return ct.RowsAffected(), nil
}
