package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/verdant/sprout/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by username. Can be used for login
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Replaces stored password hash (legacy scheme upgrade)
	UpdatePasswordHash(ctx context.Context, uid uuid.UUID, hash string) error
	// Stamps last successful login time
	UpdateLastLogin(ctx context.Context, uid uuid.UUID, at time.Time) error
}

type PlantsRepositoryI interface {
	// Creates new plant. Only UserID, Name, Species and frequencies are necessary
	Create(ctx context.Context, plant *entity.Plant) (uuid.UUID, error)
	// Searches plant with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Plant, error)
	// Lists plants owned by user with uid. Requires pagination params provided
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Plant, error)
	// Updates name, species and care frequencies by ID
	Update(ctx context.Context, plant *entity.Plant) error
	// Stamps last_watered or last_fertilized depending on care type
	SetLastCared(ctx context.Context, id uuid.UUID, careType entity.CareType, at time.Time) error
	// Deletes plant with id (reminders and care logs cascade)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RemindersRepositoryI interface {
	// Creates or refreshes the single reminder row for (plant, care type)
	Upsert(ctx context.Context, reminder *entity.Reminder) error
	// Searches reminder with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Reminder, error)
	// Lists reminders owned by user with uid
	GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error)
	// Moves reminder to a new status
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReminderStatus) error
	// Removes the reminder of one care type for a plant (frequency set to 0)
	DeleteByPlantAndType(ctx context.Context, plantID uuid.UUID, careType entity.CareType) error
}

type CareLogsRepositoryI interface {
	// Creates new care log. Logs are immutable after insert
	Create(ctx context.Context, log *entity.CareLog) (uuid.UUID, error)
	// Provides logs of plantID, newest first. Requires pagination params provided
	GetByPlantID(ctx context.Context, plantID uuid.UUID, limit, offset int) ([]*entity.CareLog, error)
}

type SessionsRepositoryI interface {
	// Persists a new session keyed by token hash
	Create(ctx context.Context, session *entity.Session) error
	// Looks up session by token hash
	Get(ctx context.Context, tokenHash []byte) (*entity.Session, error)
	// Removes session (logout)
	Delete(ctx context.Context, tokenHash []byte) error
	// Removes all expired sessions, returns how many were dropped
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
