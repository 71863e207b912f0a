package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/pkg/cleanup"
	"github.com/verdant/sprout/pkg/entity"
)

type RemindersRepository struct {
	conn PgConnection
}

func NewRemindersRepo(cfg DBConfig) *RemindersRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for remindersRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for remindersRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &RemindersRepository{
		conn: pool,
	}
}

func NewRemindersRepoWithConn(conn PgConnection) *RemindersRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for remindersRepo: " + err.Error())
	}
	return &RemindersRepository{
		conn: conn,
	}
}

// Upsert relies on the UNIQUE (plant_id, care_type) constraint, so two
// concurrent syncs for the same plant cannot produce duplicate reminders.
func (rr *RemindersRepository) Upsert(ctx context.Context, reminder *entity.Reminder) error {
	row := rr.conn.QueryRow(ctx,
		`INSERT INTO reminders (plant_id, user_id, care_type, due_date, status, recurring, interval_days, notified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		ON CONFLICT (plant_id, care_type) DO UPDATE
		SET due_date = EXCLUDED.due_date,
			status = EXCLUDED.status,
			recurring = EXCLUDED.recurring,
			interval_days = EXCLUDED.interval_days,
			notified = false,
			updated_at = now()
		RETURNING id;`,
		reminder.PlantID,
		reminder.UserID,
		reminder.CareType,
		reminder.DueDate,
		reminder.Status,
		reminder.Recurring,
		reminder.IntervalDays,
	)
	if err := row.Scan(&reminder.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return errorvalues.ErrPlantNotFound
			}
		}
		return errors.New("upserting reminder error: " + err.Error())
	}
	return nil
}

func (rr *RemindersRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Reminder, error) {
	var rem entity.Reminder
	rem.ID = id
	row := rr.conn.QueryRow(ctx,
		`SELECT plant_id, user_id, care_type, due_date, status, recurring, interval_days, notified, created_at, updated_at
		FROM reminders WHERE id = $1;`, id)
	if err := row.Scan(
		&rem.PlantID,
		&rem.UserID,
		&rem.CareType,
		&rem.DueDate,
		&rem.Status,
		&rem.Recurring,
		&rem.IntervalDays,
		&rem.Notified,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrReminderNotFound
		}
		return nil, errors.New("getting reminder by id error: " + err.Error())
	}
	return &rem, nil
}

func (rr *RemindersRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error) {
	reminders := make([]*entity.Reminder, 0)
	rows, err := rr.conn.Query(ctx,
		`SELECT id, plant_id, user_id, care_type, due_date, status, recurring, interval_days, notified, created_at, updated_at
		FROM reminders WHERE user_id = $1 ORDER BY due_date;`, uid)
	if err != nil {
		return nil, errors.New("getting reminders by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		rem := entity.Reminder{}
		err = rows.Scan(
			&rem.ID,
			&rem.PlantID,
			&rem.UserID,
			&rem.CareType,
			&rem.DueDate,
			&rem.Status,
			&rem.Recurring,
			&rem.IntervalDays,
			&rem.Notified,
			&rem.CreatedAt,
			&rem.UpdatedAt,
		)
		if err != nil {
			return nil, errors.New("unmarhalling reminder error: " + err.Error())
		}
		reminders = append(reminders, &rem)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return reminders, nil
}

func (rr *RemindersRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReminderStatus) error {
	ct, err := rr.conn.Exec(ctx,
		`UPDATE reminders SET status = $1, updated_at = now() WHERE id = $2;`, status, id)
	if err != nil {
		return errors.New("error updating reminder status: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	return nil
}

func (rr *RemindersRepository) DeleteByPlantAndType(ctx context.Context, plantID uuid.UUID, careType entity.CareType) error {
	ct, err := rr.conn.Exec(ctx,
		`DELETE FROM reminders WHERE plant_id = $1 AND care_type = $2;`, plantID, careType)
	if err != nil {
		return errors.New("error deleting reminder: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	return nil
}
