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

func TestUpsertReminder(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewRemindersRepoWithConn(conn)
	rem := entity.Reminder{
		PlantID:      uuid.New(),
		UserID:       uuid.New(),
		CareType:     entity.CareWater,
		DueDate:      time.Now().AddDate(0, 0, 7),
		Status:       entity.ReminderPending,
		Recurring:    true,
		IntervalDays: 7,
	}
	query := regexp.QuoteMeta(`INSERT INTO reminders (plant_id, user_id, care_type, due_date, status, recurring, interval_days, notified)`)
	t.Run("upserted", func(t *testing.T) {
		id := uuid.New()
		conn.ExpectQuery(query).
			WithArgs(rem.PlantID, rem.UserID, rem.CareType, rem.DueDate, rem.Status, rem.Recurring, rem.IntervalDays).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
		err := repo.Upsert(ctx, &rem)
		assert.NoError(t, err)
		assert.Equal(t, id, rem.ID)
	})
	t.Run("unexist plant", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.PlantID, rem.UserID, rem.CareType, rem.DueDate, rem.Status, rem.Recurring, rem.IntervalDays).
			WillReturnError(&pgconn.PgError{
				Code: "23503",
			})
		err := repo.Upsert(ctx, &rem)
		assert.ErrorIs(t, err, errorvalues.ErrPlantNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.PlantID, rem.UserID, rem.CareType, rem.DueDate, rem.Status, rem.Recurring, rem.IntervalDays).
			WillReturnError(errors.New("db error"))
		err := repo.Upsert(ctx, &rem)
		assert.Error(t, err)
	})
}

func TestGetReminderByID(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewRemindersRepoWithConn(conn)
	rem := entity.Reminder{
		ID:           uuid.New(),
		PlantID:      uuid.New(),
		UserID:       uuid.New(),
		CareType:     entity.CareFertilize,
		DueDate:      time.Now().AddDate(0, 0, 30),
		Status:       entity.ReminderPending,
		Recurring:    true,
		IntervalDays: 30,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	query := regexp.QuoteMeta(`SELECT plant_id, user_id, care_type, due_date, status, recurring, interval_days, notified, created_at, updated_at`)
	t.Run("found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.ID).
			WillReturnRows(pgxmock.NewRows([]string{"plant_id", "user_id", "care_type", "due_date", "status", "recurring", "interval_days", "notified", "created_at", "updated_at"}).
				AddRow(rem.PlantID, rem.UserID, rem.CareType, rem.DueDate, rem.Status, rem.Recurring, rem.IntervalDays, rem.Notified, rem.CreatedAt, rem.UpdatedAt))
		result, err := repo.GetByID(ctx, rem.ID)
		assert.NoError(t, err)
		assert.Equal(t, rem, *result)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.ID).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetByID(ctx, rem.ID)
		assert.ErrorIs(t, err, errorvalues.ErrReminderNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.ID).
			WillReturnError(errors.New("db error"))
		_, err := repo.GetByID(ctx, rem.ID)
		assert.Error(t, err)
	})
}

func TestGetRemindersByUserID(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewRemindersRepoWithConn(conn)
	rem := entity.Reminder{
		ID:           uuid.New(),
		PlantID:      uuid.New(),
		UserID:       uuid.New(),
		CareType:     entity.CareWater,
		DueDate:      time.Now().AddDate(0, 0, 7),
		Status:       entity.ReminderPending,
		Recurring:    true,
		IntervalDays: 7,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	query := regexp.QuoteMeta(`SELECT id, plant_id, user_id, care_type, due_date, status, recurring, interval_days, notified, created_at, updated_at`)
	t.Run("got list", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.UserID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "plant_id", "user_id", "care_type", "due_date", "status", "recurring", "interval_days", "notified", "created_at", "updated_at"}).
				AddRow(rem.ID, rem.PlantID, rem.UserID, rem.CareType, rem.DueDate, rem.Status, rem.Recurring, rem.IntervalDays, rem.Notified, rem.CreatedAt, rem.UpdatedAt))
		result, err := repo.GetByUserID(ctx, rem.UserID)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(result))
		assert.Equal(t, rem, *result[0])
	})
	t.Run("empty list", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.UserID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "plant_id", "user_id", "care_type", "due_date", "status", "recurring", "interval_days", "notified", "created_at", "updated_at"}))
		result, err := repo.GetByUserID(ctx, rem.UserID)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(result))
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(rem.UserID).
			WillReturnError(errors.New("db error"))
		_, err := repo.GetByUserID(ctx, rem.UserID)
		assert.Error(t, err)
	})
}

func TestUpdateReminderStatus(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewRemindersRepoWithConn(conn)
	id := uuid.New()
	query := regexp.QuoteMeta(`UPDATE reminders SET status = $1, updated_at = now() WHERE id = $2;`)
	t.Run("updated", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(entity.ReminderCompleted, id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.UpdateStatus(ctx, id, entity.ReminderCompleted)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(entity.ReminderDismissed, id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.UpdateStatus(ctx, id, entity.ReminderDismissed)
		assert.ErrorIs(t, err, errorvalues.ErrReminderNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(entity.ReminderCompleted, id).
			WillReturnError(errors.New("db error"))
		err := repo.UpdateStatus(ctx, id, entity.ReminderCompleted)
		assert.Error(t, err)
	})
}

func TestDeleteReminderByPlantAndType(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewRemindersRepoWithConn(conn)
	plantID := uuid.New()
	query := regexp.QuoteMeta(`DELETE FROM reminders WHERE plant_id = $1 AND care_type = $2;`)
	t.Run("deleted", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(plantID, entity.CareWater).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		err := repo.DeleteByPlantAndType(ctx, plantID, entity.CareWater)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(plantID, entity.CareWater).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		err := repo.DeleteByPlantAndType(ctx, plantID, entity.CareWater)
		assert.ErrorIs(t, err, errorvalues.ErrReminderNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(plantID, entity.CareWater).
			WillReturnError(errors.New("db error"))
		err := repo.DeleteByPlantAndType(ctx, plantID, entity.CareWater)
		assert.Error(t, err)
	})
}
