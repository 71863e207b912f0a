package service

import (
	"context"
	"errors"
	"time"

	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/pkg/entity"
)

// NextCareDue derives when a recurring care action is next due: last logged
// action plus the configured interval, or creation time plus the interval if
// the action was never logged. The false return means the care type is not
// scheduled for this plant.
func NextCareDue(plant *entity.Plant, careType entity.CareType) (time.Time, bool) {
	freq := plant.FrequencyDays(careType)
	if freq <= 0 {
		return time.Time{}, false
	}
	base := plant.CreatedAt
	if last := plant.LastCared(careType); last != nil {
		base = *last
	}
	return base.AddDate(0, 0, freq), true
}

// NeedsCare is the derived predicate behind the dashboard. It is recomputed
// from plant fields on every call and never consults reminder rows, which are
// advisory notification state.
func NeedsCare(plant *entity.Plant, careType entity.CareType, now time.Time) bool {
	due, ok := NextCareDue(plant, careType)
	if !ok {
		return false
	}
	return !now.Before(due)
}

// syncReminder brings the single reminder row for (plant, care type) in line
// with the plant's frequency, scheduling the next due date from base.
// Frequency 0 drops the row; otherwise the row is created or refreshed to
// pending with the new interval.
func syncReminder(ctx context.Context, remindersRepo repository.RemindersRepositoryI, plant *entity.Plant, careType entity.CareType, base time.Time) error {
	freq := plant.FrequencyDays(careType)
	if freq <= 0 {
		err := remindersRepo.DeleteByPlantAndType(ctx, plant.ID, careType)
		if err != nil && !errors.Is(err, errorvalues.ErrReminderNotFound) {
			return errors.New("reminders repository error: " + err.Error())
		}
		return nil
	}
	rem := entity.Reminder{
		PlantID:      plant.ID,
		UserID:       plant.UserID,
		CareType:     careType,
		DueDate:      base.AddDate(0, 0, freq),
		Status:       entity.ReminderPending,
		Recurring:    true,
		IntervalDays: freq,
	}
	if err := remindersRepo.Upsert(ctx, &rem); err != nil {
		return errors.New("reminders repository error: " + err.Error())
	}
	return nil
}
