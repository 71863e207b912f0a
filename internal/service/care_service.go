package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/verdant/sprout/internal/advice"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/pkg/entity"
)

// How many recent logs are handed to the advice provider for context.
const adviceLogDepth = 10

// Page size used when walking a user's plants for the dashboard report.
const careNeededBatch = 100

type CareService struct {
	plantsRepo    repository.PlantsRepositoryI
	careLogsRepo  repository.CareLogsRepositoryI
	remindersRepo repository.RemindersRepositoryI
	advisor       advice.Advisor
}

// NewCareService wires the care log, reminder and dashboard logic. advisor may
// be nil, in which case advice requests always serve the fallback payload.
func NewCareService(plantsRepo repository.PlantsRepositoryI, careLogsRepo repository.CareLogsRepositoryI, remindersRepo repository.RemindersRepositoryI, advisor advice.Advisor) *CareService {
	if plantsRepo == nil || careLogsRepo == nil || remindersRepo == nil {
		log.Fatal("on care service provided nil repos")
	}
	return &CareService{
		plantsRepo:    plantsRepo,
		careLogsRepo:  careLogsRepo,
		remindersRepo: remindersRepo,
		advisor:       advisor,
	}
}

func (cs *CareService) LogCare(ctx context.Context, uid uuid.UUID, req *CreateCareLogRequest) (*entity.CareLog, error) {
	if !req.CareType.Valid() {
		return nil, errorvalues.ErrInvalidCareType
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := validateMetadata(req.CareType, req.Metadata); err != nil {
		return nil, err
	}
	plant, err := cs.ownedPlant(ctx, req.PlantID, uid)
	if err != nil {
		return nil, err
	}
	careLog := entity.CareLog{
		PlantID:  plant.ID,
		CareType: req.CareType,
		Notes:    req.Notes,
		Photo:    req.Photo,
		Metadata: req.Metadata,
	}
	if _, err = cs.careLogsRepo.Create(ctx, &careLog); err != nil {
		if errors.Is(err, errorvalues.ErrPlantNotFound) {
			return nil, err
		}
		return nil, errors.New("care logs repository error: " + err.Error())
	}
	if req.CareType.Recurring() {
		// The log's server-assigned timestamp is the new "last cared" moment
		// and the base for the next due date
		if err = cs.plantsRepo.SetLastCared(ctx, plant.ID, req.CareType, careLog.CreatedAt); err != nil {
			return nil, errors.New("plants repository error: " + err.Error())
		}
		if err = syncReminder(ctx, cs.remindersRepo, plant, req.CareType, careLog.CreatedAt); err != nil {
			return nil, err
		}
	}
	return &careLog, nil
}

func (cs *CareService) GetPlantCareLogs(ctx context.Context, plantID, userID uuid.UUID, pagination PaginationOpts) ([]*entity.CareLog, error) {
	if _, err := cs.ownedPlant(ctx, plantID, userID); err != nil {
		return nil, err
	}
	logs, err := cs.careLogsRepo.GetByPlantID(ctx, plantID, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("care logs repository error: " + err.Error())
	}
	return logs, nil
}

func (cs *CareService) GetUserReminders(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error) {
	reminders, err := cs.remindersRepo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	return reminders, nil
}

func (cs *CareService) CompleteReminder(ctx context.Context, reminderID, userID uuid.UUID) error {
	return cs.transitionReminder(ctx, reminderID, userID, entity.ReminderCompleted)
}

func (cs *CareService) DismissReminder(ctx context.Context, reminderID, userID uuid.UUID) error {
	return cs.transitionReminder(ctx, reminderID, userID, entity.ReminderDismissed)
}

// transitionReminder enforces the state machine: only pending reminders can be
// completed or dismissed; a matching care log or frequency edit revives them.
func (cs *CareService) transitionReminder(ctx context.Context, reminderID, userID uuid.UUID, to entity.ReminderStatus) error {
	rem, err := cs.remindersRepo.GetByID(ctx, reminderID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	if rem.UserID != userID {
		return errorvalues.ErrWrongOwner
	}
	if rem.Status != entity.ReminderPending {
		return errorvalues.ErrReminderNotPending
	}
	err = cs.remindersRepo.UpdateStatus(ctx, reminderID, to)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	return nil
}

func (cs *CareService) CareNeeded(ctx context.Context, uid uuid.UUID) (*CareNeededReport, error) {
	report := CareNeededReport{
		NeedsWater:      make([]*entity.Plant, 0),
		NeedsFertilizer: make([]*entity.Plant, 0),
	}
	now := time.Now()
	for offset := 0; ; offset += careNeededBatch {
		plants, err := cs.plantsRepo.GetByUserID(ctx, uid, careNeededBatch, offset)
		if err != nil {
			return nil, errors.New("plants repository error: " + err.Error())
		}
		for _, plant := range plants {
			if NeedsCare(plant, entity.CareWater, now) {
				report.NeedsWater = append(report.NeedsWater, plant)
			}
			if NeedsCare(plant, entity.CareFertilize, now) {
				report.NeedsFertilizer = append(report.NeedsFertilizer, plant)
			}
		}
		if len(plants) < careNeededBatch {
			break
		}
	}
	return &report, nil
}

func (cs *CareService) PlantAdvice(ctx context.Context, plantID, userID uuid.UUID) (*entity.CareAdvice, error) {
	plant, err := cs.ownedPlant(ctx, plantID, userID)
	if err != nil {
		return nil, err
	}
	if cs.advisor == nil {
		return advice.Fallback(plant), nil
	}
	recent, err := cs.careLogsRepo.GetByPlantID(ctx, plantID, adviceLogDepth, 0)
	if err != nil {
		return nil, errors.New("care logs repository error: " + err.Error())
	}
	adv, err := cs.advisor.CareAdvice(ctx, plant, recent)
	if err != nil {
		slog.Warn("advice provider failed, serving fallback", slog.String("error", err.Error()))
		return advice.Fallback(plant), nil
	}
	return adv, nil
}

func (cs *CareService) ownedPlant(ctx context.Context, plantID, userID uuid.UUID) (*entity.Plant, error) {
	plant, err := cs.plantsRepo.GetByID(ctx, plantID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrPlantNotFound) {
			return nil, err
		}
		return nil, errors.New("plants repository error: " + err.Error())
	}
	if plant.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return plant, nil
}

// validateMetadata checks the tagged union against the care type: a diagnosis
// only makes sense on a health check, a journal entry is allowed on any log.
func validateMetadata(careType entity.CareType, meta *entity.CareLogMetadata) error {
	if meta == nil {
		return nil
	}
	if meta.Diagnosis != nil && careType != entity.CareHealthCheck {
		return errorvalues.ErrInvalidMetadata
	}
	return nil
}
