package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/pkg/entity"
)

type PlantsService struct {
	plantsRepo    repository.PlantsRepositoryI
	remindersRepo repository.RemindersRepositoryI
}

func NewPlantsService(plantsRepo repository.PlantsRepositoryI, remindersRepo repository.RemindersRepositoryI) *PlantsService {
	if plantsRepo == nil || remindersRepo == nil {
		log.Fatal("on plants service provided nil repos")
	}
	return &PlantsService{
		plantsRepo:    plantsRepo,
		remindersRepo: remindersRepo,
	}
}

func (ps *PlantsService) CreatePlant(ctx context.Context, uid uuid.UUID, req *CreatePlantRequest) (*entity.Plant, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	plant := entity.Plant{
		UserID:                  uid,
		Name:                    req.Name,
		Species:                 req.Species,
		WaterFrequencyDays:      req.WaterFrequencyDays,
		FertilizerFrequencyDays: req.FertilizerFrequencyDays,
	}
	_, err := ps.plantsRepo.Create(ctx, &plant)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("plants repository error: " + err.Error())
	}
	for _, careType := range []entity.CareType{entity.CareWater, entity.CareFertilize} {
		if err = syncReminder(ctx, ps.remindersRepo, &plant, careType, plant.CreatedAt); err != nil {
			return nil, err
		}
	}
	return &plant, nil
}

func (ps *PlantsService) GetPlant(ctx context.Context, plantID, userID uuid.UUID) (*entity.Plant, error) {
	plant, err := ps.plantsRepo.GetByID(ctx, plantID)
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

func (ps *PlantsService) GetUserPlants(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Plant, error) {
	plants, err := ps.plantsRepo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("plants repository error: " + err.Error())
	}
	return plants, nil
}

func (ps *PlantsService) UpdatePlant(ctx context.Context, plantID, userID uuid.UUID, req *UpdatePlantRequest) (*entity.Plant, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	plant, err := ps.GetPlant(ctx, plantID, userID)
	if err != nil {
		return nil, err
	}
	oldWater := plant.WaterFrequencyDays
	oldFertilizer := plant.FertilizerFrequencyDays
	if req.Name != nil {
		plant.Name = *req.Name
	}
	if req.Species != nil {
		plant.Species = *req.Species
	}
	if req.WaterFrequencyDays != nil {
		plant.WaterFrequencyDays = *req.WaterFrequencyDays
	}
	if req.FertilizerFrequencyDays != nil {
		plant.FertilizerFrequencyDays = *req.FertilizerFrequencyDays
	}
	err = ps.plantsRepo.Update(ctx, plant)
	if err != nil {
		if errors.Is(err, errorvalues.ErrPlantNotFound) {
			return nil, err
		}
		return nil, errors.New("plants repository error: " + err.Error())
	}
	// An edited frequency reschedules from now, not from the last care action
	now := time.Now()
	if plant.WaterFrequencyDays != oldWater {
		if err = syncReminder(ctx, ps.remindersRepo, plant, entity.CareWater, now); err != nil {
			return nil, err
		}
	}
	if plant.FertilizerFrequencyDays != oldFertilizer {
		if err = syncReminder(ctx, ps.remindersRepo, plant, entity.CareFertilize, now); err != nil {
			return nil, err
		}
	}
	return plant, nil
}

func (ps *PlantsService) DeletePlant(ctx context.Context, plantID, userID uuid.UUID) error {
	if _, err := ps.GetPlant(ctx, plantID, userID); err != nil {
		return err
	}
	err := ps.plantsRepo.Delete(ctx, plantID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrPlantNotFound) {
			return err
		}
		return errors.New("plants repository error: " + err.Error())
	}
	return nil
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			joined := error(errorvalues.ErrValidation)
			for _, fieldErr := range validationError {
				joined = errors.Join(joined, fieldErr)
			}
			return joined
		}
		return errors.New("validation unexpected error: " + err.Error())
	}
	return nil
}
