package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdant/sprout/pkg/entity"
)

type RegisterRequest struct {
	Username    string `validate:"required,alphanum_underscore,min=3,max=100"`
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,min=8,max=72"`
	DisplayName string `validate:"max=100"`
}

type CreatePlantRequest struct {
	Name                    string `validate:"required,min=1,max=100"`
	Species                 string `validate:"max=100"`
	WaterFrequencyDays      int    `validate:"gte=0,lte=365"`
	FertilizerFrequencyDays int    `validate:"gte=0,lte=365"`
}

// UpdatePlantRequest carries only the fields the client wants to change.
type UpdatePlantRequest struct {
	Name                    *string `validate:"omitempty,min=1,max=100"`
	Species                 *string `validate:"omitempty,max=100"`
	WaterFrequencyDays      *int    `validate:"omitempty,gte=0,lte=365"`
	FertilizerFrequencyDays *int    `validate:"omitempty,gte=0,lte=365"`
}

type CreateCareLogRequest struct {
	PlantID  uuid.UUID
	CareType entity.CareType
	Notes    string `validate:"max=2000"`
	Photo    string `validate:"max=500"`
	Metadata *entity.CareLogMetadata
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type CareNeededReport struct {
	NeedsWater      []*entity.Plant `json:"needs_water"`
	NeedsFertilizer []*entity.Plant `json:"needs_fertilizer"`
}

type UserServiceI interface {
	// Validates credentials shape, throttles by ip, creates new row in database.
	// Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest, ip string) (*entity.User, error)
	// Compares given credentials under the ip rate limit. If ok, stamps
	// last login and gives back user's data with ID
	Login(ctx context.Context, username, password, ip string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type SessionServiceI interface {
	// Creates a session for uid. Returns the opaque cookie token and the record
	Create(ctx context.Context, uid uuid.UUID) (string, *entity.Session, error)
	// Resolves a cookie token to a live session
	Validate(ctx context.Context, token string) (*entity.Session, error)
	// Removes the session behind the cookie token (logout)
	Destroy(ctx context.Context, token string) error
	// Compares a request's anti-forgery token against the session's
	VerifyCSRF(session *entity.Session, token string) error
}

type PlantsServiceI interface {
	// Creates plant and its pending reminders for care types with frequency > 0
	CreatePlant(ctx context.Context, uid uuid.UUID, req *CreatePlantRequest) (*entity.Plant, error)
	GetPlant(ctx context.Context, plantID, userID uuid.UUID) (*entity.Plant, error)
	GetUserPlants(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Plant, error)
	// Applies partial update; frequency changes reschedule or drop reminders
	UpdatePlant(ctx context.Context, plantID, userID uuid.UUID, req *UpdatePlantRequest) (*entity.Plant, error)
	DeletePlant(ctx context.Context, plantID, userID uuid.UUID) error
}

type CareServiceI interface {
	// Files an immutable care log, stamps the plant and reschedules the reminder
	LogCare(ctx context.Context, uid uuid.UUID, req *CreateCareLogRequest) (*entity.CareLog, error)
	GetPlantCareLogs(ctx context.Context, plantID, userID uuid.UUID, pagination PaginationOpts) ([]*entity.CareLog, error)
	GetUserReminders(ctx context.Context, uid uuid.UUID) ([]*entity.Reminder, error)
	CompleteReminder(ctx context.Context, reminderID, userID uuid.UUID) error
	DismissReminder(ctx context.Context, reminderID, userID uuid.UUID) error
	// Derives the needs-care report from plant fields, never from reminder rows
	CareNeeded(ctx context.Context, uid uuid.UUID) (*CareNeededReport, error)
	// Asks the advice provider, falling back to a static payload on failure
	PlantAdvice(ctx context.Context, plantID, userID uuid.UUID) (*entity.CareAdvice, error)
}
