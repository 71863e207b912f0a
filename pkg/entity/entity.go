package entity

import (
	"time"

	"github.com/google/uuid"
)

type CareType string

const (
	CareWater       CareType = "water"
	CareFertilize   CareType = "fertilize"
	CarePrune       CareType = "prune"
	CareRepot       CareType = "repot"
	CareHealthCheck CareType = "health_check"
)

func (ct CareType) Valid() bool {
	switch ct {
	case CareWater, CareFertilize, CarePrune, CareRepot, CareHealthCheck:
		return true
	}
	return false
}

// Recurring reports whether this care type is driven by a frequency setting.
func (ct CareType) Recurring() bool {
	return ct == CareWater || ct == CareFertilize
}

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
	ReminderDismissed ReminderStatus = "dismissed"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Plant struct {
	ID                      uuid.UUID  `json:"id"`
	UserID                  uuid.UUID  `json:"uid"`
	Name                    string     `json:"name"`
	Species                 string     `json:"species"`
	WaterFrequencyDays      int        `json:"water_frequency_days"`
	FertilizerFrequencyDays int        `json:"fertilizer_frequency_days"`
	LastWatered             *time.Time `json:"last_watered,omitempty"`
	LastFertilized          *time.Time `json:"last_fertilized,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// FrequencyDays returns the configured interval for a recurring care type.
// Zero means no recurring reminder of that kind.
func (p *Plant) FrequencyDays(ct CareType) int {
	switch ct {
	case CareWater:
		return p.WaterFrequencyDays
	case CareFertilize:
		return p.FertilizerFrequencyDays
	}
	return 0
}

// LastCared returns the most recent logged action of a recurring care type.
func (p *Plant) LastCared(ct CareType) *time.Time {
	switch ct {
	case CareWater:
		return p.LastWatered
	case CareFertilize:
		return p.LastFertilized
	}
	return nil
}

type Reminder struct {
	ID           uuid.UUID      `json:"id"`
	PlantID      uuid.UUID      `json:"plant_id"`
	UserID       uuid.UUID      `json:"uid"`
	CareType     CareType       `json:"care_type"`
	DueDate      time.Time      `json:"due_date"`
	Status       ReminderStatus `json:"status"`
	Recurring    bool           `json:"recurring"`
	IntervalDays int            `json:"interval_days"`
	Notified     bool           `json:"notified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HealthDiagnosis is the metadata variant attached to health_check logs.
type HealthDiagnosis struct {
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
	Advice    string `json:"advice,omitempty"`
}

// JournalEntry is a free-form metadata variant allowed on any care log.
type JournalEntry struct {
	Mood  string `json:"mood,omitempty"`
	Entry string `json:"entry"`
}

// CareLogMetadata is a tagged union: which variant may be set depends on the
// log's care type.
type CareLogMetadata struct {
	Diagnosis *HealthDiagnosis `json:"diagnosis,omitempty"`
	Journal   *JournalEntry    `json:"journal,omitempty"`
}

type CareLog struct {
	ID        uuid.UUID        `json:"id"`
	PlantID   uuid.UUID        `json:"plant_id"`
	CareType  CareType         `json:"care_type"`
	Notes     string           `json:"notes,omitempty"`
	Photo     string           `json:"photo,omitempty"`
	Metadata  *CareLogMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Session rows are keyed by the SHA-256 of the opaque cookie token, never by
// the token itself.
type Session struct {
	TokenHash []byte
	UserID    uuid.UUID
	CSRFToken string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type CareAdvice struct {
	Summary     string   `json:"summary"`
	Watering    string   `json:"watering"`
	Light       string   `json:"light"`
	Issues      []string `json:"issues,omitempty"`
	Source      string   `json:"source"`
	GeneratedAt string   `json:"generated_at,omitempty"`
}
