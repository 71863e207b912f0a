// Package advice talks to the external model that generates plant-care
// recommendations. The provider is opaque and may fail; callers are expected
// to substitute the Fallback payload instead of surfacing the error.
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verdant/sprout/pkg/entity"
)

// Advisor maps a plant and its recent history to structured care advice.
type Advisor interface {
	CareAdvice(ctx context.Context, plant *entity.Plant, recent []*entity.CareLog) (*entity.CareAdvice, error)
}

// Fallback returns the static payload used when the provider is unavailable.
func Fallback(plant *entity.Plant) *entity.CareAdvice {
	watering := "Water when the top few centimeters of soil feel dry."
	if plant.WaterFrequencyDays > 0 {
		watering = fmt.Sprintf("Water roughly every %d days, adjusting for season and soil dryness.", plant.WaterFrequencyDays)
	}
	return &entity.CareAdvice{
		Summary:     fmt.Sprintf("General care guidelines for %s.", plant.Name),
		Watering:    watering,
		Light:       "Bright, indirect light suits most houseplants.",
		Source:      "fallback",
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func buildPrompt(plant *entity.Plant, recent []*entity.CareLog) string {
	var sb strings.Builder
	sb.WriteString("You are a houseplant care assistant. Reply with a single JSON object ")
	sb.WriteString(`matching {"summary": string, "watering": string, "light": string, "issues": [string]}. `)
	sb.WriteString("No markdown, no prose outside the JSON.\n")
	fmt.Fprintf(&sb, "Plant: %s", plant.Name)
	if plant.Species != "" {
		fmt.Fprintf(&sb, " (%s)", plant.Species)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Watering interval: every %d days. Fertilizing interval: every %d days.\n",
		plant.WaterFrequencyDays, plant.FertilizerFrequencyDays)
	if plant.LastWatered != nil {
		fmt.Fprintf(&sb, "Last watered: %s.\n", plant.LastWatered.Format("2006-01-02"))
	}
	if len(recent) > 0 {
		sb.WriteString("Recent care log:\n")
		for _, cl := range recent {
			fmt.Fprintf(&sb, "- %s %s", cl.CreatedAt.Format("2006-01-02"), cl.CareType)
			if cl.Notes != "" {
				fmt.Fprintf(&sb, ": %s", cl.Notes)
			}
			if cl.Metadata != nil && cl.Metadata.Diagnosis != nil {
				fmt.Fprintf(&sb, " (diagnosed %s, severity %s)", cl.Metadata.Diagnosis.Condition, cl.Metadata.Diagnosis.Severity)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
