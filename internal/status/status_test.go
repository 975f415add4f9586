package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.UnifiedStatus
		to   models.UnifiedStatus
		want bool
	}{
		{"new to in_progress", models.StatusNew, models.StatusInProgress, true},
		{"new to scheduled", models.StatusNew, models.StatusScheduled, true},
		{"in_progress to scheduled", models.StatusInProgress, models.StatusScheduled, true},
		{"scheduled to complete", models.StatusScheduled, models.StatusComplete, true},
		{"new to complete skips scheduling", models.StatusNew, models.StatusComplete, false},
		{"complete to scheduled", models.StatusComplete, models.StatusScheduled, false},
		{"archive from new", models.StatusNew, models.StatusArchived, true},
		{"archive from complete", models.StatusComplete, models.StatusArchived, true},
		{"reset from scheduled", models.StatusScheduled, models.StatusNew, true},
		{"reset from complete", models.StatusComplete, models.StatusNew, true},
		{"reset from in_progress not allowed", models.StatusInProgress, models.StatusNew, false},
		{"no way out of archived except archive", models.StatusArchived, models.StatusInProgress, false},
		{"same status is a no-op", models.StatusScheduled, models.StatusScheduled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsReset(t *testing.T) {
	assert.True(t, IsReset(models.StatusScheduled, models.StatusNew))
	assert.True(t, IsReset(models.StatusComplete, models.StatusNew))
	assert.False(t, IsReset(models.StatusNew, models.StatusNew))
	assert.False(t, IsReset(models.StatusScheduled, models.StatusComplete))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(models.StatusNew))
	assert.True(t, Valid(models.StatusArchived))
	assert.False(t, Valid(models.StatusUnknown))
	assert.False(t, Valid(models.UnifiedStatus("Booked")))
}
