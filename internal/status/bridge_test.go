package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// Re-deriving the unified status from the legacy fields the bridge just wrote
// must reproduce the same unified status. This is the governing property of
// the bridge.
func TestBridgeRoundTrip(t *testing.T) {
	appt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for _, unified := range []models.UnifiedStatus{
		models.StatusNew,
		models.StatusInProgress,
		models.StatusScheduled,
		models.StatusComplete,
		models.StatusArchived,
	} {
		t.Run(string(unified), func(t *testing.T) {
			legacy := Apply(unified, &appt, LegacyFields{})
			assert.Equal(t, unified, Derive(legacy, 0))
		})
	}
}

func TestApplyScheduledMirrorsAppointment(t *testing.T) {
	appt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	legacy := Apply(models.StatusScheduled, &appt, LegacyFields{})

	assert.Equal(t, models.LegacyStatusBooked, legacy.Status)
	if assert.NotNil(t, legacy.AppointmentDate) {
		assert.Equal(t, appt, *legacy.AppointmentDate)
	}
}

func TestApplyInProgressNeverOverwritesContactOutcome(t *testing.T) {
	legacy := Apply(models.StatusInProgress, nil, LegacyFields{ContactStatus: "Left Voicemail"})
	assert.Equal(t, "Left Voicemail", legacy.ContactStatus)

	legacy = Apply(models.StatusInProgress, nil, LegacyFields{})
	assert.Equal(t, ContactStatusContacted, legacy.ContactStatus)
}

func TestApplyResetPreservesExplicitContactOutcome(t *testing.T) {
	legacy := Apply(models.StatusNew, nil, LegacyFields{
		Status:        models.LegacyStatusBooked,
		ContactStatus: "Declined Service",
	})
	assert.Equal(t, models.LegacyStatusPendingReview, legacy.Status)
	assert.Equal(t, "Declined Service", legacy.ContactStatus)

	legacy = Apply(models.StatusNew, nil, LegacyFields{ContactStatus: ContactStatusContacted})
	assert.Empty(t, legacy.ContactStatus)
}

// The reset arm mirrors whatever appointment value the caller kept; clearing
// it is the operator's explicit choice, made upstream.
func TestApplyResetMirrorsSurvivingAppointment(t *testing.T) {
	appt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	legacy := Apply(models.StatusNew, &appt, LegacyFields{AppointmentDate: &appt})
	if assert.NotNil(t, legacy.AppointmentDate) {
		assert.Equal(t, appt, *legacy.AppointmentDate)
	}

	legacy = Apply(models.StatusNew, nil, LegacyFields{AppointmentDate: &appt})
	assert.Nil(t, legacy.AppointmentDate)
}

func TestDeriveLegacyOnlySubmissions(t *testing.T) {
	tests := []struct {
		name     string
		legacy   LegacyFields
		attempts int
		want     models.UnifiedStatus
	}{
		{"booked with no contact attempts", LegacyFields{Status: models.LegacyStatusBooked}, 0, models.StatusScheduled},
		{"complete", LegacyFields{Status: models.LegacyStatusComplete}, 0, models.StatusComplete},
		{"declined", LegacyFields{Status: models.LegacyStatusDeclined}, 0, models.StatusArchived},
		{"empty status no attempts", LegacyFields{}, 0, models.StatusNew},
		{"pending review no attempts", LegacyFields{Status: models.LegacyStatusPendingReview}, 0, models.StatusNew},
		{"empty status with attempts", LegacyFields{}, 2, models.StatusInProgress},
		{"pending review with contact status", LegacyFields{Status: models.LegacyStatusPendingReview, ContactStatus: "Contacted"}, 0, models.StatusInProgress},
		{"unrecognized historical value degrades", LegacyFields{Status: "Waiting On Trapper"}, 0, models.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.legacy, tt.attempts))
		})
	}
}

func TestCoerceLegacyPriority(t *testing.T) {
	tests := []struct {
		raw  string
		want models.PriorityOverride
	}{
		{"", models.PriorityNone},
		{"2 - Medium", models.PriorityNormal},
		{"1", models.PriorityLow},
		{"3", models.PriorityHigh},
		{"5", models.PriorityHigh},
		{"low", models.PriorityLow},
		{"Medium", models.PriorityNormal},
		{"URGENT", models.PriorityHigh},
		{"critical", models.PriorityHigh},
		{"whenever", models.PriorityNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceLegacyPriority(tt.raw))
		})
	}
}
