package status

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// ContactStatusContacted is the marker the bridge writes on in_progress. It
// is the only contact-status value the bridge itself will ever set or clear;
// explicit prior contact outcomes are never overwritten.
const ContactStatusContacted = "Contacted"

// LegacyFields groups the legacy lifecycle columns the bridge reads and
// writes. Submissions that predate the unified scheme carry only these.
type LegacyFields struct {
	Status          string
	ContactStatus   string
	AppointmentDate *time.Time
}

// Apply forward-maps a unified write onto the legacy fields. This is the
// single place the two vocabularies are reconciled; extending it carelessly
// breaks the round-trip invariant checked in the tests.
func Apply(unified models.UnifiedStatus, appointment *time.Time, legacy LegacyFields) LegacyFields {
	out := legacy
	switch unified {
	case models.StatusNew:
		out.Status = models.LegacyStatusPendingReview
		// Clear only the bridge's own marker so an explicit prior contact
		// outcome survives an operator reset.
		if out.ContactStatus == ContactStatusContacted {
			out.ContactStatus = ""
		}
		out.AppointmentDate = appointment
	case models.StatusInProgress:
		if out.ContactStatus == "" {
			out.ContactStatus = ContactStatusContacted
		}
	case models.StatusScheduled:
		out.Status = models.LegacyStatusBooked
		out.AppointmentDate = appointment
	case models.StatusComplete:
		out.Status = models.LegacyStatusComplete
	case models.StatusArchived:
		out.Status = models.LegacyStatusDeclined
	}
	return out
}

// Derive computes the effective unified status of a legacy-only submission.
// Unrecognized historical values degrade to StatusUnknown rather than
// rejecting the read.
func Derive(legacy LegacyFields, contactAttempts int) models.UnifiedStatus {
	switch strings.TrimSpace(legacy.Status) {
	case models.LegacyStatusBooked:
		return models.StatusScheduled
	case models.LegacyStatusComplete:
		return models.StatusComplete
	case models.LegacyStatusDeclined:
		return models.StatusArchived
	case models.LegacyStatusEmpty, models.LegacyStatusPendingReview:
		if contactAttempts > 0 || legacy.ContactStatus != "" {
			return models.StatusInProgress
		}
		return models.StatusNew
	}
	return models.StatusUnknown
}

var digitsRe = regexp.MustCompile(`\d+`)

// CoerceLegacyPriority maps free-text priority values from legacy imports
// ("2 - Medium", "urgent") onto the override enum. Unrecognized input yields
// no override.
func CoerceLegacyPriority(raw string) models.PriorityOverride {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.PriorityNone
	}
	if m := digitsRe.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			switch {
			case n <= 1:
				return models.PriorityLow
			case n == 2:
				return models.PriorityNormal
			default:
				return models.PriorityHigh
			}
		}
	}
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "low":
		return models.PriorityLow
	case "medium", "med", "normal":
		return models.PriorityNormal
	case "high", "urgent", "critical":
		return models.PriorityHigh
	}
	return models.PriorityNone
}
