// Package status implements the submission lifecycle state machine and the
// bridge between the unified status enum and the legacy status vocabulary.
// Everything here is pure; the orchestrator owns persistence and audit.
package status

import "github.com/forgottenfelines/tnr-intake-api/internal/models"

// transitions holds the allowed forward moves. Archive and reset are modelled
// separately because they are reachable from multiple states.
var transitions = map[models.UnifiedStatus][]models.UnifiedStatus{
	models.StatusNew:        {models.StatusInProgress, models.StatusScheduled},
	models.StatusInProgress: {models.StatusScheduled},
	models.StatusScheduled:  {models.StatusComplete},
}

// resettable lists the states an operator may explicitly revert to new,
// to undo staff mistakes. Distinct from the forward transitions.
var resettable = map[models.UnifiedStatus]bool{
	models.StatusScheduled: true,
	models.StatusComplete:  true,
}

// CanTransition reports whether moving from one unified status to another is
// allowed. Archiving is allowed from every state; it hides the submission
// from active views but never deletes data.
func CanTransition(from, to models.UnifiedStatus) bool {
	if from == to {
		return true
	}
	if to == models.StatusArchived {
		return true
	}
	if to == models.StatusNew {
		return resettable[from]
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsReset reports whether the move is the explicit operator reset.
func IsReset(from, to models.UnifiedStatus) bool {
	return to == models.StatusNew && resettable[from]
}

// Valid reports whether the value belongs to the unified vocabulary.
// StatusUnknown is derived only and never accepted as a write target.
func Valid(s models.UnifiedStatus) bool {
	switch s {
	case models.StatusNew, models.StatusInProgress, models.StatusScheduled,
		models.StatusComplete, models.StatusArchived:
		return true
	}
	return false
}
