// Package triage derives a priority category, numeric score, and ordered
// reason list from a submission's intake facts. Classification is pure and
// deterministic: precedence lives in an ordered rule table, every fired rule
// contributes its weight and reason, and the same facts always reproduce the
// same result.
package triage

import (
	"strings"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// Thresholds that signal compounding colony growth.
const (
	HighCatCount         = 10
	LongAwarenessMonths  = 6
	DefaultServiceCounty = "Sonoma"
)

// Facts are the intake attributes the classifier reads. Absent counts are
// nil, not zero; a nil count never compounds severity.
type Facts struct {
	OwnershipStatus string
	CatCount        *int
	FixedStatus     string
	HasKittens      bool
	MedicalConcern  bool
	IsEmergency     bool
	AwarenessMonths *int
	County          string
}

// Result is the derived classification.
type Result struct {
	Category models.TriageCategory
	Score    int
	Reasons  []string
}

// influence describes how a fired rule affects the category.
type influence int

const (
	// scoreOnly rules contribute weight and a reason but never pick the
	// category themselves.
	scoreOnly influence = iota
	// assign sets the category unless an earlier rule forced one.
	assign
	// escalate raises standard_tnr to high_priority_tnr.
	escalate
	// force sets the category unconditionally and locks it against later
	// assign/escalate rules. Used by the emergency override (first) and the
	// geography rule (last, which may downgrade).
	force
)

type rule struct {
	name      string
	when      func(Facts) bool
	weight    int
	reason    string
	influence influence
	category  func(Facts) models.TriageCategory
}

// Classifier evaluates the fixed rule table against intake facts.
type Classifier struct {
	serviceCounty string
	rules         []rule
}

// New returns a classifier bound to the primary service county.
func New(serviceCounty string) *Classifier {
	if serviceCounty == "" {
		serviceCounty = DefaultServiceCounty
	}
	c := &Classifier{serviceCounty: serviceCounty}
	c.rules = []rule{
		{
			name:      "emergency_override",
			when:      func(f Facts) bool { return f.IsEmergency },
			weight:    50,
			reason:    "Emergency flagged",
			influence: force,
			category: func(f Facts) models.TriageCategory {
				if tnrEligible(f) {
					return models.CategoryHighPriorityTNR
				}
				return models.CategoryNeedsReview
			},
		},
		{
			name: "owned_cat_medical",
			when: func(f Facts) bool {
				return f.OwnershipStatus == models.OwnershipMyCat && f.MedicalConcern
			},
			weight:    25,
			reason:    "Owned cat with medical concerns",
			influence: assign,
			category:  func(Facts) models.TriageCategory { return models.CategoryNeedsReview },
		},
		{
			name: "owned_cat",
			when: func(f Facts) bool {
				return f.OwnershipStatus == models.OwnershipMyCat && !f.MedicalConcern
			},
			weight:    5,
			reason:    "Owner-reported pet cat",
			influence: assign,
			category:  func(Facts) models.TriageCategory { return models.CategoryOwnedCatLow },
		},
		{
			name: "already_fixed",
			when: func(f Facts) bool {
				return f.FixedStatus == models.FixedAll || f.FixedStatus == models.FixedMost
			},
			weight:    5,
			reason:    "Colony mostly or fully altered; wellness only",
			influence: assign,
			category:  func(Facts) models.TriageCategory { return models.CategoryWellnessOnly },
		},
		{
			name:      "community_unfixed",
			when:      tnrEligible,
			weight:    10,
			reason:    "Unaltered community cats need trap-neuter-return",
			influence: assign,
			category:  func(Facts) models.TriageCategory { return models.CategoryStandardTNR },
		},
		{
			name:      "kittens_present",
			when:      func(f Facts) bool { return tnrEligible(f) && f.HasKittens },
			weight:    15,
			reason:    "Kittens present",
			influence: escalate,
		},
		{
			name:      "medical_concern",
			when:      func(f Facts) bool { return tnrEligible(f) && f.MedicalConcern },
			weight:    20,
			reason:    "Medical concerns reported",
			influence: escalate,
		},
		{
			name: "high_cat_count",
			when: func(f Facts) bool {
				return tnrEligible(f) && f.CatCount != nil && *f.CatCount >= HighCatCount
			},
			weight:    10,
			reason:    "Large number of cats reported",
			influence: escalate,
		},
		{
			name: "long_awareness",
			when: func(f Facts) bool {
				return tnrEligible(f) && f.AwarenessMonths != nil && *f.AwarenessMonths >= LongAwarenessMonths
			},
			weight:    10,
			reason:    "Colony known for an extended period; growth likely",
			influence: escalate,
		},
		{
			name:      "unknown_cat_count",
			when:      func(f Facts) bool { return f.CatCount == nil },
			weight:    0,
			reason:    "Cat count not provided; severity not compounded",
			influence: scoreOnly,
		},
		{
			name: "out_of_county",
			when: func(f Facts) bool {
				county := strings.TrimSpace(f.County)
				return county != "" && !strings.EqualFold(county, c.serviceCounty)
			},
			weight:    0,
			reason:    "Location outside the primary service county",
			influence: force,
			category:  func(Facts) models.TriageCategory { return models.CategoryOutOfCounty },
		},
	}
	return c
}

// Classify runs the rule table in order. The rule that determines the
// category depends on precedence, but score sums the weights of every fired
// rule and reasons lists every fired rule's description in order.
func (c *Classifier) Classify(f Facts) Result {
	var (
		category models.TriageCategory
		forced   bool
		score    int
		reasons  []string
	)

	for _, r := range c.rules {
		if !r.when(f) {
			continue
		}
		score += r.weight
		reasons = append(reasons, r.reason)

		switch r.influence {
		case force:
			category = r.category(f)
			forced = true
		case assign:
			if !forced && category == "" {
				category = r.category(f)
			}
		case escalate:
			if !forced && category == models.CategoryStandardTNR {
				category = models.CategoryHighPriorityTNR
			}
		}
	}

	if category == "" {
		category = models.CategoryNeedsReview
		reasons = append(reasons, "No triage rule matched; needs staff review")
	}

	return Result{Category: category, Score: score, Reasons: reasons}
}

// tnrEligible reports whether the facts describe unowned cats with low fixed
// coverage, the population trap-neuter-return exists for.
func tnrEligible(f Facts) bool {
	switch f.OwnershipStatus {
	case models.OwnershipCommunity, models.OwnershipStray, models.OwnershipUnknown, "":
	default:
		return false
	}
	switch f.FixedStatus {
	case models.FixedNone, models.FixedSome, models.FixedUnknown, "":
		return true
	}
	return false
}
