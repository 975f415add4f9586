package models

import (
	"time"

	"github.com/lib/pq"
)

// SourceChannel identifies where an intake report came from.
type SourceChannel string

const (
	SourceWeb          SourceChannel = "web"
	SourcePhone        SourceChannel = "phone"
	SourceInPerson     SourceChannel = "in_person"
	SourcePaper        SourceChannel = "paper"
	SourceLegacyImport SourceChannel = "legacy_import"
)

// UnifiedStatus is the fixed-enum lifecycle state of a submission.
type UnifiedStatus string

const (
	StatusNew        UnifiedStatus = "new"
	StatusInProgress UnifiedStatus = "in_progress"
	StatusScheduled  UnifiedStatus = "scheduled"
	StatusComplete   UnifiedStatus = "complete"
	StatusArchived   UnifiedStatus = "archived"
	// StatusUnknown marks a legacy submission whose historical status string
	// maps to nothing in the unified vocabulary. It is derived, never written.
	StatusUnknown UnifiedStatus = "unknown"
)

// Legacy submission-status vocabulary retained for continuity with imports.
const (
	LegacyStatusEmpty         = ""
	LegacyStatusPendingReview = "Pending Review"
	LegacyStatusBooked        = "Booked"
	LegacyStatusComplete      = "Complete"
	LegacyStatusDeclined      = "Declined"
)

// TriageCategory is the derived priority bucket assigned by the classifier.
type TriageCategory string

const (
	CategoryHighPriorityTNR TriageCategory = "high_priority_tnr"
	CategoryStandardTNR     TriageCategory = "standard_tnr"
	CategoryWellnessOnly    TriageCategory = "wellness_only"
	CategoryOwnedCatLow     TriageCategory = "owned_cat_low"
	CategoryOutOfCounty     TriageCategory = "out_of_county"
	CategoryNeedsReview     TriageCategory = "needs_review"
)

// PriorityOverride is a staff-entered sort hint. It never feeds back into the
// classifier's score or category.
type PriorityOverride string

const (
	PriorityNone   PriorityOverride = ""
	PriorityHigh   PriorityOverride = "high"
	PriorityNormal PriorityOverride = "normal"
	PriorityLow    PriorityOverride = "low"
)

// Ownership and fixed-status vocab used by the classifier.
const (
	OwnershipMyCat     = "my_cat"
	OwnershipCommunity = "community"
	OwnershipStray     = "stray"
	OwnershipUnknown   = "unknown"

	FixedNone    = "none"
	FixedSome    = "some_fixed"
	FixedMost    = "most_fixed"
	FixedAll     = "all_fixed"
	FixedUnknown = "unknown"
)

// Submission is one intake report moving through the lifecycle.
type Submission struct {
	ID          string        `db:"id" json:"id"`
	SubmittedAt time.Time     `db:"submitted_at" json:"submitted_at"`
	Source      SourceChannel `db:"source" json:"source"`
	IsTest      bool          `db:"is_test" json:"is_test"`

	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`

	Address string  `db:"address" json:"address"`
	City    string  `db:"city" json:"city"`
	Zip     string  `db:"zip" json:"zip"`
	County  string  `db:"county" json:"county"`
	PlaceID *string `db:"place_id" json:"place_id,omitempty"`

	OwnershipStatus      string  `db:"ownership_status" json:"ownership_status"`
	CatCount             *int    `db:"cat_count" json:"cat_count,omitempty"`
	FixedStatus          string  `db:"fixed_status" json:"fixed_status"`
	HasKittens           bool    `db:"has_kittens" json:"has_kittens"`
	KittenCount          *int    `db:"kitten_count" json:"kitten_count,omitempty"`
	KittenAge            *string `db:"kitten_age" json:"kitten_age,omitempty"`
	MedicalConcern       bool    `db:"medical_concern" json:"medical_concern"`
	MedicalDescription   *string `db:"medical_description" json:"medical_description,omitempty"`
	IsEmergency          bool    `db:"is_emergency" json:"is_emergency"`
	ThirdPartyReport     bool    `db:"third_party_report" json:"third_party_report"`
	ReporterRelationship *string `db:"reporter_relationship" json:"reporter_relationship,omitempty"`
	PropertyOwnerContact *string `db:"property_owner_contact" json:"property_owner_contact,omitempty"`
	AwarenessMonths      *int    `db:"awareness_months" json:"awareness_months,omitempty"`

	// Derived classification, written only by the classifier. Null category
	// only for legacy imports that were never reclassified.
	TriageCategory *TriageCategory `db:"triage_category" json:"triage_category,omitempty"`
	TriageScore    *int            `db:"triage_score" json:"triage_score,omitempty"`
	TriageReasons  pq.StringArray  `db:"triage_reasons" json:"triage_reasons,omitempty"`

	Status           UnifiedStatus    `db:"status" json:"status"`
	AppointmentDate  *time.Time       `db:"appointment_date" json:"appointment_date,omitempty"`
	PriorityOverride PriorityOverride `db:"priority_override" json:"priority_override,omitempty"`

	// Legacy lifecycle, retained for continuity.
	ContactStatus         string     `db:"contact_status" json:"contact_status"`
	LegacyStatus          string     `db:"legacy_status" json:"legacy_status"`
	LegacyAppointmentDate *time.Time `db:"legacy_appointment_date" json:"legacy_appointment_date,omitempty"`
	LegacyNotes           *string    `db:"legacy_notes" json:"legacy_notes,omitempty"`

	ContactAttempts int        `db:"contact_attempts" json:"contact_attempts"`
	LastContactedAt *time.Time `db:"last_contacted_at" json:"last_contacted_at,omitempty"`

	// CreatedRequestID is set once by the convert step; its presence marks
	// the submission as converted regardless of unified status.
	CreatedRequestID *string `db:"created_request_id" json:"created_request_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Converted reports whether the submission has been turned into a trapping
// request. A terminal fact independent of unified status.
func (s *Submission) Converted() bool {
	return s.CreatedRequestID != nil && *s.CreatedRequestID != ""
}

// QueueMode selects a named dashboard view rather than a raw status equality.
type QueueMode string

const (
	ModeAttention QueueMode = "attention"
	ModeScheduled QueueMode = "scheduled"
	ModeRecent    QueueMode = "recent"
	ModeComplete  QueueMode = "complete"
	ModeAll       QueueMode = "all"
	ModeLegacy    QueueMode = "legacy"
	ModeTest      QueueMode = "test"
)

// SubmissionFilter narrows queue listings.
type SubmissionFilter struct {
	Mode     QueueMode
	Category TriageCategory
	Search   string
	Limit    int
	Offset   int
}
