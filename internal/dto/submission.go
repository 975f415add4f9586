package dto

import (
	"time"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// CreateSubmissionRequest is the intake payload from the web form, phone
// sheet, or receptionist wizard. Contact validity is advisory; only the
// fields triage cannot work without are required.
type CreateSubmissionRequest struct {
	Source    string `json:"source" binding:"required,oneof=web phone in_person paper"`
	IsTest    bool   `json:"is_test"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	County  string `json:"county"`

	OwnershipStatus      string  `json:"ownership_status" binding:"required"`
	CatCount             *int    `json:"cat_count"`
	FixedStatus          string  `json:"fixed_status"`
	HasKittens           bool    `json:"has_kittens"`
	KittenCount          *int    `json:"kitten_count"`
	KittenAge            *string `json:"kitten_age"`
	MedicalConcern       bool    `json:"medical_concern"`
	MedicalDescription   *string `json:"medical_description"`
	IsEmergency          bool    `json:"is_emergency"`
	ThirdPartyReport     bool    `json:"third_party_report"`
	ReporterRelationship *string `json:"reporter_relationship"`
	PropertyOwnerContact *string `json:"property_owner_contact"`
	AwarenessMonths      *int    `json:"awareness_months"`
}

// PatchSubmissionRequest is a partial update. Nil means "leave unchanged";
// unified fields, legacy fields, or both may arrive in one call, and the
// response echoes the full reconciled record.
type PatchSubmissionRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Zip       *string `json:"zip"`
	County    *string `json:"county"`

	OwnershipStatus      *string `json:"ownership_status"`
	CatCount             *int    `json:"cat_count"`
	FixedStatus          *string `json:"fixed_status"`
	HasKittens           *bool   `json:"has_kittens"`
	KittenCount          *int    `json:"kitten_count"`
	KittenAge            *string `json:"kitten_age"`
	MedicalConcern       *bool   `json:"medical_concern"`
	MedicalDescription   *string `json:"medical_description"`
	IsEmergency          *bool   `json:"is_emergency"`
	ThirdPartyReport     *bool   `json:"third_party_report"`
	ReporterRelationship *string `json:"reporter_relationship"`
	PropertyOwnerContact *string `json:"property_owner_contact"`
	AwarenessMonths      *int    `json:"awareness_months"`

	Status           *string    `json:"status"`
	AppointmentDate  *time.Time `json:"appointment_date"`
	ClearAppointment bool       `json:"clear_appointment"`
	PriorityOverride *string    `json:"priority_override"`

	ContactStatus         *string    `json:"contact_status"`
	LegacyStatus          *string    `json:"legacy_status"`
	LegacyAppointmentDate *time.Time `json:"legacy_appointment_date"`
	LegacyNotes           *string    `json:"legacy_notes"`

	IsTest *bool `json:"is_test"`
}

// ResetSubmissionRequest controls whether the operator reset also clears the
// appointment date.
type ResetSubmissionRequest struct {
	ClearAppointment bool `json:"clear_appointment"`
}

// BulkStatusRequest applies one status to many submissions, one guarded
// command per row.
type BulkStatusRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Status string   `json:"status" binding:"required"`
}

// BulkStatusRowResult reports the per-row outcome of a bulk update.
type BulkStatusRowResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CreateCommunicationRequest appends a note or contact attempt.
type CreateCommunicationRequest struct {
	Kind   string  `json:"kind" binding:"required,oneof=note contact_attempt"`
	Method *string `json:"method"`
	Result *string `json:"result"`
	Notes  string  `json:"notes"`
}

// SubmissionQuery captures the queue listing parameters.
type SubmissionQuery struct {
	Mode     string `form:"mode"`
	Category string `form:"category"`
	Search   string `form:"search"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// Filter converts the query into the repository filter.
func (q SubmissionQuery) Filter() models.SubmissionFilter {
	return models.SubmissionFilter{
		Mode:     models.QueueMode(q.Mode),
		Category: models.TriageCategory(q.Category),
		Search:   q.Search,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
}
