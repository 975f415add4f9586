package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	"github.com/forgottenfelines/tnr-intake-api/internal/status"
	"github.com/forgottenfelines/tnr-intake-api/internal/triage"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

type submissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	Update(ctx context.Context, s *models.Submission) error
	UpdateStatusFields(ctx context.Context, s *models.Submission) error
	SetCreatedRequestID(ctx context.Context, id, requestID string) error
	RecordContactAttempt(ctx context.Context, id string, at time.Time) error
}

type historyStore interface {
	Create(ctx context.Context, e *models.EditHistoryEntry) error
	GetByID(ctx context.Context, id string) (*models.EditHistoryEntry, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]models.EditHistoryEntry, error)
}

type communicationStore interface {
	Create(ctx context.Context, e *models.CommunicationLogEntry) error
	ListBySubmission(ctx context.Context, submissionID string) ([]models.CommunicationLogEntry, error)
}

// RequestCreator turns an accepted submission into a trapping request in the
// downstream case system and returns its id.
type RequestCreator interface {
	CreateRequest(ctx context.Context, s *models.Submission) (string, error)
}

type submissionMetrics interface {
	ObserveTriage(category models.TriageCategory)
	ObserveLockContention()
}

// SubmissionServiceConfig tunes the orchestrator.
type SubmissionServiceConfig struct {
	UndoWindow time.Duration
}

// SubmissionService orchestrates the submission lifecycle: intake with
// automatic triage, queue reads, guarded mutations with audit history, status
// transitions mirrored onto the legacy fields, and conversion.
type SubmissionService struct {
	repo       submissionStore
	history    historyStore
	comms      communicationStore
	classifier *triage.Classifier
	creator    RequestCreator
	cache      *QueueCache
	metrics    submissionMetrics
	logger     *zap.Logger
	validate   *validator.Validate
	cfg        SubmissionServiceConfig
	now        func() time.Time
}

// NewSubmissionService constructs the orchestrator. creator, cache, and
// metrics may be nil; the corresponding feature is then disabled.
func NewSubmissionService(repo submissionStore, history historyStore, comms communicationStore, classifier *triage.Classifier, creator RequestCreator, cache *QueueCache, metrics submissionMetrics, logger *zap.Logger, cfg SubmissionServiceConfig) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UndoWindow <= 0 {
		cfg.UndoWindow = 24 * time.Hour
	}
	return &SubmissionService{
		repo:       repo,
		history:    history,
		comms:      comms,
		classifier: classifier,
		creator:    creator,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		validate:   newRequestValidator(),
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// newRequestValidator reads the same tags gin binding does, so programmatic
// callers get identical validation.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// Create admits a new intake report. Classification runs inline; a classifier
// failure must never lose the submission, so a panic degrades to needs_review.
func (s *SubmissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest) (*models.Submission, error) {
	// Intake also arrives from importers that bypass HTTP binding.
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission")
	}

	sub := &models.Submission{
		SubmittedAt:          s.now(),
		Source:               models.SourceChannel(req.Source),
		IsTest:               req.IsTest,
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:                normalizePhone(req.Phone),
		Address:              strings.TrimSpace(req.Address),
		City:                 strings.TrimSpace(req.City),
		Zip:                  strings.TrimSpace(req.Zip),
		County:               strings.TrimSpace(req.County),
		OwnershipStatus:      req.OwnershipStatus,
		CatCount:             req.CatCount,
		FixedStatus:          req.FixedStatus,
		HasKittens:           req.HasKittens,
		KittenCount:          req.KittenCount,
		KittenAge:            req.KittenAge,
		MedicalConcern:       req.MedicalConcern,
		MedicalDescription:   req.MedicalDescription,
		IsEmergency:          req.IsEmergency,
		ThirdPartyReport:     req.ThirdPartyReport,
		ReporterRelationship: req.ReporterRelationship,
		PropertyOwnerContact: req.PropertyOwnerContact,
		AwarenessMonths:      req.AwarenessMonths,
		Status:               models.StatusNew,
	}

	s.classify(sub)

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	s.invalidate(ctx)
	return sub, nil
}

// classify runs the triage classifier and writes the result onto the
// submission. Never fails: a panic is downgraded to needs_review.
func (s *SubmissionService) classify(sub *models.Submission) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("triage classifier panicked", zap.Any("panic", r), zap.String("submission_id", sub.ID))
			cat := models.CategoryNeedsReview
			sub.TriageCategory = &cat
			sub.TriageScore = nil
			sub.TriageReasons = []string{"Automatic triage failed; needs staff review"}
		}
	}()

	result := s.classifier.Classify(triage.Facts{
		OwnershipStatus: sub.OwnershipStatus,
		CatCount:        sub.CatCount,
		FixedStatus:     sub.FixedStatus,
		HasKittens:      sub.HasKittens,
		MedicalConcern:  sub.MedicalConcern,
		IsEmergency:     sub.IsEmergency,
		AwarenessMonths: sub.AwarenessMonths,
		County:          sub.County,
	})
	sub.TriageCategory = &result.Category
	sub.TriageScore = &result.Score
	sub.TriageReasons = result.Reasons
	if s.metrics != nil {
		s.metrics.ObserveTriage(result.Category)
	}
}

// Get loads one submission. Legacy rows with no unified status are surfaced
// under their derived status; the derivation is read-time only and never
// persisted.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	s.decorate(sub)
	return sub, nil
}

// List serves a queue view, via the shared cache when one is configured.
func (s *SubmissionService) List(ctx context.Context, query dto.SubmissionQuery) ([]models.Submission, error) {
	filter := query.Filter()
	if filter.Mode == "" {
		filter.Mode = models.ModeAttention
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	if s.cache != nil {
		if subs, ok := s.cache.Get(ctx, filter); ok {
			return subs, nil
		}
	}

	subs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	for i := range subs {
		s.decorate(&subs[i])
	}
	if s.cache != nil {
		s.cache.Set(ctx, filter, subs)
	}
	return subs, nil
}

// fieldChange is one audited field mutation within a patch.
type fieldChange struct {
	field    string
	oldValue *string
	newValue *string
}

// Patch applies a partial update. Direct-field changes are audited one
// history entry each; a change to any triage input reclassifies; a status
// change goes through the transition rules and the legacy bridge. The write
// is last-write-wins at field granularity.
func (s *SubmissionService) Patch(ctx context.Context, id string, req dto.PatchSubmissionRequest, editedBy string) (*models.Submission, error) {
	var (
		sub     *models.Submission
		before  *models.Submission
		changes []fieldChange
		err     error
	)
	for attempt := 0; ; attempt++ {
		sub, before, changes, err = s.preparePatch(ctx, id, req)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return sub, nil
		}
		if !triageInputsChanged(before, sub) {
			break
		}
		s.classify(sub)
		if attempt > 0 {
			break
		}
		// A concurrent fact edit between our read and this write would be
		// clobbered by a stale classification. Re-validate the facts we read,
		// redoing the patch once from fresh state when they moved.
		fresh, ferr := s.repo.GetByID(ctx, id)
		if ferr != nil || !triageInputsChanged(fresh, before) {
			break
		}
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, s.guardError(err, "failed to update submission")
	}

	s.recordHistory(ctx, sub.ID, changes, editedBy, nil)
	s.invalidate(ctx)
	return sub, nil
}

// preparePatch reads the current row, applies the request on top of it, and
// returns the reconciled record plus the audited diff.
func (s *SubmissionService) preparePatch(ctx context.Context, id string, req dto.PatchSubmissionRequest) (*models.Submission, *models.Submission, []fieldChange, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if sub.Status == models.StatusUnknown {
		// derived only; restore the stored value before writing back
		sub.Status = ""
	}

	before := *sub
	changes := s.merge(sub, req)

	if req.Status != nil {
		to := models.UnifiedStatus(*req.Status)
		if !status.Valid(to) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", *req.Status))
		}
		from := s.effective(&before)
		if !status.CanTransition(from, to) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot transition from %s to %s", from, to))
		}
		changes = append(changes, s.applyStatus(sub, to, req.AppointmentDate, req.ClearAppointment)...)
	} else if req.AppointmentDate != nil || req.ClearAppointment {
		old := fmtTimePtr(sub.AppointmentDate)
		if req.ClearAppointment {
			sub.AppointmentDate = nil
		} else {
			sub.AppointmentDate = req.AppointmentDate
		}
		if nv := fmtTimePtr(sub.AppointmentDate); !equalPtr(old, nv) {
			changes = append(changes, fieldChange{"appointment_date", old, nv})
		}
	}

	return sub, &before, changes, nil
}

// merge copies every non-nil request field onto the submission and returns
// the audited diff. Status and appointment are handled by the caller.
func (s *SubmissionService) merge(sub *models.Submission, req dto.PatchSubmissionRequest) []fieldChange {
	var changes []fieldChange
	set := func(field string, dst *string, src *string) {
		if src != nil && *dst != *src {
			changes = append(changes, fieldChange{field, strPtr(*dst), strPtr(*src)})
			*dst = *src
		}
	}
	setInt := func(field string, dst **int, src *int) {
		if src != nil && !equalIntPtr(*dst, src) {
			changes = append(changes, fieldChange{field, fmtIntPtr(*dst), fmtIntPtr(src)})
			v := *src
			*dst = &v
		}
	}
	setBool := func(field string, dst *bool, src *bool) {
		if src != nil && *dst != *src {
			changes = append(changes, fieldChange{field, strPtr(strconv.FormatBool(*dst)), strPtr(strconv.FormatBool(*src))})
			*dst = *src
		}
	}
	setStrPtr := func(field string, dst **string, src *string) {
		if src != nil && !equalPtr(*dst, src) {
			changes = append(changes, fieldChange{field, *dst, src})
			v := *src
			*dst = &v
		}
	}

	set("first_name", &sub.FirstName, req.FirstName)
	set("last_name", &sub.LastName, req.LastName)
	set("email", &sub.Email, req.Email)
	if req.Phone != nil {
		normalized := normalizePhone(*req.Phone)
		set("phone", &sub.Phone, &normalized)
	}
	set("address", &sub.Address, req.Address)
	set("city", &sub.City, req.City)
	set("zip", &sub.Zip, req.Zip)
	set("county", &sub.County, req.County)

	set("ownership_status", &sub.OwnershipStatus, req.OwnershipStatus)
	setInt("cat_count", &sub.CatCount, req.CatCount)
	set("fixed_status", &sub.FixedStatus, req.FixedStatus)
	setBool("has_kittens", &sub.HasKittens, req.HasKittens)
	setInt("kitten_count", &sub.KittenCount, req.KittenCount)
	setStrPtr("kitten_age", &sub.KittenAge, req.KittenAge)
	setBool("medical_concern", &sub.MedicalConcern, req.MedicalConcern)
	setStrPtr("medical_description", &sub.MedicalDescription, req.MedicalDescription)
	setBool("is_emergency", &sub.IsEmergency, req.IsEmergency)
	setBool("third_party_report", &sub.ThirdPartyReport, req.ThirdPartyReport)
	setStrPtr("reporter_relationship", &sub.ReporterRelationship, req.ReporterRelationship)
	setStrPtr("property_owner_contact", &sub.PropertyOwnerContact, req.PropertyOwnerContact)
	setInt("awareness_months", &sub.AwarenessMonths, req.AwarenessMonths)

	if req.PriorityOverride != nil {
		po := models.PriorityOverride(*req.PriorityOverride)
		if sub.PriorityOverride != po {
			changes = append(changes, fieldChange{"priority_override", strPtr(string(sub.PriorityOverride)), strPtr(string(po))})
			sub.PriorityOverride = po
		}
	}

	set("contact_status", &sub.ContactStatus, req.ContactStatus)
	set("legacy_status", &sub.LegacyStatus, req.LegacyStatus)
	if req.LegacyAppointmentDate != nil && !equalTimePtr(sub.LegacyAppointmentDate, req.LegacyAppointmentDate) {
		changes = append(changes, fieldChange{"legacy_appointment_date", fmtTimePtr(sub.LegacyAppointmentDate), fmtTimePtr(req.LegacyAppointmentDate)})
		v := *req.LegacyAppointmentDate
		sub.LegacyAppointmentDate = &v
	}
	setStrPtr("legacy_notes", &sub.LegacyNotes, req.LegacyNotes)
	setBool("is_test", &sub.IsTest, req.IsTest)

	return changes
}

// applyStatus performs the unified status write plus its legacy mirror and
// returns the audited changes. Transition validity is the caller's job.
func (s *SubmissionService) applyStatus(sub *models.Submission, to models.UnifiedStatus, appointment *time.Time, clearAppointment bool) []fieldChange {
	var changes []fieldChange

	oldStatus := string(sub.Status)
	if sub.Status != to {
		changes = append(changes, fieldChange{"status", strPtr(oldStatus), strPtr(string(to))})
	}
	sub.Status = to

	// Clearing the appointment is the operator's explicit choice; a reset on
	// its own leaves it in place.
	oldAppt := fmtTimePtr(sub.AppointmentDate)
	switch {
	case clearAppointment:
		sub.AppointmentDate = nil
	case appointment != nil:
		v := *appointment
		sub.AppointmentDate = &v
	}
	if nv := fmtTimePtr(sub.AppointmentDate); !equalPtr(oldAppt, nv) {
		changes = append(changes, fieldChange{"appointment_date", oldAppt, nv})
	}

	legacy := status.Apply(to, sub.AppointmentDate, status.LegacyFields{
		Status:          sub.LegacyStatus,
		ContactStatus:   sub.ContactStatus,
		AppointmentDate: sub.LegacyAppointmentDate,
	})
	sub.LegacyStatus = legacy.Status
	sub.ContactStatus = legacy.ContactStatus
	sub.LegacyAppointmentDate = legacy.AppointmentDate

	return changes
}

// Transition moves a submission to a new unified status through the guard.
func (s *SubmissionService) Transition(ctx context.Context, id string, to models.UnifiedStatus, appointment *time.Time, clearAppointment bool, editedBy string) (*models.Submission, error) {
	if !status.Valid(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", to))
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := sub.Status
	if !status.CanTransition(from, to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot transition from %s to %s", from, to))
	}
	if sub.Status == models.StatusUnknown {
		sub.Status = ""
	}

	changes := s.applyStatus(sub, to, appointment, clearAppointment)
	sub.UpdatedAt = s.now()
	if err := s.repo.UpdateStatusFields(ctx, sub); err != nil {
		return nil, s.guardError(err, "failed to update submission status")
	}

	s.recordHistory(ctx, sub.ID, changes, editedBy, nil)
	s.invalidate(ctx)
	return sub, nil
}

// Archive moves a submission to archived. Allowed from every state.
func (s *SubmissionService) Archive(ctx context.Context, id, editedBy string) (*models.Submission, error) {
	return s.Transition(ctx, id, models.StatusArchived, nil, false, editedBy)
}

// Reset returns a scheduled or complete submission to new so it can be
// re-worked. The legacy mirror drops back to Pending Review; only the
// bridge's own contact marker is cleared.
func (s *SubmissionService) Reset(ctx context.Context, id string, req dto.ResetSubmissionRequest, editedBy string) (*models.Submission, error) {
	return s.Transition(ctx, id, models.StatusNew, nil, req.ClearAppointment, editedBy)
}

// Convert turns a submission into a trapping request, exactly once. The
// set-once contract lives in the SQL predicate; a second convert surfaces as
// not-found-or-wrong-state rather than overwriting the link.
func (s *SubmissionService) Convert(ctx context.Context, id, editedBy string) (*models.Submission, error) {
	if s.creator == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "request creation is not configured")
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Converted() {
		return nil, appErrors.Clone(appErrors.ErrWrongState, "submission has already been converted")
	}

	requestID, err := s.creator.CreateRequest(ctx, sub)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create trapping request")
	}

	if err := s.repo.SetCreatedRequestID(ctx, id, requestID); err != nil {
		// Lost the race to another convert; the downstream request is
		// orphaned and needs manual cleanup, so say which one.
		s.logger.Warn("convert raced; downstream request orphaned",
			zap.String("submission_id", id), zap.String("request_id", requestID))
		return nil, s.guardError(err, "failed to link trapping request")
	}

	sub.CreatedRequestID = &requestID
	s.recordHistory(ctx, id, []fieldChange{{"created_request_id", nil, strPtr(requestID)}}, editedBy, nil)
	s.invalidate(ctx)
	return sub, nil
}

// BulkStatus applies one status to many submissions, one guarded command per
// row. Row failures never abort the batch.
func (s *SubmissionService) BulkStatus(ctx context.Context, req dto.BulkStatusRequest, editedBy string) []dto.BulkStatusRowResult {
	results := make([]dto.BulkStatusRowResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		_, err := s.Transition(ctx, id, models.UnifiedStatus(req.Status), nil, false, editedBy)
		row := dto.BulkStatusRowResult{ID: id, OK: err == nil}
		if err != nil {
			row.Error = appErrors.FromError(err).Message
		}
		results = append(results, row)
	}
	return results
}

// AddCommunication appends a journal entry. A contact attempt also bumps the
// submission's counter and last-contacted timestamp.
func (s *SubmissionService) AddCommunication(ctx context.Context, id string, req dto.CreateCommunicationRequest, author string) (*models.CommunicationLogEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	entry := &models.CommunicationLogEntry{
		SubmissionID: id,
		Kind:         models.CommunicationKind(req.Kind),
		Method:       req.Method,
		Result:       req.Result,
		Notes:        req.Notes,
		Author:       author,
	}
	if err := s.comms.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record communication")
	}

	if entry.Kind == models.CommunicationContactAttempt {
		if err := s.repo.RecordContactAttempt(ctx, id, s.now()); err != nil {
			s.logger.Warn("failed to bump contact attempt counter", zap.String("submission_id", id), zap.Error(err))
		}
		s.invalidate(ctx)
	}
	return entry, nil
}

// ListCommunications returns the journal, newest first.
func (s *SubmissionService) ListCommunications(ctx context.Context, id string) ([]models.CommunicationLogEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.comms.ListBySubmission(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list communications")
	}
	return entries, nil
}

// History returns the append-only audit trail, newest first.
func (s *SubmissionService) History(ctx context.Context, id string) ([]models.EditHistoryEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.history.ListBySubmission(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list history")
	}
	return entries, nil
}

// undoableFields maps an audited field name to the setter that writes a
// recorded value back onto the submission. Status is deliberately absent: a
// status reversal replays the transition rules and the legacy bridge instead
// of writing the raw value back. Fields in neither path cannot be reverted.
var undoableFields = map[string]func(sub *models.Submission, v *string) error{
	"first_name":       func(s *models.Submission, v *string) error { s.FirstName = deref(v); return nil },
	"last_name":        func(s *models.Submission, v *string) error { s.LastName = deref(v); return nil },
	"email":            func(s *models.Submission, v *string) error { s.Email = deref(v); return nil },
	"phone":            func(s *models.Submission, v *string) error { s.Phone = deref(v); return nil },
	"address":          func(s *models.Submission, v *string) error { s.Address = deref(v); return nil },
	"city":             func(s *models.Submission, v *string) error { s.City = deref(v); return nil },
	"zip":              func(s *models.Submission, v *string) error { s.Zip = deref(v); return nil },
	"county":           func(s *models.Submission, v *string) error { s.County = deref(v); return nil },
	"ownership_status": func(s *models.Submission, v *string) error { s.OwnershipStatus = deref(v); return nil },
	"fixed_status":     func(s *models.Submission, v *string) error { s.FixedStatus = deref(v); return nil },
	"cat_count":        func(s *models.Submission, v *string) error { return parseIntPtr(v, &s.CatCount) },
	"kitten_count":     func(s *models.Submission, v *string) error { return parseIntPtr(v, &s.KittenCount) },
	"awareness_months": func(s *models.Submission, v *string) error { return parseIntPtr(v, &s.AwarenessMonths) },
	"has_kittens":      func(s *models.Submission, v *string) error { return parseBool(v, &s.HasKittens) },
	"medical_concern":  func(s *models.Submission, v *string) error { return parseBool(v, &s.MedicalConcern) },
	"is_emergency":     func(s *models.Submission, v *string) error { return parseBool(v, &s.IsEmergency) },
	"third_party_report": func(s *models.Submission, v *string) error {
		return parseBool(v, &s.ThirdPartyReport)
	},
	"is_test":     func(s *models.Submission, v *string) error { return parseBool(v, &s.IsTest) },
	"kitten_age":  func(s *models.Submission, v *string) error { s.KittenAge = copyPtr(v); return nil },
	"medical_description": func(s *models.Submission, v *string) error {
		s.MedicalDescription = copyPtr(v)
		return nil
	},
	"reporter_relationship": func(s *models.Submission, v *string) error {
		s.ReporterRelationship = copyPtr(v)
		return nil
	},
	"property_owner_contact": func(s *models.Submission, v *string) error {
		s.PropertyOwnerContact = copyPtr(v)
		return nil
	},
	"legacy_notes": func(s *models.Submission, v *string) error { s.LegacyNotes = copyPtr(v); return nil },
	"priority_override": func(s *models.Submission, v *string) error {
		s.PriorityOverride = models.PriorityOverride(deref(v))
		return nil
	},
	"contact_status":          func(s *models.Submission, v *string) error { s.ContactStatus = deref(v); return nil },
	"legacy_status":           func(s *models.Submission, v *string) error { s.LegacyStatus = deref(v); return nil },
	"appointment_date":        func(s *models.Submission, v *string) error { return parseTimePtr(v, &s.AppointmentDate) },
	"legacy_appointment_date": func(s *models.Submission, v *string) error { return parseTimePtr(v, &s.LegacyAppointmentDate) },
}

// Undo reverts one history entry by writing its recorded old value back. The
// reversal is itself audited, so undo never rewrites history, it extends it.
func (s *SubmissionService) Undo(ctx context.Context, submissionID, entryID, editedBy string) (*models.Submission, error) {
	entry, err := s.history.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "history entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history entry")
	}
	if entry.SubmissionID != submissionID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "history entry not found")
	}
	if s.now().Sub(entry.CreatedAt) > s.cfg.UndoWindow {
		return nil, appErrors.Clone(appErrors.ErrValidation, "change is outside the undo window")
	}
	if entry.Field == "status" {
		return s.undoStatus(ctx, submissionID, entry, editedBy)
	}
	apply, ok := undoableFields[entry.Field]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q cannot be reverted", entry.Field))
	}

	sub, err := s.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.StatusUnknown {
		sub.Status = ""
	}

	before := *sub
	if err := apply(sub, entry.OldValue); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	if triageInputsChanged(&before, sub) {
		s.classify(sub)
	}
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, s.guardError(err, "failed to revert change")
	}

	reason := models.EditReasonUndo
	s.recordHistory(ctx, submissionID, []fieldChange{{entry.Field, entry.NewValue, entry.OldValue}}, editedBy, &reason)
	s.invalidate(ctx)
	return sub, nil
}

// undoStatus reverts a status entry by replaying its recorded old value
// through the transition rules and the legacy bridge, exactly as a patch
// would. Writing the raw value back would desynchronize the legacy mirror.
func (s *SubmissionService) undoStatus(ctx context.Context, submissionID string, entry *models.EditHistoryEntry, editedBy string) (*models.Submission, error) {
	to := models.UnifiedStatus(deref(entry.OldValue))
	if !status.Valid(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("recorded status %q is not writable", deref(entry.OldValue)))
	}

	sub, err := s.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	from := sub.Status
	if !status.CanTransition(from, to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("cannot transition from %s to %s", from, to))
	}
	if sub.Status == models.StatusUnknown {
		sub.Status = ""
	}

	changes := s.applyStatus(sub, to, nil, false)
	sub.UpdatedAt = s.now()
	if err := s.repo.UpdateStatusFields(ctx, sub); err != nil {
		return nil, s.guardError(err, "failed to revert status")
	}

	reason := models.EditReasonUndo
	s.recordHistory(ctx, submissionID, changes, editedBy, &reason)
	s.invalidate(ctx)
	return sub, nil
}

// recordHistory appends one entry per change. History failures are logged,
// not surfaced; the mutation itself already committed.
func (s *SubmissionService) recordHistory(ctx context.Context, submissionID string, changes []fieldChange, editedBy string, reason *string) {
	for _, c := range changes {
		entry := &models.EditHistoryEntry{
			SubmissionID: submissionID,
			Field:        c.field,
			OldValue:     c.oldValue,
			NewValue:     c.newValue,
			EditedBy:     editedBy,
			Reason:       reason,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			s.logger.Error("failed to record edit history",
				zap.String("submission_id", submissionID), zap.String("field", c.field), zap.Error(err))
		}
	}
}

// decorate fills the derived status for legacy rows that never got a unified
// one.
func (s *SubmissionService) decorate(sub *models.Submission) {
	sub.Status = s.effective(sub)
}

func (s *SubmissionService) effective(sub *models.Submission) models.UnifiedStatus {
	if sub.Status != "" {
		return sub.Status
	}
	return status.Derive(status.LegacyFields{
		Status:          sub.LegacyStatus,
		ContactStatus:   sub.ContactStatus,
		AppointmentDate: sub.LegacyAppointmentDate,
	}, sub.ContactAttempts)
}

// guardError converts repository errors, counting contention.
func (s *SubmissionService) guardError(err error, msg string) error {
	if errors.Is(err, appErrors.ErrLockContention) {
		if s.metrics != nil {
			s.metrics.ObserveLockContention()
		}
		return appErrors.ErrLockContention
	}
	if errors.Is(err, appErrors.ErrWrongState) {
		return appErrors.ErrWrongState
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
}

func (s *SubmissionService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// triageInputsChanged reports whether any classifier input differs between
// the two snapshots.
func triageInputsChanged(a, b *models.Submission) bool {
	return a.OwnershipStatus != b.OwnershipStatus ||
		!equalIntPtr(a.CatCount, b.CatCount) ||
		a.FixedStatus != b.FixedStatus ||
		a.HasKittens != b.HasKittens ||
		a.MedicalConcern != b.MedicalConcern ||
		a.IsEmergency != b.IsEmergency ||
		!equalIntPtr(a.AwarenessMonths, b.AwarenessMonths) ||
		a.County != b.County
}

// normalizePhone strips formatting down to digits and drops a leading US
// country code.
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

func strPtr(s string) *string { return &s }

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func copyPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func fmtIntPtr(v *int) *string {
	if v == nil {
		return nil
	}
	return strPtr(strconv.Itoa(*v))
}

func fmtTimePtr(v *time.Time) *string {
	if v == nil {
		return nil
	}
	return strPtr(v.UTC().Format(time.RFC3339))
}

func parseIntPtr(v *string, dst **int) error {
	if v == nil || *v == "" {
		*dst = nil
		return nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		return fmt.Errorf("recorded value %q is not a number", *v)
	}
	*dst = &n
	return nil
}

func parseBool(v *string, dst *bool) error {
	if v == nil || *v == "" {
		*dst = false
		return nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return fmt.Errorf("recorded value %q is not a boolean", *v)
	}
	*dst = b
	return nil
}

func parseTimePtr(v *string, dst **time.Time) error {
	if v == nil || *v == "" {
		*dst = nil
		return nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return fmt.Errorf("recorded value %q is not a timestamp", *v)
	}
	*dst = &t
	return nil
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
