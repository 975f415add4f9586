package models

import "time"

// EditReasonUndo tags history entries created by reverting another entry.
const EditReasonUndo = "undo_change"

// EditHistoryEntry is an append-only audit record for one field mutation.
// Entries are never updated or deleted.
type EditHistoryEntry struct {
	ID           string    `db:"id" json:"id"`
	SubmissionID string    `db:"submission_id" json:"submission_id"`
	Field        string    `db:"field" json:"field"`
	OldValue     *string   `db:"old_value" json:"old_value"`
	NewValue     *string   `db:"new_value" json:"new_value"`
	EditedBy     string    `db:"edited_by" json:"edited_by"`
	Reason       *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CommunicationKind distinguishes plain notes from contact attempts.
type CommunicationKind string

const (
	CommunicationNote           CommunicationKind = "note"
	CommunicationContactAttempt CommunicationKind = "contact_attempt"
)

// CommunicationLogEntry is an append-only journal record. A successful
// contact-attempt submit also bumps the submission's contact-attempt counter.
type CommunicationLogEntry struct {
	ID           string            `db:"id" json:"id"`
	SubmissionID string            `db:"submission_id" json:"submission_id"`
	Kind         CommunicationKind `db:"kind" json:"kind"`
	Method       *string           `db:"method" json:"method,omitempty"`
	Result       *string           `db:"result" json:"result,omitempty"`
	Notes        string            `db:"notes" json:"notes"`
	Author       string            `db:"author" json:"author"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}
