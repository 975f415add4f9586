package models

import "time"

// UploadStatus is the processing state of an ingested source file.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
	UploadStatusExpired    UploadStatus = "expired"
	// UploadStatusDeleted hides the row from normal views. Staged data
	// derived from the file is never removed.
	UploadStatusDeleted UploadStatus = "deleted"
)

// Source systems whose exports are ingested. ClinicHQ exports arrive as
// correlated multi-file sets and get a derived batch id when none is supplied.
const (
	SourceSystemAirtable = "airtable"
	SourceSystemClinicHQ = "clinichq"
	SourceSystemWebform  = "webform"
)

// Upload is one ingested source file, admitted exactly once by content hash.
type Upload struct {
	ID               string       `db:"id" json:"id"`
	ContentHash      string       `db:"content_hash" json:"content_hash"`
	OriginalFilename string       `db:"original_filename" json:"original_filename"`
	StoredFilename   string       `db:"stored_filename" json:"stored_filename"`
	SizeBytes        int64        `db:"size_bytes" json:"size_bytes"`
	BatchID          *string      `db:"batch_id" json:"batch_id,omitempty"`
	SourceSystem     string       `db:"source_system" json:"source_system"`
	SourceTable      string       `db:"source_table" json:"source_table"`
	Status           UploadStatus `db:"status" json:"status"`
	ErrorMessage     *string      `db:"error_message" json:"error_message,omitempty"`
	// InlineContent holds the raw bytes when the filesystem write failed and
	// ingestion fell back to storing content in the row.
	InlineContent []byte    `db:"inline_content" json:"-"`
	StoredInline  bool      `db:"stored_inline" json:"stored_inline"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// UploadFilter narrows upload listings.
type UploadFilter struct {
	SourceSystem   string
	Status         UploadStatus
	BatchID        string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
