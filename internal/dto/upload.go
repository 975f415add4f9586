package dto

// CreateUploadRequest carries the multipart metadata alongside the file.
type CreateUploadRequest struct {
	SourceSystem string `form:"source_system" binding:"required,oneof=airtable clinichq webform"`
	SourceTable  string `form:"source_table" binding:"required"`
	BatchID      string `form:"batch_id"`
}

// UploadActionRequest drives PATCH /uploads/:id.
type UploadActionRequest struct {
	Action string `json:"action" binding:"required,oneof=reset"`
}

// UploadQuery captures upload listing parameters.
type UploadQuery struct {
	SourceSystem   string `form:"source_system"`
	Status         string `form:"status"`
	BatchID        string `form:"batch_id"`
	IncludeDeleted bool   `form:"include_deleted"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}
