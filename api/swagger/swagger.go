package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TNR Intake API",
        "description": "Submission lifecycle engine for community-cat intake case management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Staff login and identity"},
        {"name": "Uploads", "description": "Source-file ingestion"},
        {"name": "Submissions", "description": "Intake submission lifecycle"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current staff profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/uploads": {
            "get": {
                "tags": ["Uploads"],
                "summary": "List ingested files",
                "parameters": [
                    {"name": "source_system", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "batch_id", "in": "query", "type": "string"},
                    {"name": "include_deleted", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Uploads"],
                "summary": "Ingest a source export file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "source_system", "in": "formData", "type": "string", "required": true, "enum": ["airtable", "clinichq", "webform"]},
                    {"name": "source_table", "in": "formData", "type": "string", "required": true},
                    {"name": "batch_id", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate content; meta carries existing_upload_id"}
                }
            }
        },
        "/uploads/{id}": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Get upload",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Uploads"],
                "summary": "Apply an action (reset)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or not in an eligible state"}
                }
            },
            "delete": {
                "tags": ["Uploads"],
                "summary": "Soft-delete an upload",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found or not in an eligible state"},
                    "409": {"description": "Row held by a stuck transaction"}
                }
            }
        },
        "/uploads/{id}/download-url": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Issue a signed download token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/uploads/{id}/download": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Download original file bytes",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File content"}
                }
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List submissions by queue mode",
                "parameters": [
                    {"name": "mode", "in": "query", "type": "string", "enum": ["attention", "scheduled", "recent", "complete", "all", "legacy", "test"]},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Create an intake submission",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/bulk-status": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Apply one status to many submissions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-row outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Get submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Submissions"],
                "summary": "Partially update a submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PatchSubmissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Full reconciled record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or not in an eligible state"},
                    "409": {"description": "Row held by a stuck transaction"}
                }
            }
        },
        "/submissions/{id}/archive": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Archive a submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/reset": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Reset a submission back to new",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ResetSubmissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/convert": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Convert into a trapping request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Already converted or not found"}
                }
            }
        },
        "/submissions/{id}/communications": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List the communication journal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Append a note or contact attempt",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCommunicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/history": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List the edit history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/history/{entryId}/undo": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Revert one history entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "entryId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Outside the undo window or field not revertible"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "UploadActionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["reset"]}
            },
            "required": ["action"]
        },
        "CreateSubmissionRequest": {
            "type": "object",
            "properties": {
                "source": {"type": "string", "enum": ["web", "phone", "in_person", "paper"]},
                "is_test": {"type": "boolean"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "zip": {"type": "string"},
                "county": {"type": "string"},
                "ownership_status": {"type": "string"},
                "cat_count": {"type": "integer"},
                "fixed_status": {"type": "string"},
                "has_kittens": {"type": "boolean"},
                "kitten_count": {"type": "integer"},
                "kitten_age": {"type": "string"},
                "medical_concern": {"type": "boolean"},
                "medical_description": {"type": "string"},
                "is_emergency": {"type": "boolean"},
                "third_party_report": {"type": "boolean"},
                "reporter_relationship": {"type": "string"},
                "property_owner_contact": {"type": "string"},
                "awareness_months": {"type": "integer"}
            },
            "required": ["source", "first_name", "last_name", "ownership_status"]
        },
        "PatchSubmissionRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "status": {"type": "string", "enum": ["new", "in_progress", "scheduled", "complete", "archived"]},
                "appointment_date": {"type": "string", "format": "date-time"},
                "clear_appointment": {"type": "boolean"},
                "priority_override": {"type": "string", "enum": ["", "high", "normal", "low"]},
                "contact_status": {"type": "string"},
                "legacy_status": {"type": "string"},
                "legacy_appointment_date": {"type": "string", "format": "date-time"},
                "legacy_notes": {"type": "string"},
                "is_test": {"type": "boolean"}
            }
        },
        "ResetSubmissionRequest": {
            "type": "object",
            "properties": {
                "clear_appointment": {"type": "boolean"}
            }
        },
        "BulkStatusRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            },
            "required": ["ids", "status"]
        },
        "CreateCommunicationRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["note", "contact_attempt"]},
                "method": {"type": "string"},
                "result": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["kind"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
