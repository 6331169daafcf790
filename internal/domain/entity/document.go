package entity

import "time"

// DocumentCategory classifies a document group. Clients may only download
// REPORT documents.
type DocumentCategory string

const (
	DocumentReport   DocumentCategory = "REPORT"
	DocumentContract DocumentCategory = "CONTRACT"
	DocumentDrawing  DocumentCategory = "DRAWING"
	DocumentOther    DocumentCategory = "OTHER"
)

// DocumentGroup collects the versions of one logical document within a
// project
type DocumentGroup struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  DocumentCategory `json:"category"`
	ProjectID string           `json:"project_id"`
	CreatedAt time.Time        `json:"created_at"`
}

// Document is one immutable version inside a group; versions only grow
type Document struct {
	ID           string           `json:"id"`
	GroupID      string           `json:"group_id"`
	Name         string           `json:"name"`
	FileURL      string           `json:"file_url"`
	Category     DocumentCategory `json:"category"`
	Version      int              `json:"version"`
	UploadedByID string           `json:"uploaded_by_id"`
	CreatedAt    time.Time        `json:"created_at"`
}
