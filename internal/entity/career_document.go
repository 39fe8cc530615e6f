package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
)

// CareerDocument represents one uploaded artifact for data transfer between layers.
type CareerDocument struct {
	ID               uuid.UUID                  `json:"id"`
	Title            string                     `json:"title"`
	DocumentType     constants.DocumentType     `json:"document_type"`
	Description      string                     `json:"description,omitempty"`
	FileRef          string                     `json:"file_ref"`
	FileName         string                     `json:"file_name"`
	FileSize         int64                      `json:"file_size"`
	FileType         string                     `json:"file_type"`
	ContentHash      string                     `json:"content_hash"`
	ExtractedText    string                     `json:"extracted_text,omitempty"`
	StructuredData   json.RawMessage            `json:"structured_data,omitempty"`
	ProcessingStatus constants.ProcessingStatus `json:"processing_status"`
	ProcessingNotes  string                     `json:"processing_notes,omitempty"`
	Priority         int                        `json:"priority"`
	IsActive         bool                       `json:"is_active"`
	UploadedAt       time.Time                  `json:"uploaded_at"`
	ProcessedAt      *time.Time                 `json:"processed_at,omitempty"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// Record decodes StructuredData. It fails for unprocessed documents.
func (d *CareerDocument) Record() (*StructuredRecord, error) {
	if len(d.StructuredData) == 0 {
		return nil, fmt.Errorf("document %s has no structured data", d.ID)
	}
	var rec StructuredRecord
	if err := json.Unmarshal(d.StructuredData, &rec); err != nil {
		return nil, fmt.Errorf("decode structured data: %w", err)
	}
	return &rec, nil
}

// NewDocument carries the fields an ingester or uploader provides.
type NewDocument struct {
	Title        string
	DocumentType constants.DocumentType
	Description  string
	FileRef      string
	FileName     string
	FileSize     int64
	FileType     string
	ContentHash  string
	Priority     int
	UploadedAt   time.Time
}
