package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/parsefields"
	"github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/textextract"
)

type FieldExtractor interface {
	Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.StructuredRecord, error)
}

type ParseStage struct {
	Logger *slog.Logger
	Docs   repository.DocumentRepository
	Fields FieldExtractor
	Now    func() time.Time
}

func NewParseStage(logger *slog.Logger, docs repository.DocumentRepository, fe FieldExtractor) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{
		Logger: logger,
		Docs:   docs,
		Fields: fe,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run builds the structured record for doc from text, validates it and completes the document.
// Returns the record and the completion notes.
func (p *ParseStage) Run(ctx context.Context, doc *entity.CareerDocument, text textextract.Result) (*entity.StructuredRecord, string, error) {
	rec, err := p.Fields.Extract(ctx, text.Text, doc.DocumentType)
	if err != nil {
		return nil, "", fmt.Errorf("structured extraction: %w", err)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return rec, "", fmt.Errorf("encode structured data: %w", err)
	}
	if err := parsefields.ValidateRecord(raw); err != nil {
		return rec, "", err
	}

	chars := utf8.RuneCountInString(text.Text)
	notes := fmt.Sprintf("Successfully processed %d characters (%d bytes)", chars, text.Bytes)
	if err := p.Docs.Complete(ctx, doc.ID, raw, notes, p.Now()); err != nil {
		return rec, "", fmt.Errorf("complete document: %w", err)
	}

	p.Logger.Info("structured data stored",
		"document_id", doc.ID,
		"document_type", rec.DocumentType,
		"chars", chars,
		"json_bytes", len(raw),
	)
	return rec, notes, nil
}
