// Package pipeline drives one career document through text extraction and structured
// extraction, recording the outcome on the document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/repository"
)

const notesExtractionEmpty = "No text could be extracted"

// Outcome reports what Process did to a document. Err mirrors the returned error.
type Outcome struct {
	DocumentID uuid.UUID
	Status     constants.ProcessingStatus
	Notes      string
	Characters int
	Record     *entity.StructuredRecord
	Err        error
}

// Processor coordinates the text stage then the parse stage.
type Processor struct {
	Logger *slog.Logger
	Docs   repository.DocumentRepository
	Text   *TextStage
	Parse  *ParseStage
}

func NewProcessor(logger *slog.Logger, docs repository.DocumentRepository, text *TextStage, parse *ParseStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Docs: docs, Text: text, Parse: parse}
}

// Process claims a pending document and runs it to completed or failed.
// A document that is not pending is left untouched and ErrNotPending is returned.
// Every failure after the claim is recorded on the document and also returned.
func (p *Processor) Process(ctx context.Context, id uuid.UUID) (out Outcome, err error) {
	out.DocumentID = id
	doc, err := p.Docs.Claim(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotPending) {
			p.Logger.Info("document not pending; skipping", "document_id", id, "error", err)
		} else {
			p.Logger.Error("processor.claim.failed", "document_id", id, "error", err)
		}
		out.Err = err
		return out, err
	}
	out.Status = constants.StatusProcessing
	log := p.Logger.With("document_id", id, "document_type", doc.DocumentType)
	log.Info("processing started", "file_name", doc.FileName, "file_type", doc.FileType)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", common.ErrInternal, r)
		}
		if err != nil {
			out = p.fail(ctx, log, out, err)
			err = out.Err
		}
	}()

	text, err := p.Text.Run(ctx, doc)
	if err != nil {
		log.Error("processor.text.failed", "error", err)
		return out, err
	}
	out.Characters = len([]rune(text.Text))
	log.Info("processor.text.ok",
		"format", text.Format,
		"method", text.Method,
		"pages", text.Pages,
		"chars", out.Characters,
	)

	rec, notes, err := p.Parse.Run(ctx, doc, text)
	if err != nil {
		log.Error("processor.parse.failed", "error", err)
		return out, err
	}
	out.Status = constants.StatusCompleted
	out.Notes = notes
	out.Record = rec
	log.Info("processor.parse.ok", "notes", notes)
	return out, nil
}

// Reprocess resets a document to pending, clearing previous results, then processes it.
func (p *Processor) Reprocess(ctx context.Context, id uuid.UUID) (Outcome, error) {
	if err := p.Docs.ResetToPending(ctx, id, "Reprocess requested"); err != nil {
		return Outcome{DocumentID: id, Err: err}, fmt.Errorf("reset document: %w", err)
	}
	return p.Process(ctx, id)
}

func (p *Processor) fail(ctx context.Context, log *slog.Logger, out Outcome, cause error) Outcome {
	notes := "Processing failed: " + cause.Error()
	if errors.Is(cause, common.ErrExtractionEmpty) {
		notes = notesExtractionEmpty
	}
	// record the failure even when the caller's context is already done
	if err := p.Docs.Fail(context.WithoutCancel(ctx), out.DocumentID, notes); err != nil {
		log.Error("failed to record document failure", "error", err, "cause", cause)
		cause = errors.Join(cause, err)
	}
	out.Status = constants.StatusFailed
	out.Notes = notes
	out.Err = cause
	out.Record = nil
	return out
}
