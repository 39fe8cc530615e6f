package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/storage"
	"github.com/joseph-ayodele/career-profile/internal/textextract"
)

type TextExtractor interface {
	Extract(ctx context.Context, format constants.Format, data []byte) (textextract.Result, error)
}

type TextStage struct {
	Docs   repository.DocumentRepository
	Store  storage.Store
	Text   TextExtractor
	Logger *slog.Logger
}

func NewTextStage(docs repository.DocumentRepository, store storage.Store, tx TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Docs: docs, Store: store, Text: tx, Logger: logger}
}

// Run reads the stored bytes of doc, extracts text and persists it.
// A decoder failure is logged and treated as empty text, which fails with ErrExtractionEmpty.
func (s *TextStage) Run(ctx context.Context, doc *entity.CareerDocument) (textextract.Result, error) {
	ext := doc.FileType
	if ext == "" {
		ext = filepath.Ext(doc.FileName)
	}
	format, err := textextract.Detect(ext)
	if err != nil {
		return textextract.Result{}, err
	}

	data, _, err := s.Store.Read(ctx, doc.FileRef)
	if err != nil {
		return textextract.Result{Format: format}, fmt.Errorf("read file: %w", err)
	}

	res, err := s.Text.Extract(ctx, format, data)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) || ctx.Err() != nil {
			return res, err
		}
		s.Logger.Warn("text extraction failed",
			"document_id", doc.ID,
			"format", format,
			"bytes", len(data),
			"error", err,
		)
		res.Text = ""
	}
	if strings.TrimSpace(res.Text) == "" {
		return res, common.ErrExtractionEmpty
	}

	if err := s.Docs.SaveExtractedText(ctx, doc.ID, res.Text); err != nil {
		return res, fmt.Errorf("save extracted text: %w", err)
	}
	return res, nil
}
