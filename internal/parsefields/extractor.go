// Package parsefields turns extracted document text into a type-tagged structured record
// using keyword tables and regular expressions. Nothing here calls out to a model.
package parsefields

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/lexicon"
)

type Extractor struct {
	tables      *lexicon.Tables
	now         func() time.Time
	logger      *slog.Logger
	strengthRes []*regexp.Regexp
}

type Option func(*Extractor)

// WithClock overrides the clock used for processed_at.
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) { x.now = now }
}

func NewExtractor(tables *lexicon.Tables, logger *slog.Logger, opts ...Option) *Extractor {
	if tables == nil {
		tables = lexicon.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	x := &Extractor{tables: tables, now: time.Now, logger: logger}
	for _, kw := range tables.StrengthKeywords() {
		x.strengthRes = append(x.strengthRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract builds the record for docType. Missing sections yield empty values; the only error
// is ErrEmptyText for blank input.
func (x *Extractor) Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.StructuredRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := &entity.StructuredRecord{
		DocumentType: docType,
		ProcessedAt:  x.now().UTC().Format(time.RFC3339),
	}
	switch docType {
	case constants.MasterCV:
		rec.CV = x.cv(text)
	case constants.CoverLetter:
		rec.CoverLetter = x.coverLetter(text)
	case constants.Certificate:
		rec.Certificate = x.certificate(text)
	case constants.Transcript:
		rec.Transcript = x.transcript(text)
	case constants.Portfolio:
		rec.Portfolio = x.portfolio(text)
	case constants.Recommendation:
		rec.Recommendation = x.recommendation(text)
	case constants.ProjectDoc:
		rec.ProjectDoc = x.projectDoc(text)
	case constants.Achievement:
		rec.Achievement = x.achievement(text)
	case constants.OtherDocument:
		rec.Generic = x.generic(text)
	default:
		x.logger.Warn("unknown document type, using generic extraction", "document_type", docType)
		rec.DocumentType = constants.OtherDocument
		rec.Generic = x.generic(text)
	}
	if rec.Payload() == nil {
		return nil, fmt.Errorf("no payload built for %s", rec.DocumentType)
	}
	return rec, nil
}
