package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
)

const documentsTable = "career_documents"

var documentColumns = []string{
	"id", "title", "document_type", "description", "file_ref", "file_name", "file_size", "file_type",
	"content_hash", "extracted_text", "structured_data", "processing_status", "processing_notes",
	"priority", "is_active", "uploaded_at", "processed_at", "updated_at",
}

type DocumentRepository interface {
	Create(ctx context.Context, nd entity.NewDocument) (*entity.CareerDocument, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CareerDocument, error)
	// FindActiveByHash returns ErrNotFound when no active document has these bytes.
	FindActiveByHash(ctx context.Context, hash string) (*entity.CareerDocument, error)
	// Claim moves a pending document to processing. Any other state yields ErrNotPending.
	Claim(ctx context.Context, id uuid.UUID) (*entity.CareerDocument, error)
	SaveExtractedText(ctx context.Context, id uuid.UUID, text string) error
	Complete(ctx context.Context, id uuid.UUID, structured json.RawMessage, notes string, processedAt time.Time) error
	Fail(ctx context.Context, id uuid.UUID, notes string) error
	ResetToPending(ctx context.Context, id uuid.UUID, notes string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// ListAggregatable returns completed, active documents by priority asc, uploaded_at desc, id asc.
	ListAggregatable(ctx context.Context) ([]*entity.CareerDocument, error)
	ListByStatus(ctx context.Context, status constants.ProcessingStatus, limit int) ([]*entity.CareerDocument, error)
	CountByStatus(ctx context.Context) (map[constants.ProcessingStatus]int, error)
}

type documentRepo struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

func (r *documentRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect)
}

func (r *documentRepo) Create(ctx context.Context, nd entity.NewDocument) (*entity.CareerDocument, error) {
	v := common.NewValidator()
	v.Field("title", nd.Title, common.Required, common.MaxLength(200))
	v.Field("file_ref", nd.FileRef, common.Required)
	v.Field("document_type", string(nd.DocumentType), common.OneOf(constants.DocumentTypeStrings()...))
	if v.HasErrors() {
		return nil, v.Error()
	}
	if nd.Priority <= 0 {
		nd.Priority = constants.DefaultPriority
	}
	now := r.now()
	if nd.UploadedAt.IsZero() {
		nd.UploadedAt = now
	}
	id := uuid.New()

	query, args := r.builder().Insert(documentsTable).
		Columns("id", "title", "document_type", "description", "file_ref", "file_name", "file_size",
			"file_type", "content_hash", "processing_status", "priority", "is_active", "uploaded_at", "updated_at").
		Values(id.String(), nd.Title, string(nd.DocumentType), nd.Description, nd.FileRef, nd.FileName, nd.FileSize,
			nd.FileType, nd.ContentHash, string(constants.StatusPending), nd.Priority, true, nd.UploadedAt.UTC(), now).
		Query()
	if _, err := r.db.Driver.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create document", "title", nd.Title, "file_ref", nd.FileRef, "error", err)
		return nil, fmt.Errorf("%w: create document: %v", common.ErrDatabase, err)
	}
	return r.GetByID(ctx, id)
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CareerDocument, error) {
	docs, err := r.query(ctx, r.builder().Select(documentColumns...).
		From(r.builder().Table(documentsTable)).
		Where(entsql.EQ("id", id.String())))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return docs[0], nil
}

func (r *documentRepo) FindActiveByHash(ctx context.Context, hash string) (*entity.CareerDocument, error) {
	docs, err := r.query(ctx, r.builder().Select(documentColumns...).
		From(r.builder().Table(documentsTable)).
		Where(entsql.And(entsql.EQ("content_hash", hash), entsql.EQ("is_active", true))).
		OrderBy(entsql.Asc("uploaded_at")).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("document with hash %s: %w", hash, common.ErrNotFound)
	}
	return docs[0], nil
}

func (r *documentRepo) Claim(ctx context.Context, id uuid.UUID) (*entity.CareerDocument, error) {
	query, args := r.builder().Update(documentsTable).
		Set("processing_status", string(constants.StatusProcessing)).
		Set("processing_notes", "Processing started").
		Set("updated_at", r.now()).
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.EQ("processing_status", string(constants.StatusPending)),
		)).
		Query()
	n, err := r.exec(ctx, query, args)
	if err != nil {
		return nil, err
	}
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s is %s", common.ErrNotPending, id, doc.ProcessingStatus)
	}
	return doc, nil
}

func (r *documentRepo) SaveExtractedText(ctx context.Context, id uuid.UUID, text string) error {
	query, args := r.builder().Update(documentsTable).
		Set("extracted_text", text).
		Set("updated_at", r.now()).
		Where(entsql.EQ("id", id.String())).
		Query()
	return r.mustAffect(ctx, id, query, args)
}

func (r *documentRepo) Complete(ctx context.Context, id uuid.UUID, structured json.RawMessage, notes string, processedAt time.Time) error {
	query, args := r.builder().Update(documentsTable).
		Set("structured_data", nullableJSON(structured)).
		Set("processing_status", string(constants.StatusCompleted)).
		Set("processing_notes", notes).
		Set("processed_at", processedAt.UTC()).
		Set("updated_at", r.now()).
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.EQ("processing_status", string(constants.StatusProcessing)),
		)).
		Query()
	n, err := r.exec(ctx, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: document %s is no longer processing", common.ErrConflict, id)
	}
	return nil
}

func (r *documentRepo) Fail(ctx context.Context, id uuid.UUID, notes string) error {
	query, args := r.builder().Update(documentsTable).
		Set("processing_status", string(constants.StatusFailed)).
		Set("processing_notes", notes).
		Set("updated_at", r.now()).
		Where(entsql.EQ("id", id.String())).
		Query()
	return r.mustAffect(ctx, id, query, args)
}

// ResetToPending is the explicit reprocess trigger; it clears previous results.
func (r *documentRepo) ResetToPending(ctx context.Context, id uuid.UUID, notes string) error {
	query, args := r.builder().Update(documentsTable).
		Set("processing_status", string(constants.StatusPending)).
		Set("processing_notes", notes).
		Set("extracted_text", "").
		SetNull("structured_data").
		SetNull("processed_at").
		Set("updated_at", r.now()).
		Where(entsql.EQ("id", id.String())).
		Query()
	return r.mustAffect(ctx, id, query, args)
}

func (r *documentRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query, args := r.builder().Update(documentsTable).
		Set("is_active", active).
		Set("updated_at", r.now()).
		Where(entsql.EQ("id", id.String())).
		Query()
	return r.mustAffect(ctx, id, query, args)
}

func (r *documentRepo) ListAggregatable(ctx context.Context) ([]*entity.CareerDocument, error) {
	return r.query(ctx, r.builder().Select(documentColumns...).
		From(r.builder().Table(documentsTable)).
		Where(entsql.And(
			entsql.EQ("processing_status", string(constants.StatusCompleted)),
			entsql.EQ("is_active", true),
		)).
		OrderBy(entsql.Asc("priority"), entsql.Desc("uploaded_at"), entsql.Asc("id")))
}

func (r *documentRepo) ListByStatus(ctx context.Context, status constants.ProcessingStatus, limit int) ([]*entity.CareerDocument, error) {
	sel := r.builder().Select(documentColumns...).
		From(r.builder().Table(documentsTable)).
		Where(entsql.EQ("processing_status", string(status))).
		OrderBy(entsql.Asc("uploaded_at"), entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.query(ctx, sel)
}

func (r *documentRepo) CountByStatus(ctx context.Context) (map[constants.ProcessingStatus]int, error) {
	query, args := r.builder().Select("processing_status", "COUNT(*)").
		From(r.builder().Table(documentsTable)).
		GroupBy("processing_status").
		Query()
	rows, err := r.db.Driver.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: count documents: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := make(map[constants.ProcessingStatus]int, len(constants.Statuses()))
	for _, s := range constants.Statuses() {
		out[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%w: scan count: %v", common.ErrDatabase, err)
		}
		out[constants.ProcessingStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *documentRepo) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := r.db.Driver.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("document update failed", "error", err)
		return 0, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", common.ErrDatabase, err)
	}
	return n, nil
}

func (r *documentRepo) mustAffect(ctx context.Context, id uuid.UUID, query string, args []any) error {
	n, err := r.exec(ctx, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *documentRepo) query(ctx context.Context, sel *entsql.Selector) ([]*entity.CareerDocument, error) {
	query, args := sel.Query()
	rows, err := r.db.Driver.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("document query failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.CareerDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func scanDocument(s rowScanner) (*entity.CareerDocument, error) {
	var (
		d          entity.CareerDocument
		id         string
		docType    string
		status     string
		structured sql.NullString
		uploaded   nullTime
		processed  nullTime
		updated    nullTime
	)
	err := s.Scan(&id, &d.Title, &docType, &d.Description, &d.FileRef, &d.FileName, &d.FileSize, &d.FileType,
		&d.ContentHash, &d.ExtractedText, &structured, &status, &d.ProcessingNotes,
		&d.Priority, &d.IsActive, &uploaded, &processed, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan document: %v", common.ErrDatabase, err)
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad document id %q: %v", common.ErrDatabase, id, err)
	}
	d.DocumentType = constants.DocumentType(docType)
	d.ProcessingStatus = constants.ProcessingStatus(status)
	if structured.Valid {
		d.StructuredData = json.RawMessage(structured.String)
	}
	d.UploadedAt = uploaded.Time
	d.ProcessedAt = processed.ptr()
	d.UpdatedAt = updated.Time
	return &d, nil
}
