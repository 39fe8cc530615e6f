package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/entity"
	"github.com/joseph-ayodele/career-profile/internal/lexicon"
	"github.com/joseph-ayodele/career-profile/internal/repository"
	"github.com/joseph-ayodele/career-profile/internal/storage"
)

// Ingested is what IngestPath produced for one file.
type Ingested struct {
	Document     *entity.CareerDocument
	Deduplicated bool
	HashHex      string
}

// FSIngestor stores a local file and registers it as a pending career document.
type FSIngestor struct {
	Docs   repository.DocumentRepository
	Store  storage.Store
	Tables *lexicon.Tables
	Now    func() time.Time
	Logger *slog.Logger
}

func NewFSIngestor(docs repository.DocumentRepository, store storage.Store, tables *lexicon.Tables, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = lexicon.Default()
	}
	return &FSIngestor{
		Docs:   docs,
		Store:  store,
		Tables: tables,
		Now:    func() time.Time { return time.Now().UTC() },
		Logger: logger,
	}
}

// IngestPath saves the file at path and creates its document. Bytes already held by an active
// document are reported as Deduplicated and no new document is created; a previously failed
// document with the same bytes is reset to pending so it is retried.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (Ingested, error) {
	var out Ingested

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	name := filepath.Base(abs)
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.Logger.Warn("close file error", "path", abs, "error", err)
		}
	}(f)

	obj, err := i.Store.Save(ctx, name, f)
	if err != nil {
		return out, fmt.Errorf("store file: %w", err)
	}
	out.HashHex = obj.SHA256

	existing, err := i.Docs.FindActiveByHash(ctx, obj.SHA256)
	switch {
	case err == nil && existing.ProcessingStatus == constants.StatusFailed:
		if err := i.Docs.ResetToPending(ctx, existing.ID, "Re-ingested from "+name); err != nil {
			return out, fmt.Errorf("reset failed document: %w", err)
		}
		i.Logger.Info("retrying previously failed document", "document_id", existing.ID, "file_name", name)
		existing.ProcessingStatus = constants.StatusPending
		out.Document = existing
		return out, nil
	case err == nil:
		i.Logger.Info("duplicate file skipped", "document_id", existing.ID, "file_name", name, "hash", obj.SHA256)
		out.Document = existing
		out.Deduplicated = true
		return out, nil
	case !errors.Is(err, common.ErrNotFound):
		return out, fmt.Errorf("lookup by hash: %w", err)
	}

	dt := i.Tables.ClassifyFilename(name)
	doc, err := i.Docs.Create(ctx, entity.NewDocument{
		Title:        TitleFromName(name),
		DocumentType: dt,
		Description:  "Ingested from " + name,
		FileRef:      obj.Ref,
		FileName:     name,
		FileSize:     obj.Size,
		FileType:     ext,
		ContentHash:  obj.SHA256,
		Priority:     i.Tables.Priority(dt),
		UploadedAt:   i.Now(),
	})
	if err != nil {
		return out, fmt.Errorf("create document: %w", err)
	}
	i.Logger.Info("document created",
		"document_id", doc.ID,
		"document_type", dt,
		"priority", doc.Priority,
		"file_name", name,
	)
	out.Document = doc
	return out, nil
}
