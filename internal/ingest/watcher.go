package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
)

const (
	ProcessedDir = "processed"
	FailedDir    = "failed"

	defaultInterval = 10 * time.Second
	stampLayout     = "20060102_150405"
)

// Config controls a Watcher.
type Config struct {
	// ProfileID is rebuilt once after any cycle that processed at least one document.
	ProfileID uuid.UUID
	// Notify wakes Watch early on inbox changes (fsnotify) in addition to the ticker.
	Notify   bool
	Debounce time.Duration
}

// Watcher scans an inbox, runs each file through the pipeline and files it away under
// processed/ or failed/. One Watcher must own an inbox at a time.
type Watcher struct {
	cfg       Config
	ingestor  *FSIngestor
	processor DocumentProcessor
	rebuilder ProfileRebuilder
	now       func() time.Time
	logger    *slog.Logger
}

func NewWatcher(cfg Config, ingestor *FSIngestor, processor DocumentProcessor, rebuilder ProfileRebuilder, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:       cfg,
		ingestor:  ingestor,
		processor: processor,
		rebuilder: rebuilder,
		now:       time.Now,
		logger:    logger,
	}
}

// RunOnce processes every supported top-level file in inbox, in name order. A failing file
// never stops the loop. The profile is rebuilt once if anything was processed.
func (w *Watcher) RunOnce(ctx context.Context, inbox string) (CycleResult, error) {
	var res CycleResult

	entries, err := os.ReadDir(inbox)
	if err != nil {
		w.logger.Error("failed to read inbox", "inbox", inbox, "error", err)
		return res, fmt.Errorf("read inbox: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if e.IsDir() {
			continue
		}
		res.Scanned++
		name := e.Name()
		if IsHidden(name) || !AllowedExt(filepath.Ext(name)) {
			continue
		}
		res.Matched++

		fr := w.handleFile(ctx, inbox, filepath.Join(inbox, name))
		switch {
		case fr.Deduplicated:
			res.Deduplicated++
		case fr.Err != "":
			res.Failed++
		default:
			res.Processed++
		}
		res.Files = append(res.Files, fr)
	}

	if res.Processed > 0 && w.rebuilder != nil {
		sum, err := w.rebuilder.Rebuild(ctx, w.cfg.ProfileID)
		if err != nil {
			w.logger.Error("profile rebuild failed", "profile_id", w.cfg.ProfileID, "error", err)
			return res, fmt.Errorf("rebuild profile: %w", err)
		}
		res.Rebuilt = true
		w.logger.Info("profile rebuilt after ingest",
			"profile_id", sum.ProfileID,
			"documents_used", sum.DocumentsUsed,
			"skills", sum.SkillsCount,
		)
	}

	if res.Matched > 0 {
		w.logger.Info("ingest cycle finished",
			"inbox", inbox,
			"matched", res.Matched,
			"processed", res.Processed,
			"failed", res.Failed,
			"deduplicated", res.Deduplicated,
		)
	}
	return res, nil
}

func (w *Watcher) handleFile(ctx context.Context, inbox, path string) (fr FileResult) {
	fr.SourcePath = path
	log := w.logger.With("path", path)
	dest := FailedDir

	defer func() {
		if r := recover(); r != nil {
			fr.Err = fmt.Sprintf("panic: %v", r)
			fr.Status = string(constants.StatusFailed)
			dest = FailedDir
			log.Error("panic while ingesting file", "panic", r)
		}
		moved, err := w.move(path, filepath.Join(inbox, dest))
		if err != nil {
			log.Error("failed to move file", "destination", dest, "error", err)
			return
		}
		fr.MovedTo = moved
	}()

	in, err := w.ingestor.IngestPath(ctx, path)
	if err != nil {
		log.Error("ingest failed", "error", err)
		fr.Err = err.Error()
		fr.Status = string(constants.StatusFailed)
		return fr
	}
	fr.DocumentID = in.Document.ID
	fr.HashHex = in.HashHex
	if in.Deduplicated {
		fr.Deduplicated = true
		fr.Status = string(in.Document.ProcessingStatus)
		dest = ProcessedDir
		return fr
	}

	out, err := w.processor.Process(ctx, in.Document.ID)
	fr.Status = string(out.Status)
	if err != nil {
		log.Error("document processing failed", "document_id", in.Document.ID, "error", err)
		fr.Err = err.Error()
		return fr
	}
	dest = ProcessedDir
	return fr
}

// move relocates path into dir as "<timestamp>_<name>", adding a numeric suffix when that
// name is taken. Falls back to copy and remove when rename fails (e.g. across devices).
func (w *Watcher) move(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	name := filepath.Base(path)
	stem := w.now().Format(stampLayout) + "_" + strings.TrimSuffix(name, filepath.Ext(name))
	ext := filepath.Ext(name)

	dst := filepath.Join(dir, stem+ext)
	for n := 1; ; n++ {
		if _, err := os.Lstat(dst); errors.Is(err, os.ErrNotExist) {
			break
		}
		dst = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
	}

	if err := os.Rename(path, dst); err == nil {
		return dst, nil
	}
	if err := copyFile(path, dst); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return dst, fmt.Errorf("remove source: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}

// Watch runs a cycle immediately and then on every tick, or sooner on an inbox change when
// Notify is set. It stops between cycles once ctx is cancelled and returns ctx.Err().
func (w *Watcher) Watch(ctx context.Context, inbox string, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultInterval
	}
	var wake <-chan struct{}
	if w.cfg.Notify {
		ch, err := NotifyChanges(ctx, inbox, w.cfg.Debounce, w.logger)
		if err != nil {
			w.logger.Warn("inbox notifications unavailable; polling only", "inbox", inbox, "error", err)
		} else {
			wake = ch
		}
	}

	w.logger.Info("watching inbox", "inbox", inbox, "interval", interval.String(), "notify", wake != nil)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx, inbox); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("ingest cycle failed", "inbox", inbox, "error", err)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopped", "inbox", inbox)
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil
			}
		}
	}
}
