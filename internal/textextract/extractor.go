package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
)

const defaultMaxBytes = 20 << 20

type Config struct {
	MaxBytes int64 // 0 -> 20 MiB
}

type Result struct {
	Text     string
	Format   constants.Format
	Pages    int // pdf only
	Bytes    int
	Method   string // "pdf-text" | "docconv" | "docx-xml" | "plain"
	Duration time.Duration
}

// Extractor turns stored file bytes into normalized plain text.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Detect maps a file extension (with or without the dot, any case) to a format.
func Detect(ext string) (constants.Format, error) {
	f := constants.MapExtToFormat(ext)
	if f == "" {
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, constants.NormalizeExt(ext))
	}
	return f, nil
}

// Extract decodes data according to format. Unknown formats return ErrUnsupportedFormat;
// decoder failures (including decoder panics) are returned as errors.
func (e *Extractor) Extract(ctx context.Context, format constants.Format, data []byte) (Result, error) {
	start := time.Now()
	res := Result{Format: format, Bytes: len(data)}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if int64(len(data)) > e.cfg.MaxBytes {
		return res, fmt.Errorf("file too large: %d bytes (max %d)", len(data), e.cfg.MaxBytes)
	}

	var (
		text string
		err  error
	)
	switch format {
	case constants.FormatPDF:
		res.Method = "pdf-text"
		text, res.Pages, err = extractPDF(data)
	case constants.FormatDOCX:
		text, res.Method, err = e.extractDOCX(data)
	case constants.FormatDOC:
		text, res.Method, err = e.extractDOC(data)
	case constants.FormatTXT:
		res.Method = "plain"
		text, err = decodeText(data)
	default:
		return res, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, string(format))
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("extract %s: %w", format, err)
	}
	res.Text = Normalize(text)
	e.logger.Debug("text extracted",
		"format", format,
		"method", res.Method,
		"bytes", res.Bytes,
		"chars", len([]rune(res.Text)),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ExtractFile reads path and extracts it using the format implied by its extension.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Result, error) {
	format, err := Detect(filepath.Ext(path))
	if err != nil {
		e.logger.Error("unsupported extension", "path", path, "error", err)
		return Result{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Format: format}, fmt.Errorf("read file: %w", err)
	}
	return e.Extract(ctx, format, data)
}
