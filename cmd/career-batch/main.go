package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use a throwaway SQLite database in a temp dir")
		dir     = flag.String("dir", "", "inbox directory to ingest (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		profile = flag.String("profile", "", "profile full name (defaults to PROFILE_NAME)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "career-profile.xlsx")
	}

	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if *profile != "" {
		cfg.Profile.FullName = *profile
	}
	if *inmem {
		tmp, err := os.MkdirTemp("", "career-batch-*")
		if err != nil {
			logger.Error("failed to create temp dir", "error", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(tmp) }()
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = "file:" + filepath.Join(tmp, "career.db") + "?_pragma=busy_timeout(5000)&_time_format=sqlite"
		cfg.Storage.Root = filepath.Join(tmp, "files")
		logger.Info("using temporary database", "dir", tmp)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("starting ingestion", "dir", *dir, "profile_id", app.Profile.ID)
	res, err := app.Watcher().RunOnce(ctx, *dir)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := app.Export.ExportProfileXLSX(ctx, app.Profile.ID)
	if err != nil {
		logger.Error("failed to export profile", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"scanned", res.Scanned,
		"matched", res.Matched,
		"processed", res.Processed,
		"failed", res.Failed,
		"deduplicated", res.Deduplicated,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files matched: %d\n", res.Matched)
	fmt.Printf("- Processed: %d\n", res.Processed)
	fmt.Printf("- Failed: %d\n", res.Failed)
	fmt.Printf("- Duplicates: %d\n", res.Deduplicated)
	fmt.Printf("- Output: %s\n", *out)

	if res.Failed > 0 {
		for _, f := range res.Files {
			if f.Err != "" {
				fmt.Printf("  ! %s: %s\n", filepath.Base(f.SourcePath), f.Err)
			}
		}
	}
}
