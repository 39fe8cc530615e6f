package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/async"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/server"
)

const usage = `usage: career-admin <command> [flags]

commands:
  status                  document counts by processing status, plus database health
  reprocess  -id UUID     reset a document to pending and process it now
  deactivate -id UUID     exclude a document from aggregation (-activate to undo)
  enqueue    -id UUID     push a processing job onto the Redis queue (-force to reprocess)
  rebuild                 rebuild the profile from completed documents
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(2)
	}

	var err error
	switch cmd {
	case "status":
		err = showStatus(ctx, cfg)
	case "reprocess":
		err = reprocess(ctx, cfg, args)
	case "deactivate":
		err = deactivate(ctx, cfg, args)
	case "enqueue":
		err = enqueue(ctx, cfg, args)
	case "rebuild":
		err = rebuild(ctx, cfg)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		st := common.GRPCStatus(err)
		log.Printf("ERROR (%s): %v", st.Code(), err)
		// exit code is 10 + gRPC code
		os.Exit(10 + int(st.Code()))
	}
}

func idFlag(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "document id")
	return fs, id
}

func parseID(s string) (uuid.UUID, error) {
	if err := common.NewValidator().Field("id", s, common.Required, common.UUID).Error(); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(s), nil
}

// quiet keeps library logging to warnings so command output stays readable.
func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func openApp(ctx context.Context, cfg *common.Config) (*server.App, error) {
	return server.NewApp(ctx, cfg, quiet())
}

func showStatus(ctx context.Context, cfg *common.Config) error {
	app, err := openApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("DB health: FAIL (%w)", err)
	}
	defer app.Close()
	if err := app.DB.HealthCheck(ctx, time.Second); err != nil {
		return fmt.Errorf("DB health: FAIL (%w)", err)
	}
	log.Println("DB health: OK")

	counts, err := app.Docs.CountByStatus(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, st := range constants.Statuses() {
		log.Printf("- %-10s %d", st, counts[st])
		total += counts[st]
	}
	log.Printf("documents: %d", total)

	failed, err := app.Docs.ListByStatus(ctx, constants.StatusFailed, 10)
	if err != nil {
		return err
	}
	for _, d := range failed {
		log.Printf("  failed %s %s: %s", d.ID, d.FileName, d.ProcessingNotes)
	}

	p, err := app.Profiles.GetByID(ctx, app.Profile.ID)
	if err != nil {
		return err
	}
	updated := "never"
	if p.LastUpdatedFromDocuments != nil {
		updated = p.LastUpdatedFromDocuments.Format(time.RFC3339)
	}
	log.Printf("profile %s (%s): %d skills, %d roles, last rebuilt %s",
		p.FullName, p.ID, p.TechnicalSkills.Count(), len(p.WorkExperience), updated)
	return nil
}

func reprocess(ctx context.Context, cfg *common.Config, args []string) error {
	fs, idStr := idFlag("reprocess")
	_ = fs.Parse(args)
	id, err := parseID(*idStr)
	if err != nil {
		return err
	}
	app, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.Processor.Reprocess(ctx, id)
	if err != nil {
		return err
	}
	log.Printf("document %s: %s (%s)", id, out.Status, out.Notes)
	return printSummary(app.Service.Rebuild(ctx, app.Profile.ID))
}

func deactivate(ctx context.Context, cfg *common.Config, args []string) error {
	fs, idStr := idFlag("deactivate")
	activate := fs.Bool("activate", false, "re-activate instead")
	_ = fs.Parse(args)
	id, err := parseID(*idStr)
	if err != nil {
		return err
	}
	app, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Docs.SetActive(ctx, id, *activate); err != nil {
		return err
	}
	log.Printf("document %s active=%t", id, *activate)
	return printSummary(app.Service.Rebuild(ctx, app.Profile.ID))
}

func enqueue(ctx context.Context, cfg *common.Config, args []string) error {
	fs, idStr := idFlag("enqueue")
	force := fs.Bool("force", false, "reset the document to pending before processing")
	_ = fs.Parse(args)
	id, err := parseID(*idStr)
	if err != nil {
		return err
	}
	client, err := server.ConnectRedis(ctx, cfg.Queue, quiet())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	q := async.NewRedisQueue(client, cfg.Queue.Key, quiet())
	job := async.NewJob(id, *force)
	if err := q.Enqueue(ctx, job); err != nil {
		return err
	}
	pending, inFlight, err := q.Len(ctx)
	if err != nil {
		return err
	}
	log.Printf("enqueued %s (trace %s); %d pending, %d in flight", id, job.TraceID, pending, inFlight)
	return nil
}

func rebuild(ctx context.Context, cfg *common.Config) error {
	app, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return printSummary(app.Service.Rebuild(ctx, app.Profile.ID))
}

func printSummary(sum any, err error) error {
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
