package batch

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	"github.com/dtnitsch/llm-chat-extractor/pkg/caching"
	dbpkg "github.com/dtnitsch/llm-chat-extractor/pkg/db"
	"github.com/dtnitsch/llm-chat-extractor/pkg/extractor"
	"github.com/dtnitsch/llm-chat-extractor/pkg/manifest"
	"github.com/dtnitsch/llm-chat-extractor/pkg/mapreduce"
	"github.com/dtnitsch/llm-chat-extractor/pkg/storage"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Extract every message of a YAML or JSON transcript",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Transcript file with messages: [{id, text}]",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of concurrent workers",
				Value:   4,
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for per-message results and the summary manifest",
				Value:   "lce-results",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "Store the run and its diagnostics in the SQLite database",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Reuse results of messages already extracted with the same config (cached messages are not recorded again)",
			},
			&cli.DurationFlag{
				Name:  "cache-ttl",
				Usage: "Maximum age of a cached result (0 keeps them forever)",
				Value: 24 * time.Hour,
			},
		},
		Action: BatchAction,
	}
}

func BatchAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	logger := common.NewLogger(c, cfg.LogLevel)

	workers := c.Int("workers")
	if workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", workers)
	}

	source := c.String("input")
	transcript, err := LoadTranscript(source)
	if err != nil {
		return err
	}
	if len(transcript.Messages) == 0 {
		fmt.Fprintf(c.App.Writer, "Transcript %s has no messages\n", source)
		return nil
	}

	outDir := c.String("out-dir")
	opts := []extractor.Option{
		extractor.WithConfig(cfg.Extract),
		extractor.WithLogger(logger),
	}

	var database *dbpkg.DB
	var runID int64
	if c.Bool("record") {
		database, err = dbpkg.OpenPath(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		runID, err = database.CreateRun(source, workers, outDir)
		if err != nil {
			return err
		}
		opts = append(opts, extractor.WithRecorder(database.RunRecorder(runID)))
	}

	p := &pool{
		logger:    logger,
		extractor: extractor.New(opts...),
		storage:   &storage.Storage{},
		outDir:    outDir,
	}
	if dir := c.String("cache-dir"); dir != "" {
		p.cache, err = caching.NewCache(dir, c.Duration("cache-ttl"), cfg.Extract)
		if err != nil {
			return err
		}
		if n, err := p.cache.Prune(); err != nil {
			logger.Warn("Failed to prune cache", "dir", dir, "error", err)
		} else if n > 0 {
			logger.Debug("Pruned cache", "dir", dir, "removed", n)
		}
	}

	results, reasons := p.run(transcript.Messages, workers)
	counts := countResults(results)

	if database != nil {
		if err := database.FinishRun(runID, dbpkg.RunCounts{
			Messages: counts.Messages,
			Orders:   counts.Orders,
			Products: counts.Products,
			Text:     counts.Text,
			Drops:    counts.Drops,
		}); err != nil {
			logger.Warn("Failed to finish run", "run_id", runID, "error", err)
		}
	}

	messageResults := make([]manifest.MessageResult, len(results))
	for i, r := range results {
		messageResults[i] = r.MessageResult
	}
	summaryPath, err := manifest.GenerateSummary(outDir, source, runID, messageResults, reasons, p.storage)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Processed %d messages: %d orders, %d products, %d text, %d failed\n",
		counts.Messages, counts.Orders, counts.Products, counts.Text, counts.Failed)
	if counts.Cached > 0 {
		fmt.Fprintf(w, "Cached: %d\n", counts.Cached)
	}
	if runID > 0 {
		fmt.Fprintf(w, "Run: %d\n", runID)
	}
	fmt.Fprintf(w, "Summary: %s\n", summaryPath)
	if len(reasons) > 0 {
		fmt.Fprintf(w, "\nTop drop reasons:\n")
		mapreduce.FprintTopN(w, reasons, 5)
	}

	if counts.Failed > 0 {
		return fmt.Errorf("%d of %d messages failed", counts.Failed, counts.Messages)
	}
	return nil
}
