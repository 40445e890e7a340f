package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	"github.com/dtnitsch/llm-chat-extractor/models"
	dbpkg "github.com/dtnitsch/llm-chat-extractor/pkg/db"
)

// Command returns the diagnostics command and its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "diagnostics",
		Usage: "Inspect diagnostics recorded with --record",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded diagnostics, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum rows to show"},
					&cli.StringFlag{Name: "engine", Usage: "Only this engine (orders, products, facade)"},
					&cli.StringFlag{Name: "type", Usage: "Only this type (classified, dropped, fallback)"},
					&cli.Int64Flag{Name: "run", Usage: "Only diagnostics of this batch run"},
					common.FormatFlag(),
				},
				Action: ListAction,
			},
			{
				Name:  "stats",
				Usage: "Show diagnostic totals and the most frequent drop reasons",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top", Value: 10, Usage: "Number of drop reasons to show"},
				},
				Action: StatsAction,
			},
			{
				Name:   "runs",
				Usage:  "List recorded batch runs",
				Flags:  []cli.Flag{&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum runs to show"}},
				Action: RunsAction,
			},
			{
				Name:      "run",
				Usage:     "Show one batch run (latest when no ID is given)",
				ArgsUsage: "[run-id]",
				Action:    RunAction,
			},
			{
				Name:   "clear",
				Usage:  "Delete every recorded diagnostic",
				Action: ClearAction,
			},
		},
	}
}

func ListAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	typ := models.DiagnosticType(c.String("type"))
	if typ != "" && !typ.Valid() {
		return fmt.Errorf("unknown diagnostic type %q", typ)
	}

	rows, err := database.ListDiagnostics(dbpkg.DiagnosticFilter{
		Limit:  c.Int("limit"),
		Engine: c.String("engine"),
		Type:   typ,
		RunID:  c.Int64("run"),
	})
	if err != nil {
		return fmt.Errorf("failed to list diagnostics: %w", err)
	}

	w := c.App.Writer
	if c.IsSet("format") {
		diags := make([]models.Diagnostic, len(rows))
		for i, r := range rows {
			diags[i] = r.Diagnostic
		}
		data, err := common.Encode(diags, c.String("format"))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No diagnostics found")
		return nil
	}

	fmt.Fprintf(w, "%-6s %-20s %-10s %-9s %-8s %-30s %-40s\n",
		"ID", "Created", "Type", "Engine", "Segment", "Reason", "Snippet")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, r := range rows {
		segment := "-"
		if r.Segment >= 0 {
			segment = fmt.Sprintf("%d", r.Segment)
		}
		reason := r.Reason
		if r.Type == models.DiagnosticClassified {
			reason = "kind=" + string(r.Kind)
		}
		fmt.Fprintf(w, "%-6d %-20s %-10s %-9s %-8s %-30s %-40s\n",
			r.DiagnosticID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Type,
			r.Engine,
			segment,
			common.Snippet(reason, 30),
			common.Snippet(r.Snippet, 40),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d diagnostics\n", len(rows))
	return nil
}

func StatsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := database.Stats(c.Int("top"))
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Diagnostics: %d\n", stats.Total)
	if stats.Total == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nBy type:\n")
	for _, typ := range []models.DiagnosticType{models.DiagnosticClassified, models.DiagnosticDropped, models.DiagnosticFallback} {
		fmt.Fprintf(w, "  %-12s %d\n", typ, stats.ByType[typ])
	}

	if len(stats.ByKind) > 0 {
		kinds := make([]string, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)

		fmt.Fprintf(w, "\nClassified as:\n")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-12s %d\n", k, stats.ByKind[models.ContentKind(k)])
		}
	}

	if len(stats.TopReasons) > 0 {
		fmt.Fprintf(w, "\nTop drop reasons:\n")
		fmt.Fprintf(w, "  %-9s %-40s %s\n", "Engine", "Reason", "Count")
		fmt.Fprintln(w, "  "+strings.Repeat("-", 58))
		for _, r := range stats.TopReasons {
			fmt.Fprintf(w, "  %-9s %-40s %d\n", r.Engine, common.Snippet(r.Reason, 40), r.Count)
		}
	}
	return nil
}

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	w := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	fmt.Fprintf(w, "%-6s %-20s %-8s %-8s %-8s %-8s %-8s %-6s %-30s\n",
		"ID", "Created", "Workers", "Msgs", "Orders", "Products", "Text", "Drops", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-20s %-8d %-8d %-8d %-8d %-8d %-6d %-30s\n",
			r.RunID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Workers,
			r.MessageCount,
			r.OrdersCount,
			r.ProductsCount,
			r.TextCount,
			r.DropCount,
			r.Source,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'llm-chat-extractor diagnostics list --run <id>' to see a run's diagnostics\n")
	return nil
}

func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	r, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	w := c.App.Writer
	status := "running"
	if r.FinishedAt.Valid {
		status = "finished " + r.FinishedAt.Time.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(w, "Run %d (%s)\n", r.RunID, status)
	fmt.Fprintf(w, "  Source:   %s\n", r.Source)
	fmt.Fprintf(w, "  Out dir:  %s\n", r.OutDir)
	fmt.Fprintf(w, "  Workers:  %d\n", r.Workers)
	fmt.Fprintf(w, "  Messages: %d (orders %d, products %d, text %d)\n", r.MessageCount, r.OrdersCount, r.ProductsCount, r.TextCount)
	fmt.Fprintf(w, "  Drops:    %d\n", r.DropCount)
	return nil
}

func ClearAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := database.ClearDiagnostics()
	if err != nil {
		return fmt.Errorf("failed to clear diagnostics: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Deleted %d diagnostics\n", n)
	return nil
}
