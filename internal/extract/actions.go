package extract

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	dbpkg "github.com/dtnitsch/llm-chat-extractor/pkg/db"
	"github.com/dtnitsch/llm-chat-extractor/pkg/extractor"
	"github.com/dtnitsch/llm-chat-extractor/pkg/storage"
)

// Commands returns the extract and classify commands.
func Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "extract",
			Usage:     "Extract orders or products from one assistant message",
			ArgsUsage: " ",
			Flags: append(common.InputFlags(),
				common.FormatFlag(),
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "Write the result to a file instead of stdout",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Overwrite the --out file if it exists",
				},
				&cli.BoolFlag{
					Name:  "record",
					Usage: "Store diagnostics in the SQLite database",
				},
				&cli.BoolFlag{
					Name:  "diagnostics",
					Usage: "Include detection signals and diagnostics in the output",
				},
			),
			Action: ExtractAction,
		},
		{
			Name:   "classify",
			Usage:  "Print the content kind of a message and the signals behind it",
			Flags:  append(common.InputFlags(), common.FormatFlag()),
			Action: ClassifyAction,
		},
	}
}

func ExtractAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	logger := common.NewLogger(c, cfg.LogLevel)

	text, err := common.ReadInput(c)
	if err != nil {
		return err
	}

	opts := []extractor.Option{
		extractor.WithConfig(cfg.Extract),
		extractor.WithLogger(logger),
	}
	s := &storage.Storage{}
	outPath := c.String("out")
	if outPath != "" && !c.Bool("force") && s.HasFile(outPath) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
	}

	if c.Bool("record") {
		database, err := dbpkg.OpenPath(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		opts = append(opts, extractor.WithRecorder(database))
	}

	res := extractor.New(opts...).Analyze(text)

	var out interface{} = res.Content
	if c.Bool("diagnostics") {
		out = res
	}
	data, err := common.Encode(out, c.String("format"))
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := s.SaveFile(outPath, data); err != nil {
			return err
		}
		logger.Info("wrote result", "path", outPath, "kind", res.Content.Kind)
		return nil
	}

	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

func ClassifyAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	text, err := common.ReadInput(c)
	if err != nil {
		return err
	}

	x := extractor.New(extractor.WithConfig(cfg.Extract), extractor.WithLogger(common.NewLogger(c, cfg.LogLevel)))
	data, err := common.Encode(x.Classify(text), c.String("format"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
