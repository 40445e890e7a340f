package serve

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	dbpkg "github.com/dtnitsch/llm-chat-extractor/pkg/db"
	"github.com/dtnitsch/llm-chat-extractor/pkg/extractor"
	"github.com/dtnitsch/llm-chat-extractor/pkg/metrics"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve extraction over HTTP with Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides serve.addr)",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "Store diagnostics in the SQLite database",
			},
		},
		Action: ServeAction,
	}
}

func ServeAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Serve.Addr = c.String("addr")
	}
	logger := common.NewLogger(c, cfg.LogLevel)

	reg := metrics.NewRegistry()
	opts := []extractor.Option{
		extractor.WithConfig(cfg.Extract),
		extractor.WithLogger(logger),
		extractor.WithRecorder(reg),
	}
	if c.Bool("record") {
		database, err := dbpkg.OpenPath(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		opts = append(opts, extractor.WithRecorder(database))
	}

	if !c.Bool("verbose") {
		gin.SetMode(gin.ReleaseMode)
	}

	h := NewHandler(extractor.New(opts...), reg)
	srv := NewServer(cfg.Serve, logger, NewRouter(logger, h, reg))
	return srv.Run(c.Context)
}
