package db

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	dbpkg "github.com/dtnitsch/llm-chat-extractor/pkg/db"
)

// openDatabase opens the database named by --db or the config file.
func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	database, err := dbpkg.OpenPath(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runID, err := database.GetLatestRunID()
		if err != nil {
			return 0, err
		}
		if runID == 0 {
			return 0, fmt.Errorf("no runs found. Run 'llm-chat-extractor batch --record --input ...' first")
		}
		return runID, nil
	}

	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || runID <= 0 {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
