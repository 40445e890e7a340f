package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/batch"
	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	dbcli "github.com/dtnitsch/llm-chat-extractor/internal/db"
	"github.com/dtnitsch/llm-chat-extractor/internal/extract"
	"github.com/dtnitsch/llm-chat-extractor/internal/serve"
	"github.com/dtnitsch/llm-chat-extractor/pkg/help"
)

func newApp() *cli.App {
	commands := extract.Commands()
	commands = append(commands,
		batch.Command(),
		dbcli.Command(),
		serve.Command(),
		&cli.Command{
			Name:  "help",
			Usage: "Show help, or the quick-start guide with 'help quickstart'",
			Action: func(c *cli.Context) error {
				return cli.ShowAppHelp(c)
			},
			Subcommands: []*cli.Command{
				{
					Name:  "quickstart",
					Usage: "Print the quick-start guide as YAML",
					Action: func(c *cli.Context) error {
						fmt.Fprint(c.App.Writer, help.QuickstartYAML)
						return nil
					},
				},
			},
		},
	)

	return &cli.App{
		Name:            "llm-chat-extractor",
		Usage:           "Turn assistant chat replies into structured orders and products",
		Flags:           common.GlobalFlags(),
		Commands:        commands,
		HideHelpCommand: true,
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
