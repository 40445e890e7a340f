package common

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

// GlobalFlags are accepted by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML config file",
			Value:   "llm-chat-extractor.yaml",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database path (default: next to the binary)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug output, including dropped segments",
		},
	}
}

// InputFlags select the message to read for single-message commands.
func InputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read the message from a file (\"-\" for stdin)",
		},
		&cli.StringFlag{
			Name:    "text",
			Aliases: []string{"t"},
			Usage:   "Message text given inline",
		},
	}
}

// FormatFlag selects the output encoding.
func FormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: json or yaml",
		Value: "json",
	}
}

// LoadConfig loads the --config file and applies flag overrides.
func LoadConfig(c *cli.Context) (*models.AppConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the JSON stderr logger. --quiet and --verbose win over the
// configured level.
func NewLogger(c *cli.Context, level string) *slog.Logger {
	logLevel := ParseLevel(level)
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	w := c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ReadInput returns the message chosen by --text or --file, or stdin when
// neither is set.
func ReadInput(c *cli.Context) (string, error) {
	if c.IsSet("text") && c.IsSet("file") {
		return "", fmt.Errorf("cannot use both --text and --file")
	}
	if c.IsSet("text") {
		return c.String("text"), nil
	}

	if path := c.String("file"); path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read message: %w", err)
		}
		return string(data), nil
	}

	r := c.App.Reader
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// Encode renders v as indented JSON or YAML.
func Encode(v interface{}, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json: %w", err)
		}
		return data, nil
	case "yaml", "yml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
}
