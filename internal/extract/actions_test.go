package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	dbpkg "github.com/dtnitsch/llm-chat-extractor/pkg/db"
)

const productMessage = "Here are some options:\n1. **Cozy Blue**\n**Price:** $59.50\n**Rating:** 4.7 (12 Reviews)\n![Cozy Blue](http://x/img.png)\n"

func newTestApp(stdout, stderr *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:      "llm-chat-extractor",
		Flags:     common.GlobalFlags(),
		Commands:  Commands(),
		Writer:    stdout,
		ErrWriter: stderr,
		Reader:    strings.NewReader(""),
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	full := append([]string{"llm-chat-extractor", "--config", cfg, "--quiet"}, args...)
	err := newTestApp(&stdout, &stderr).Run(full)
	return stdout.String(), err
}

func TestExtractAction(t *testing.T) {
	out, err := run(t, "extract", "--text", productMessage)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "products"`)
	assert.Contains(t, out, `"title": "Cozy Blue"`)
	assert.NotContains(t, out, "detection")
}

func TestExtractActionYAML(t *testing.T) {
	out, err := run(t, "extract", "--format", "yaml", "--text", "Sure, happy to help.")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: text")
}

func TestExtractActionDiagnostics(t *testing.T) {
	out, err := run(t, "extract", "--diagnostics", "--text", productMessage)
	require.NoError(t, err)
	assert.Contains(t, out, `"detection"`)
	assert.Contains(t, out, `"signals"`)
}

func TestExtractActionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.md")
	require.NoError(t, os.WriteFile(path, []byte(productMessage), 0644))

	out, err := run(t, "extract", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "products"`)
}

func TestExtractActionStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := newTestApp(&stdout, &stderr)
	app.Reader = strings.NewReader(productMessage)

	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	require.NoError(t, app.Run([]string{"llm-chat-extractor", "--config", cfg, "-q", "extract"}))
	assert.Contains(t, stdout.String(), `"kind": "products"`)
}

func TestExtractActionOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.json")

	out, err := run(t, "extract", "--out", path, "--text", productMessage)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "products"`)

	_, err = run(t, "extract", "--out", path, "--text", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "extract", "--out", path, "--force", "--text", "hello")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "text"`)
}

func TestExtractActionRecord(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	_, err := run(t, "--db", dbPath, "extract", "--record", "--text", productMessage)
	require.NoError(t, err)

	database, err := dbpkg.OpenPath(dbPath)
	require.NoError(t, err)
	defer database.Close()

	rows, err := database.ListDiagnostics(dbpkg.DiagnosticFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "products", string(rows[0].Kind))
}

func TestExtractActionErrors(t *testing.T) {
	_, err := run(t, "extract", "--text", "a", "--file", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use both")

	_, err = run(t, "extract", "--format", "xml", "--text", "a")
	require.Error(t, err)

	_, err = run(t, "extract", "--file", filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
}

func TestClassifyAction(t *testing.T) {
	out, err := run(t, "classify", "--text", productMessage)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "products"`)
	assert.Contains(t, out, `"numbered_heading_with_image"`)
}
