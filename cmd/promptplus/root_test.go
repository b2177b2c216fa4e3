package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/promptplus/internal/models"
	"github.com/spboyer/promptplus/internal/projectconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command in an empty working directory so no
// project config is picked up.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRecord(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, projectconfig.LogConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestNewLogger_DebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, projectconfig.LogConfig{Level: "error", Format: "text"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger.Debug("details")
	assert.Contains(t, buf.String(), "msg=details")
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, projectconfig.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestCatalogFlag_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "", "list", "--catalog", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid strategies")
}

func TestCatalogFlag_CustomDir(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "haiku.json", `{"name":"Haiku","description":"A creative form","template":"Rewrite as haiku: [Insert initial prompt here]"}`)

	out, err := runCLI(t, "", "list", "--json", "--catalog", dir)
	require.NoError(t, err)

	var list map[string]models.StrategySummary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Haiku", list["haiku"].Name)
	assert.Equal(t, "refine_with_haiku", list["haiku"].PromptName)
}

func TestProjectConfigCatalogDir(t *testing.T) {
	root := t.TempDir()
	catDir := filepath.Join(root, "strategies")
	require.NoError(t, os.Mkdir(catDir, 0o755))
	writeRecord(t, catDir, "only.yaml", "name: Only\ntemplate: \"Do it: [Insert initial prompt here]\"\n")
	writeRecord(t, root, projectconfig.FileName, "catalog:\n  dir: strategies\n")
	t.Chdir(root)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"refine", "--strategy", "only", "--instruction-only", "ship", "it"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "Do it: ship it\n", out.String())
}
