package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modmap/internal/app"
	"modmap/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createProject lays out a small firmware tree plus the extractor's
// metadata documents for it.
func createProject(t *testing.T, root string) (projectDir, metaDir string) {
	t.Helper()

	projectDir = filepath.Join(root, "firmware")
	metaDir = filepath.Join(root, "output", "firmware")
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "drivers"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "core"), 0o755))
	require.NoError(t, os.MkdirAll(metaDir, 0o755))

	sources := map[string]string{
		"core/main.c":         "int main(void) { return 0; }\n",
		"core/board_setup.c":  "void board_setup(void) {}\n",
		"drivers/uart.c":      "void uart_send(char c) {}\n",
		"drivers/uart_ring.c": "int uart_ring_pop(void) { return 0; }\n",
		"drivers/spi.c":       "void spi_xfer(void) {}\n",
	}
	for rel, body := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, filepath.FromSlash(rel)), []byte(body), 0o644))
	}

	callGraph := map[string][]string{
		"core/main.c:main":               {"drivers/uart.c:uart_send", "core/board_setup.c:board_setup"},
		"core/board_setup.c:board_setup": {"drivers/spi.c:spi_xfer"},
		"drivers/uart.c:uart_send":       {"drivers/uart_ring.c:uart_ring_pop", "unknown:memcpy"},
	}
	writeJSON(t, filepath.Join(metaDir, "call_graph.json"), callGraph)

	fileInfo := []map[string]any{
		{"file": "core/main.c", "functions": []map[string]any{{"name": "main", "start_line": 1, "end_line": 1}}},
		{"file": "core/board_setup.c", "functions": []map[string]any{{"name": "board_setup", "start_line": 1, "end_line": 1}}},
		{"file": "drivers/uart.c", "functions": []map[string]any{{"name": "uart_send", "start_line": 1, "end_line": 1}}},
		{"file": "drivers/uart_ring.c", "functions": []map[string]any{{"name": "uart_ring_pop", "start_line": 1, "end_line": 1}}},
		{"file": "drivers/spi.c", "functions": []map[string]any{{"name": "spi_xfer", "start_line": 1, "end_line": 1}}},
	}
	writeJSON(t, filepath.Join(metaDir, "file_info.json"), fileInfo)

	structInfo := []map[string]any{
		{"struct": "uart_ring", "defined_in": "drivers/uart_ring.c", "start_line": 1, "end_line": 4},
	}
	writeJSON(t, filepath.Join(metaDir, "struct_info.json"), structInfo)

	return projectDir, metaDir
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFullPipelineIntegration(t *testing.T) {
	root := t.TempDir()
	projectDir, metaDir := createProject(t, root)

	cfg := config.Default()
	cfg.Paths.MetadataDir = metaDir
	cfg.Output.Mermaid = "modules.mmd"
	cfg.Output.TSV = "modules.tsv"
	cfg.Output.CallTree = "call_tree.txt"
	cfg.DB.Enabled = true
	cfg.DB.Path = filepath.Join(root, "history.db")

	a, err := app.New(cfg, projectDir)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	// main.c is isolated as the entry point, board_setup.c matches an
	// init pattern, the uart pair merges, spi.c has no same-directory
	// partner and stays alone.
	assert.Equal(t, 5, res.Result.Stats.FileCount)
	assert.Equal(t, 4, res.Result.Stats.ModuleCount)
	assert.Equal(t, 1, res.Result.Stats.DroppedEdges)

	var names []string
	for _, mod := range res.Result.Modules {
		names = append(names, mod.Name)
	}
	assert.Equal(t, []string{"board_setup", "main", "spi", "uart"}, names)

	byName := make(map[string][]string)
	for _, mod := range res.Result.Modules {
		byName[mod.Name] = mod.Files
	}
	assert.Equal(t, []string{"drivers/uart.c", "drivers/uart_ring.c"}, byName["uart"])

	// Directed module dependencies follow the call direction.
	var edges [][2]string
	for _, e := range res.Result.Edges {
		edges = append(edges, [2]string{e.From, e.To})
	}
	assert.Contains(t, edges, [2]string{"main", "uart"})
	assert.Contains(t, edges, [2]string{"main", "board_setup"})
	assert.Contains(t, edges, [2]string{"board_setup", "spi"})

	assert.Equal(t, []string{"uart_ring"}, res.StructsByModule["uart"])

	// All four configured artifacts land in the metadata directory.
	require.Len(t, res.Written, 4)
	for _, artifact := range res.Written {
		info, statErr := os.Stat(artifact)
		require.NoError(t, statErr)
		assert.Greater(t, info.Size(), int64(0))
	}

	structure, err := os.ReadFile(filepath.Join(metaDir, "module_structure.json"))
	require.NoError(t, err)
	var entries []struct {
		Module       string   `json:"module"`
		Files        []string `json:"files"`
		Dependencies []string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(structure, &entries))
	require.Len(t, entries, 4)
	for _, entry := range entries {
		assert.NotNil(t, entry.Dependencies, "dependencies must serialize as an array for %s", entry.Module)
	}

	require.NotNil(t, res.Snapshot)
	assert.Equal(t, 4, res.Snapshot.ModuleCount)
}

func TestTrendAcrossRunsIntegration(t *testing.T) {
	root := t.TempDir()
	projectDir, metaDir := createProject(t, root)

	cfg := config.Default()
	cfg.Paths.MetadataDir = metaDir
	cfg.DB.Enabled = true
	cfg.DB.Path = filepath.Join(root, "history.db")

	a, err := app.New(cfg, projectDir)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	_, err = a.Run(ctx)
	require.NoError(t, err)

	// A second run over a grown tree moves the module count.
	extra := filepath.Join(metaDir, "file_info.json")
	var fileInfo []map[string]any
	data, err := os.ReadFile(extra)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fileInfo))
	fileInfo = append(fileInfo, map[string]any{
		"file":      "drivers/i2c.c",
		"functions": []map[string]any{{"name": "i2c_probe", "start_line": 1, "end_line": 1}},
	})
	writeJSON(t, extra, fileInfo)

	_, err = a.Run(ctx)
	require.NoError(t, err)

	report, err := a.Trend(ctx, time.Time{}, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, report.RunCount)
	assert.Equal(t, 1, report.Points[1].DeltaModules)
	assert.Equal(t, 1, report.Points[1].DeltaFiles)
}

func TestExclusionFiltersIntegration(t *testing.T) {
	root := t.TempDir()
	projectDir, metaDir := createProject(t, root)

	cfg := config.Default()
	cfg.Paths.MetadataDir = metaDir
	cfg.Exclude.Dirs = []string{"drivers"}

	a, err := app.New(cfg, projectDir)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Result.Stats.FileCount)
	for _, mod := range res.Result.Modules {
		for _, file := range mod.Files {
			assert.NotContains(t, file, "drivers/")
		}
	}
}
