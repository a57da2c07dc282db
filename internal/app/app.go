// # internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"modmap/internal/config"
	"modmap/internal/data/history"
	"modmap/internal/graph"
	"modmap/internal/metadata"
	"modmap/internal/resolver"
	"modmap/internal/shared/util"
	"modmap/internal/ui/report"
	"modmap/internal/watcher"
)

const (
	callGraphFile  = "call_graph.json"
	fileInfoFile   = "file_info.json"
	structInfoFile = "struct_info.json"
)

// App wires the metadata loaders, the partitioner and the emitters into
// one pipeline. Run is safe to call concurrently; runs are serialized.
type App struct {
	Config     *config.Config
	ProjectDir string
	History    *history.Store

	runMu sync.Mutex
}

// RunResult carries everything one analysis run produced.
type RunResult struct {
	Result          graph.Result
	StructsByModule map[string][]string
	Written         []string
	Snapshot        *history.Snapshot
}

func New(cfg *config.Config, projectDir string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	projectDir = strings.TrimSpace(projectDir)
	if projectDir == "" {
		projectDir = "."
	}

	a := &App{Config: cfg, ProjectDir: projectDir}
	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DB.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.History = store
	}
	return a, nil
}

func (a *App) Close() error {
	if a == nil || a.History == nil {
		return nil
	}
	return a.History.Close()
}

// Run loads the extractor's documents, partitions the files into modules
// and writes the configured artifacts.
func (a *App) Run(ctx context.Context) (RunResult, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	started := time.Now()
	metaDir := a.Config.MetadataDir(a.ProjectDir)

	edges, err := metadata.LoadCallGraph(filepath.Join(metaDir, callGraphFile))
	if err != nil {
		return RunResult{}, err
	}
	files, err := metadata.LoadFileInfo(filepath.Join(metaDir, fileInfoFile))
	if err != nil {
		return RunResult{}, err
	}
	structs, err := metadata.LoadStructInfo(filepath.Join(metaDir, structInfoFile))
	if err != nil {
		return RunResult{}, err
	}

	files, err = metadata.FilterRecords(files, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return RunResult{}, err
	}
	metadata.ResolveSizes(files, a.ProjectDir)

	result := graph.Partition(graph.Input{
		Edges:          edges,
		Files:          files,
		EntryFunction:  a.Config.Analysis.EntryFunction,
		InitPatterns:   a.Config.Analysis.InitPatterns,
		MaxModuleBytes: a.Config.Analysis.MaxModuleBytes,
	})

	out := RunResult{
		Result:          result,
		StructsByModule: groupStructs(result, structs),
	}

	out.Written, err = a.writeOutputs(result, edges)
	if err != nil {
		return RunResult{}, err
	}

	if a.History != nil {
		snap, err := a.History.SaveSnapshot(a.Config.ProjectKey(a.ProjectDir), snapshotFromStats(result.Stats))
		if err != nil {
			slog.Warn("failed to save history snapshot", "error", err)
		} else {
			out.Snapshot = &snap
		}
	}

	slog.Info("analysis complete",
		"files", result.Stats.FileCount,
		"modules", result.Stats.ModuleCount,
		"duration", time.Since(started))
	return out, nil
}

// Trend loads the stored snapshot series and computes per-run deltas.
func (a *App) Trend(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error) {
	if err := ctx.Err(); err != nil {
		return history.TrendReport{}, err
	}
	if a.History == nil {
		return history.TrendReport{}, fmt.Errorf("history database is disabled; set db.enabled=true in the config")
	}
	if window <= 0 {
		window = 24 * time.Hour
	}

	key := a.Config.ProjectKey(a.ProjectDir)
	snapshots, err := a.History.LoadSnapshots(key, since)
	if err != nil {
		return history.TrendReport{}, err
	}
	return history.BuildTrendReport(key, snapshots, window)
}

// Watch re-runs the analysis whenever the metadata documents or the
// project sources change, until the context is cancelled.
func (a *App) Watch(ctx context.Context, onRun func(RunResult, error)) error {
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Exclude.Dirs, a.Config.Exclude.Files, func(paths []string) {
		slog.Info("change detected", "changed", len(paths))
		res, runErr := a.Run(ctx)
		if runErr != nil {
			slog.Error("analysis failed", "error", runErr)
		}
		if onRun != nil {
			onRun(res, runErr)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	roots := a.watchRoots()
	if len(roots) == 0 {
		return fmt.Errorf("nothing to watch: neither %q nor %q exists", a.Config.MetadataDir(a.ProjectDir), a.ProjectDir)
	}
	if err := w.Watch(roots); err != nil {
		return err
	}

	slog.Info("watching for changes", "paths", roots)
	<-ctx.Done()
	return ctx.Err()
}

func (a *App) watchRoots() []string {
	candidates := []string{a.Config.MetadataDir(a.ProjectDir), a.ProjectDir}
	seen := make(map[string]bool, len(candidates))
	roots := make([]string, 0, len(candidates))
	for _, c := range candidates {
		clean := filepath.Clean(c)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		if info, err := os.Stat(clean); err == nil && info.IsDir() {
			roots = append(roots, clean)
		}
	}
	return roots
}

func (a *App) writeOutputs(result graph.Result, edges []metadata.CallEdge) ([]string, error) {
	outDir := a.Config.OutputDir(a.ProjectDir)
	written := make([]string, 0, 5)

	write := func(name string, data []byte) error {
		target := filepath.Join(outDir, name)
		if err := util.WriteFileWithDirs(target, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		written = append(written, target)
		return nil
	}

	if name := strings.TrimSpace(a.Config.Output.Structure); name != "" {
		data, err := report.RenderStructure(result)
		if err != nil {
			return nil, err
		}
		if err := write(name, data); err != nil {
			return nil, err
		}
	}
	if name := strings.TrimSpace(a.Config.Output.Mermaid); name != "" {
		if err := write(name, report.RenderMermaid(result)); err != nil {
			return nil, err
		}
	}
	if name := strings.TrimSpace(a.Config.Output.DOT); name != "" {
		if err := write(name, report.RenderDOT(result)); err != nil {
			return nil, err
		}
	}
	if name := strings.TrimSpace(a.Config.Output.TSV); name != "" {
		if err := write(name, report.RenderTSV(result)); err != nil {
			return nil, err
		}
	}
	if name := strings.TrimSpace(a.Config.Output.CallTree); name != "" {
		if err := write(name, report.RenderCallTree(edges)); err != nil {
			return nil, err
		}
	}

	return written, nil
}

// groupStructs attributes struct, union and enum definitions to the module
// owning their defining file. Anonymous spellings resolve through their
// definition site when the surrounding typedef named them.
func groupStructs(result graph.Result, structs []metadata.StructRecord) map[string][]string {
	if len(structs) == 0 {
		return nil
	}

	moduleByFile := make(map[string]string)
	for _, mod := range result.Modules {
		for _, file := range mod.Files {
			moduleByFile[file] = mod.Name
		}
	}

	res := resolver.NewStructResolver(structs)
	byModule := make(map[string]map[string]bool)
	for _, rec := range structs {
		name := rec.Name
		file := rec.DefinedIn

		if resolver.IsAnonymousSpelling(name) {
			site, ok := resolver.ParseSite(name)
			if !ok {
				continue
			}
			file = site.File
			resolved, ok := res.Resolve(site)
			if !ok {
				continue
			}
			name = resolved
		}
		if name == "" {
			continue
		}

		mod, ok := moduleByFile[util.NormalizePath(file)]
		if !ok {
			continue
		}
		if byModule[mod] == nil {
			byModule[mod] = make(map[string]bool)
		}
		byModule[mod][name] = true
	}

	if len(byModule) == 0 {
		return nil
	}
	out := make(map[string][]string, len(byModule))
	for mod, names := range byModule {
		out[mod] = util.SortedStringKeys(names)
	}
	return out
}

func snapshotFromStats(stats graph.Stats) history.Snapshot {
	return history.Snapshot{
		FileCount:       stats.FileCount,
		ModuleCount:     stats.ModuleCount,
		SingletonCount:  stats.SingletonCount,
		MergedCount:     stats.MergedCount,
		DependencyEdges: stats.DependencyEdges,
		DroppedEdges:    stats.DroppedEdges,
		MaxModuleBytes:  stats.MaxModuleBytes,
	}
}
