// # cmd/modmap/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"modmap/internal/app"
	"modmap/internal/config"
	"modmap/internal/ui/report"
)

var (
	configPath = flag.String("config", defaultConfigPath, "Path to config file")
	outputDir  = flag.String("output", "", "Directory for generated artifacts (overrides config)")
	watch      = flag.Bool("watch", false, "Re-run when metadata or sources change")
	trend      = flag.Bool("trend", false, "Print history trend report and exit")
	trendTSV   = flag.Bool("trend-tsv", false, "Emit the trend report as TSV instead of JSON")
	since      = flag.Duration("since", 0, "Limit the trend report to snapshots younger than this duration")
	window     = flag.Duration("window", 24*time.Hour, "Moving-average window for the trend report")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

const (
	defaultConfigPath = "./modmap.toml"
	exampleConfigPath = "./modmap.example.toml"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("modmap v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	overrideOutputDir(cfg, *outputDir)

	projectDir := "."
	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "usage: modmap [flags] [project-dir]")
		os.Exit(1)
	}
	if flag.NArg() == 1 {
		projectDir = flag.Arg(0)
	}

	a, err := app.New(cfg, projectDir)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *trend {
		code := runTrend(ctx, a)
		a.Close()
		os.Exit(code)
	}

	res, err := a.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	os.Stdout.Write(report.RenderConsole(res.Result, res.StructsByModule))

	if !*watch {
		return
	}

	err = a.Watch(ctx, func(res app.RunResult, runErr error) {
		if runErr != nil {
			return
		}
		os.Stdout.Write(report.RenderConsole(res.Result, res.StructsByModule))
	})
	if err != nil && err != context.Canceled {
		slog.Error("watch mode failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the named config file. When the default path fails it
// falls back to the shipped example, then to built-in defaults, surfacing
// the original failure in the log so a malformed file is not masked.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path != defaultConfigPath {
		return nil, err
	}
	if !os.IsNotExist(err) {
		slog.Warn("failed to load config, falling back", "path", path, "error", err)
	}
	cfg, fallbackErr := config.Load(exampleConfigPath)
	if fallbackErr == nil {
		return cfg, nil
	}
	if os.IsNotExist(fallbackErr) {
		return config.Default(), nil
	}
	return nil, fallbackErr
}

// overrideOutputDir applies the -output flag on top of the loaded config.
func overrideOutputDir(cfg *config.Config, dir string) {
	if strings.TrimSpace(dir) == "" {
		return
	}
	cfg.Paths.OutputDir = dir
}

func runTrend(ctx context.Context, a *app.App) int {
	var sinceTime time.Time
	if *since > 0 {
		sinceTime = time.Now().UTC().Add(-*since)
	}

	tr, err := a.Trend(ctx, sinceTime, *window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	var out []byte
	if *trendTSV {
		out, err = report.RenderTrendTSV(tr)
	} else {
		out, err = report.RenderTrendJSON(tr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	os.Stdout.Write(out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Println()
	}
	return 0
}
