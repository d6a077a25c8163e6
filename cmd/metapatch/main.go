// metapatch replaces a literal value, such as a sprite's spritePixelsToUnits
// import setting, in every Unity .meta file of a directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/desertwitch/metapatch/internal/configuration"
	"github.com/desertwitch/metapatch/internal/patcher"
	"github.com/desertwitch/metapatch/internal/schema"
	"github.com/desertwitch/metapatch/internal/ui"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

const (
	stackTraceBufMax = 1 << 24
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string
)

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func startApp(ctx context.Context, wg *sync.WaitGroup, app *App) {
	defer wg.Done()

	if app.uiHandler != nil {
		for !app.uiHandler.Ready.Load() && !app.uiHandler.Failed.Load() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond): //nolint:mnd
			}
		}
	}

	if err := app.Launch(ctx); err != nil {
		slog.Error("Patch run failed.", "err", err)
		ExitCode = 1
	}
}

func startUI(wg *sync.WaitGroup, app *App, debug bool) {
	defer wg.Done()

	if app.uiHandler == nil {
		return
	}

	setupLogging(app.uiHandler.LogWriter, debug)
	defer setupLogging(os.Stdout, debug)

	if err := app.LaunchUI(); err != nil {
		setupLogging(os.Stdout, debug)
		slog.Error("UI failure: falling back to terminal.", "err", err)
	}
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags := newFlagSet()
	if err := flags.parse(os.Args[1:]); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		ExitCode = parseExitCode(err)

		return
	}

	if flags.version {
		fmt.Fprintln(os.Stdout, "metapatch", Version)

		return
	}

	setupLogging(os.Stdout, flags.debug)
	setupSignalHandlers(cancel)

	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})

	configPath, required := flags.configPath()

	envMap, err := configHandler.ReadConfigFile(configPath, required)
	if err != nil {
		slog.Error("Failed to read the configuration file.",
			"path", configPath,
			"err", err,
		)
		ExitCode = 1

		return
	}

	opts, err := configHandler.Resolve(envMap, flags.overrides())
	if err != nil {
		slog.Error("Failed to establish the configuration.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	ignored := []string{configuration.DefaultConfigFile}
	if filepath.Clean(filepath.Dir(configPath)) == filepath.Clean(flags.dir) {
		ignored = append(ignored, filepath.Base(configPath))
	}

	patchHandler, err := patcher.NewHandler(opts, &schema.OS{}, &schema.Unix{}, ignored...)
	if err != nil {
		slog.Error("Failed to establish the patcher.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	var uiHandler *ui.Handler
	if flags.ui {
		uiHandler = ui.NewHandler(ctx, cancel, patchHandler, ui.RunInfo{
			Dir:     flags.dir,
			Filter:  opts.Filter,
			Search:  opts.Substitution.Search,
			Replace: opts.Substitution.Replace,
			Preset:  opts.Preset,
			DryRun:  opts.DryRun,
		})
	}

	app := NewApp(flags.dir, patchHandler, uiHandler)

	var wg sync.WaitGroup

	wg.Add(1)
	go startUI(&wg, app, flags.debug)

	wg.Add(1)
	go startApp(ctx, &wg, app)

	wg.Wait()

	if report := app.Report(); report != nil {
		report.LogSummary()
	}
}
