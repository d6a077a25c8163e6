package main

import (
	"context"
	"fmt"

	"github.com/desertwitch/metapatch/internal/patcher"
	"github.com/desertwitch/metapatch/internal/ui"
)

// App is the principal structure tying a patch run to its user interface.
type App struct {
	dir        string
	patcher    *patcher.Handler
	uiHandler  *ui.Handler
	lastReport *patcher.Report
}

// NewApp returns a pointer to a new [App]. The uiHandler may be nil.
func NewApp(dir string, patchHandler *patcher.Handler, uiHandler *ui.Handler) *App {
	return &App{
		dir:       dir,
		patcher:   patchHandler,
		uiHandler: uiHandler,
	}
}

// Launch runs the patcher over the directory.
func (app *App) Launch(ctx context.Context) error {
	report, err := app.patcher.Run(ctx, app.dir)
	app.lastReport = report

	if app.uiHandler != nil {
		app.uiHandler.Finish(err)
	}

	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	return nil
}

// LaunchUI runs the user interface until it is closed.
func (app *App) LaunchUI() error {
	if err := app.uiHandler.Launch(); err != nil {
		return fmt.Errorf("(app-ui) %w", err)
	}

	return nil
}

// Report returns the [patcher.Report] of the last [App.Launch], if any.
func (app *App) Report() *patcher.Report {
	return app.lastReport
}
