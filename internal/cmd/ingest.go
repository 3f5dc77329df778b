package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/services"
	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// LoadCmd bulk loads a CSV file in replace mode
type LoadCmd struct {
	IngestFlags
}

// AppendCmd appends a CSV file in ignore mode
type AppendCmd struct {
	IngestFlags
}

// IngestFlags are shared by load and append
type IngestFlags struct {
	ChunkSize  int    `help:"Rows committed per transaction (default from settings, 1000)"`
	File       string `arg:"" help:"CSV file to read" type:"existingfile"`
	NoProgress bool   `help:"Do not show the progress indicator"`
	Verbose    bool   `help:"Print every row warning" short:"v"`
}

// Run executes the load command
func (l *LoadCmd) Run(cli *CLI) error {
	return l.run(cli, domain.IngestReplace)
}

// Run executes the append command
func (a *AppendCmd) Run(cli *CLI) error {
	return a.run(cli, domain.IngestIgnore)
}

func (f *IngestFlags) run(cli *CLI, mode domain.IngestMode) error {
	chunkSize := f.ChunkSize
	if chunkSize <= 0 {
		chunkSize = cli.chunkSize()
	}
	logging.Logger.Info("Executing ingest command", "file", f.File, "mode", mode, "chunk_size", chunkSize)

	var bar *progressbar.ProgressBar
	if !f.NoProgress {
		bar = progressbar.Default(-1, "rows")
	}

	var warnings []string
	opts := services.IngestOptions{
		ChunkSize: chunkSize,
		OnProgress: func(rows int) {
			if bar != nil {
				_ = bar.Set(rows)
			}
		},
		OnWarning: func(msg string) {
			warnings = append(warnings, msg)
		},
	}

	ctx := context.Background()
	var summary domain.IngestSummary
	var err error
	if mode == domain.IngestReplace {
		summary, err = cli.Container.IngestService.BulkLoad(ctx, f.File, opts)
	} else {
		summary, err = cli.Container.IngestService.IncrementalAppend(ctx, f.File, opts)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	auditErr := errors.Is(err, domain.ErrAuditWrite)
	if err != nil && !auditErr {
		return err
	}

	fmt.Println(ui.RenderKeyValues(ui.IngestSummaryPairs(summary)))
	if f.Verbose {
		for _, w := range warnings {
			fmt.Println(theme.WarningStyle.Render("warning: " + w))
		}
	} else if len(warnings) > 0 {
		fmt.Println(theme.WarningStyle.Render(fmt.Sprintf("%d warnings (use --verbose to list them)", len(warnings))))
	}
	if auditErr {
		fmt.Println(theme.WarningStyle.Render("Warning: " + err.Error()))
	}
	return nil
}
