package cmd

import (
	"context"
	"fmt"
	"os"

	"cytodash/internal/services"
	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// LogCmd shows the operation log, newest first
type LogCmd struct {
	Format string `help:"Output format" enum:"table,csv,json,yaml" default:"table"`
	Limit  int    `help:"Number of entries to show" short:"n" default:"50"`
}

// Run executes the log command
func (l *LogCmd) Run(cli *CLI) error {
	ctx := context.Background()
	limit := l.Limit
	if limit <= 0 {
		limit = services.DefaultOperationLogLimit
	}

	if l.Format != formatTable {
		return cli.Container.ExportService.OperationLog(ctx, os.Stdout, limit, exportFormat(l.Format))
	}

	entries, err := cli.Container.AuditService.OperationLog(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(theme.HelpLabelStyle.Render("No operations logged"))
		return nil
	}
	headers, cells := ui.OperationLogCells(entries)
	fmt.Println(ui.RenderTable(headers, cells))
	return nil
}
