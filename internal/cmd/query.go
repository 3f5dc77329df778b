package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// QueryCmd runs read-only queries
type QueryCmd struct {
	Distinct QueryDistinctCmd `cmd:"distinct" help:"List the distinct values of a sample field"`
	IDs      QueryIDsCmd      `cmd:"ids" help:"List every sample ID"`
	View     QueryViewCmd     `cmd:"view" help:"Show the wide view, optionally filtered" default:"1"`
}

// QueryDistinctCmd lists distinct values of one field
type QueryDistinctCmd struct {
	Field  string `arg:"" help:"Sample field, e.g. project or condition"`
	Format string `help:"Output format" enum:"table,json" default:"table"`
}

// Run executes the distinct command
func (q *QueryDistinctCmd) Run(cli *CLI) error {
	values, err := cli.Container.QueryService.DistinctValues(context.Background(), q.Field)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownField) {
			return fmt.Errorf("unknown field %q (valid fields: %s)", q.Field, strings.Join(domain.SampleFields, ", "))
		}
		return err
	}

	if q.Format == "json" {
		return exportStructured(os.Stdout, values)
	}
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}

// QueryIDsCmd lists sample ids
type QueryIDsCmd struct {
	Format string `help:"Output format" enum:"table,json" default:"table"`
}

// Run executes the ids command
func (q *QueryIDsCmd) Run(cli *CLI) error {
	ids, err := cli.Container.QueryService.AllSampleIDs(context.Background())
	if err != nil {
		return err
	}
	if q.Format == "json" {
		return exportStructured(os.Stdout, ids)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// FilterFlags select samples by metadata. Repeating a flag ORs its values.
type FilterFlags struct {
	Condition []string `help:"Keep samples with this condition (case-insensitive)" sep:","`
	Project   []string `help:"Keep samples from this project" sep:","`
	Response  []string `help:"Keep samples with this response" sep:","`
	Treatment []string `help:"Keep samples with this treatment" sep:","`
}

// Filter converts the flags into a domain filter
func (f FilterFlags) Filter() domain.SampleFilter {
	return domain.SampleFilter{
		Conditions: f.Condition,
		Projects:   f.Project,
		Responses:  f.Response,
		Treatments: f.Treatment,
	}
}

// QueryViewCmd shows the filtered wide view
type QueryViewCmd struct {
	FilterFlags
	Format string `help:"Output format" enum:"table,csv,json,yaml" default:"table"`
}

// Run executes the view command
func (q *QueryViewCmd) Run(cli *CLI) error {
	return printWideView(cli, q.Filter(), q.Format)
}

func printWideView(cli *CLI, filter domain.SampleFilter, format string) error {
	ctx := context.Background()
	logging.Logger.Debug("Printing wide view", "filter", filter.Key(), "format", format)

	if format != formatTable {
		return cli.Container.ExportService.WideView(ctx, os.Stdout, filter, exportFormat(format))
	}

	rows, err := cli.Container.QueryService.FilteredView(ctx, filter)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println(theme.HelpLabelStyle.Render("No samples match"))
		return nil
	}
	headers, cells := ui.WideRowCells(rows)
	fmt.Println(ui.RenderTable(headers, cells))
	fmt.Println(theme.HelpLabelStyle.Render(fmt.Sprintf("%d samples", len(rows))))
	return nil
}
