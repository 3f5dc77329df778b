package cmd

import (
	"context"
	"fmt"
	"os"

	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// AnalyzeCmd runs the standard analyses
type AnalyzeCmd struct {
	Baseline          AnalyzeBaselineCmd          `cmd:"baseline" help:"Summarize baseline cohort samples by project, response and sex"`
	Frequency         AnalyzeFrequencyCmd         `cmd:"frequency" help:"Relative frequency of each population per sample" default:"1"`
	Report            AnalyzeReportCmd            `cmd:"report" help:"Every analysis section in one document"`
	TreatmentResponse AnalyzeTreatmentResponseCmd `cmd:"treatment-response" help:"Compare responders and non-responders per population"`
}

// AnalyzeFrequencyCmd prints the frequency table
type AnalyzeFrequencyCmd struct {
	Format string `help:"Output format" enum:"table,csv,json,yaml" default:"table"`
}

// Run executes the frequency command
func (a *AnalyzeFrequencyCmd) Run(cli *CLI) error {
	ctx := context.Background()
	if a.Format != formatTable {
		return cli.Container.ExportService.Frequencies(ctx, os.Stdout, exportFormat(a.Format))
	}

	rows, err := cli.Container.AnalysisService.FrequencyTable(ctx)
	if err != nil {
		return err
	}
	headers, cells := ui.FrequencyCells(rows)
	fmt.Println(ui.RenderTable(headers, cells))
	return nil
}

// AnalyzeTreatmentResponseCmd prints the responder comparisons
type AnalyzeTreatmentResponseCmd struct {
	Format string `help:"Output format" enum:"table,csv,json,yaml" default:"table"`
}

// Run executes the treatment-response command
func (a *AnalyzeTreatmentResponseCmd) Run(cli *CLI) error {
	ctx := context.Background()
	if a.Format != formatTable {
		return cli.Container.ExportService.TreatmentResponse(ctx, os.Stdout, exportFormat(a.Format))
	}

	result, err := cli.Container.AnalysisService.TreatmentResponse(ctx)
	if err != nil {
		return err
	}
	c := result.Cohort
	fmt.Println(theme.SubtitleStyle.Render(fmt.Sprintf("Cohort: %s / %s / %s", c.Condition, c.Treatment, c.SampleType)))
	headers, cells := ui.ComparisonCells(result.Comparisons)
	fmt.Println(ui.RenderTable(headers, cells))
	fmt.Println(theme.HelpLabelStyle.Render("Student's t-test with pooled variance, two-sided, significant at p < 0.05"))
	return nil
}

// AnalyzeBaselineCmd prints the baseline summary
type AnalyzeBaselineCmd struct {
	Format           string `help:"Output format" enum:"table,json,yaml" default:"table"`
	IncludeTreatment bool   `help:"Restrict to the cohort treatment as well" name:"include-treatment"`
}

// Run executes the baseline command
func (a *AnalyzeBaselineCmd) Run(cli *CLI) error {
	ctx := context.Background()
	if a.Format != formatTable {
		return cli.Container.ExportService.Baseline(ctx, os.Stdout, a.IncludeTreatment, exportFormat(a.Format))
	}

	summary, err := cli.Container.AnalysisService.BaselineSummary(ctx, a.IncludeTreatment)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderBaseline(summary))
	return nil
}

// AnalyzeReportCmd prints every analysis section
type AnalyzeReportCmd struct {
	Format string `help:"Output format" enum:"json,yaml" default:"json"`
}

// Run executes the report command
func (a *AnalyzeReportCmd) Run(cli *CLI) error {
	return cli.Container.ExportService.Report(context.Background(), os.Stdout, exportFormat(a.Format))
}
