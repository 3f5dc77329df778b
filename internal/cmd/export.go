package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"cytodash/internal/logging"
	"cytodash/internal/services"
	"cytodash/internal/theme"
)

// Export targets
const (
	exportBaseline          = "baseline"
	exportFrequencies       = "frequencies"
	exportLog               = "log"
	exportReport            = "report"
	exportTreatmentPlot     = "treatment-response-plot"
	exportTreatmentResponse = "treatment-response"
	exportWideView          = "wide-view"
)

// ExportCmd writes a view or analysis result to a file
type ExportCmd struct {
	FilterFlags
	Format           string `help:"File format (ignored for treatment-response-plot, which is always PNG)" enum:"csv,json,yaml" default:"csv"`
	IncludeTreatment bool   `help:"Restrict the baseline summary to the cohort treatment as well" name:"include-treatment"`
	Limit            int    `help:"Number of operation log entries" default:"50"`
	Output           string `help:"Destination file ('-' for stdout)" short:"o" default:"-"`
	What             string `arg:"" help:"What to export" enum:"wide-view,frequencies,treatment-response,treatment-response-plot,baseline,report,log"`
}

// Run executes the export command
func (e *ExportCmd) Run(cli *CLI) error {
	logging.Logger.Info("Executing export command", "what", e.What, "format", e.Format, "output", e.Output)

	if e.What == exportTreatmentPlot && e.Output == "-" {
		return fmt.Errorf("treatment-response-plot writes PNG data; use --output to name a file")
	}

	w, closeOutput, err := e.open()
	if err != nil {
		return err
	}

	err = e.write(context.Background(), cli.Container.ExportService, w)
	if closeErr := closeOutput(); err == nil {
		err = closeErr
	}
	if err != nil {
		if e.Output != "-" {
			_ = os.Remove(e.Output)
		}
		return err
	}

	if e.Output != "-" {
		fmt.Fprintln(os.Stderr, theme.SuccessStyle.Render(fmt.Sprintf("Exported %s to %s", e.What, e.Output)))
	}
	return nil
}

func (e *ExportCmd) open() (io.Writer, func() error, error) {
	if e.Output == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(e.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", e.Output, err)
	}
	return f, f.Close, nil
}

func (e *ExportCmd) write(ctx context.Context, svc *services.ExportService, w io.Writer) error {
	format := exportFormat(e.Format)
	switch e.What {
	case exportWideView:
		return svc.WideView(ctx, w, e.Filter(), format)
	case exportFrequencies:
		return svc.Frequencies(ctx, w, format)
	case exportTreatmentResponse:
		return svc.TreatmentResponse(ctx, w, format)
	case exportTreatmentPlot:
		return svc.TreatmentResponsePlot(ctx, w)
	case exportBaseline:
		return svc.Baseline(ctx, w, e.IncludeTreatment, format)
	case exportReport:
		return svc.Report(ctx, w, format)
	case exportLog:
		return svc.OperationLog(ctx, w, e.Limit, format)
	}
	return fmt.Errorf("unknown export target %q", e.What)
}
