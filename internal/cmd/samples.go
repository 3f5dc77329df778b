package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// SamplesCmd manages samples
type SamplesCmd struct {
	Add    SamplesAddCmd    `cmd:"add" help:"Add a single sample with its cell counts"`
	Browse SamplesBrowseCmd `cmd:"browse" help:"Browse samples interactively"`
	List   SamplesListCmd   `cmd:"list" help:"List all samples in wide form" default:"1"`
	Remove SamplesRemoveCmd `cmd:"remove" aliases:"rm" help:"Remove a sample and its cell counts"`
	Show   SamplesShowCmd   `cmd:"show" help:"Show one sample"`
}

// SamplesAddCmd adds a sample
type SamplesAddCmd struct {
	Age                    string         `help:"Subject age"`
	Condition              string         `help:"Condition (stored lowercase)"`
	Count                  map[string]int `help:"Cell count per population, e.g. --count b_cell=120" placeholder:"POPULATION=N"`
	ID                     string         `help:"Sample ID" name:"id"`
	Interactive            bool           `help:"Fill in the sample with a form" short:"i"`
	Project                string         `help:"Project"`
	Response               string         `help:"Treatment response (y or n)"`
	SampleType             string         `help:"Sample type, e.g. PBMC"`
	Sex                    string         `help:"Subject sex"`
	Subject                string         `help:"Subject"`
	TimeFromTreatmentStart string         `help:"Days from treatment start" name:"time-from-treatment-start"`
	Treatment              string         `help:"Treatment"`
}

// Run executes the add command
func (s *SamplesAddCmd) Run(cli *CLI) error {
	ctx := context.Background()

	req, err := s.request(ctx, cli)
	if err != nil {
		if errors.Is(err, ui.ErrFormCancelled) {
			fmt.Println("Cancelled")
			return nil
		}
		return err
	}
	logging.Logger.Info("Executing samples add command", "sample_id", req.SampleID, "populations", len(req.Counts))

	record, err := cli.Container.SampleService.AddSample(ctx, req)
	if err != nil && !errors.Is(err, domain.ErrAuditWrite) {
		if errors.Is(err, domain.ErrSampleExists) {
			return fmt.Errorf("sample %s already exists", req.SampleID)
		}
		return err
	}

	for _, w := range record.Warnings {
		fmt.Println(theme.WarningStyle.Render("warning: " + w))
	}
	fmt.Println(theme.SuccessStyle.Render(fmt.Sprintf("Added sample %s with %d cell counts", record.Sample.SampleID, len(record.Counts))))
	return auditWarning(err)
}

func (s *SamplesAddCmd) request(ctx context.Context, cli *CLI) (domain.NewSampleRequest, error) {
	if s.Interactive {
		exists := func(id string) bool {
			_, err := cli.Container.SampleService.GetSample(ctx, id)
			return err == nil
		}
		return ui.NewSampleForm(exists).Run()
	}
	if s.ID == "" {
		return domain.NewSampleRequest{}, fmt.Errorf("--id is required (or use --interactive)")
	}
	return domain.NewSampleRequest{
		Age:                    s.Age,
		Condition:              s.Condition,
		Counts:                 s.Count,
		Project:                s.Project,
		Response:               s.Response,
		SampleID:               s.ID,
		SampleType:             s.SampleType,
		Sex:                    s.Sex,
		Subject:                s.Subject,
		TimeFromTreatmentStart: s.TimeFromTreatmentStart,
		Treatment:              s.Treatment,
	}, nil
}

// SamplesRemoveCmd removes a sample
type SamplesRemoveCmd struct {
	ID  string `arg:"" help:"Sample ID to remove"`
	Yes bool   `help:"Skip the confirmation prompt" short:"y"`
}

// Run executes the remove command
func (s *SamplesRemoveCmd) Run(cli *CLI) error {
	logging.Logger.Info("Executing samples remove command", "sample_id", s.ID)

	if !s.Yes {
		confirmed, err := ui.Confirm(
			fmt.Sprintf("Remove sample %s?", s.ID),
			"The sample and all of its cell counts will be deleted.",
		)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
	}

	removed, err := cli.Container.SampleService.RemoveSample(context.Background(), s.ID)
	if err != nil && !errors.Is(err, domain.ErrAuditWrite) {
		if errors.Is(err, domain.ErrSampleNotFound) {
			return fmt.Errorf("sample %s not found", s.ID)
		}
		return err
	}

	fmt.Println(theme.SuccessStyle.Render(fmt.Sprintf("Removed sample %s and %d cell counts", s.ID, removed)))
	return auditWarning(err)
}

// SamplesListCmd lists every sample in wide form
type SamplesListCmd struct {
	Format string `help:"Output format" enum:"table,csv,json,yaml" default:"table"`
}

// Run executes the list command
func (s *SamplesListCmd) Run(cli *CLI) error {
	return printWideView(cli, domain.SampleFilter{}, s.Format)
}

// SamplesShowCmd shows one sample
type SamplesShowCmd struct {
	Format string `help:"Output format" enum:"table,json" default:"table"`
	ID     string `arg:"" help:"Sample ID"`
}

// Run executes the show command
func (s *SamplesShowCmd) Run(cli *CLI) error {
	row, err := cli.Container.SampleService.GetSample(context.Background(), s.ID)
	if err != nil {
		return err
	}

	if s.Format == "json" {
		return exportStructured(os.Stdout, row.Values())
	}
	fmt.Println(theme.TitleStyle.Render("Sample " + row.Sample.SampleID))
	fmt.Println(ui.RenderKeyValues(ui.SamplePairs(*row)))
	return nil
}

// SamplesBrowseCmd opens the interactive sample browser
type SamplesBrowseCmd struct{}

// Run executes the browse command
func (s *SamplesBrowseCmd) Run(cli *CLI) error {
	return ui.RunBrowser(context.Background(), cli.Container.QueryService)
}
