package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"cytodash/internal/config"
	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/services"
	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// CheckpointsCmd manages checkpoints
type CheckpointsCmd struct {
	Create CheckpointsCreateCmd `cmd:"create" help:"Copy the store into a timestamped checkpoint"`
	List   CheckpointsListCmd   `cmd:"list" help:"List checkpoints, newest first" default:"1"`
	Revert CheckpointsRevertCmd `cmd:"revert" help:"Replace the store with a checkpoint"`
}

// CheckpointsCreateCmd creates a checkpoint
type CheckpointsCreateCmd struct{}

// Run executes the create command
func (c *CheckpointsCreateCmd) Run(cli *CLI) error {
	cp, err := cli.Container.CheckpointService.Create(context.Background())
	if err != nil && !errors.Is(err, domain.ErrAuditWrite) {
		return err
	}

	fmt.Println(theme.SuccessStyle.Render("Checkpoint created"))
	fmt.Println(ui.RenderKeyValues([][2]string{
		{"path", cp.Path},
		{"size", humanize.Bytes(uint64(cp.SizeBytes))},
		{"blake2b-512", cp.Checksum},
	}))
	return auditWarning(err)
}

// CheckpointsListCmd lists checkpoints
type CheckpointsListCmd struct {
	Format string `help:"Output format" enum:"table,json" default:"table"`
	Remote bool   `help:"List the checkpoints held by the configured S3 mirror instead"`
}

// Run executes the list command
func (c *CheckpointsListCmd) Run(cli *CLI) error {
	ctx := context.Background()

	if c.Remote {
		keys, err := cli.Container.CheckpointService.MirroredCheckpoints(ctx)
		if err != nil {
			if errors.Is(err, services.ErrMirrorDisabled) {
				return fmt.Errorf("%w: set checkpoint_mirror.s3_bucket in %s", err, config.GetSettingsPath())
			}
			return err
		}
		if c.Format == "json" {
			return exportStructured(os.Stdout, keys)
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	checkpoints, err := cli.Container.CheckpointService.List(ctx)
	if err != nil {
		return err
	}
	if c.Format == "json" {
		return exportStructured(os.Stdout, checkpoints)
	}
	if len(checkpoints) == 0 {
		fmt.Println(theme.HelpLabelStyle.Render("No checkpoints"))
		return nil
	}
	headers, cells := ui.CheckpointCells(checkpoints)
	fmt.Println(ui.RenderTable(headers, cells))
	return nil
}

// CheckpointsRevertCmd reverts the store to a checkpoint
type CheckpointsRevertCmd struct {
	Checkpoint string `arg:"" help:"Checkpoint file name or path"`
	NoSafety   bool   `help:"Do not take a safety checkpoint of the current store first"`
	Safety     bool   `help:"Take a safety checkpoint even when disabled in settings"`
	Yes        bool   `help:"Skip the confirmation prompt" short:"y"`
}

// Run executes the revert command
func (c *CheckpointsRevertCmd) Run(cli *CLI) error {
	safety := cli.settings.SafetyCheckpointOnRevertEnabled()
	if c.NoSafety {
		safety = false
	}
	if c.Safety {
		safety = true
	}
	logging.Logger.Info("Executing checkpoints revert command", "checkpoint", c.Checkpoint, "safety", safety)

	src, err := cli.Container.CheckpointService.Resolve(c.Checkpoint)
	if err != nil {
		return err
	}

	if !c.Yes {
		description := fmt.Sprintf("The store at %s will be replaced by %s.", cli.Container.StoreService.Path(), src)
		if !safety {
			description += " No safety checkpoint will be taken."
		}
		confirmed, err := ui.Confirm("Revert to checkpoint?", description)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
	}

	result, err := cli.Container.CheckpointService.Revert(context.Background(), src, services.RevertOptions{SafetyCheckpoint: safety})
	if err != nil && !errors.Is(err, domain.ErrAuditWrite) {
		return err
	}

	if result.SafetyCheckpoint != nil {
		fmt.Println(theme.HelpLabelStyle.Render("Safety checkpoint: " + result.SafetyCheckpoint.Path))
	}
	fmt.Println(theme.SuccessStyle.Render("Reverted store to " + result.RevertedFrom))
	return auditWarning(err)
}
