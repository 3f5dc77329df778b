package cmd

import (
	"context"
	"errors"
	"fmt"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/theme"
	"cytodash/internal/ui"
)

// InitCmd creates the store schema
type InitCmd struct {
	Force bool `help:"Drop and recreate every table of an existing store" short:"f"`
	Yes   bool `help:"Skip the confirmation prompt when forcing" short:"y"`
}

// Run executes the init command
func (i *InitCmd) Run(cli *CLI) error {
	path := cli.Container.StoreService.Path()
	logging.Logger.Info("Executing init command", "path", path, "force", i.Force, "existed", cli.Container.StoreExisted)

	// a new store file is initialized while the container is built
	if !cli.Container.StoreExisted {
		fmt.Println(theme.SuccessStyle.Render("Initialized new store at " + path))
		return nil
	}

	if !i.Force {
		return fmt.Errorf("store already exists at %s (use --force to drop and recreate it)", path)
	}

	if !i.Yes {
		confirmed, err := ui.Confirm(
			"Recreate the store?",
			fmt.Sprintf("All samples, cell counts and the operation log in %s will be lost.", path),
		)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
	}

	err := cli.Container.StoreService.Initialize(context.Background())
	if err != nil && !errors.Is(err, domain.ErrAuditWrite) {
		return err
	}
	if err != nil {
		fmt.Println(theme.WarningStyle.Render("Warning: " + err.Error()))
	}

	fmt.Println(theme.SuccessStyle.Render("Reinitialized store at " + path))
	return nil
}
