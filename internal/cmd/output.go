package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/services"
	"cytodash/internal/theme"
)

const formatTable = "table"

// auditWarning reports an operation log failure without failing the command:
// the mutation itself was committed. Any other error is returned unchanged.
func auditWarning(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrAuditWrite) {
		logging.Logger.Warn("Mutation committed without audit entry", "error", err)
		fmt.Fprintln(os.Stderr, theme.WarningStyle.Render("Warning: "+err.Error()))
		return nil
	}
	return err
}

func exportFormat(format string) services.ExportFormat {
	return services.ExportFormat(format)
}

func exportStructured(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
