package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"cytodash/internal/logging"
)

// Confirm asks a yes/no question on the terminal. Aborting the prompt counts as no.
func Confirm(title, description string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			logging.Logger.Debug("Confirmation aborted", "title", title)
			return false, nil
		}
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	logging.Logger.Debug("Confirmation answered", "title", title, "confirmed", confirmed)
	return confirmed, nil
}
