package ports

import (
	"io"

	"cytodash/internal/domain"
)

// ChartRenderer draws analysis results as images
type ChartRenderer interface {
	RenderTreatmentResponse(w io.Writer, result domain.TreatmentResponseResult) error
}
