// Package plot renders analysis results as PNG images
package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"cytodash/internal/domain"
	"cytodash/internal/ports"
)

const (
	defaultHeight = 480
	defaultWidth  = 900
	marginBottom  = 60
	marginLeft    = 60
	marginRight   = 20
	marginTop     = 40
)

var (
	axisColor         = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	backgroundColor   = color.White
	gridColor         = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	nonResponderColor = color.RGBA{R: 0xe4, G: 0x57, B: 0x56, A: 0xff}
	responderColor    = color.RGBA{R: 0x4c, G: 0x78, B: 0xa8, A: 0xff}
)

// Options controls the image size. Zero values use the defaults.
type Options struct {
	Height int
	Title  string
	Width  int
}

// Renderer draws PNG charts with fixed options
type Renderer struct {
	Options Options
}

// Verify interface compliance at compile time
var _ ports.ChartRenderer = Renderer{}

// RenderTreatmentResponse implements ChartRenderer.RenderTreatmentResponse
func (r Renderer) RenderTreatmentResponse(w io.Writer, result domain.TreatmentResponseResult) error {
	return RenderTreatmentResponse(w, result, r.Options)
}

// BoxStats is the five-number summary of one group plus outliers
type BoxStats struct {
	LowerWhisker float64
	Median       float64
	N            int
	Outliers     []float64
	Q1           float64
	Q3           float64
	UpperWhisker float64
}

// Summarize computes quartiles with linear interpolation and whiskers at 1.5 IQR
func Summarize(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	stats := BoxStats{
		Median: quantile(sorted, 0.5),
		N:      len(sorted),
		Q1:     quantile(sorted, 0.25),
		Q3:     quantile(sorted, 0.75),
	}
	iqr := stats.Q3 - stats.Q1
	lo, hi := stats.Q1-1.5*iqr, stats.Q3+1.5*iqr

	stats.LowerWhisker, stats.UpperWhisker = stats.Q1, stats.Q3
	for _, v := range sorted {
		if v < lo || v > hi {
			stats.Outliers = append(stats.Outliers, v)
			continue
		}
		stats.LowerWhisker = math.Min(stats.LowerWhisker, v)
		stats.UpperWhisker = math.Max(stats.UpperWhisker, v)
	}
	return stats
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// groupByPopulation splits percentages by population and response, keeping
// known populations first in canonical order.
func groupByPopulation(rows []domain.ResponseFrequencyRow) ([]string, map[string]map[string][]float64) {
	groups := map[string]map[string][]float64{}
	var extra []string
	for _, r := range rows {
		if r.Response != domain.ResponseResponder && r.Response != domain.ResponseNonResponder {
			continue
		}
		g, ok := groups[r.Population]
		if !ok {
			g = map[string][]float64{}
			groups[r.Population] = g
			if !domain.IsKnownPopulation(r.Population) {
				extra = append(extra, r.Population)
			}
		}
		g[r.Response] = append(g[r.Response], r.Percentage)
	}

	var order []string
	for _, p := range domain.KnownPopulations {
		if _, ok := groups[p]; ok {
			order = append(order, p)
		}
	}
	sort.Strings(extra)
	return append(order, extra...), groups
}

// RenderTreatmentResponse draws one responder and one non-responder box per
// population and writes the PNG to w.
func RenderTreatmentResponse(w io.Writer, result domain.TreatmentResponseResult, opts Options) error {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	populations, groups := groupByPopulation(result.Rows)
	if len(populations) == 0 {
		return fmt.Errorf("no responder data to plot")
	}

	yMax := 0.0
	for _, g := range groups {
		for _, values := range g {
			for _, v := range values {
				yMax = math.Max(yMax, v)
			}
		}
	}
	yMax = math.Max(10, math.Ceil(yMax/10)*10)

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	plotW := float64(width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)
	toY := func(v float64) float64 {
		return float64(marginTop) + plotH - v/yMax*plotH
	}

	// grid and y labels
	dc.SetLineWidth(1)
	for tick := 0.0; tick <= yMax; tick += yMax / 5 {
		y := toY(tick)
		dc.SetColor(gridColor)
		dc.DrawLine(marginLeft, y, float64(width-marginRight), y)
		dc.Stroke()
		dc.SetColor(axisColor)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", tick), marginLeft-8, y, 1, 0.5)
	}

	slot := plotW / float64(len(populations))
	boxW := math.Min(40, slot/4)
	for i, pop := range populations {
		center := float64(marginLeft) + slot*(float64(i)+0.5)
		drawBox(dc, Summarize(groups[pop][domain.ResponseResponder]), center-boxW*0.75, boxW, responderColor, toY)
		drawBox(dc, Summarize(groups[pop][domain.ResponseNonResponder]), center+boxW*0.75, boxW, nonResponderColor, toY)

		dc.SetColor(axisColor)
		dc.DrawStringAnchored(pop, center, float64(height-marginBottom)+16, 0.5, 0.5)
	}

	// axes
	dc.SetColor(axisColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(marginLeft, marginTop, marginLeft, float64(height-marginBottom))
	dc.DrawLine(marginLeft, float64(height-marginBottom), float64(width-marginRight), float64(height-marginBottom))
	dc.Stroke()

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Relative frequency by response (%s, %s, %s)",
			result.Cohort.Condition, result.Cohort.Treatment, result.Cohort.SampleType)
	}
	dc.DrawStringAnchored(title, float64(width)/2, marginTop/2, 0.5, 0.5)
	drawLegend(dc, float64(width-marginRight), float64(height-marginBottom/3))

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawBox(dc *gg.Context, s BoxStats, center, boxW float64, fill color.Color, toY func(float64) float64) {
	if s.N == 0 {
		return
	}
	left := center - boxW/2

	dc.SetColor(fill)
	dc.DrawRectangle(left, toY(s.Q3), boxW, toY(s.Q1)-toY(s.Q3))
	dc.Fill()

	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, toY(s.Q3), boxW, toY(s.Q1)-toY(s.Q3))
	dc.DrawLine(left, toY(s.Median), left+boxW, toY(s.Median))
	dc.DrawLine(center, toY(s.Q3), center, toY(s.UpperWhisker))
	dc.DrawLine(center, toY(s.Q1), center, toY(s.LowerWhisker))
	dc.DrawLine(center-boxW/4, toY(s.UpperWhisker), center+boxW/4, toY(s.UpperWhisker))
	dc.DrawLine(center-boxW/4, toY(s.LowerWhisker), center+boxW/4, toY(s.LowerWhisker))
	dc.Stroke()

	for _, o := range s.Outliers {
		dc.DrawCircle(center, toY(o), 2.5)
		dc.Stroke()
	}
}

func drawLegend(dc *gg.Context, right, y float64) {
	entries := []struct {
		color color.Color
		label string
	}{
		{responderColor, "responders (y)"},
		{nonResponderColor, "non-responders (n)"},
	}
	x := right
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		tw, _ := dc.MeasureString(e.label)
		x -= tw
		dc.SetColor(axisColor)
		dc.DrawStringAnchored(e.label, x, y, 0, 0.5)
		x -= 16
		dc.SetColor(e.color)
		dc.DrawRectangle(x, y-5, 10, 10)
		dc.Fill()
		x -= 16
	}
}
