package scoring

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/pobyzaarif/goshortcute"
)

const (
	chartTitle  = "SHAP Feature Importance"
	chartXLabel = "Contribution to Model Decision"

	chartWidth    = 640
	chartLabelCol = 220
	chartBarH     = 28
	chartTop      = 48
	chartBottom   = 56
	chartRight    = 24

	colorPositive = "#2e7d32"
	colorNegative = "#c62828"
)

type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a horizontal bar ranking. Bars run from the smallest ranked
// contributor to the largest, so the largest is drawn at the top.
type Chart struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	Bars   []Bar  `json:"bars"`
}

// ToChart builds the chart model without touching ranked.
func ToChart(ranked []Ranked) *Chart {
	bars := make([]Bar, len(ranked))
	for i, r := range ranked {
		bars[len(ranked)-1-i] = Bar{Label: r.Name, Value: r.Value}
	}
	return &Chart{Title: chartTitle, XLabel: chartXLabel, Bars: bars}
}

// SVG draws the chart.
func (c *Chart) SVG() ([]byte, error) {
	if c == nil || len(c.Bars) == 0 {
		return nil, &RenderError{Err: ErrEmptyChart}
	}

	lo, hi := 0.0, 0.0
	for _, b := range c.Bars {
		if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
			return nil, &RenderError{Err: fmt.Errorf("bar %q has non-finite value", b.Label)}
		}
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}

	plotW := chartWidth - chartLabelCol - chartRight
	height := chartTop + len(c.Bars)*chartBarH + chartBottom
	scale := float64(plotW) / (hi - lo)
	zeroX := chartLabelCol + int(math.Round(-lo*scale))

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(chartWidth, height)
	canvas.Rect(0, 0, chartWidth, height, "fill:white")
	canvas.Text(chartWidth/2, 28, c.Title, "text-anchor:middle;font-family:sans-serif;font-size:16px;font-weight:bold")

	n := len(c.Bars)
	for i, b := range c.Bars {
		// bars[0] sits at the bottom, like a horizontal bar plot.
		y := chartTop + (n-1-i)*chartBarH
		w := int(math.Round(math.Abs(b.Value) * scale))
		x := zeroX
		color := colorPositive
		if b.Value <= 0 {
			x = zeroX - w
			color = colorNegative
		}
		canvas.Rect(x, y+4, max(w, 1), chartBarH-8, "fill:"+color)
		canvas.Text(chartLabelCol-8, y+chartBarH/2+4, b.Label, "text-anchor:end;font-family:sans-serif;font-size:12px")
	}

	axisY := chartTop + n*chartBarH
	canvas.Line(zeroX, chartTop, zeroX, axisY, "stroke:#444;stroke-width:1")
	canvas.Line(chartLabelCol, axisY, chartLabelCol+plotW, axisY, "stroke:#444;stroke-width:1")
	canvas.Text(chartLabelCol, axisY+16, fmt.Sprintf("%.3g", lo), "text-anchor:start;font-family:sans-serif;font-size:11px")
	canvas.Text(chartLabelCol+plotW, axisY+16, fmt.Sprintf("%.3g", hi), "text-anchor:end;font-family:sans-serif;font-size:11px")
	canvas.Text(chartLabelCol+plotW/2, axisY+40, c.XLabel, "text-anchor:middle;font-family:sans-serif;font-size:12px")
	canvas.End()

	return buf.Bytes(), nil
}

// DataURI embeds the SVG for JSON transport.
func (c *Chart) DataURI() (string, error) {
	raw, err := c.SVG()
	if err != nil {
		return "", err
	}
	return "data:image/svg+xml;base64," + goshortcute.StringtoBase64Encode(string(raw)), nil
}
