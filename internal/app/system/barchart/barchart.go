// Package barchart lays out a vertical bar chart as SVG geometry. Templates
// draw the rects and labels; this package only does the arithmetic.
package barchart

import (
	"math"
	"strconv"
)

const (
	DefaultTitle = "Statistik Jumlah Jadwal Sidang per Dosen"
	DefaultLabel = "Jumlah Jadwal Sidang per Dosen"
	DefaultColor = "#36A2EB"

	defaultWidth  = 720
	defaultHeight = 360
	maxTicks      = 5

	marginTop    = 40
	marginRight  = 16
	marginBottom = 56
	marginLeft   = 48

	// fraction of each slot taken by its bar
	barFill = 0.7
)

// Options tunes a chart. Zero values take the defaults.
type Options struct {
	Title  string
	Label  string
	Color  string
	Width  int
	Height int
}

// Bar is one category.
type Bar struct {
	Label  string
	Value  int
	X      float64
	Y      float64
	Width  float64
	Height float64
	// LabelX is the horizontal centre of the bar.
	LabelX float64
}

// Tick is one gridline on the value axis.
type Tick struct {
	Value int
	Y     float64
}

// Chart is the laid-out chart.
type Chart struct {
	Title  string
	Label  string
	Color  string
	Width  int
	Height int

	PlotLeft   float64
	PlotTop    float64
	PlotRight  float64
	PlotBottom float64

	AxisMax int
	Bars    []Bar
	Ticks   []Tick
}

// Empty reports whether there is nothing to draw.
func (c Chart) Empty() bool { return len(c.Bars) == 0 }

// ViewBox is the SVG viewBox attribute value.
func (c Chart) ViewBox() string {
	return "0 0 " + strconv.Itoa(c.Width) + " " + strconv.Itoa(c.Height)
}

// Build lays out one bar per label in the order given. labels and values are
// paired by index; extra elements of the longer slice are ignored and
// negative values draw as zero.
func Build(labels []string, values []int, opts Options) Chart {
	c := Chart{
		Title:  firstNonEmpty(opts.Title, DefaultTitle),
		Label:  firstNonEmpty(opts.Label, DefaultLabel),
		Color:  firstNonEmpty(opts.Color, DefaultColor),
		Width:  opts.Width,
		Height: opts.Height,
	}
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	c.PlotLeft = marginLeft
	c.PlotTop = marginTop
	c.PlotRight = float64(c.Width - marginRight)
	c.PlotBottom = float64(c.Height - marginBottom)

	n := min(len(labels), len(values))
	if n == 0 {
		return c
	}

	maxVal := 0
	for _, v := range values[:n] {
		maxVal = max(maxVal, v)
	}
	step := tickStep(maxVal)
	c.AxisMax = int(math.Ceil(float64(maxVal)/float64(step))) * step
	if c.AxisMax == 0 {
		c.AxisMax = step
	}

	plotH := c.PlotBottom - c.PlotTop
	for v := 0; v <= c.AxisMax; v += step {
		c.Ticks = append(c.Ticks, Tick{Value: v, Y: c.PlotBottom - plotH*float64(v)/float64(c.AxisMax)})
	}

	slot := (c.PlotRight - c.PlotLeft) / float64(n)
	barW := slot * barFill
	c.Bars = make([]Bar, n)
	for i := 0; i < n; i++ {
		v := max(values[i], 0)
		h := plotH * float64(v) / float64(c.AxisMax)
		x := c.PlotLeft + slot*float64(i) + (slot-barW)/2
		c.Bars[i] = Bar{
			Label:  labels[i],
			Value:  values[i],
			X:      round2(x),
			Y:      round2(c.PlotBottom - h),
			Width:  round2(barW),
			Height: round2(h),
			LabelX: round2(x + barW/2),
		}
	}
	return c
}

// tickStep picks a 1, 2 or 5 times power-of-ten step so that at most
// maxTicks steps cover maxVal. Counts are integers, so the step is at least 1.
func tickStep(maxVal int) int {
	if maxVal <= maxTicks {
		return 1
	}
	raw := float64(maxVal) / maxTicks
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if s := m * mag; s >= raw {
			return int(s)
		}
	}
	return int(10 * mag)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
