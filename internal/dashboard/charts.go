package dashboard

import (
	"fmt"
	"math"

	"github.com/carboncost/carboncost/internal/domain/emission"
)

// Chart canvas sizes in SVG user units.
const (
	chartWidth   = 640.0
	chartHeight  = 260.0
	chartPadding = 40.0
	pieRadius    = 110.0
)

// tierFill maps tiers to pie slice colours.
var tierFill = map[emission.Tier]string{
	emission.Green:  "#00c853",
	emission.Yellow: "#ffd600",
	emission.Red:    "#d50000",
}

// Bar is one rectangle of a bar chart.
type Bar struct {
	X, Y, Width, Height float64
	Label               string
	Value               float64
}

// BarChart lays out points as vertical bars scaled to the largest value.
type BarChart struct {
	Width, Height float64
	Baseline      float64
	Bars          []Bar
	Max           float64
}

// NewBarChart computes bar geometry for points.
func NewBarChart(points []Point) BarChart {
	c := BarChart{Width: chartWidth, Height: chartHeight, Baseline: chartHeight - chartPadding}
	if len(points) == 0 {
		return c
	}
	c.Max = maxCO2(points)

	plotW := chartWidth - 2*chartPadding
	plotH := chartHeight - 2*chartPadding
	slot := plotW / float64(len(points))
	for i, p := range points {
		h := 0.0
		if c.Max > 0 {
			h = p.CO2 / c.Max * plotH
		}
		c.Bars = append(c.Bars, Bar{
			X:      chartPadding + float64(i)*slot + slot*0.15,
			Y:      c.Baseline - h,
			Width:  slot * 0.7,
			Height: h,
			Label:  p.Label,
			Value:  p.CO2,
		})
	}
	return c
}

// Dot is one vertex of a line chart.
type Dot struct {
	X, Y  float64
	Label string
	Value float64
}

// LineChart lays out points left to right as a polyline.
type LineChart struct {
	Width, Height float64
	Baseline      float64
	Points        string // SVG polyline points attribute
	Dots          []Dot
	Max           float64
}

// NewLineChart computes polyline geometry for points.
func NewLineChart(points []Point) LineChart {
	c := LineChart{Width: chartWidth, Height: chartHeight, Baseline: chartHeight - chartPadding}
	if len(points) == 0 {
		return c
	}
	c.Max = maxCO2(points)

	plotW := chartWidth - 2*chartPadding
	plotH := chartHeight - 2*chartPadding
	step := 0.0
	if len(points) > 1 {
		step = plotW / float64(len(points)-1)
	}
	for i, p := range points {
		x := chartPadding + float64(i)*step
		if len(points) == 1 {
			x = chartWidth / 2
		}
		y := c.Baseline
		if c.Max > 0 {
			y -= p.CO2 / c.Max * plotH
		}
		c.Dots = append(c.Dots, Dot{X: x, Y: y, Label: p.Label, Value: p.CO2})
		if i > 0 {
			c.Points += " "
		}
		c.Points += fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return c
}

// Slice is one wedge of a pie chart. Full slices are drawn as a circle.
type Slice struct {
	Path    string
	Fill    string
	Tier    emission.Tier
	Count   int
	Percent float64
	Full    bool
}

// PieChart lays out the badge breakdown.
type PieChart struct {
	Size   float64
	Radius float64
	Slices []Slice
	Total  int
}

// NewPieChart computes wedge paths for counts; empty tiers are skipped.
func NewPieChart(counts []TierCount) PieChart {
	c := PieChart{Size: 2 * pieRadius, Radius: pieRadius}
	for _, tc := range counts {
		c.Total += tc.Count
	}
	if c.Total == 0 {
		return c
	}

	angle := -math.Pi / 2
	for _, tc := range counts {
		if tc.Count == 0 {
			continue
		}
		frac := float64(tc.Count) / float64(c.Total)
		s := Slice{Fill: tierFill[tc.Tier], Tier: tc.Tier, Count: tc.Count, Percent: frac * 100}
		if tc.Count == c.Total {
			s.Full = true
			c.Slices = append(c.Slices, s)
			return c
		}
		end := angle + frac*2*math.Pi
		large := 0
		if frac > 0.5 {
			large = 1
		}
		x1, y1 := pieRadius+pieRadius*math.Cos(angle), pieRadius+pieRadius*math.Sin(angle)
		x2, y2 := pieRadius+pieRadius*math.Cos(end), pieRadius+pieRadius*math.Sin(end)
		s.Path = fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
			pieRadius, pieRadius, x1, y1, pieRadius, pieRadius, large, x2, y2)
		c.Slices = append(c.Slices, s)
		angle = end
	}
	return c
}

func maxCO2(points []Point) float64 {
	m := 0.0
	for _, p := range points {
		if p.CO2 > m {
			m = p.CO2
		}
	}
	return m
}
