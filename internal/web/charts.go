package web

import (
	"strconv"
	"strings"

	"linkboard/internal/domain"

	"github.com/samber/lo"
)

const (
	chartWidth   = 600
	chartHeight  = 200
	chartPadding = 24
)

// ChartPoint is one plotted value in SVG coordinates
type ChartPoint struct {
	X, Y  float64
	Label string
	Value int64
}

// LineChart is a daily click series drawn as an SVG polyline
type LineChart struct {
	Width, Height int
	Points        []ChartPoint
	Max           int64
}

// Polyline is the "x,y x,y" form for the SVG points attribute
func (c LineChart) Polyline() string {
	parts := lo.Map(c.Points, func(p ChartPoint, _ int) string {
		return strconv.FormatFloat(p.X, 'f', 1, 64) + "," + strconv.FormatFloat(p.Y, 'f', 1, 64)
	})
	return strings.Join(parts, " ")
}

func (c LineChart) Empty() bool { return len(c.Points) == 0 }

// Bar is one hourly bucket drawn as an SVG rect
type Bar struct {
	X, Y, W, H float64
	Label      string
	Value      int64
}

type BarChart struct {
	Width, Height int
	Bars          []Bar
	Max           int64
}

func (c BarChart) Empty() bool { return len(c.Bars) == 0 }

func NewLineChart(series []domain.DailyClicks) LineChart {
	chart := LineChart{Width: chartWidth, Height: chartHeight}
	if len(series) == 0 {
		return chart
	}
	chart.Max = lo.MaxBy(series, func(a, b domain.DailyClicks) bool { return a.Clicks > b.Clicks }).Clicks

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	step := 0.0
	if len(series) > 1 {
		step = plotW / float64(len(series)-1)
	}

	chart.Points = lo.Map(series, func(d domain.DailyClicks, i int) ChartPoint {
		return ChartPoint{
			X:     chartPadding + step*float64(i),
			Y:     chartPadding + plotH - scale(d.Clicks, chart.Max, plotH),
			Label: d.Date,
			Value: d.Clicks,
		}
	})
	return chart
}

func NewBarChart(series []domain.HourlyStats) BarChart {
	chart := BarChart{Width: chartWidth, Height: chartHeight}
	if len(series) == 0 {
		return chart
	}
	chart.Max = lo.MaxBy(series, func(a, b domain.HourlyStats) bool { return a.Clicks > b.Clicks }).Clicks

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	slot := plotW / float64(len(series))
	width := slot * 0.8

	chart.Bars = lo.Map(series, func(h domain.HourlyStats, i int) Bar {
		height := scale(h.Clicks, chart.Max, plotH)
		return Bar{
			X:     chartPadding + slot*float64(i) + (slot-width)/2,
			Y:     chartPadding + plotH - height,
			W:     width,
			H:     height,
			Label: string(h.Hour),
			Value: h.Clicks,
		}
	})
	return chart
}

func scale(v, max int64, span float64) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max) * span
}
