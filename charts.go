package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ChartKind selects the visual encoding of a series.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// ChartSeries is a renderer-ready label/value sequence. Labels and Values are
// always the same length.
type ChartSeries struct {
	Kind   ChartKind `json:"kind"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Title  string    `json:"title,omitempty"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
}

// BuildChartSeries reshapes an already-fetched result set into a chart series.
// It never executes SQL. Three record shapes are understood for bar and line
// charts: pre-aggregated {year, count}, generic {x, y} pairs, and raw records
// carrying only a year/premiered field, which are bucketed by year. Pie charts
// take {label, value} pairs directly. Records with a missing, null or
// non-numeric year are dropped (and logged), not fatal.
func BuildChartSeries(kind string, data []map[string]any, title, xLabel, yLabel string) (*ChartSeries, error) {
	chartKind := ChartKind(strings.ToLower(strings.TrimSpace(kind)))
	switch chartKind {
	case ChartBar, ChartLine, ChartPie:
	default:
		return nil, newQueryError(ErrAggregation, "", fmt.Errorf("unsupported chart type %q", kind))
	}

	if len(data) == 0 {
		return nil, newQueryError(ErrAggregation, "", fmt.Errorf("no data to chart"))
	}

	series := &ChartSeries{Kind: chartKind, Title: title, XLabel: xLabel, YLabel: yLabel}

	if chartKind == ChartPie {
		for _, record := range data {
			label, okL := record["label"]
			value, okV := coerceFloat(record["value"])
			if !okL || !okV {
				if logger != nil {
					logger.Warn("Dropping pie record without label/value pair")
				}
				continue
			}
			series.Labels = append(series.Labels, fmt.Sprint(label))
			series.Values = append(series.Values, value)
		}
		if len(series.Values) == 0 {
			return nil, newQueryError(ErrAggregation, "", fmt.Errorf("no usable label/value pairs"))
		}
		return series, nil
	}

	switch {
	case hasField(data[0], "x") && hasField(data[0], "y"):
		for _, record := range data {
			y, ok := coerceFloat(record["y"])
			if !ok {
				continue
			}
			series.Labels = append(series.Labels, fmt.Sprint(record["x"]))
			series.Values = append(series.Values, y)
		}

	case hasField(data[0], "count"):
		// Pre-aggregated (year, count) rows pass through directly.
		type point struct {
			year  int
			count float64
		}
		var points []point
		dropped := 0
		for _, record := range data {
			year, okY := coerceYear(yearField(record))
			count, okC := coerceFloat(record["count"])
			if !okY || !okC {
				dropped++
				continue
			}
			points = append(points, point{year, count})
		}
		if dropped > 0 && logger != nil {
			logger.Warn("Dropped pre-aggregated records with unusable year or count", "dropped", dropped)
		}
		sort.Slice(points, func(i, j int) bool { return points[i].year < points[j].year })
		for _, p := range points {
			series.Labels = append(series.Labels, strconv.Itoa(p.year))
			series.Values = append(series.Values, p.count)
		}

	default:
		// Raw per-record rows: bucket by year, counting occurrences.
		counts := make(map[int]float64)
		dropped := 0
		for _, record := range data {
			year, ok := coerceYear(yearField(record))
			if !ok {
				dropped++
				continue
			}
			counts[year]++
		}
		if dropped > 0 && logger != nil {
			logger.Warn("Dropped records with missing or non-numeric year during aggregation", "dropped", dropped, "kept", len(data)-dropped)
		}
		years := make([]int, 0, len(counts))
		for y := range counts {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			series.Labels = append(series.Labels, strconv.Itoa(y))
			series.Values = append(series.Values, counts[y])
		}
	}

	if len(series.Values) == 0 {
		return nil, newQueryError(ErrAggregation, "", fmt.Errorf("no usable records after aggregation"))
	}

	return series, nil
}

func hasField(record map[string]any, key string) bool {
	v, ok := record[key]
	return ok && v != nil
}

// yearField returns the year-ish value of a record, whichever field carries it.
func yearField(record map[string]any) any {
	if v, ok := record["year"]; ok {
		return v
	}
	return record["premiered"]
}

// coerceYear converts the loosely typed values the driver and the model hand
// back into an integer year. Nil, empty and sentinel values fail the coercion.
func coerceYear(v any) (int, bool) {
	switch y := v.(type) {
	case nil:
		return 0, false
	case int:
		return y, true
	case int64:
		return int(y), true
	case float64:
		return int(y), true
	case string:
		s := strings.TrimSpace(y)
		if s == "" || strings.EqualFold(s, "unknown") || strings.EqualFold(s, "null") {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	case float64:
		return f, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

var chartPalette = []lipgloss.Color{"33", "201", "82", "226", "214", "196", "51", "129"}

// RenderChartSeries draws a series for terminal display.
func RenderChartSeries(series *ChartSeries, width int) string {
	if series == nil || len(series.Values) == 0 {
		return "No chart data"
	}
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	if series.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
		b.WriteString(titleStyle.Render(series.Title))
		b.WriteString("\n\n")
	}

	switch series.Kind {
	case ChartPie:
		b.WriteString(renderDistribution(series, width))
	case ChartLine:
		b.WriteString(Sparkline(series.Values))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s .. %s", series.Labels[0], series.Labels[len(series.Labels)-1]))
	default:
		b.WriteString(renderBars(series, width))
	}

	if series.XLabel != "" || series.YLabel != "" {
		footStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		b.WriteString("\n")
		b.WriteString(footStyle.Render(fmt.Sprintf("%s / %s", series.XLabel, series.YLabel)))
	}

	return b.String()
}

// renderBars draws one horizontal bar per label, scaled to the series maximum.
func renderBars(series *ChartSeries, width int) string {
	max := 0.0
	labelWidth := 0
	for i, v := range series.Values {
		if v > max {
			max = v
		}
		if len(series.Labels[i]) > labelWidth {
			labelWidth = len(series.Labels[i])
		}
	}
	if max == 0 {
		max = 1
	}

	barWidth := width - labelWidth - 10
	if barWidth < 10 {
		barWidth = 10
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	for i, v := range series.Values {
		filled := int((v / max) * float64(barWidth))
		if filled < 0 {
			filled = 0
		}
		if filled > barWidth {
			filled = barWidth
		}
		b.WriteString(fmt.Sprintf("%*s %s%s %.0f\n",
			labelWidth,
			series.Labels[i],
			barStyle.Render(strings.Repeat("█", filled)),
			emptyStyle.Render(strings.Repeat("░", barWidth-filled)),
			v,
		))
	}
	return b.String()
}

// renderDistribution draws a pie series as a single segmented bar plus legend.
func renderDistribution(series *ChartSeries, width int) string {
	total := 0.0
	for _, v := range series.Values {
		total += v
	}
	if total == 0 {
		return "No data"
	}

	var bar strings.Builder
	remaining := width
	for i, v := range series.Values {
		segWidth := int(math.Round((v / total) * float64(width)))
		if i == len(series.Values)-1 {
			segWidth = remaining
		}
		if segWidth > remaining {
			segWidth = remaining
		}
		style := lipgloss.NewStyle().Foreground(chartPalette[i%len(chartPalette)])
		bar.WriteString(style.Render(strings.Repeat("█", segWidth)))
		remaining -= segWidth
	}

	var legend strings.Builder
	for i, v := range series.Values {
		style := lipgloss.NewStyle().Foreground(chartPalette[i%len(chartPalette)])
		legend.WriteString(fmt.Sprintf("%s %s %.1f%%\n",
			style.Render("■"), series.Labels[i], (v/total)*100))
	}

	return bar.String() + "\n\n" + legend.String()
}

// Sparkline renders values as a compact single-line chart.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	for _, v := range values {
		var idx int
		if max == min {
			idx = len(chars) / 2
		} else {
			normalized := (v - min) / (max - min)
			idx = int(normalized * float64(len(chars)-1))
		}
		result.WriteRune(chars[idx])
	}

	return result.String()
}
