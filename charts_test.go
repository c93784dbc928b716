package main

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildChartSeriesYearBucketing(t *testing.T) {
	data := []map[string]any{
		{"primary_title": "A", "year": int64(1999)},
		{"primary_title": "B", "year": int64(1999)},
		{"primary_title": "C", "year": int64(2000)},
		{"primary_title": "D", "year": nil},
		{"primary_title": "E", "year": "unknown"},
		{"primary_title": "F", "year": "1998"},
	}

	series, err := BuildChartSeries("bar", data, "Credits", "Year", "Count")
	if err != nil {
		t.Fatalf("BuildChartSeries failed: %v", err)
	}

	wantLabels := []string{"1998", "1999", "2000"}
	wantValues := []float64{1, 2, 1}

	if len(series.Labels) != len(wantLabels) {
		t.Fatalf("got %d buckets, want %d (labels: %v)", len(series.Labels), len(wantLabels), series.Labels)
	}
	for i := range wantLabels {
		if series.Labels[i] != wantLabels[i] {
			t.Errorf("label[%d] = %q, want %q", i, series.Labels[i], wantLabels[i])
		}
		if series.Values[i] != wantValues[i] {
			t.Errorf("value[%d] = %v, want %v", i, series.Values[i], wantValues[i])
		}
	}
}

func TestBuildChartSeriesPreAggregated(t *testing.T) {
	// Rows arrive unsorted; the series must come back in ascending year order.
	data := []map[string]any{
		{"year": int64(2001), "count": int64(3)},
		{"year": int64(1999), "count": int64(5)},
		{"year": int64(2000), "count": int64(1)},
	}

	series, err := BuildChartSeries("line", data, "", "", "")
	if err != nil {
		t.Fatalf("BuildChartSeries failed: %v", err)
	}

	wantLabels := []string{"1999", "2000", "2001"}
	wantValues := []float64{5, 1, 3}
	for i := range wantLabels {
		if series.Labels[i] != wantLabels[i] || series.Values[i] != wantValues[i] {
			t.Errorf("point[%d] = (%s, %v), want (%s, %v)", i, series.Labels[i], series.Values[i], wantLabels[i], wantValues[i])
		}
	}
}

func TestBuildChartSeriesPremieredField(t *testing.T) {
	data := []map[string]any{
		{"premiered": int64(1994)},
		{"premiered": int64(1994)},
		{"premiered": int64(1995)},
	}

	series, err := BuildChartSeries("bar", data, "", "", "")
	if err != nil {
		t.Fatalf("BuildChartSeries failed: %v", err)
	}
	if len(series.Labels) != 2 || series.Labels[0] != "1994" || series.Values[0] != 2 {
		t.Errorf("unexpected series: labels=%v values=%v", series.Labels, series.Values)
	}
}

func TestBuildChartSeriesPie(t *testing.T) {
	data := []map[string]any{
		{"label": "Drama", "value": int64(12)},
		{"label": "Comedy", "value": 7.0},
		{"label": "Horror"}, // no value, dropped
	}

	series, err := BuildChartSeries("pie", data, "Genres", "", "")
	if err != nil {
		t.Fatalf("BuildChartSeries failed: %v", err)
	}

	if len(series.Labels) != 2 {
		t.Fatalf("got %d slices, want 2", len(series.Labels))
	}
	if series.Labels[0] != "Drama" || series.Values[0] != 12 {
		t.Errorf("slice[0] = (%s, %v), want (Drama, 12)", series.Labels[0], series.Values[0])
	}
	if series.Labels[1] != "Comedy" || series.Values[1] != 7 {
		t.Errorf("slice[1] = (%s, %v), want (Comedy, 7)", series.Labels[1], series.Values[1])
	}
}

func TestBuildChartSeriesXYPairs(t *testing.T) {
	data := []map[string]any{
		{"x": "Forrest Gump", "y": 8.8},
		{"x": "Toy Story", "y": 8.3},
	}

	series, err := BuildChartSeries("bar", data, "", "", "")
	if err != nil {
		t.Fatalf("BuildChartSeries failed: %v", err)
	}
	if len(series.Labels) != 2 || series.Labels[0] != "Forrest Gump" || series.Values[1] != 8.3 {
		t.Errorf("unexpected series: labels=%v values=%v", series.Labels, series.Values)
	}
}

func TestBuildChartSeriesErrors(t *testing.T) {
	testCases := []struct {
		name string
		kind string
		data []map[string]any
	}{
		{name: "Unsupported kind", kind: "scatter", data: []map[string]any{{"year": 1999}}},
		{name: "Empty data", kind: "bar", data: nil},
		{name: "No usable years", kind: "bar", data: []map[string]any{{"year": nil}, {"year": "unknown"}}},
		{name: "No usable pie pairs", kind: "pie", data: []map[string]any{{"label": "Drama"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildChartSeries(tc.kind, tc.data, "", "", "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrAggregation) {
				t.Errorf("error not categorized as aggregation: %v", err)
			}
		})
	}
}

func TestRenderChartSeries(t *testing.T) {
	series := &ChartSeries{
		Kind:   ChartBar,
		Labels: []string{"1994", "1995"},
		Values: []float64{2, 1},
		Title:  "Credits by year",
	}

	out := RenderChartSeries(series, 60)
	if !strings.Contains(out, "1994") || !strings.Contains(out, "1995") {
		t.Errorf("rendered chart missing labels:\n%s", out)
	}
	if !strings.Contains(out, "Credits by year") {
		t.Errorf("rendered chart missing title:\n%s", out)
	}

	if got := RenderChartSeries(nil, 60); got != "No chart data" {
		t.Errorf("nil series rendered as %q", got)
	}
}

func TestSparkline(t *testing.T) {
	if out := Sparkline([]float64{1, 2, 3}); len([]rune(out)) != 3 {
		t.Errorf("Sparkline length = %d, want 3", len([]rune(out)))
	}
	if out := Sparkline(nil); out != "" {
		t.Errorf("Sparkline(nil) = %q, want empty", out)
	}
}
