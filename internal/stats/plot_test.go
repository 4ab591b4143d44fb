package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Progress", []Series{
		{Name: "Points", Values: []float64{100, 120, 140, 130, 150}},
		{Name: "Accuracy", Unit: "%", Values: []float64{70, 80, 85, 90, 95}},
	}, 5, 4, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Progress") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "scaled to its own range") {
		t.Fatalf("expected scale note in output")
	}
	if !strings.Contains(out, "Points: min=100.00 max=150.00") {
		t.Fatalf("expected unitless range readout, got %q", out)
	}
	if !strings.Contains(out, "Accuracy: min=70.00% max=95.00%") {
		t.Fatalf("expected percent range readout, got %q", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Empty", nil, 5, 4, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty input, got %q", buf.String())
	}
}
