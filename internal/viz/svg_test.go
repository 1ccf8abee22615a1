package viz

import (
	"strings"
	"testing"
)

func TestCanvasToSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	var sb strings.Builder
	if err := CanvasToSVG(&sb, c, 10, "#fff", "#000"); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(out, `width="40" height="40"`) {
		t.Errorf("unexpected size: %s", out)
	}
	if !strings.Contains(out, `cx="5.0" cy="5.0"`) || !strings.Contains(out, `cx="35.0" cy="35.0"`) {
		t.Errorf("dots misplaced: %s", out)
	}
	if err := CanvasToSVG(&sb, nil, 1, "", ""); err == nil {
		t.Error("expected error for nil canvas")
	}
}

func TestSeriesToSVG(t *testing.T) {
	var sb strings.Builder
	if err := SeriesToSVG(&sb, []float64{0, 1}, 100, 120, "red"); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	// Margins put 0 at y=110 and 1 at y=10.
	if !strings.Contains(out, `d="M0.0,110.0 L100.0,10.0"`) {
		t.Errorf("unexpected path: %s", out)
	}
	if !strings.Contains(out, `stroke="red"`) {
		t.Error("stroke colour missing")
	}

	if err := SeriesToSVG(&sb, []float64{1}, 10, 10, "red"); err == nil {
		t.Error("expected error for a single value")
	}
}
