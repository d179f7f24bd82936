package pointer

import "testing"

func TestOnAnyDisplay(t *testing.T) {
	// Secondary monitor left of the primary: negative virtual-screen
	// origin, valid negative pointer coordinates.
	layout := []rect{
		{-1920, 0, 1920, 1080},
		{0, 0, 1920, 1080},
	}

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"primary interior", 500, 500, true},
		{"negative x on left monitor", -1, 10, true},
		{"left monitor far edge", -1920, 0, true},
		{"above both monitors", 100, -1, false},
		{"beyond right edge", 1920, 500, false},
		{"gap below", 0, 1080, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := onAnyDisplay(tt.x, tt.y, layout); got != tt.expected {
				t.Errorf("onAnyDisplay(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestOnAnyDisplayNoDisplays(t *testing.T) {
	if onAnyDisplay(0, 0, nil) {
		t.Error("no displays must never contain a point")
	}
}
