package keystate

import (
	"testing"
)

func TestRawcodeTable(t *testing.T) {
	tests := []struct {
		goos     string
		rawcode  uint16
		expected Key
	}{
		// Windows VK codes (default table)
		{"windows", 164, KeyAlt},
		{"windows", 165, KeyAlt},
		{"windows", 160, KeyShift},
		{"windows", 161, KeyShift},
		{"windows", 81, KeyQ},
		{"windows", 87, KeyW},
		{"windows", 32, KeySpace},
		// Linux uses the same table
		{"linux", 164, KeyAlt},
		{"linux", 81, KeyQ},
		// macOS Carbon codes
		{"darwin", 58, KeyAlt},
		{"darwin", 61, KeyAlt},
		{"darwin", 56, KeyShift},
		{"darwin", 60, KeyShift},
		{"darwin", 12, KeyQ},
		{"darwin", 13, KeyW},
		{"darwin", 49, KeySpace},
	}

	for _, tt := range tests {
		table := rawcodeTable(tt.goos)
		key, ok := table[tt.rawcode]
		if !ok {
			t.Errorf("rawcodeTable(%q) missing rawcode %d", tt.goos, tt.rawcode)
			continue
		}
		if key != tt.expected {
			t.Errorf("rawcodeTable(%q)[%d] = %v, expected %v", tt.goos, tt.rawcode, key, tt.expected)
		}
	}
}

func TestPressRelease(t *testing.T) {
	tr := NewForPlatform("windows")

	if tr.IsDown(KeyAlt) {
		t.Error("Alt reported down before any press")
	}

	tr.OnPress(164) // left Alt
	if !tr.IsDown(KeyAlt) {
		t.Error("Alt not down after press")
	}

	tr.OnRelease(164)
	if tr.IsDown(KeyAlt) {
		t.Error("Alt still down after release")
	}
}

func TestLeftRightVariantsCollapse(t *testing.T) {
	tr := NewForPlatform("windows")

	tr.OnPress(160) // left Shift
	tr.OnPress(161) // right Shift
	if !tr.IsDown(KeyShift) {
		t.Fatal("Shift not down with both variants pressed")
	}

	// Releasing either variant clears the semantic flag; the tracker
	// collapses variants into one key, matching the previous listener.
	tr.OnRelease(161)
	if tr.IsDown(KeyShift) {
		t.Error("Shift still down after release")
	}
}

func TestUnknownRawcodeIgnored(t *testing.T) {
	tr := NewForPlatform("windows")

	tr.OnPress(999)
	tr.OnRelease(999)
	tr.OnRelease(81) // release without press is a no-op

	snap := tr.Snapshot()
	if snap.Alt || snap.Shift || snap.Q || snap.W || snap.Space {
		t.Errorf("unexpected key state after unknown/unmatched events: %+v", snap)
	}
}

func TestSnapshotReflectsSequence(t *testing.T) {
	tr := NewForPlatform("windows")

	tr.OnPress(164) // Alt
	tr.OnPress(160) // Shift
	tr.OnPress(81)  // Q

	snap := tr.Snapshot()
	if !snap.Alt || !snap.Shift || !snap.Q {
		t.Errorf("expected Alt+Shift+Q down, got %+v", snap)
	}
	if snap.W || snap.Space {
		t.Errorf("unexpected keys down: %+v", snap)
	}

	tr.OnRelease(81)
	tr.OnRelease(160)
	tr.OnRelease(164)

	snap = tr.Snapshot()
	if snap.Alt || snap.Shift || snap.Q {
		t.Errorf("expected all keys up, got %+v", snap)
	}
}

// A key must never report down without a preceding unmatched press, and
// never up while a press is outstanding, across arbitrary sequences.
func TestDownOnlyBetweenPressAndRelease(t *testing.T) {
	tr := NewForPlatform("windows")

	type ev struct {
		press   bool
		rawcode uint16
	}
	seq := []ev{
		{true, 81}, {true, 81}, {false, 81}, // double press, single release
		{false, 81},             // spurious release
		{true, 87}, {false, 87}, // clean pair
		{false, 32}, // release before any press
	}

	held := map[uint16]bool{}
	for i, e := range seq {
		if e.press {
			tr.OnPress(e.rawcode)
			held[e.rawcode] = true
		} else {
			tr.OnRelease(e.rawcode)
			held[e.rawcode] = false
		}
		snap := tr.Snapshot()
		got := map[uint16]bool{81: snap.Q, 87: snap.W, 32: snap.Space}
		for raw, want := range held {
			if got[raw] != want {
				t.Errorf("step %d: rawcode %d down=%v, expected %v", i, raw, got[raw], want)
			}
		}
	}
}
