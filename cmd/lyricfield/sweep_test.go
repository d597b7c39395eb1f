package main

import "testing"

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"maxBubbles=4,8", "windStrength= 0, 2.5"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(names) != 2 || names[0] != "maxBubbles" || names[1] != "windStrength" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[1]) != 2 || ranges[1][1] != 2.5 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"maxBubbles", "=1,2", "maxBubbles=", "maxBubbles=1,x"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
