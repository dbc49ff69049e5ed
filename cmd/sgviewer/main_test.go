package main

import (
	"math"
	"testing"
)

// TestComputeContainRect_WideView verifies a wider-than-image view letterboxes
// horizontally and preserves aspect.
func TestComputeContainRect_WideView(t *testing.T) {
	drawX, drawY, drawW, drawH, scale := computeContainRect(800, 400, 1200, 400)
	if scale != 1 {
		t.Fatalf("scale = %v, want 1 (height-bound)", scale)
	}
	if drawW != 800 || drawH != 400 {
		t.Fatalf("drawn size = %vx%v, want 800x400", drawW, drawH)
	}
	if drawX != 200 || drawY != 0 {
		t.Fatalf("offset = (%v, %v), want (200, 0)", drawX, drawY)
	}
}

// TestComputeContainRect_ScalesDown verifies a smaller view shrinks the image
// uniformly.
func TestComputeContainRect_ScalesDown(t *testing.T) {
	_, _, drawW, drawH, scale := computeContainRect(800, 400, 400, 400)
	if math.Abs(float64(scale)-0.5) > 1e-6 {
		t.Fatalf("scale = %v, want 0.5", scale)
	}
	if drawW != 400 || drawH != 200 {
		t.Fatalf("drawn size = %vx%v, want 400x200", drawW, drawH)
	}
}

// TestTruncatePath keeps short paths intact and marks shortened ones.
func TestTruncatePath(t *testing.T) {
	if got := truncatePath("short.csv", 60); got != "short.csv" {
		t.Fatalf("short path changed: %q", got)
	}
	long := "/data/sensor/exports/2024/january/run_with_a_really_long_name.csv"
	got := truncatePath(long, 30)
	if len(got) != 30 {
		t.Fatalf("truncated length = %d, want 30", len(got))
	}
	if got[:3] != "..." {
		t.Fatalf("missing ellipsis prefix: %q", got)
	}
}
