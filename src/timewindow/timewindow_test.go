package timewindow

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/babygramps/CPUGraph/src/dataset"
)

func loadFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	content := "YYMMDD_HHMMSS,AT-100\n" +
		"240105_120000,1\n" +
		"240105_120010,2\n" +
		"240105_120020,3\n" +
		"240105_120030,4\n" +
		"240105_120040,5\n"
	p := filepath.Join(t.TempDir(), "log.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ds, err := dataset.NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ds
}

func at(ds *dataset.Dataset, hhmmss string) *time.Time {
	tm, _ := time.ParseInLocation("060102_150405", "240105_"+hhmmss, ds.Location)
	return &tm
}

// TestApply_InclusiveBounds verifies rows exactly on either bound stay in the
// window.
func TestApply_InclusiveBounds(t *testing.T) {
	ds := loadFixture(t)
	f, err := Apply(ds, Window{Start: at(ds, "120010"), End: at(ds, "120030")}, 0)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.Rows() != 3 {
		t.Fatalf("rows = %d, want 3 (both bounds inclusive)", f.Rows())
	}
	vals, _ := f.Values(ds.Columns[0].ID)
	if vals[0] != 2 || vals[2] != 4 {
		t.Fatalf("window values = %v, want [2 3 4]", vals)
	}
}

// TestApply_OpenBounds verifies nil bounds leave that side unclipped.
func TestApply_OpenBounds(t *testing.T) {
	ds := loadFixture(t)
	f, err := Apply(ds, Window{End: at(ds, "120010")}, 0)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", f.Rows())
	}
	f, err = Apply(ds, Window{}, 0)
	if err != nil || f.Rows() != ds.Rows() {
		t.Fatalf("unbounded window: rows = %d err = %v", f.Rows(), err)
	}
}

// TestApply_EmptyWindow verifies the sentinel when nothing falls inside.
func TestApply_EmptyWindow(t *testing.T) {
	ds := loadFixture(t)
	start := ds.Times[len(ds.Times)-1].Add(time.Hour)
	end := start.Add(time.Hour)
	if _, err := Apply(ds, Window{Start: &start, End: &end}, 0); err != ErrEmptyWindow {
		t.Fatalf("err = %v, want ErrEmptyWindow", err)
	}
}

// TestCanonical_SwapsInvertedBounds verifies Canonical orders the interval
// without mutating the original.
func TestCanonical_SwapsInvertedBounds(t *testing.T) {
	a := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	b := a.Add(time.Minute)
	w := Window{Start: &b, End: &a}
	c := w.Canonical()
	if !c.Start.Equal(a) || !c.End.Equal(b) {
		t.Fatalf("canonical = [%v, %v], want [%v, %v]", c.Start, c.End, a, b)
	}
	if !w.Start.Equal(b) {
		t.Fatalf("Canonical mutated the receiver")
	}
}

// TestSmooth_CenteredAverage checks interior points average over the full
// window and edges shrink to the available samples.
func TestSmooth_CenteredAverage(t *testing.T) {
	got := Smooth([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{1.5, 2, 3, 4, 4.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("smooth[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

// TestSmooth_EvenWindowWidensToOdd verifies window 4 behaves as window 5.
func TestSmooth_EvenWindowWidensToOdd(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7}
	got4 := Smooth(vals, 4)
	got5 := Smooth(vals, 5)
	for i := range vals {
		if got4[i] != got5[i] {
			t.Fatalf("window 4 and 5 diverge at %d: %v vs %v", i, got4[i], got5[i])
		}
	}
}

// TestSmooth_SkipsNaN verifies NaN samples are excluded from each mean
// rather than poisoning it.
func TestSmooth_SkipsNaN(t *testing.T) {
	got := Smooth([]float64{1, math.NaN(), 3}, 3)
	if got[1] != 2 {
		t.Fatalf("mean around NaN = %v, want 2", got[1])
	}
	if math.IsNaN(got[0]) || math.IsNaN(got[2]) {
		t.Fatalf("edges poisoned by NaN neighbor: %v", got)
	}
}

// TestApply_SmoothingApplied verifies Apply wires the smoother through.
func TestApply_SmoothingApplied(t *testing.T) {
	ds := loadFixture(t)
	f, err := Apply(ds, Window{}, 3)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !f.Smoothed() {
		t.Fatalf("Smoothed() = false with window 3")
	}
	vals, _ := f.Values(ds.Columns[0].ID)
	if vals[2] != 3 || vals[0] != 1.5 {
		t.Fatalf("smoothed values = %v", vals)
	}
}
