package selection

import (
	"testing"

	"github.com/babygramps/CPUGraph/src/dataset"
)

func catalogABC() []Item {
	return []Item{
		{ID: "c1:A", Label: "AT-100 - Inlet CO2 ppm"},
		{ID: "c2:B", Label: "TT-200 - Ambient Air Temperature °C"},
		{ID: "c3:C", Label: "PT-100 - System Pressure psi"},
	}
}

// TestEntries_SelectedFirstWithSeparator verifies the render order with a
// selection active: selected block, separator, then filtered remainder.
func TestEntries_SelectedFirstWithSeparator(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	m.SetSelected("c2:B", true)

	got := m.Entries()
	if len(got) != 4 {
		t.Fatalf("entries = %d, want 4", len(got))
	}
	if got[0].ID != "c2:B" || !got[0].Selected {
		t.Fatalf("first entry = %+v, want selected c2:B", got[0])
	}
	if !got[1].Separator {
		t.Fatalf("second entry should be the separator, got %+v", got[1])
	}
	if got[2].ID != "c1:A" || got[3].ID != "c3:C" {
		t.Fatalf("unselected tail out of catalog order: %+v %+v", got[2], got[3])
	}
}

// TestEntries_NoSeparatorWithoutSelection verifies the separator only appears
// when both the selected block and the filtered remainder are non-empty.
func TestEntries_NoSeparatorWithoutSelection(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	for _, e := range m.Entries() {
		if e.Separator {
			t.Fatalf("separator rendered with nothing selected")
		}
	}

	// All matches selected: remainder empty, still no separator.
	m.SetFilterText("co2")
	m.SetSelected("c1:A", true)
	for _, e := range m.Entries() {
		if e.Separator {
			t.Fatalf("separator rendered with empty filtered remainder")
		}
	}
}

// TestEntries_FilterIsCaseInsensitiveSubstring checks filtering matches on
// the display label regardless of case, and never hides selected series.
func TestEntries_FilterIsCaseInsensitiveSubstring(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	m.SetSelected("c3:C", true)
	m.SetFilterText("TEMPERATURE")

	got := m.Entries()
	if len(got) != 3 {
		t.Fatalf("entries = %d, want selected + separator + one match", len(got))
	}
	if got[0].ID != "c3:C" {
		t.Fatalf("selected series missing from filtered view: %+v", got[0])
	}
	if got[2].ID != "c2:B" {
		t.Fatalf("filter match = %+v, want c2:B", got[2])
	}
}

// TestUpdateCatalog_ClearsSelectionAndRendered verifies loading a new catalog
// drops stale state.
func TestUpdateCatalog_ClearsSelectionAndRendered(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	m.SetSelected("c1:A", true)
	m.SyncRendered([]dataset.SeriesID{"c1:A"})

	m.UpdateCatalog(catalogABC())
	if len(m.Selected()) != 0 {
		t.Fatalf("selection survived catalog reload: %v", m.Selected())
	}
	if m.IsRendered("c1:A") {
		t.Fatalf("rendered set survived catalog reload")
	}
}

// TestSetSelected_IgnoresUnknownIDs verifies out-of-catalog IDs never enter
// the selected set.
func TestSetSelected_IgnoresUnknownIDs(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	m.SetSelected("c9:zzz", true)
	if len(m.Selected()) != 0 {
		t.Fatalf("unknown ID was selected: %v", m.Selected())
	}
	m.SyncRendered([]dataset.SeriesID{"c9:zzz", "c1:A"})
	if m.IsRendered("c9:zzz") {
		t.Fatalf("unknown ID recorded as rendered")
	}
	if !m.IsRendered("c1:A") {
		t.Fatalf("known ID lost in SyncRendered")
	}
}

// TestSelectAllVisible_RespectsFilter verifies bulk selection only touches
// filter matches, and bulk deselection clears everything checked.
func TestSelectAllVisible_RespectsFilter(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	m.SetFilterText("p")

	m.SelectAllVisible()
	sel := m.Selected()
	if len(sel) != 3 {
		// "ppm", "Temperature", "Pressure psi" all contain a p.
		t.Fatalf("selected = %v, want all three", sel)
	}

	m.SetFilterText("co2")
	m.DeselectAllVisible()
	if len(m.Selected()) != 0 {
		t.Fatalf("deselect-all left selections: %v", m.Selected())
	}
}

// TestSelected_PreservesCatalogOrder verifies selection order does not leak
// into the returned order.
func TestSelected_PreservesCatalogOrder(t *testing.T) {
	m := NewManager()
	m.UpdateCatalog(catalogABC())
	m.SetSelected("c3:C", true)
	m.SetSelected("c1:A", true)

	sel := m.Selected()
	if len(sel) != 2 || sel[0] != "c1:A" || sel[1] != "c3:C" {
		t.Fatalf("selected order = %v, want catalog order [c1:A c3:C]", sel)
	}
}

// TestRequireCatalog reports the sentinel before any dataset is loaded.
func TestRequireCatalog(t *testing.T) {
	m := NewManager()
	if err := m.RequireCatalog(); err != ErrEmptyCatalog {
		t.Fatalf("err = %v, want ErrEmptyCatalog", err)
	}
	m.UpdateCatalog(catalogABC())
	if err := m.RequireCatalog(); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}
