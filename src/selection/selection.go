// Package selection tracks which series are checked in the picker lists and
// which are currently drawn on the plot. Selected series are rendered at the
// top of the list, above a separator row, so long catalogs stay navigable
// while a filter is active.
package selection

import (
	"errors"
	"strings"

	"github.com/babygramps/CPUGraph/src/dataset"
)

// ErrEmptyCatalog is returned by RequireCatalog when no dataset is loaded.
var ErrEmptyCatalog = errors.New("no series catalog loaded")

// SeparatorLabel is the divider drawn between the selected block and the
// filtered remainder of the list.
var SeparatorLabel = strings.Repeat("─", 40)

// Item is one selectable series in the catalog.
type Item struct {
	ID    dataset.SeriesID
	Label string
}

// Entry is one row of the rendered list. Exactly one of Separator or a real
// item is set.
type Entry struct {
	ID        dataset.SeriesID
	Label     string
	Selected  bool
	Separator bool
}

// Manager holds the catalog, the checked set, and the set currently drawn.
// It is not safe for concurrent use; the UI drives it from one goroutine.
type Manager struct {
	catalog  []Item
	index    map[dataset.SeriesID]int
	selected map[dataset.SeriesID]bool
	rendered map[dataset.SeriesID]bool
	filter   string
}

func NewManager() *Manager {
	return &Manager{
		index:    map[dataset.SeriesID]int{},
		selected: map[dataset.SeriesID]bool{},
		rendered: map[dataset.SeriesID]bool{},
	}
}

// UpdateCatalog replaces the catalog and clears both the checked and rendered
// sets. Loading a new file must not carry stale selections over.
func (m *Manager) UpdateCatalog(items []Item) {
	m.catalog = append(m.catalog[:0:0], items...)
	m.index = make(map[dataset.SeriesID]int, len(items))
	for i, it := range items {
		m.index[it.ID] = i
	}
	m.selected = map[dataset.SeriesID]bool{}
	m.rendered = map[dataset.SeriesID]bool{}
}

// RequireCatalog reports whether any series are available to pick from.
func (m *Manager) RequireCatalog() error {
	if len(m.catalog) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

// SetFilterText stores the filter used by Entries. Matching is a
// case-insensitive substring test on the display label.
func (m *Manager) SetFilterText(s string) {
	m.filter = s
}

func (m *Manager) FilterText() string { return m.filter }

func (m *Manager) matches(it Item) bool {
	if m.filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Label), strings.ToLower(m.filter))
}

// Entries renders the list: every selected series first in catalog order,
// then a separator (only when something is selected and the remaining filter
// matches are non-empty), then the unselected filter matches in catalog
// order. Selected series appear even when they do not match the filter.
func (m *Manager) Entries() []Entry {
	var sel, rest []Entry
	for _, it := range m.catalog {
		if m.selected[it.ID] {
			sel = append(sel, Entry{ID: it.ID, Label: it.Label, Selected: true})
		} else if m.matches(it) {
			rest = append(rest, Entry{ID: it.ID, Label: it.Label})
		}
	}
	out := sel
	if len(sel) > 0 && len(rest) > 0 {
		out = append(out, Entry{Separator: true, Label: SeparatorLabel})
	}
	return append(out, rest...)
}

// SetSelected checks or unchecks one series. Unknown IDs are ignored.
func (m *Manager) SetSelected(id dataset.SeriesID, on bool) {
	if _, ok := m.index[id]; !ok {
		return
	}
	if on {
		m.selected[id] = true
	} else {
		delete(m.selected, id)
	}
}

func (m *Manager) IsSelected(id dataset.SeriesID) bool { return m.selected[id] }

// Selected returns the checked series in catalog order.
func (m *Manager) Selected() []dataset.SeriesID {
	var out []dataset.SeriesID
	for _, it := range m.catalog {
		if m.selected[it.ID] {
			out = append(out, it.ID)
		}
	}
	return out
}

// SelectAllVisible checks every unselected series currently passing the
// filter.
func (m *Manager) SelectAllVisible() {
	for _, it := range m.catalog {
		if !m.selected[it.ID] && m.matches(it) {
			m.selected[it.ID] = true
		}
	}
}

// DeselectAllVisible unchecks every selected series. Selected entries are
// always visible in the rendered list, so the filter does not shield them.
func (m *Manager) DeselectAllVisible() {
	for id := range m.selected {
		delete(m.selected, id)
	}
}

// ClearAll unchecks everything and forgets what was rendered.
func (m *Manager) ClearAll() {
	m.selected = map[dataset.SeriesID]bool{}
	m.rendered = map[dataset.SeriesID]bool{}
}

// SyncRendered records the set of series that made it onto the current plot.
func (m *Manager) SyncRendered(ids []dataset.SeriesID) {
	m.rendered = make(map[dataset.SeriesID]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.index[id]; ok {
			m.rendered[id] = true
		}
	}
}

func (m *Manager) IsRendered(id dataset.SeriesID) bool { return m.rendered[id] }

// Rendered returns the drawn series in catalog order.
func (m *Manager) Rendered() []dataset.SeriesID {
	var out []dataset.SeriesID
	for _, it := range m.catalog {
		if m.rendered[it.ID] {
			out = append(out, it.ID)
		}
	}
	return out
}
