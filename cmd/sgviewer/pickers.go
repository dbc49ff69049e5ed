package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/babygramps/CPUGraph/src/selection"
)

// buildPickerPanel builds one axis picker: a filter box, the checkable
// series list with selected entries pinned above a separator, and bulk
// select buttons. The list refreshes through refreshPickers after a reload.
func buildPickerPanel(state *uiState, mgr *selection.Manager, title string, onChange func()) fyne.CanvasObject {
	entries := []selection.Entry{}

	list := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject { return widget.NewCheck("", nil) },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			chk := o.(*widget.Check)
			if id < 0 || id >= len(entries) {
				return
			}
			e := entries[id]
			if e.Separator {
				chk.Text = e.Label
				chk.OnChanged = nil
				chk.Disable()
				chk.Refresh()
				return
			}
			chk.Enable()
			chk.Text = e.Label
			chk.OnChanged = nil
			chk.SetChecked(e.Selected)
			chk.OnChanged = func(b bool) {
				mgr.SetSelected(e.ID, b)
				refreshPickers(state)
				onChange()
			}
			chk.Refresh()
		},
	)

	filter := widget.NewEntry()
	filter.SetPlaceHolder("Filter…")
	filter.OnChanged = func(s string) {
		mgr.SetFilterText(s)
		refreshPickers(state)
	}

	selectAll := widget.NewButton("All", func() {
		if err := mgr.RequireCatalog(); err != nil {
			return
		}
		mgr.SelectAllVisible()
		refreshPickers(state)
		onChange()
	})
	deselectAll := widget.NewButton("None", func() {
		mgr.DeselectAllVisible()
		refreshPickers(state)
		onChange()
	})

	refresh := func() {
		entries = mgr.Entries()
		list.Refresh()
	}
	state.pickerRefresh = append(state.pickerRefresh, refresh)
	refresh()

	header := container.NewBorder(nil, nil, widget.NewLabel(title), container.NewHBox(selectAll, deselectAll), filter)
	return container.NewBorder(header, nil, nil, nil, list)
}

// refreshPickers re-derives both axis lists from their managers.
func refreshPickers(state *uiState) {
	for _, fn := range state.pickerRefresh {
		fn()
	}
}
