package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// cityRow is one line of the board. Rows are kept while the selection is
// unchanged so the per-second refresh only rewrites labels.
type cityRow struct {
	id      string
	name    *widget.Label
	country *widget.Label
	clock   *widget.Label
	date    *widget.Label
	diff    *widget.Label

	up     *widget.Button
	down   *widget.Button
	remove *widget.Button

	object fyne.CanvasObject
}

func (app *KairosApp) newCityRow(v engine.CityView, index, count int) *cityRow {
	r := &cityRow{
		id:      v.City.ID,
		name:    widget.NewLabelWithStyle(v.City.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		country: widget.NewLabel(v.City.Country),
		clock:   widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}),
		date:    widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{}),
		diff:    widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{}),
	}
	r.country.Importance = widget.LowImportance

	place := container.NewVBox(r.name, r.country)
	when := container.NewVBox(container.NewHBox(r.date, r.clock), r.diff)

	if v.IsReference {
		r.object = container.NewBorder(nil, nil, place, when)
		return r
	}

	id := v.City.ID
	r.up = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { app.moveCity(id, -1) })
	r.down = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { app.moveCity(id, +1) })
	r.remove = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { app.removeCity(id) })
	r.remove.Importance = widget.DangerImportance
	if index <= 1 {
		r.up.Disable()
	}
	if index >= count-1 {
		r.down.Disable()
	}

	controls := container.NewHBox(r.up, r.down, r.remove)
	r.object = container.NewBorder(nil, nil, place, container.NewHBox(when, controls))
	return r
}

func (r *cityRow) update(v engine.CityView, app *KairosApp) {
	tr := app.Translator
	if v.Err != nil {
		r.clock.SetText(config.FallbackInvalidZone)
		r.date.SetText(v.City.Timezone)
		r.diff.Importance = widget.DangerImportance
		r.diff.SetText(tr.T(config.TKeyInvalidZone))
		return
	}

	r.clock.SetText(v.Local.Clock() + " " + v.Local.Abbreviation)
	r.date.SetText(v.Local.Wall.Format(config.DateFormatDisplay))

	switch {
	case v.IsReference:
		r.diff.Importance = widget.HighImportance
		r.diff.SetText(tr.T(config.TKeyYourTime))
		return
	case v.Diff.Hours > 0:
		r.diff.Importance = widget.SuccessImportance
	case v.Diff.Hours < 0:
		r.diff.Importance = widget.WarningImportance
	default:
		r.diff.Importance = widget.LowImportance
	}
	r.diff.SetText(tr.Difference(v.Diff))
}

// renderRows rebuilds the rows when the selection changed and updates them
// in place otherwise.
func (app *KairosApp) renderRows(views []engine.CityView) {
	if !app.sameRows(views) {
		app.rows = make([]*cityRow, len(views))
		objects := make([]fyne.CanvasObject, 0, 2*len(views))
		for i, v := range views {
			app.rows[i] = app.newCityRow(v, i, len(views))
			if i > 0 {
				objects = append(objects, widget.NewSeparator())
			}
			objects = append(objects, app.rows[i].object)
		}
		app.rowsBox.Objects = objects
		app.rowsBox.Refresh()
	}
	for i, v := range views {
		app.rows[i].update(v, app)
	}
}

func (app *KairosApp) sameRows(views []engine.CityView) bool {
	if len(views) != len(app.rows) {
		return false
	}
	for i, v := range views {
		if app.rows[i].id != v.City.ID {
			return false
		}
	}
	return true
}

func (app *KairosApp) removeCity(id string) {
	if err := app.Board.RemoveCity(id); err != nil {
		slog.Warn(config.ErrCityNotFound,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyCityID, id,
			config.LogKeyError, err)
		return
	}
	app.refresh()
}

// moveCity shifts id by delta positions; the board clamps the destination.
func (app *KairosApp) moveCity(id string, delta int) {
	index := -1
	for i, c := range app.Board.Cities() {
		if c.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return
	}
	if err := app.Board.MoveCity(id, index+delta); err != nil {
		slog.Warn(config.MsgRefusedRef,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyCityID, id,
			config.LogKeyError, err)
		return
	}
	app.refresh()
}
