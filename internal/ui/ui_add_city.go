package ui

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// cityGroup is a titled block of suggestions in the add-city window.
type cityGroup struct {
	title  string
	cities []engine.City
}

// suggestions lists the cities offered for query. An empty query shows the
// recently added cities then the popular ones; selected cities never appear.
func (app *KairosApp) suggestions(query string) []cityGroup {
	exclude := app.Board.Contains
	if strings.TrimSpace(query) != "" {
		hits := app.Catalog.Search(query, exclude)
		if len(hits) == 0 {
			return nil
		}
		return []cityGroup{{cities: hits}}
	}

	var groups []cityGroup
	if recent := app.Catalog.Recent(app.Board.Recent(), exclude); len(recent) > 0 {
		groups = append(groups, cityGroup{title: app.Translator.T(config.TKeyLblRecent), cities: recent})
	}
	if popular := app.Catalog.Popular(exclude); len(popular) > 0 {
		groups = append(groups, cityGroup{title: app.Translator.T(config.TKeyLblPopular), cities: popular})
	}
	return groups
}

// ShowAddCityWindow displays the city picker.
func (app *KairosApp) ShowAddCityWindow() {
	if app.addCityWindow != nil {
		app.addCityWindow.RequestFocus()
		return
	}

	slog.Debug("Opening add city window", config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.Translator.T(config.TKeyWinAddCity))
	app.addCityWindow = w

	results := container.NewVBox()
	search := widget.NewEntry()
	search.SetPlaceHolder(app.Translator.T(config.TKeyLblSearch))
	search.OnChanged = func(q string) {
		app.fillSuggestions(results, q, w)
	}
	app.fillSuggestions(results, "", w)

	w.SetContent(container.NewBorder(container.NewPadded(search), nil, nil, nil, container.NewVScroll(results)))
	w.Resize(fyne.NewSize(config.AddCityWindowWidth, config.AddCityWindowHeight))
	w.SetOnClosed(func() { app.addCityWindow = nil })
	w.Canvas().Focus(search)
	w.Show()
}

func (app *KairosApp) fillSuggestions(box *fyne.Container, query string, w fyne.Window) {
	groups := app.suggestions(query)

	var objects []fyne.CanvasObject
	for _, g := range groups {
		if g.title != "" {
			objects = append(objects, widget.NewLabelWithStyle(g.title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		}
		for _, city := range g.cities {
			btn := widget.NewButton(city.Name+", "+city.Country, func() {
				app.addCity(city)
				w.Close()
			})
			btn.Alignment = widget.ButtonAlignLeading
			btn.Importance = widget.LowImportance
			objects = append(objects, btn)
		}
	}
	if len(objects) == 0 {
		objects = append(objects, widget.NewLabel(app.Translator.T(config.TKeyLblNoResults)))
	}

	box.Objects = objects
	box.Refresh()
}

func (app *KairosApp) addCity(city engine.City) {
	if app.Board.AddCity(city) {
		app.refresh()
	}
}
