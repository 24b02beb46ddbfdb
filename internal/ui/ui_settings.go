package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-kairos/internal/config"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect  *widget.Select
	entryPort   *NumericalEntry
	checkServer *widget.Check
}

// ShowSettingsWindow displays the configuration dialog.
func (app *KairosApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		slog.Debug("Settings window already open, requesting focus", config.LogKeyComponent, config.CompUISet)
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.Translator.T(config.TKeyWinSettings))
	app.settingsWindow = w

	sw := app.newSettingsWidgets()

	itemLang := widget.NewFormItem(app.Translator.T(config.TKeyLblLanguage), sw.langSelect)
	itemPort := widget.NewFormItem(app.Translator.T(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.Translator.T(config.TKeyHelpPort)
	form := widget.NewForm(itemLang, itemPort)

	saveAction := func() {
		// The port is the only field that can block saving.
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw)
		w.Close()
	}

	btnSave := widget.NewButtonWithIcon(app.Translator.T(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.Translator.T(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabelWithStyle(
		app.Translator.TData(config.TKeyLblFooter, map[string]any{"Version": config.Version}),
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	content := container.NewPadded(container.NewVBox(
		form,
		sw.checkServer,
		container.NewGridWithColumns(2, btnCancel, btnSave),
		footerLabel,
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	w.Show()
}

// newSettingsWidgets builds the inputs pre-filled from preferences.
func (app *KairosApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.Translator.Languages(), nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.validatePort

	sw.checkServer = widget.NewCheck(app.Translator.T(config.TKeyLblServer), nil)
	sw.checkServer.SetChecked(app.Preferences.BoolWithFallback(config.PrefServerEnabled, true))
	return sw
}

// validatePort applies config.ValidatePort with localized messages.
func (app *KairosApp) validatePort(s string) error {
	err := config.ValidatePort(s)
	if err == nil {
		return nil
	}
	switch err.Error() {
	case config.ErrPortRequired:
		return errors.New(app.Translator.T(config.TKeyErrPortReq))
	case config.ErrPortNumber:
		return errors.New(app.Translator.T(config.TKeyErrPortNum))
	}
	return errors.New(app.Translator.T(config.TKeyErrPortRange))
}

// saveSettings persists the preferences and relabels the UI. A port change
// applies on the next start.
func (app *KairosApp) saveSettings(sw *settingsWidgets) {
	slog.Info("Saving preferences", config.LogKeyComponent, config.CompUISet)

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	app.Preferences.SetBool(config.PrefServerEnabled, sw.checkServer.Checked)

	if sw.langSelect.Selected != app.Translator.Language() {
		app.Translator.SetLanguage(sw.langSelect.Selected)
		app.relabel()
	}
}
