package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/directory"
	"github.com/tartampluch/go-kairos/internal/engine"
	"github.com/tartampluch/go-kairos/internal/locale"
	"github.com/tartampluch/go-kairos/internal/server"
	"github.com/tartampluch/go-kairos/internal/store"
)

var errServerDown = errors.New(config.ErrServerDown)

// KairosApp encapsulates the UI state, preferences, and background logic.
type KairosApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	Translator  *locale.Translator
	Ctx         context.Context

	Server     *server.TimeServer
	Catalog    *directory.Catalog
	Board      *engine.CityBoard
	Controller *engine.OffsetController
	Exporter   *engine.SlotExporter
	Clock      engine.Clock

	// serving is set while Server is started, /slot.ics links are dead otherwise.
	serving atomic.Bool

	configChan chan string

	// Widgets of the main window, rebuilt on language change.
	caption     *widget.Label
	slider      *TimeSlider
	nowButton   *widget.Button
	rowsBox     *fyne.Container
	rows        []*cityRow
	unsubscribe func()

	settingsWindow fyne.Window
	addCityWindow  fyne.Window
}

// NewKairosApp constructs the application and wires dependencies. The
// selection is persisted in the Fyne preferences of a.
func NewKairosApp(
	a fyne.App,
	ctx context.Context,
	srv *server.TimeServer,
	catalog *directory.Catalog,
	projector *engine.Projector,
	reference engine.City,
	clock engine.Clock,
) *KairosApp {
	prefs := a.Preferences()
	tr := locale.New(prefs.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	loc, err := projector.Resolve(reference.Timezone)
	if err != nil {
		slog.Warn(config.MsgZoneUnresolved,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyTimezone, reference.Timezone,
			config.LogKeyError, err)
		loc = time.Local
	}

	return &KairosApp{
		App:         a,
		Preferences: prefs,
		Translator:  tr,
		Ctx:         ctx,
		Server:      srv,
		Catalog:     catalog,
		Board:       engine.NewCityBoard(projector, store.NewPreferences(prefs), reference),
		Controller:  engine.NewOffsetController(clock, loc),
		Exporter:    &engine.SlotExporter{Clock: clock, FormatSummary: tr.SlotSummary},
		Clock:       clock,
		configChan:  make(chan string, config.ChannelBufferSize),
	}
}

// Run launches the application services and the main UI loop.
func (app *KairosApp) Run() {
	app.watchPreferences()

	if app.Preferences.BoolWithFallback(config.PrefServerEnabled, true) {
		app.serving.Store(true)
		go func() {
			err := app.Server.Start(app.Ctx)
			app.serving.Store(false)
			if err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)

				app.App.SendNotification(fyne.NewNotification(
					config.TitleStartupError,
					fmt.Sprintf(config.MsgPortBusy, app.Server.Addr)))
			}
		}()
	}

	app.showMainWindow()
	go app.loadDirectory()
	go app.backgroundWorker()

	app.App.Run()
	app.Controller.Close()
}

// showMainWindow creates the board window and subscribes it to the controller.
func (app *KairosApp) showMainWindow() {
	w := app.App.NewWindow(app.Translator.T(config.TKeyWinTitle))
	w.SetMaster()
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.Window = w

	app.unsubscribe = app.Controller.Subscribe(func(engine.OffsetState) {
		fyne.Do(app.refresh)
	})
	w.SetOnClosed(func() {
		if app.unsubscribe != nil {
			app.unsubscribe()
		}
	})

	app.relabel()
	w.Show()
}

// relabel rebuilds the window content in the current language.
func (app *KairosApp) relabel() {
	if app.Window == nil {
		return
	}
	app.Window.SetTitle(app.Translator.T(config.TKeyWinTitle))
	app.Window.SetContent(app.buildContent())
	app.refresh()
}

func (app *KairosApp) buildContent() fyne.CanvasObject {
	app.caption = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	app.slider = NewTimeSlider(app.Controller, app.Clock)

	app.nowButton = widget.NewButtonWithIcon(app.Translator.T(config.TKeyBtnNow), theme.HistoryIcon(), app.Controller.ReturnToNow)
	btnExport := widget.NewButtonWithIcon(app.Translator.T(config.TKeyBtnExportSlot), theme.MailSendIcon(), func() {
		_ = app.exportSlot()
	})
	btnAdd := widget.NewButtonWithIcon(app.Translator.T(config.TKeyBtnAddCity), theme.ContentAddIcon(), app.ShowAddCityWindow)
	btnAdd.Importance = widget.HighImportance
	btnSettings := widget.NewButtonWithIcon("", theme.SettingsIcon(), app.ShowSettingsWindow)

	toolbar := container.NewHBox(app.nowButton, btnExport, layout.NewSpacer(), btnAdd, btnSettings)

	app.rows = nil
	app.rowsBox = container.NewVBox()

	footer := widget.NewLabelWithStyle(
		app.Translator.TData(config.TKeyLblFooter, map[string]any{"Version": config.Version}),
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	top := container.NewVBox(app.caption, app.slider, toolbar, widget.NewSeparator())
	return container.NewBorder(top, footer, nil, nil, container.NewVScroll(app.rowsBox))
}

// refresh projects the board at the current instant and offset. It must run
// on the UI goroutine.
func (app *KairosApp) refresh() {
	if app.caption == nil {
		return
	}
	state := app.Controller.State()
	visual := state.Visual(app.Translator.T(config.TKeyCurrentTime))

	app.caption.SetText(visual.Label)
	app.slider.SetRulerOffset(visual.RulerOffset)
	if state.OffsetMinutes == 0 || state.Phase != engine.PhaseIdle {
		app.nowButton.Disable()
	} else {
		app.nowButton.Enable()
	}

	app.renderRows(app.Board.Tick(app.Clock.Now(), state.OffsetMinutes))
}

// watchPreferences forwards preference changes to the background worker.
func (app *KairosApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefLanguage:
		default:
		}
	})
}

// loadDirectory fills the catalog then restores the selection, whose
// first-launch defaults come from the catalog. Cities added while it runs
// are merged by Board.Load.
func (app *KairosApp) loadDirectory() {
	if err := app.Catalog.Load(app.Ctx); err != nil {
		slog.Error(config.ErrDirectoryLoad,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.Translator.T(config.TKeyNotifDirectory)))
	}
	if err := app.Board.Load(app.Catalog.Defaults()); err != nil {
		slog.Warn(config.ErrSelectionLoad,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}
	fyne.Do(app.refresh)
}

// backgroundWorker samples the wall clock every second and applies
// language changes.
func (app *KairosApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	ticker := app.Clock.NewTicker(config.TickInterval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			app.applyLanguage()

		case <-ticker.Chan():
			fyne.Do(app.refresh)
		}
	}
}

// applyLanguage switches the translator when the preference changed.
func (app *KairosApp) applyLanguage() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	if lang == app.Translator.Language() {
		return
	}
	slog.Info(config.MsgSettingsReload,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyLang, lang)
	app.Translator.SetLanguage(lang)
	fyne.Do(app.relabel)
}

// exportSlot encodes the previewed instant as a calendar event, serves it
// at /slot.ics and copies that address to the clipboard. Nothing is copied
// while the server is down.
func (app *KairosApp) exportSlot() error {
	if !app.serving.Load() {
		slog.Warn(config.ErrServerDown, config.LogKeyComponent, config.CompUI)
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.Translator.T(config.TKeyNotifServerOff)))
		return errServerDown
	}

	now := app.Clock.Now()
	offset := app.Controller.State().OffsetMinutes
	views := app.Board.Tick(now, offset)

	data, err := app.Exporter.Export(views, now.Add(time.Duration(offset)*time.Minute))
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return err
	}
	app.Server.UpdateSlot(data)

	link := app.slotURL()
	app.App.Clipboard().SetContent(link)
	app.App.SendNotification(fyne.NewNotification(config.AppName,
		app.Translator.TData(config.TKeyNotifExported, map[string]any{"URL": link})))
	return nil
}

func (app *KairosApp) slotURL() string {
	u := url.URL{Scheme: config.SchemeHTTP, Host: app.Server.Addr, Path: config.RouteSlot}
	return u.String()
}
