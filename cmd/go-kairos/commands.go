package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/directory"
	"github.com/tartampluch/go-kairos/internal/display"
	"github.com/tartampluch/go-kairos/internal/engine"
	"github.com/tartampluch/go-kairos/internal/locale"
	"github.com/tartampluch/go-kairos/internal/server"
	"github.com/tartampluch/go-kairos/internal/store"
	"github.com/tartampluch/go-kairos/internal/ui"
)

// cli holds the flags shared by every command and the resources opened in
// the persistent pre-run.
type cli struct {
	stdout io.Writer

	showVersion bool
	debug       bool
	configPath  string
	lang        string

	settings  *config.SettingsSource
	logCloser io.Closer
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close() // Best effort close
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "go-kairos",
		Short:             config.CmdDescRoot,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return c.runGUI(cmd)
		},
	}
	root.Flags().BoolVar(&c.showVersion, config.FlagVersion, false, config.FlagDescVersion)

	pf := root.PersistentFlags()
	pf.BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.StringVar(&c.configPath, config.FlagConfig, "", config.FlagDescConfig)
	pf.StringVar(&c.lang, config.FlagLang, "", config.FlagDescLang)

	root.AddCommand(c.serveCommand(), c.nowCommand())
	return root
}

// setup loads the settings and configures logging. The terminal board keeps
// stdout for itself, so its logs go to stderr.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	src, err := config.LoadSettings(c.configPath)
	if err != nil {
		return err
	}
	c.settings = src

	if c.showVersion {
		return nil
	}

	console := c.stdout
	if cmd.Name() == config.CmdNow {
		console = os.Stderr
	}
	c.logCloser = setupLogging(c.debug || src.Current().Debug, console)
	logStartupInfo()
	return nil
}

func (c *cli) language() string {
	if c.lang != "" {
		return c.lang
	}
	return c.settings.Current().Language
}

func (c *cli) catalog(s config.Settings) *directory.Catalog {
	return directory.NewCatalog(directory.Sources(afero.NewOsFs(), s.CitiesFile, s.CitiesURL))
}

// runGUI starts the Fyne application; it blocks until the window closes.
func (c *cli) runGUI(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s := c.settings.Current()

	a := app.NewWithID(config.AppID)
	prefs := a.Preferences()
	prefs.SetString(config.PrefLastRun, config.Version)
	if c.lang != "" {
		prefs.SetString(config.PrefLanguage, c.lang)
	}

	projector := engine.NewProjector(nil)
	catalog := c.catalog(s)
	port := prefs.StringWithFallback(config.PrefServerPort, s.Port)
	srv := server.NewTimeServer(s.BindAddr+config.AddrSeparator+port, projector, catalog, s.CORSOrigins)
	c.settings.Watch(func(next config.Settings) { srv.SetCORSOrigins(next.CORSOrigins) })

	gui := ui.NewKairosApp(a, ctx, srv, catalog, projector,
		engine.ReferenceCity(engine.LocalTimezone()), engine.NewRealClock())

	// Quit the UI when the process is interrupted.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s := c.settings.Current()

			catalog := c.catalog(s)
			if err := catalog.Load(ctx); err != nil {
				// /api/cities answers 500 until restart; /time keeps working.
				slog.Warn(config.ErrDirectoryLoad,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyError, err)
			}

			srv := server.NewTimeServer(s.Addr(), engine.NewProjector(nil), catalog, s.CORSOrigins)
			c.settings.Watch(func(next config.Settings) { srv.SetCORSOrigins(next.CORSOrigins) })
			return srv.Start(ctx)
		},
	}
}

func (c *cli) nowCommand() *cobra.Command {
	var (
		offset int
		cities []string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   config.CmdNow,
		Short: config.CmdDescNow,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if offset < -config.MaxQueryOffsetMinutes || offset > config.MaxQueryOffsetMinutes {
				return fmt.Errorf("%s: %d", config.ErrOffsetRange, offset)
			}

			catalog := c.catalog(c.settings.Current())
			if err := catalog.Load(ctx); err != nil {
				slog.Warn(config.ErrDirectoryLoad,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyError, err)
			}

			board, err := nowBoard(engine.NewProjector(nil), catalog, cities, selectionPath())
			if err != nil {
				return err
			}

			clock := engine.NewRealClock()
			r := display.NewRenderer(cmd.OutOrStdout(), locale.New(c.language()))
			if watch {
				return r.Watch(ctx, clock, board, offset)
			}
			return r.Render(board.Tick(clock.Now(), offset), offset)
		},
	}
	cmd.Flags().IntVar(&offset, config.FlagOffset, 0, config.FlagDescOffset)
	cmd.Flags().StringSliceVar(&cities, config.FlagCities, nil, config.FlagDescCities)
	cmd.Flags().BoolVar(&watch, config.FlagWatch, false, config.FlagDescWatch)
	return cmd
}

// nowBoard shows ids when given, otherwise the selection saved by earlier
// runs at path. An empty path disables persistence.
func nowBoard(projector *engine.Projector, catalog *directory.Catalog, ids []string, path string) (*engine.CityBoard, error) {
	ref := engine.ReferenceCity(engine.LocalTimezone())

	if len(ids) > 0 {
		board := engine.NewCityBoard(projector, nil, ref)
		for _, id := range ids {
			city, ok := catalog.Lookup(id)
			if !ok {
				return nil, fmt.Errorf("%s: %q", config.ErrUnknownCity, id)
			}
			board.AddCity(city)
		}
		return board, nil
	}

	var sel engine.SelectionStore
	if path != "" {
		sel = store.NewFile(path)
	}
	board := engine.NewCityBoard(projector, sel, ref)
	if err := board.Load(catalog.Defaults()); err != nil {
		slog.Warn(config.ErrSelectionLoad,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err)
	}
	return board, nil
}

// selectionPath locates the terminal selection in the user config directory.
func selectionPath() string {
	dir, err := appDir(os.UserConfigDir)
	if err != nil {
		slog.Warn(config.ErrSelectionLoad,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err)
		return ""
	}
	return filepath.Join(dir, config.SelectionFileName)
}
