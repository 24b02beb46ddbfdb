// Package display renders the city board on a terminal.
package display

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
	"github.com/tartampluch/go-kairos/internal/locale"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Renderer writes board snapshots to a terminal.
type Renderer struct {
	Out        io.Writer
	Translator *locale.Translator

	caption   *color.Color
	reference *color.Color
	ahead     *color.Color
	behind    *color.Color
	same      *color.Color
	invalid   *color.Color
}

// NewRenderer creates a renderer. Colors follow color.NoColor, which is set
// automatically when out is not a terminal.
func NewRenderer(out io.Writer, tr *locale.Translator) *Renderer {
	return &Renderer{
		Out:        out,
		Translator: tr,
		caption:    color.New(color.Bold),
		reference:  color.New(color.FgCyan, color.Bold),
		ahead:      color.New(color.FgGreen),
		behind:     color.New(color.FgYellow),
		same:       color.New(color.FgHiBlack),
		invalid:    color.New(color.FgRed),
	}
}

// Render writes the caption line followed by one line per city.
func (r *Renderer) Render(views []engine.CityView, offsetMinutes int) error {
	var b strings.Builder

	b.WriteString(r.caption.Sprint(r.Translator.Caption(offsetMinutes)))
	b.WriteString("\n\n")

	width := 0
	for _, v := range views {
		width = max(width, len([]rune(placeName(v.City))))
	}

	for _, v := range views {
		name := placeName(v.City)
		pad := strings.Repeat(" ", width-len([]rune(name)))

		marker := "  "
		if v.IsReference {
			marker = r.reference.Sprint("▶ ")
			name = r.reference.Sprint(name)
		}

		if v.Err != nil {
			fmt.Fprintf(&b, "%s%s%s  %s %s  %s\n", marker, name, pad,
				r.invalid.Sprint(config.FallbackInvalidZone),
				v.City.Timezone,
				r.invalid.Sprint(r.Translator.T(config.TKeyInvalidZone)))
			continue
		}

		clock := fmt.Sprintf("%s %-5s %s",
			v.Local.Clock(),
			v.Local.Abbreviation,
			v.Local.Wall.Format(config.DateFormatDisplay))
		fmt.Fprintf(&b, "%s%s%s  %s  %s\n", marker, name, pad, clock, r.difference(v))
	}

	_, err := io.WriteString(r.Out, b.String())
	return err
}

func (r *Renderer) difference(v engine.CityView) string {
	if v.IsReference {
		return r.reference.Sprint(r.Translator.T(config.TKeyYourTime))
	}
	text := r.Translator.Difference(v.Diff)
	switch {
	case v.Diff.Hours > 0:
		return r.ahead.Sprint(text)
	case v.Diff.Hours < 0:
		return r.behind.Sprint(text)
	}
	return r.same.Sprint(text)
}

func placeName(c engine.City) string {
	if c.Country == "" {
		return c.Name
	}
	return c.Name + ", " + c.Country
}

// Watch redraws the board every TickInterval until ctx is cancelled.
func (r *Renderer) Watch(ctx context.Context, clock engine.Clock, board *engine.CityBoard, offsetMinutes int) error {
	log := slog.With(config.LogKeyComponent, config.CompDisplay)
	ticker := clock.NewTicker(config.TickInterval)
	defer ticker.Stop()

	draw := func(now time.Time) error {
		if _, err := io.WriteString(r.Out, clearScreen); err != nil {
			return err
		}
		return r.Render(board.Tick(now, offsetMinutes), offsetMinutes)
	}

	log.Debug(config.MsgWorkerStart)
	if err := draw(clock.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug(config.MsgWorkerStop)
			return nil
		case <-ticker.Chan():
			if err := draw(clock.Now()); err != nil {
				return err
			}
		}
	}
}
