package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-kairos/internal/config"
)

// SlotExporter renders the previewed instant as a single-event calendar so
// the slot can be dropped into any calendar client.
type SlotExporter struct {
	Clock Clock

	// FormatSummary allows the UI to inject a localized event title.
	FormatSummary func(cityCount int) string
}

// Export builds the calendar for the instant the board rows were projected at.
// The description lists each city with its local wall-clock time.
func (e *SlotExporter) Export(views []CityView, start time.Time) ([]byte, error) {
	start = start.Truncate(time.Minute)

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatSlotUID, start.Unix(), config.ICalDomain))

	summary := fmt.Sprintf(config.FallbackSlotSummary, len(views))
	if e.FormatSummary != nil {
		summary = e.FormatSummary(len(views))
	}
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropDescription, describeSlot(views))

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(e.Clock.Now().UTC())
	event.Props.Set(stamp)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDateTime(start.UTC())
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(config.PropDTEnd)
	dtEnd.SetDateTime(start.Add(config.SlotDuration).UTC())
	event.Props.Set(dtEnd)

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgSlotUpdated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(views),
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), nil
}

func describeSlot(views []CityView) string {
	lines := make([]string, 0, len(views))
	for _, v := range views {
		clock := config.FallbackInvalidZone
		if v.Err == nil {
			clock = v.Local.Clock() + " " + v.Local.Abbreviation
		}
		lines = append(lines, fmt.Sprintf(config.FormatSlotLine, v.City.Name, v.City.Country, clock))
	}
	return strings.Join(lines, "\n")
}
