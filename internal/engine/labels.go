package engine

import (
	"fmt"

	"github.com/tartampluch/go-kairos/internal/config"
)

// OffsetCaption renders the slider caption: "+1H 15M", "-45M", "+2H".
// A zero offset yields current, the localized "CURRENT TIME".
func OffsetCaption(offsetMinutes int, current string) string {
	if offsetMinutes == 0 {
		return current
	}
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
	}
	abs := absInt(offsetMinutes)
	if abs < config.MinutesPerHour {
		return fmt.Sprintf(config.FormatLabelMin, sign, abs)
	}
	h, m := abs/config.MinutesPerHour, abs%config.MinutesPerHour
	if m == 0 {
		return fmt.Sprintf(config.FormatLabelHour, sign, h)
	}
	return fmt.Sprintf(config.FormatLabelHourMin, sign, h, m)
}

// Visual is what the slider draws for a controller state.
type Visual struct {
	RulerOffset float64
	Phase       Phase
	Label       string
}

// Visual derives the slider drawing from s, current being the zero-offset caption.
func (s OffsetState) Visual(current string) Visual {
	return Visual{
		RulerOffset: s.ContinuousPixelOffset,
		Phase:       s.Phase,
		Label:       OffsetCaption(s.OffsetMinutes, current),
	}
}

// Difference renders d in the long form ("Same time", "3h ahead",
// "6h behind") using the given templates, each taking the span. Only the
// whole hours are shown: India against UTC reads "6h ahead".
func Difference(d OffsetDiff, same, ahead, behind string) string {
	span := fmt.Sprintf(config.FormatSpanHours, absInt(d.Hours))
	switch {
	case d.Hours == 0:
		return same
	case d.Hours > 0:
		return fmt.Sprintf(ahead, span)
	default:
		return fmt.Sprintf(behind, span)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
