package engine

import (
	"math"
	"time"

	"github.com/tartampluch/go-kairos/internal/config"
)

// FirstQuarterStep returns the first step away from zero for the given
// minute of the hour. Forward it reaches the next quarter (minute 7 gives +8),
// backward the previous one (minute 7 gives -7). On an exact quarter both
// directions move a full quarter.
func FirstQuarterStep(minute, direction int) int {
	q := config.QuarterHour
	if direction >= 0 {
		if minute%q == 0 {
			return q
		}
		return q - minute%q
	}
	if minute%q == 0 {
		return -q
	}
	return -(minute % q)
}

// StepsForPixels converts the continuous ruler offset into a signed step
// count. Leftward motion (negative pixels) yields positive, future steps.
// Halves round up, like the browser's Math.round.
func StepsForPixels(continuous float64) int {
	return -int(math.Floor(continuous/config.HourWidth + 0.5))
}

// MinutesForSteps applies the asymmetric quarter-hour rule: the first step
// lands on a quarter boundary, every further step adds a flat quarter hour.
func MinutesForSteps(steps, minute int) int {
	if steps == 0 {
		return 0
	}
	dir := sign(steps)
	first := FirstQuarterStep(minute, dir)
	return first + (absInt(steps)-1)*config.QuarterHour*dir
}

// Quantize maps a continuous pixel offset to minutes for the given minute of the hour.
func Quantize(continuous float64, minute int) int {
	return MinutesForSteps(StepsForPixels(continuous), minute)
}

// SnapPixels moves a continuous offset onto the nearest step line.
func SnapPixels(continuous float64) float64 {
	return -float64(StepsForPixels(continuous)) * config.HourWidth
}

// ReturnSequence lists the offsets visited while animating back to zero,
// excluding the starting value. Each step removes a quarter hour and the
// last one lands exactly on zero, so the sequence never overshoots.
func ReturnSequence(offsetMinutes int) []int {
	var seq []int
	for o := offsetMinutes; o != 0; {
		if absInt(o) <= config.QuarterHour {
			o = 0
		} else {
			o -= sign(o) * config.QuarterHour
		}
		seq = append(seq, o)
	}
	return seq
}

// PixelsForOffset places the ruler for an offset reached by the return animation.
func PixelsForOffset(offsetMinutes int) float64 {
	return -float64(sign(offsetMinutes)*len(ReturnSequence(offsetMinutes))) * config.HourWidth
}

// StepDelay spreads the fixed animation duration over the step count.
func StepDelay(stepCount int) time.Duration {
	if stepCount <= 1 {
		return config.ReturnAnimationDuration
	}
	return config.ReturnAnimationDuration / time.Duration(stepCount)
}
