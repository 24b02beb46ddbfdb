package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-kairos/internal/engine"
)

func TestFirstQuarterStep(t *testing.T) {
	tests := []struct {
		minute    int
		direction int
		want      int
	}{
		{0, 1, 15},
		{7, 1, 8},
		{15, 1, 15},
		{20, 1, 10},
		{44, 1, 1},
		{59, 1, 1},
		{0, -1, -15},
		{7, -1, -7},
		{15, -1, -15},
		{20, -1, -5},
		{45, -1, -15},
		{59, -1, -14},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("minute %d dir %d", tt.minute, tt.direction), func(t *testing.T) {
			assert.Equal(t, tt.want, engine.FirstQuarterStep(tt.minute, tt.direction))
		})
	}
}

func TestStepsForPixels(t *testing.T) {
	tests := []struct {
		pixels float64
		want   int
	}{
		{0, 0},
		{-3.9, 0},
		{-4, 0}, // -0.5 rounds up to zero
		{4, -1}, // 0.5 rounds up to one step into the past
		{-8, 1},
		{-12, 1},
		{-12.1, 2},
		{-80, 10},
		{16, -2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.pixels), func(t *testing.T) {
			assert.Equal(t, tt.want, engine.StepsForPixels(tt.pixels))
		})
	}
}

func TestMinutesForSteps(t *testing.T) {
	assert.Equal(t, 0, engine.MinutesForSteps(0, 7))
	assert.Equal(t, 8, engine.MinutesForSteps(1, 7), "first forward step reaches :15")
	assert.Equal(t, 23, engine.MinutesForSteps(2, 7), "later steps add a flat quarter hour")
	assert.Equal(t, -7, engine.MinutesForSteps(-1, 7), "first backward step reaches :00")
	assert.Equal(t, -22, engine.MinutesForSteps(-2, 7))
	assert.Equal(t, 45, engine.MinutesForSteps(3, 0))
	assert.Equal(t, -45, engine.MinutesForSteps(-3, 0))
}

// TestQuantize_LandsOnQuarterHours checks that for every start minute the
// previewed wall-clock time is a quarter-hour boundary.
func TestQuantize_LandsOnQuarterHours(t *testing.T) {
	for minute := 0; minute < 60; minute++ {
		for steps := -8; steps <= 8; steps++ {
			if steps == 0 {
				continue
			}
			offset := engine.MinutesForSteps(steps, minute)
			landed := ((minute+offset)%15 + 15) % 15
			require.Zerof(t, landed, "minute %d, steps %d gave offset %d", minute, steps, offset)
		}
	}
}

func TestSnapPixels(t *testing.T) {
	assert.Equal(t, -8.0, engine.SnapPixels(-5))
	assert.Equal(t, -16.0, engine.SnapPixels(-17.5))
	assert.Equal(t, 0.0, engine.SnapPixels(-3))
	assert.Equal(t, 8.0, engine.SnapPixels(9))
}

func TestReturnSequence(t *testing.T) {
	assert.Equal(t, []int{8, 0}, engine.ReturnSequence(23))
	assert.Equal(t, []int{-7, 0}, engine.ReturnSequence(-22))
	assert.Equal(t, []int{30, 15, 0}, engine.ReturnSequence(45))
	assert.Equal(t, []int{0}, engine.ReturnSequence(8))
	assert.Empty(t, engine.ReturnSequence(0))
}

// TestReturnSequence_NeverOvershoots walks every multiple of a quarter hour
// and checks monotonic convergence on zero.
func TestReturnSequence_NeverOvershoots(t *testing.T) {
	for m := -24 * 60; m <= 24*60; m += 15 {
		seq := engine.ReturnSequence(m)
		if m == 0 {
			assert.Empty(t, seq)
			continue
		}
		want := (abs(m) + 14) / 15
		require.Lenf(t, seq, want, "offset %d", m)
		require.Equal(t, 0, seq[len(seq)-1])

		prev := m
		for _, o := range seq {
			require.Less(t, abs(o), abs(prev))
			require.False(t, o*m < 0, "sign must never flip")
			prev = o
		}
	}
}

func TestPixelsForOffset(t *testing.T) {
	assert.Equal(t, -16.0, engine.PixelsForOffset(23))
	assert.Equal(t, 8.0, engine.PixelsForOffset(-7))
	assert.Equal(t, 0.0, engine.PixelsForOffset(0))
}

func TestStepDelay(t *testing.T) {
	assert.Equal(t, 460*time.Millisecond, engine.StepDelay(0))
	assert.Equal(t, 460*time.Millisecond, engine.StepDelay(1))
	assert.Equal(t, 230*time.Millisecond, engine.StepDelay(2))
	assert.Equal(t, 115*time.Millisecond, engine.StepDelay(4))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
