package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tartampluch/go-kairos/internal/config"
)

// Phase is the interaction state of the offset slider.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseAnimatingToZero
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseAnimatingToZero:
		return "animating"
	}
	return "unknown"
}

// OffsetState is the observable state of the slider.
type OffsetState struct {
	OffsetMinutes         int
	ContinuousPixelOffset float64
	Phase                 Phase
}

// OffsetListener receives every state whose offset or phase changed.
// Listeners run outside the controller lock, in mutation order, and must not
// call Handle synchronously.
type OffsetListener func(OffsetState)

type subscription struct {
	id uint64
	fn OffsetListener
}

// OffsetController turns normalized pointer input into a quarter-hour offset
// and animates it back to zero on double activation.
type OffsetController struct {
	clock Clock
	loc   *time.Location
	log   *slog.Logger

	mu            sync.Mutex
	state         OffsetState
	owner         PointerSource
	lastX         float64
	anchorMinute  int
	lastTouchDown time.Time
	swallowUntil  bool // second tap of a double tap: ignore until release
	timer         clockwork.Timer
	generation    uint64
	pending       []int
	stepDelay     time.Duration
	closed        bool
	subs          []subscription
	nextID        uint64

	// emitMu keeps listener delivery in mutation order once mu is released.
	emitMu sync.Mutex
}

// NewOffsetController creates an idle controller at offset zero. loc is the
// reference zone whose minute drives the first quarter-hour step.
func NewOffsetController(clock Clock, loc *time.Location) *OffsetController {
	if loc == nil {
		loc = time.Local
	}
	return &OffsetController{
		clock: clock,
		loc:   loc,
		log:   slog.With(config.LogKeyComponent, config.CompGesture),
	}
}

// Subscribe registers fn and returns its cancellation.
func (c *OffsetController) Subscribe(fn OffsetListener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// State returns a snapshot of the current state.
func (c *OffsetController) State() OffsetState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReturnToNow starts the return animation as a double activation would.
func (c *OffsetController) ReturnToNow() {
	c.Handle(PointerInput{Kind: PointerDoubleActivate, Source: SourcePointer, At: c.clock.Now()})
}

// Handle is the single entry point for pointer input.
func (c *OffsetController) Handle(in PointerInput) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	before := c.state

	switch in.Kind {
	case PointerDown:
		c.down(in)
	case PointerMove:
		c.move(in)
	case PointerUp, PointerCancel:
		c.up(in)
	case PointerDoubleActivate:
		c.startReturn()
	}

	c.publish(before)
}

// Close stops the animation timer, drops listeners and ignores further input.
func (c *OffsetController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelAnimation()
	c.subs = nil
}

func (c *OffsetController) down(in PointerInput) {
	if c.state.Phase == PhaseDragging {
		if in.Source < c.owner {
			return
		}
		if in.Source > c.owner {
			c.log.Debug(config.MsgGestureTakeover, config.LogKeySource, in.Source.String())
		}
		c.owner = in.Source
		c.lastX = in.X
		return
	}
	if c.swallowUntil && c.state.Phase == PhaseAnimatingToZero {
		return
	}

	at := in.At
	if at.IsZero() {
		at = c.clock.Now()
	}
	if in.Source != SourceMouse {
		isDouble := !c.lastTouchDown.IsZero() && at.Sub(c.lastTouchDown) <= config.DoubleTapDelay
		c.lastTouchDown = at
		if isDouble && c.state.OffsetMinutes != 0 && c.state.Phase == PhaseIdle {
			c.lastTouchDown = time.Time{}
			c.swallowUntil = true
			c.startReturn()
			return
		}
	}

	if c.state.Phase == PhaseAnimatingToZero {
		c.cancelAnimation()
		c.log.Debug(config.MsgAnimCancelled, config.LogKeyOffset, c.state.OffsetMinutes)
	}
	c.state.Phase = PhaseDragging
	c.owner = in.Source
	c.lastX = in.X
	c.anchorMinute = c.clock.Now().In(c.loc).Minute()
	c.swallowUntil = false
}

func (c *OffsetController) move(in PointerInput) {
	if c.state.Phase != PhaseDragging || in.Source < c.owner {
		return
	}
	if in.Source > c.owner {
		c.log.Debug(config.MsgGestureTakeover, config.LogKeySource, in.Source.String())
		c.owner = in.Source
		c.lastX = in.X
		return
	}

	delta := in.X - c.lastX
	c.lastX = in.X
	if delta == 0 {
		return
	}
	c.state.ContinuousPixelOffset += delta
	c.state.OffsetMinutes = Quantize(c.state.ContinuousPixelOffset, c.anchorMinute)
}

func (c *OffsetController) up(in PointerInput) {
	if c.state.Phase != PhaseDragging {
		c.swallowUntil = false
		return
	}
	if in.Source < c.owner {
		return
	}
	c.state.Phase = PhaseIdle
	c.state.ContinuousPixelOffset = SnapPixels(c.state.ContinuousPixelOffset)
}

func (c *OffsetController) startReturn() {
	if c.state.Phase != PhaseIdle || c.state.OffsetMinutes == 0 {
		return
	}
	c.pending = ReturnSequence(c.state.OffsetMinutes)
	c.stepDelay = StepDelay(len(c.pending))
	c.state.Phase = PhaseAnimatingToZero
	c.generation++
	c.schedule(c.generation)

	c.log.Debug(config.MsgAnimStart,
		config.LogKeyOffset, c.state.OffsetMinutes,
		config.LogKeySteps, len(c.pending),
		config.LogKeyDelay, c.stepDelay)
}

func (c *OffsetController) schedule(gen uint64) {
	c.timer = c.clock.AfterFunc(c.stepDelay, func() { c.step(gen) })
}

// step applies one animation frame. Frames from a cancelled animation carry
// an old generation and are dropped.
func (c *OffsetController) step(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation || c.state.Phase != PhaseAnimatingToZero || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	before := c.state

	next := c.pending[0]
	c.pending = c.pending[1:]
	c.state.OffsetMinutes = next
	c.state.ContinuousPixelOffset = PixelsForOffset(next)
	if next == 0 {
		c.state.Phase = PhaseIdle
		c.timer = nil
	} else {
		c.schedule(gen)
	}

	c.publish(before)
}

func (c *OffsetController) cancelAnimation() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}

// publish releases mu and notifies listeners when offset or phase changed.
func (c *OffsetController) publish(before OffsetState) {
	after := c.state
	if after.OffsetMinutes == before.OffsetMinutes && after.Phase == before.Phase {
		c.mu.Unlock()
		return
	}
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)

	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	for _, s := range subs {
		s.fn(after)
	}
}
