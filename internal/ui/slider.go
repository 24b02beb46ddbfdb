package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// TimeSlider is the graduated ruler scrubbed to preview an offset.
// Every toolkit event is normalized into an engine.PointerInput and handed to
// the controller: mouse buttons as SourceMouse, touches as SourceTouch and
// drags as SourcePointer, so the controller can drop duplicated pathways.
type TimeSlider struct {
	widget.BaseWidget

	controller *engine.OffsetController
	clock      engine.Clock

	// Only touched from the UI goroutine.
	rulerOffset float64
	dragging    bool
}

var (
	_ fyne.Draggable      = (*TimeSlider)(nil)
	_ fyne.DoubleTappable = (*TimeSlider)(nil)
	_ desktop.Mouseable   = (*TimeSlider)(nil)
	_ mobile.Touchable    = (*TimeSlider)(nil)
)

// NewTimeSlider creates a ruler driving controller.
func NewTimeSlider(controller *engine.OffsetController, clock engine.Clock) *TimeSlider {
	s := &TimeSlider{controller: controller, clock: clock}
	s.ExtendBaseWidget(s)
	return s
}

// SetRulerOffset moves the graduations by px pixels.
func (s *TimeSlider) SetRulerOffset(px float64) {
	if s.rulerOffset == px {
		return
	}
	s.rulerOffset = px
	s.Refresh()
}

func (s *TimeSlider) handle(kind engine.PointerKind, source engine.PointerSource, x float32) {
	s.controller.Handle(engine.PointerInput{
		Kind:   kind,
		Source: source,
		X:      float64(x),
		At:     s.clock.Now(),
	})
}

// Dragged starts the gesture on the first event, anchored where the drag began.
func (s *TimeSlider) Dragged(ev *fyne.DragEvent) {
	if !s.dragging {
		s.dragging = true
		s.handle(engine.PointerDown, engine.SourcePointer, ev.Position.X-ev.Dragged.DX)
	}
	s.handle(engine.PointerMove, engine.SourcePointer, ev.Position.X)
}

func (s *TimeSlider) DragEnd() {
	s.dragging = false
	s.handle(engine.PointerUp, engine.SourcePointer, 0)
}

func (s *TimeSlider) DoubleTapped(*fyne.PointEvent) {
	s.handle(engine.PointerDoubleActivate, engine.SourcePointer, 0)
}

func (s *TimeSlider) MouseDown(ev *desktop.MouseEvent) {
	s.handle(engine.PointerDown, engine.SourceMouse, ev.Position.X)
}

func (s *TimeSlider) MouseUp(ev *desktop.MouseEvent) {
	s.handle(engine.PointerUp, engine.SourceMouse, ev.Position.X)
}

func (s *TimeSlider) TouchDown(ev *mobile.TouchEvent) {
	s.handle(engine.PointerDown, engine.SourceTouch, ev.Position.X)
}

func (s *TimeSlider) TouchUp(ev *mobile.TouchEvent) {
	s.handle(engine.PointerUp, engine.SourceTouch, ev.Position.X)
}

func (s *TimeSlider) TouchCancel(ev *mobile.TouchEvent) {
	s.handle(engine.PointerCancel, engine.SourceTouch, ev.Position.X)
}

func (s *TimeSlider) CreateRenderer() fyne.WidgetRenderer {
	r := &rulerRenderer{
		slider: s,
		marks:  make([]*canvas.Line, config.RulerVisibleLines),
		cursor: canvas.NewLine(theme.Color(theme.ColorNamePrimary)),
	}
	for i := range r.marks {
		r.marks[i] = canvas.NewLine(theme.Color(theme.ColorNameDisabled))
	}
	r.cursor.StrokeWidth = 2
	r.applyTheme()
	return r
}

// markHeight returns the length of the graduation for step: major every
// RulerMajorEvery steps, medium every RulerMediumEvery.
func markHeight(step int) float32 {
	if step < 0 {
		step = -step
	}
	switch {
	case step%config.RulerMajorEvery == 0:
		return config.RulerMajorHeight
	case step%config.RulerMediumEvery == 0:
		return config.RulerMediumHeight
	}
	return config.RulerRegularHeight
}

type rulerRenderer struct {
	slider *TimeSlider
	marks  []*canvas.Line
	cursor *canvas.Line
	size   fyne.Size
}

func (r *rulerRenderer) Layout(size fyne.Size) {
	r.size = size
	r.place()
}

// place lays the marks out around the centre, shifted by the ruler offset.
func (r *rulerRenderer) place() {
	center := r.size.Width / 2
	offset := float32(r.slider.rulerOffset)
	half := len(r.marks) / 2
	first := int(math.Floor(float64(-offset/config.HourWidth))) - half

	for i, line := range r.marks {
		step := first + i
		x := center + offset + float32(step)*config.HourWidth
		line.Position1 = fyne.NewPos(x, r.size.Height-markHeight(step))
		line.Position2 = fyne.NewPos(x, r.size.Height)
		line.StrokeColor = r.markColor(step)
	}
	r.cursor.Position1 = fyne.NewPos(center, 0)
	r.cursor.Position2 = fyne.NewPos(center, r.size.Height)
}

func (r *rulerRenderer) markColor(step int) color.Color {
	if markHeight(step) == config.RulerMajorHeight {
		return theme.Color(theme.ColorNameForeground)
	}
	return theme.Color(theme.ColorNameDisabled)
}

func (r *rulerRenderer) applyTheme() {
	r.cursor.StrokeColor = theme.Color(theme.ColorNamePrimary)
}

func (r *rulerRenderer) MinSize() fyne.Size {
	return fyne.NewSize(float32(config.RulerVisibleLines)*config.HourWidth, config.SliderHeight)
}

func (r *rulerRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(r.marks)+1)
	for _, m := range r.marks {
		objs = append(objs, m)
	}
	return append(objs, r.cursor)
}

func (r *rulerRenderer) Refresh() {
	r.applyTheme()
	r.place()
	for _, m := range r.marks {
		m.Refresh()
	}
	r.cursor.Refresh()
}

func (r *rulerRenderer) Destroy() {}
