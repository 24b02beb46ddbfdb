package engine

import "time"

// PointerKind is the phase of a normalized pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
	PointerDoubleActivate
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	case PointerDoubleActivate:
		return "double"
	}
	return "unknown"
}

// PointerSource is the event family that produced an input. Sources are
// ranked: a gesture owned by a higher rank ignores the lower ranks, which
// browsers and toolkits emit as compatibility duplicates.
type PointerSource int

const (
	SourceMouse PointerSource = iota
	SourceTouch
	SourcePointer
)

func (s PointerSource) String() string {
	switch s {
	case SourceMouse:
		return "mouse"
	case SourceTouch:
		return "touch"
	case SourcePointer:
		return "pointer"
	}
	return "unknown"
}

// PointerInput is the single event variant consumed by the gesture controller.
type PointerInput struct {
	Kind   PointerKind
	Source PointerSource
	X      float64
	At     time.Time
}
