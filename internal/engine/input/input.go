// Package input handles SDL2 input events.
package input

import (
	"slices"

	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventWheel
	EventTouchStart
	EventTouchMove
	EventTouchEnd
	EventDropFile
)

// WheelStep is the scroll delta of one wheel notch, in the units the
// camera zoom expects.
const WheelStep = 100

// Touch is an active finger in window pixels.
type Touch struct {
	X, Y float64
}

// Event represents a processed input event. Pointer coordinates are in
// window pixels.
type Event struct {
	Type    EventType
	Key     sdl.Scancode
	Width   int
	Height  int
	X       float64
	Y       float64
	Button  uint8
	DeltaY  float64 // wheel, positive scrolls toward the user
	Touches []Touch
	Path    string
}

// Input handles all input processing.
type Input struct {
	events  []Event
	width   int
	height  int
	fingers map[sdl.FingerID]Touch
	order   []sdl.FingerID
}

// New creates a new input handler for a window of the given size.
func New(width, height int) *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		width:   width,
		height:  height,
		fingers: make(map[sdl.FingerID]Touch),
	}
}

// Update polls SDL events and converts them.
// Returns true if the app should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			quit = true
		}
	}
	return quit
}

func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.push(Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.width, i.height = int(e.Data1), int(e.Data2)
			i.push(Event{Type: EventWindowResize, Width: i.width, Height: i.height})
		}

	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			break
		}
		if e.Type == sdl.KEYDOWN {
			i.push(Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
		} else if e.Type == sdl.KEYUP {
			i.push(Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
		}

	// Mouse events synthesized from touches are dropped; fingers arrive
	// through the touch path.
	case *sdl.MouseMotionEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			break
		}
		i.push(Event{Type: EventMouseMove, X: float64(e.X), Y: float64(e.Y)})

	case *sdl.MouseButtonEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			break
		}
		ev := Event{X: float64(e.X), Y: float64(e.Y), Button: e.Button}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			ev.Type = EventMouseDown
		} else {
			ev.Type = EventMouseUp
		}
		i.push(ev)

	case *sdl.MouseWheelEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			break
		}
		dy := -float64(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		i.push(Event{Type: EventWheel, DeltaY: dy * WheelStep})

	case *sdl.TouchFingerEvent:
		i.finger(e)

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE && e.File != "" {
			i.push(Event{Type: EventDropFile, Path: e.File})
		}
	}
	return false
}

func (i *Input) finger(e *sdl.TouchFingerEvent) {
	t := Touch{X: float64(e.X) * float64(i.width), Y: float64(e.Y) * float64(i.height)}
	switch e.Type {
	case sdl.FINGERDOWN:
		if _, ok := i.fingers[e.FingerID]; !ok {
			i.order = append(i.order, e.FingerID)
		}
		i.fingers[e.FingerID] = t
		i.push(Event{Type: EventTouchStart, Touches: i.touches()})
	case sdl.FINGERMOTION:
		if _, ok := i.fingers[e.FingerID]; !ok {
			return
		}
		i.fingers[e.FingerID] = t
		i.push(Event{Type: EventTouchMove, Touches: i.touches()})
	case sdl.FINGERUP:
		delete(i.fingers, e.FingerID)
		i.order = removeID(i.order, e.FingerID)
		i.push(Event{Type: EventTouchEnd, Touches: i.touches()})
	}
}

// touches lists active fingers in the order they went down.
func (i *Input) touches() []Touch {
	out := make([]Touch, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.fingers[id])
	}
	return out
}

func removeID(ids []sdl.FingerID, id sdl.FingerID) []sdl.FingerID {
	if j := slices.Index(ids, id); j >= 0 {
		return slices.Delete(ids, j, j+1)
	}
	return ids
}

func (i *Input) push(e Event) {
	i.events = append(i.events, e)
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
