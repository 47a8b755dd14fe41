package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestPointerEvents(t *testing.T) {
	in := New(800, 600)
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, X: 10, Y: 20, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 15, Y: 25})
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, X: 15, Y: 25, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, Which: sdl.TOUCH_MOUSEID, X: 1, Y: 1})

	want := []EventType{EventMouseDown, EventMouseMove, EventMouseUp}
	got := in.Events()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.Type != want[i] {
			t.Errorf("event %d: expected type %d, got %d", i, want[i], e.Type)
		}
	}
	if got[1].X != 15 || got[1].Y != 25 {
		t.Errorf("expected move at (15,25), got (%v,%v)", got[1].X, got[1].Y)
	}
}

func TestWheel(t *testing.T) {
	tests := []struct {
		name string
		ev   *sdl.MouseWheelEvent
		want float64
	}{
		{"scroll up zooms in", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1}, -WheelStep},
		{"scroll down zooms out", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -2}, 2 * WheelStep},
		{"flipped", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1, Direction: sdl.MOUSEWHEEL_FLIPPED}, WheelStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(100, 100)
			in.handle(tt.ev)
			ev := in.Events()
			if len(ev) != 1 || ev[0].Type != EventWheel {
				t.Fatalf("expected one wheel event, got %v", ev)
			}
			if ev[0].DeltaY != tt.want {
				t.Errorf("expected delta %v, got %v", tt.want, ev[0].DeltaY)
			}
		})
	}
}

func TestFingers(t *testing.T) {
	in := New(200, 100)
	in.handle(&sdl.TouchFingerEvent{Type: sdl.FINGERDOWN, FingerID: 7, X: 0.5, Y: 0.5})
	in.handle(&sdl.TouchFingerEvent{Type: sdl.FINGERDOWN, FingerID: 3, X: 0.25, Y: 0.5})
	in.handle(&sdl.TouchFingerEvent{Type: sdl.FINGERMOTION, FingerID: 7, X: 1, Y: 0})
	in.handle(&sdl.TouchFingerEvent{Type: sdl.FINGERMOTION, FingerID: 9, X: 1, Y: 1})
	in.handle(&sdl.TouchFingerEvent{Type: sdl.FINGERUP, FingerID: 7})

	ev := in.Events()
	if len(ev) != 4 {
		t.Fatalf("expected 4 events, got %d", len(ev))
	}
	if ev[0].Type != EventTouchStart || len(ev[0].Touches) != 1 || ev[0].Touches[0] != (Touch{100, 50}) {
		t.Errorf("unexpected first touch %+v", ev[0])
	}
	if ev[1].Type != EventTouchStart || len(ev[1].Touches) != 2 {
		t.Errorf("expected second finger to start a two-touch set, got %+v", ev[1])
	}
	if m := ev[2]; m.Type != EventTouchMove || m.Touches[0] != (Touch{200, 0}) || m.Touches[1] != (Touch{50, 50}) {
		t.Errorf("expected first finger to keep its slot, got %+v", m.Touches)
	}
	if end := ev[3]; end.Type != EventTouchEnd || len(end.Touches) != 1 || end.Touches[0] != (Touch{50, 50}) {
		t.Errorf("unexpected touch end %+v", end)
	}
}

func TestResizeScalesTouches(t *testing.T) {
	in := New(100, 100)
	in.handle(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 400, Data2: 300})
	in.handle(&sdl.TouchFingerEvent{Type: sdl.FINGERDOWN, FingerID: 1, X: 0.5, Y: 0.5})

	ev := in.Events()
	if ev[0].Type != EventWindowResize || ev[0].Width != 400 || ev[0].Height != 300 {
		t.Errorf("unexpected resize %+v", ev[0])
	}
	if ev[1].Touches[0] != (Touch{200, 150}) {
		t.Errorf("expected touch at (200,150), got %+v", ev[1].Touches[0])
	}
}

func TestQuitAndKeys(t *testing.T) {
	in := New(10, 10)
	if !in.handle(&sdl.QuitEvent{Type: sdl.QUIT}) {
		t.Error("expected quit")
	}
	in.handle(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_T}})
	in.handle(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_I}})
	if !in.IsKeyPressed(sdl.SCANCODE_T) {
		t.Error("expected T pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_I) {
		t.Error("expected key repeat ignored")
	}
}
