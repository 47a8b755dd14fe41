// Package app runs a designer session in an SDL window.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/garment-designer/internal/config"
	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/designer"
	"github.com/Faultbox/garment-designer/internal/engine/debug"
	"github.com/Faultbox/garment-designer/internal/engine/input"
	"github.com/Faultbox/garment-designer/internal/engine/raster"
	"github.com/Faultbox/garment-designer/internal/engine/renderer"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/engine/window"
	"github.com/Faultbox/garment-designer/internal/handoff"
	"github.com/Faultbox/garment-designer/internal/interaction"
	"github.com/Faultbox/garment-designer/internal/logger"
)

// Title is the window title prefix.
const Title = "Garment Designer"

// App is the interactive designer window.
type App struct {
	cfg       *config.Config
	window    *window.Window
	renderer  *renderer.Renderer
	input     *input.Input
	session   *designer.Session
	shots     *debug.ScreenshotCapture
	imagePath string
	running   bool
	title     string
	log       *zap.Logger
}

// drawable presents at the window's pixel size while pointer math stays
// in window coordinates.
type drawable struct {
	*renderer.Renderer
	win *window.Window
}

func (d drawable) Draw(s raster.Scene, _, _ int) error {
	w, h := d.win.DrawableSize()
	return d.Renderer.Draw(s, w, h)
}

// New opens the window and builds the session. imagePath is the file the
// add-image key loads into new image decals; it may be empty.
func New(cfg *config.Config, imagePath string) (*App, error) {
	a := &App{cfg: cfg, imagePath: imagePath, log: logger.Named("app")}

	var err error
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Viewport.Width,
		Height:     cfg.Viewport.Height,
		Fullscreen: cfg.Viewport.Fullscreen,
		VSync:      cfg.Viewport.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer comes AFTER window, since the OpenGL context must exist
	a.renderer, err = renderer.New()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.session, err = designer.FromConfig(cfg, drawable{a.renderer, a.window})
	if err != nil {
		a.Close()
		return nil, err
	}
	w, h := a.window.GetSize()
	a.session.Host().Resize(w, h)
	a.input = input.New(w, h)

	format, _ := texture.ParseFormat(cfg.Snapshot.Format)
	a.shots = debug.NewScreenshotCapture("screenshots", "designer", format)

	a.session.LoadModel(cfg.Model.Path)
	return a, nil
}

// Session returns the designer session.
func (a *App) Session() *designer.Session { return a.session }

// Run drives the frame loop until the window closes or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.running = true
	frames := 0
	fpsTimer := time.Now()

	a.log.Info("starting frame loop")
	for a.running {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.input.Update() {
			a.running = false
			break
		}
		for _, ev := range a.input.Events() {
			a.handle(ctx, ev)
		}

		a.session.Pump()
		a.window.SetCursor(a.session.Controller().Cursor())
		if t := statusTitle(a.session); t != a.title {
			a.window.SetTitle(t)
			a.title = t
		}

		if err := a.session.Host().Draw(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frames))
			frames = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases the renderer and the window.
func (a *App) Close() {
	a.log.Info("closing designer")
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handle(ctx context.Context, ev input.Event) {
	s := a.session
	ctrl := s.Controller()

	switch ev.Type {
	case input.EventWindowResize:
		s.Host().Resize(ev.Width, ev.Height)
	case input.EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			ctrl.PointerDown(ev.X, ev.Y)
		}
	case input.EventMouseMove:
		ctrl.PointerMove(ev.X, ev.Y)
	case input.EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			ctrl.PointerUp()
		}
	case input.EventWheel:
		ctrl.Wheel(ev.DeltaY)
	case input.EventTouchStart:
		ctrl.TouchStart(touches(ev.Touches))
	case input.EventTouchMove:
		ctrl.TouchMove(touches(ev.Touches))
	case input.EventTouchEnd:
		ctrl.TouchEnd()
	case input.EventDropFile:
		a.addImage(ev.Path)
	case input.EventKeyDown:
		a.key(ctx, ev.Key)
	}
}

func (a *App) key(ctx context.Context, key sdl.Scancode) {
	s := a.session
	sel, hasSel := s.Store().Selected()

	var err error
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_I:
		a.addImage(a.imagePath)
	case sdl.SCANCODE_T:
		_, err = s.AddText()
	case sdl.SCANCODE_DELETE, sdl.SCANCODE_BACKSPACE:
		if hasSel {
			err = s.Remove(sel)
		}
	case sdl.SCANCODE_F:
		if hasSel && sel.Kind == decal.KindImage {
			err = s.ToggleFlip(sel)
		}
	case sdl.SCANCODE_S:
		if hasSel {
			err = s.ToggleSide(sel)
		}
	case sdl.SCANCODE_C:
		err = s.SetColor(nextColor(s.Color()))
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		s.StepQuantity(1)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		s.StepQuantity(-1)
	case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
		a.submit(ctx)
	case sdl.SCANCODE_F12:
		a.screenshot()
	}
	if err != nil {
		a.log.Warn("key action failed", zap.String("key", sdl.GetScancodeName(key)), zap.Error(err))
	}
}

func (a *App) addImage(path string) {
	ref, err := a.session.AddImage()
	if err != nil {
		a.log.Warn("cannot add image", zap.Error(err))
		return
	}
	if path == "" {
		return
	}
	if err := a.session.LoadImage(ref, path); err != nil {
		a.log.Warn("cannot load image", zap.String("path", path), zap.Error(err))
	}
}

func (a *App) submit(ctx context.Context) {
	rec, err := a.session.Submit(ctx)
	switch {
	case errors.Is(err, handoff.ErrSlotWrite):
		a.log.Error("design not saved, press Enter to retry", zap.Error(err))
	case err != nil:
		a.log.Warn("submit failed", zap.Error(err))
	default:
		a.log.Info("design ready for checkout",
			zap.String("color", rec.ShirtColor),
			zap.String("size", rec.Size),
			zap.Int("quantity", rec.Quantity))
	}
}

func (a *App) screenshot() {
	if a.renderer == nil {
		return
	}
	host := a.session.Host()
	w, h := host.Size()
	img, err := a.renderer.Capture(host.Scene(), w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.shots.Save(img)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func touches(in []input.Touch) []interaction.Touch {
	out := make([]interaction.Touch, len(in))
	for i, t := range in {
		out[i] = interaction.Touch{X: t.X, Y: t.Y}
	}
	return out
}

func nextColor(current string) string {
	for i, c := range designer.Colors {
		if c.Value == current {
			return designer.Colors[(i+1)%len(designer.Colors)].Value
		}
	}
	return designer.Colors[0].Value
}

// statusTitle summarizes the session for the window title.
func statusTitle(s *designer.Session) string {
	host := s.Host()
	switch {
	case host.Loading():
		return Title + " - loading model"
	case host.LoadErr() != nil:
		return Title + " - model failed to load"
	}

	name := s.Color()
	if c, ok := designer.LookupColor(name); ok {
		name = c.Name
	}
	fabric := s.Fabric()
	if f, ok := designer.LookupFabric(fabric); ok {
		fabric = f.Name
	}
	t := fmt.Sprintf("%s - %s, %s, %s x%d", Title, name, fabric, s.Size(), s.Quantity())
	if ref, ok := s.Store().Selected(); ok {
		if w, h, err := s.Dimensions(ref); err == nil {
			t += fmt.Sprintf(" - %.1f x %.1f cm", w, h)
		}
	}
	return t
}
