// Package designer is the single-threaded session that owns the decal
// store, the model host, the compositor and the input controller.
package designer

import (
	"context"
	"fmt"
	"image"
	gomath "math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/garment-designer/internal/assets"
	"github.com/Faultbox/garment-designer/internal/compositor"
	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/handoff"
	"github.com/Faultbox/garment-designer/internal/interaction"
	"github.com/Faultbox/garment-designer/internal/logger"
	"github.com/Faultbox/garment-designer/internal/viewport"
)

// Options are the initial product choices and session settings.
type Options struct {
	Color      string
	Fabric     string
	Size       string
	Quantity   int
	HandoffKey string
	Debounce   time.Duration
	Assets     *assets.Manager // nil resolves image paths as given
}

// DefaultOptions matches the product defaults.
func DefaultOptions() Options {
	return Options{
		Color:      Colors[0].Value,
		Fabric:     Fabrics[0].ID,
		Size:       "M",
		Quantity:   1,
		HandoffKey: handoff.DefaultKey,
		Debounce:   compositor.DefaultDebounce,
	}
}

// composeState is what the current composite was built from.
type composeState struct {
	valid  bool
	facing decal.Side
}

// Session is confined to the goroutine that calls Pump. Asynchronous work
// (model load, image decode) runs elsewhere and re-enters through Post.
type Session struct {
	store  *decal.Store
	host   *viewport.Host
	comp   *compositor.Compositor
	ctrl   *interaction.Controller
	slot   handoff.Slot
	key    string
	assets *assets.Manager

	debounce  *compositor.Debouncer
	composed  composeState
	composite *image.RGBA
	now       func() time.Time

	color    string
	fabric   string
	size     string
	quantity int

	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	inflight sync.WaitGroup

	log *zap.Logger
}

// New wires a session. The host's composite source and load callback are
// taken over by the session.
func New(host *viewport.Host, comp *compositor.Compositor, slot handoff.Slot, opts Options) (*Session, error) {
	s := &Session{
		store:    decal.NewStore(),
		host:     host,
		comp:     comp,
		slot:     slot,
		key:      opts.HandoffKey,
		assets:   opts.Assets,
		debounce: compositor.NewDebouncer(opts.Debounce),
		now:      time.Now,
		wake:     make(chan struct{}, 1),
		log:      logger.Named("designer"),
	}
	if s.key == "" {
		s.key = handoff.DefaultKey
	}
	if s.assets == nil {
		s.assets = assets.NewManager()
	}
	if err := s.SetColor(opts.Color); err != nil {
		return nil, err
	}
	if err := s.SetFabric(opts.Fabric); err != nil {
		return nil, err
	}
	if err := s.SetSize(opts.Size); err != nil {
		return nil, err
	}
	if err := s.SetQuantity(opts.Quantity); err != nil {
		return nil, err
	}

	s.ctrl = interaction.New(s.store, host)
	s.store.OnChange(s.changed)
	host.SetCompositeSource(s.composeFor)
	host.OnLoaded(s.modelLoaded)
	return s, nil
}

// Store returns the decal store.
func (s *Session) Store() *decal.Store { return s.store }

// Host returns the model host.
func (s *Session) Host() *viewport.Host { return s.host }

// Controller returns the input controller fed by the window events.
func (s *Session) Controller() *interaction.Controller { return s.ctrl }

// Composite returns the latest composite texture, or nil before the first
// compose.
func (s *Session) Composite() *image.RGBA { return s.composite }

// Post queues fn to run on the session goroutine. It is safe to call from
// any goroutine.
func (s *Session) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pump runs queued continuations, then recomposes if a settled change is
// waiting.
func (s *Session) Pump() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	s.tick()
}

// Settle waits for in-flight loads to post their results and pumps them.
func (s *Session) Settle() {
	s.inflight.Wait()
	s.Pump()
}

// Run pumps until ctx is done. It is the loop for sessions without a
// window; interactive hosts call Pump once per frame instead.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(s.debounce.Delay, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		case <-ticker.C:
		}
		s.Pump()
	}
}

// async runs work off the session goroutine and posts its continuation.
func (s *Session) async(work func() func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.Post(work())
	}()
}

func (s *Session) changed() {
	s.debounce.Trigger(s.now())
}

func (s *Session) tick() {
	if s.host.Mesh() == nil {
		return
	}
	// Orbiting across the side boundary shows or hides the gizmo.
	if s.composed.valid && s.composed.facing != s.host.Facing() && !s.debounce.Pending() {
		s.debounce.Trigger(s.now())
	}
	if s.debounce.Ready(s.now()) || !s.composed.valid {
		s.ComposeNow()
	}
}

// ComposeNow rebuilds the composite immediately and hands it to the host.
func (s *Session) ComposeNow() {
	s.debounce.Flush()
	s.host.SetComposite(s.composeFor(s.host.Facing()))
}

func (s *Session) composeFor(facing decal.Side) *image.RGBA {
	img := s.comp.Compose(compositor.Frame{
		BaseColor: s.color,
		Decals:    s.store.Snapshot(),
		Facing:    facing,
	})
	s.composite = img
	s.composed = composeState{valid: true, facing: facing}
	return img
}

// LoadModel replaces the garment. On success every decal is discarded.
func (s *Session) LoadModel(path string) {
	s.inflight.Add(1)
	s.host.LoadModel(path, func(fn func()) {
		s.Post(fn)
		s.inflight.Done()
	})
}

func (s *Session) modelLoaded(err error) {
	if err != nil {
		s.composed.valid = false
		return
	}
	s.store.Reset()
	s.composed.valid = false
}

// Product options.

// SetColor selects a catalog base color.
func (s *Session) SetColor(value string) error {
	c, ok := LookupColor(value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColor, value)
	}
	if c.Value != s.color {
		s.color = c.Value
		s.changed()
	}
	return nil
}

// SetFabric selects a catalog fabric.
func (s *Session) SetFabric(id string) error {
	if _, ok := LookupFabric(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFabric, id)
	}
	s.fabric = id
	return nil
}

// SetSize selects a garment size.
func (s *Session) SetSize(size string) error {
	size = strings.ToUpper(size)
	if !knownSize(size) {
		return fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}
	s.size = size
	return nil
}

// SetQuantity sets the number of garments ordered.
func (s *Session) SetQuantity(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, n)
	}
	s.quantity = n
	return nil
}

// StepQuantity adds delta to the quantity, stopping at 1.
func (s *Session) StepQuantity(delta int) {
	s.quantity = max(1, s.quantity+delta)
}

// Color returns the base color.
func (s *Session) Color() string { return s.color }

// Fabric returns the fabric id.
func (s *Session) Fabric() string { return s.fabric }

// Size returns the garment size.
func (s *Session) Size() string { return s.size }

// Quantity returns the order quantity.
func (s *Session) Quantity() int { return s.quantity }

// Decal operations. All of them need a loaded model.

// AddImage adds an image decal on the side facing the camera.
func (s *Session) AddImage() (decal.Ref, error) {
	return s.add(decal.KindImage)
}

// AddText adds a text decal on the side facing the camera.
func (s *Session) AddText() (decal.Ref, error) {
	return s.add(decal.KindText)
}

func (s *Session) add(kind decal.Kind) (decal.Ref, error) {
	if err := s.host.Ready(); err != nil {
		return decal.Ref{}, err
	}
	d := s.store.Add(kind, s.host.Facing())
	s.log.Debug("decal added",
		zap.Int("id", d.ID),
		zap.Stringer("kind", d.Kind),
		zap.Stringer("side", d.Side))
	return d.Ref(), nil
}

// Remove deletes a decal.
func (s *Session) Remove(ref decal.Ref) error {
	if err := s.host.Ready(); err != nil {
		return err
	}
	return s.store.Remove(ref)
}

// Select selects a decal.
func (s *Session) Select(ref decal.Ref) error {
	if err := s.host.Ready(); err != nil {
		return err
	}
	return s.store.Select(ref)
}

// ClearSelection deselects any decal.
func (s *Session) ClearSelection() { s.store.ClearSelection() }

// ToggleSide moves a decal to the other side of the garment.
func (s *Session) ToggleSide(ref decal.Ref) error {
	if err := s.host.Ready(); err != nil {
		return err
	}
	return s.store.ToggleSide(ref)
}

// ToggleFlip mirrors an image decal.
func (s *Session) ToggleFlip(ref decal.Ref) error {
	if err := s.host.Ready(); err != nil {
		return err
	}
	return s.store.ToggleFlip(ref)
}

func (s *Session) updateText(ref decal.Ref, patch func(*decal.Decal)) error {
	if err := s.host.Ready(); err != nil {
		return err
	}
	if ref.Kind != decal.KindText {
		return decal.ErrWrongKind
	}
	return s.store.Update(ref, patch)
}

// SetText replaces a text decal's string.
func (s *Session) SetText(ref decal.Ref, text string) error {
	return s.updateText(ref, func(d *decal.Decal) { d.Text = text })
}

// SetFontFamily changes a text decal's font. Families outside the catalog
// fall back to a built-in face when drawn.
func (s *Session) SetFontFamily(ref decal.Ref, family string) error {
	if !compositor.KnownFamily(family) {
		s.log.Warn("font family not in catalog", zap.String("family", family))
	}
	return s.updateText(ref, func(d *decal.Decal) { d.FontFamily = family })
}

// SetFontSize changes a text decal's font size, clamped to the slider
// range.
func (s *Session) SetFontSize(ref decal.Ref, size float64) error {
	size = gomath.Max(MinFontSize, gomath.Min(MaxFontSize, size))
	return s.updateText(ref, func(d *decal.Decal) { d.FontSize = size })
}

// SetTextColor changes a text decal's fill color.
func (s *Session) SetTextColor(ref decal.Ref, hex string) error {
	if !validHex(hex) {
		return fmt.Errorf("%w: %q", ErrInvalidTextColor, hex)
	}
	return s.updateText(ref, func(d *decal.Decal) { d.Color = strings.ToLower(hex) })
}

// Dimensions returns a decal's printed size in centimeters.
func (s *Session) Dimensions(ref decal.Ref) (w, h float64, err error) {
	d, ok := s.store.Get(ref)
	if !ok {
		return 0, 0, decal.ErrNotFound
	}
	w, h = d.DimensionsCM()
	return w, h, nil
}

// LoadImage decodes a file off the session goroutine and assigns it to an
// image decal. A decal removed before decoding finishes is left alone;
// decode failures leave the decal without a texture.
func (s *Session) LoadImage(ref decal.Ref, path string) error {
	return s.loadImage(ref, path, func() (image.Image, error) { return s.assets.Image(path) })
}

// LoadImageBytes is LoadImage for an in-memory upload.
func (s *Session) LoadImageBytes(ref decal.Ref, data []byte) error {
	return s.loadImage(ref, "<upload>", func() (image.Image, error) { return texture.DecodeBytes(data) })
}

func (s *Session) loadImage(ref decal.Ref, source string, decode func() (image.Image, error)) error {
	if err := s.host.Ready(); err != nil {
		return err
	}
	if ref.Kind != decal.KindImage {
		return decal.ErrWrongKind
	}
	if _, ok := s.store.Get(ref); !ok {
		return decal.ErrNotFound
	}
	s.async(func() func() {
		img, err := decode()
		return func() { s.imageDecoded(ref, source, img, err) }
	})
	return nil
}

func (s *Session) imageDecoded(ref decal.Ref, source string, img image.Image, err error) {
	if err != nil {
		s.log.Warn("image decode failed",
			zap.Int("decal", ref.ID),
			zap.String("source", source),
			zap.Error(err))
		return
	}
	if _, ok := s.store.Get(ref); !ok {
		s.log.Debug("decal removed before decode finished", zap.Int("decal", ref.ID))
		return
	}
	if err := s.store.SetTexture(ref, img); err != nil {
		s.log.Warn("set texture failed", zap.Error(err))
		return
	}
	b := img.Bounds()
	s.log.Info("image assigned",
		zap.Int("decal", ref.ID),
		zap.String("source", source),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
}

// Record builds the design record from the current state.
func (s *Session) Record(front, back string) *handoff.Record {
	images, texts := handoff.Elements(s.store.Snapshot())
	return &handoff.Record{
		ShirtColor:    s.color,
		FabricType:    s.fabric,
		Size:          s.size,
		Quantity:      s.quantity,
		ImageElements: images,
		TextElements:  texts,
		FrontImage:    front,
		BackImage:     back,
	}
}

// Submit captures the front and back snapshots and writes the design
// record to the handoff slot. The selection is cleared for the captures;
// if the write fails it is restored and the error wraps
// handoff.ErrSlotWrite so the caller can offer a retry.
func (s *Session) Submit(ctx context.Context) (*handoff.Record, error) {
	if err := s.host.Ready(); err != nil {
		return nil, err
	}
	ref, had := s.store.Selected()
	s.store.ClearSelection()
	restore := func() { s.store.RestoreSelection(ref, had) }

	var shots [2]viewport.Snapshot
	for i, yaw := range []float64{0, gomath.Pi} {
		if err := ctx.Err(); err != nil {
			restore()
			return nil, err
		}
		shot, err := s.host.CaptureSnapshot(s.store, yaw)
		if err != nil {
			restore()
			return nil, fmt.Errorf("submit design: %w", err)
		}
		shots[i] = shot
	}

	rec := s.Record(shots[0].DataURL, shots[1].DataURL)
	if err := handoff.Write(s.slot, s.key, rec); err != nil {
		restore()
		s.log.Error("design handoff failed", zap.Error(err))
		return nil, fmt.Errorf("submit design: %w", err)
	}
	s.log.Info("design submitted",
		zap.String("key", s.key),
		zap.Int("images", len(rec.ImageElements)),
		zap.Int("texts", len(rec.TextElements)))
	return rec, nil
}
