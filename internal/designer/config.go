package designer

import (
	"fmt"

	"github.com/Faultbox/garment-designer/internal/assets"
	"github.com/Faultbox/garment-designer/internal/compositor"
	"github.com/Faultbox/garment-designer/internal/config"
	"github.com/Faultbox/garment-designer/internal/engine/camera"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/handoff"
	"github.com/Faultbox/garment-designer/internal/logger"
	"github.com/Faultbox/garment-designer/internal/viewport"
)

// FromConfig wires the host, compositor and handoff slot described by cfg
// around renderer r. The model is not loaded yet; call LoadModel on the
// result.
func FromConfig(cfg *config.Config, r viewport.Renderer) (*Session, error) {
	format, err := texture.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return nil, fmt.Errorf("snapshot format: %w", err)
	}

	vp := cfg.Viewport
	host := viewport.New(vp.Width, vp.Height, r,
		viewport.WithBackground(compositor.ParseHex(vp.Background)),
		viewport.WithSnapshotFormat(format),
		viewport.WithSnapshotSize(cfg.Snapshot.Width, cfg.Snapshot.Height),
		viewport.WithFitSize(cfg.Model.FitSize),
		viewport.WithCamera(func(c *camera.PerspectiveCamera) {
			c.FOV = vp.FOV
			c.Near = vp.Near
			c.Far = vp.Far
			c.Position.Z = vp.CameraZ
			c.MinZ = vp.MinZoom
			c.MaxZ = vp.MaxZoom
		}),
	)

	comp := compositor.New(compositor.NewFonts(cfg.Fonts.Dir),
		compositor.WithSize(cfg.Canvas.Size),
		compositor.WithLogger(logger.Named("compositor")),
	)

	d := cfg.Designer
	return New(host, comp, handoff.NewFileSlot(cfg.Handoff.Dir), Options{
		Color:      d.Color,
		Fabric:     d.Fabric,
		Size:       d.Size,
		Quantity:   d.Quantity,
		HandoffKey: cfg.Handoff.Key,
		Debounce:   cfg.Canvas.Debounce,
		Assets:     assets.NewManager(cfg.Images.Dirs...),
	})
}
