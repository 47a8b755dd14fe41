// Package geometry maps decals between screen, world, canvas and UV space
// and resolves which manipulation handle a texture-space point touches.
package geometry

// Handle is a manipulation affordance on a decal's bounding box.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleRotate
	HandleScaleNW
	HandleScaleNE
	HandleScaleSW
	HandleScaleSE
	HandleEdgeN
	HandleEdgeS
	HandleEdgeW
	HandleEdgeE
)

var handleNames = [...]string{
	HandleNone:    "none",
	HandleMove:    "move",
	HandleRotate:  "rotate",
	HandleScaleNW: "scale-nw",
	HandleScaleNE: "scale-ne",
	HandleScaleSW: "scale-sw",
	HandleScaleSE: "scale-se",
	HandleEdgeN:   "edge-n",
	HandleEdgeS:   "edge-s",
	HandleEdgeW:   "edge-w",
	HandleEdgeE:   "edge-e",
}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// IsCorner reports whether h is one of the proportional scale handles.
func (h Handle) IsCorner() bool {
	return h >= HandleScaleNW && h <= HandleScaleSE
}

// IsEdge reports whether h is one of the single-axis resize handles.
func (h Handle) IsEdge() bool {
	return h >= HandleEdgeN && h <= HandleEdgeE
}

// Cursor returns the pointer affordance shown while hovering h.
func (h Handle) Cursor() string {
	switch h {
	case HandleRotate:
		return "grab"
	case HandleScaleNW, HandleScaleSE:
		return "nwse-resize"
	case HandleScaleNE, HandleScaleSW:
		return "nesw-resize"
	case HandleEdgeN, HandleEdgeS:
		return "ns-resize"
	case HandleEdgeW, HandleEdgeE:
		return "ew-resize"
	case HandleMove:
		return "move"
	default:
		return "default"
	}
}
