package model

import "image"

// MaterialTable owns the original material of every surface, captured once
// when the model is loaded, and points all surfaces at the composite
// texture on demand.
type MaterialTable struct {
	originals map[string]Material
	version   uint64
}

// NewMaterialTable snapshots the current material of each surface.
func NewMaterialTable(m *Mesh) *MaterialTable {
	t := &MaterialTable{originals: make(map[string]Material, len(m.Surfaces))}
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		if _, ok := t.originals[s.ID]; !ok {
			t.originals[s.ID] = s.Material
		}
	}
	return t
}

// Original returns the snapshot taken for a surface.
func (t *MaterialTable) Original(surfaceID string) (Material, bool) {
	mat, ok := t.originals[surfaceID]
	return mat, ok
}

// Len returns the number of snapshotted surfaces.
func (t *MaterialTable) Len() int {
	return len(t.originals)
}

// ApplyComposite makes every surface sample tex with a white base color so
// texel colors show unmodified, and bumps the upload version.
func (t *MaterialTable) ApplyComposite(m *Mesh, tex image.Image) {
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		s.Material = Material{
			Name:      t.originals[s.ID].Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Map:       tex,
		}
	}
	t.version++
}

// Restore puts the snapshotted materials back.
func (t *MaterialTable) Restore(m *Mesh) {
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		if mat, ok := t.originals[s.ID]; ok {
			s.Material = mat
		}
	}
	t.version++
}

// Version changes whenever the surfaces need a texture re-upload.
func (t *MaterialTable) Version() uint64 {
	return t.version
}
