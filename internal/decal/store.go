package decal

import (
	"errors"
	"image"
)

var (
	ErrNotFound  = errors.New("decal not found")
	ErrWrongKind = errors.New("operation not supported for this decal kind")
)

// Snapshot is an immutable view of the store. Mutations never touch the
// slices of an existing snapshot, so comparing Version (or the slice
// headers) is enough for change detection.
type Snapshot struct {
	Images   []Decal
	Texts    []Decal
	Selected *Ref
	Version  uint64
}

// Ordered returns every decal bottom to top: images, then texts, each in
// insertion order.
func (s Snapshot) Ordered() []Decal {
	out := make([]Decal, 0, len(s.Images)+len(s.Texts))
	out = append(out, s.Images...)
	return append(out, s.Texts...)
}

// SelectedDecal returns the selected decal if it is in the snapshot.
func (s Snapshot) SelectedDecal() (Decal, bool) {
	if s.Selected == nil {
		return Decal{}, false
	}
	list := s.Images
	if s.Selected.Kind == KindText {
		list = s.Texts
	}
	if i := indexOf(list, s.Selected.ID); i >= 0 {
		return list[i], true
	}
	return Decal{}, false
}

// Store owns the image and text decal collections, the shared id counter
// and the current selection. It is not safe for concurrent use; the
// designer session confines it to the loop goroutine.
type Store struct {
	images   []Decal
	texts    []Decal
	lastID   int
	selected *Ref
	version  uint64

	onChange func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// OnChange registers a callback invoked after every mutation.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) changed() {
	s.version++
	if s.onChange != nil {
		s.onChange()
	}
}

// Snapshot returns the current collections and selection.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{Images: s.images, Texts: s.texts, Version: s.version}
	if s.selected != nil {
		ref := *s.selected
		snap.Selected = &ref
	}
	return snap
}

// Version increments on every mutation.
func (s *Store) Version() uint64 {
	return s.version
}

// Reset discards every decal, the selection and the id counter.
func (s *Store) Reset() {
	s.images = nil
	s.texts = nil
	s.lastID = 0
	s.selected = nil
	s.changed()
}

// Add creates a decal of the given kind on the side currently facing the
// camera and selects it.
func (s *Store) Add(kind Kind, facing Side) Decal {
	s.lastID++
	d := New(kind, s.lastID, facing)
	if kind == KindText {
		s.texts = appendCopy(s.texts, d)
	} else {
		s.images = appendCopy(s.images, d)
	}
	ref := d.Ref()
	s.selected = &ref
	s.changed()
	return d
}

// Get looks up a decal by reference.
func (s *Store) Get(ref Ref) (Decal, bool) {
	list := s.list(ref.Kind)
	if i := indexOf(list, ref.ID); i >= 0 {
		return list[i], true
	}
	return Decal{}, false
}

// Update applies patch to a copy of the decal and replaces the collection.
// The id and kind cannot be changed by the patch.
func (s *Store) Update(ref Ref, patch func(*Decal)) error {
	list := s.list(ref.Kind)
	i := indexOf(list, ref.ID)
	if i < 0 {
		return ErrNotFound
	}
	d := list[i]
	patch(&d)
	d.ID, d.Kind = ref.ID, ref.Kind
	s.setList(ref.Kind, replaceAt(list, i, d))
	s.changed()
	return nil
}

// Remove deletes a decal, clearing the selection if it pointed at it.
func (s *Store) Remove(ref Ref) error {
	list := s.list(ref.Kind)
	i := indexOf(list, ref.ID)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]Decal, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	s.setList(ref.Kind, next)
	if s.selected != nil && *s.selected == ref {
		s.selected = nil
	}
	s.changed()
	return nil
}

// ToggleSide moves a decal to the other half of the garment.
func (s *Store) ToggleSide(ref Ref) error {
	return s.Update(ref, func(d *Decal) { d.Side = d.Side.Opposite() })
}

// ToggleFlip mirrors an image decal horizontally.
func (s *Store) ToggleFlip(ref Ref) error {
	if ref.Kind != KindImage {
		return ErrWrongKind
	}
	return s.Update(ref, func(d *Decal) { d.Flipped = !d.Flipped })
}

// SetTexture assigns a decoded bitmap to an image decal and re-derives its
// height from the bitmap aspect ratio against the current width.
func (s *Store) SetTexture(ref Ref, img image.Image) error {
	if ref.Kind != KindImage {
		return ErrWrongKind
	}
	return s.Update(ref, func(d *Decal) {
		d.Texture = img
		d.Height = d.Width * d.Aspect()
	})
}

// Select marks a decal as selected.
func (s *Store) Select(ref Ref) error {
	if _, ok := s.Get(ref); !ok {
		return ErrNotFound
	}
	if s.selected != nil && *s.selected == ref {
		return nil
	}
	s.selected = &ref
	s.changed()
	return nil
}

// ClearSelection deselects any decal.
func (s *Store) ClearSelection() {
	if s.selected == nil {
		return
	}
	s.selected = nil
	s.changed()
}

// Selected returns the current selection.
func (s *Store) Selected() (Ref, bool) {
	if s.selected == nil {
		return Ref{}, false
	}
	return *s.selected, true
}

// SelectedDecal returns the selected decal, if it still exists.
func (s *Store) SelectedDecal() (Decal, bool) {
	ref, ok := s.Selected()
	if !ok {
		return Decal{}, false
	}
	return s.Get(ref)
}

// RestoreSelection reinstates a selection saved earlier with Selected.
// Stale references are dropped.
func (s *Store) RestoreSelection(ref Ref, ok bool) {
	if !ok {
		s.ClearSelection()
		return
	}
	if err := s.Select(ref); err != nil {
		s.ClearSelection()
	}
}

func (s *Store) list(kind Kind) []Decal {
	if kind == KindText {
		return s.texts
	}
	return s.images
}

func (s *Store) setList(kind Kind, list []Decal) {
	if kind == KindText {
		s.texts = list
	} else {
		s.images = list
	}
}

func indexOf(list []Decal, id int) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func appendCopy(list []Decal, d Decal) []Decal {
	next := make([]Decal, len(list), len(list)+1)
	copy(next, list)
	return append(next, d)
}

func replaceAt(list []Decal, i int, d Decal) []Decal {
	next := make([]Decal, len(list))
	copy(next, list)
	next[i] = d
	return next
}
