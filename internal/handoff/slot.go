package handoff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var (
	// ErrSlotWrite wraps storage failures. Callers treat it as retryable.
	ErrSlotWrite = errors.New("handoff slot write failed")
	ErrNotFound  = errors.New("handoff key not found")
	ErrBadKey    = errors.New("invalid handoff key")
)

// Slot is a shared key-value store read by the next stage of the flow.
type Slot interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileSlot stores each key as a JSON file under Dir.
type FileSlot struct {
	Dir string
}

// NewFileSlot returns a slot rooted at dir.
func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{Dir: dir}
}

func (s *FileSlot) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return filepath.Join(s.Dir, key+".json"), nil
}

// Put writes data through a temp file and a rename so readers never see
// a partial record.
func (s *FileSlot) Put(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotWrite, err)
	}

	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSlotWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrSlotWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotWrite, err)
	}
	return nil
}

// Get reads a key.
func (s *FileSlot) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}

// MemorySlot keeps records in memory.
type MemorySlot struct {
	mu   sync.Mutex
	data map[string][]byte

	// Fail, when set, is returned by Put.
	Fail error
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (s *MemorySlot) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return fmt.Errorf("%w: %v", ErrSlotWrite, s.Fail)
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemorySlot) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// Write encodes r and stores it under key.
func Write(slot Slot, key string, r *Record) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("encode design record: %w", err)
	}
	return slot.Put(key, data)
}

// Read loads the record stored under key.
func Read(slot Slot, key string) (*Record, error) {
	data, err := slot.Get(key)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
