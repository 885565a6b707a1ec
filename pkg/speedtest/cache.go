package speedtest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Store is the persistence API for the cached measurement. The decision logic
// only sees this interface, so a locked or database-backed implementation can
// be swapped in without touching it.
type Store interface {
	Load() (*Measurement, error)
	Store(*Measurement) error
	Freshness(now time.Time, ttl time.Duration) (Freshness, time.Duration, error)
	Path() string
}

// FileStore persists the measurement as one flat TOML file. The file's mtime
// carries the measurement's timestamp; nothing time-related is stored in the
// payload. There is no locking: concurrent runs may race on write, an
// accepted risk for a once-a-second status-bar poller.
type FileStore struct {
	Filename string

	// Atomic selects write-temp-then-rename instead of truncate-overwrite.
	Atomic bool
}

func NewFileStore(filename string) *FileStore {
	return &FileStore{Filename: filename}
}

func (s *FileStore) Path() string { return s.Filename }

// Freshness classifies the cache file's age. Delegated so a swapped Store can
// supply its own notion of age.
func (s *FileStore) Freshness(now time.Time, ttl time.Duration) (Freshness, time.Duration, error) {
	return Classify(s.Filename, ttl, now)
}

// Load decodes the cached measurement. Read failures wrap ErrCacheMetadata,
// parse failures ErrDecode.
func (s *FileStore) Load() (*Measurement, error) {
	b, err := os.ReadFile(s.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCacheMetadata, s.Filename, err)
	}
	var m Measurement
	if err := toml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: parse cache %s: %v", ErrDecode, s.Filename, err)
	}
	return &m, nil
}

// Store encodes the measurement and replaces the cache file, creating the
// parent directory when needed.
func (s *FileStore) Store(m *Measurement) error {
	b, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	if dir := filepath.Dir(s.Filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create cache dir %s: %v", ErrWrite, dir, err)
		}
	}

	if !s.Atomic {
		if err := os.WriteFile(s.Filename, b, 0644); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrWrite, s.Filename, err)
		}
		return nil
	}

	tmp := s.Filename + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: open temp cache file: %v", ErrWrite, err)
	}
	_, werr := f.Write(b)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write temp cache file: %v", ErrWrite, werr)
	}
	if serr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: sync temp cache file: %v", ErrWrite, serr)
	}
	if cerr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: close temp cache file: %v", ErrWrite, cerr)
	}
	if err := os.Rename(tmp, s.Filename); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", ErrWrite, s.Filename, err)
	}
	return nil
}
