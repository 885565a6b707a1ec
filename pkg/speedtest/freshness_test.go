package speedtest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCacheFile(t *testing.T, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speed.toml")
	if err := os.WriteFile(path, []byte("download_mbps = 1\nlatency_ms = 1\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func TestClassifyVariants(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	tests := []struct {
		name  string
		age   time.Duration
		state Freshness
	}{
		{name: "new file", age: time.Second, state: Fresh},
		{name: "half ttl", age: 12 * time.Hour, state: Fresh},
		{name: "exactly ttl", age: ttl, state: Fresh},
		{name: "one second past ttl", age: ttl + time.Second, state: Stale},
		{name: "very old", age: 30 * 24 * time.Hour, state: Stale},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeCacheFile(t, now.Add(-tt.age))

			state, age, err := Classify(path, ttl, now)
			if err != nil {
				t.Fatalf("Classify error: %v", err)
			}
			if state != tt.state {
				t.Fatalf("state = %v, want %v", state, tt.state)
			}
			if age != tt.age {
				t.Fatalf("age = %v, want %v", age, tt.age)
			}
		})
	}
}

func TestClassifyMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.toml")
	state, _, err := Classify(path, time.Hour, time.Now())
	if state != Absent {
		t.Fatalf("state = %v, want Absent", state)
	}
	if err != nil {
		t.Fatalf("missing file should not carry a reason error, got %v", err)
	}
}

func TestClassifyNotRegularFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	state, _, err := Classify(dir, time.Hour, time.Now())
	if state != Absent {
		t.Fatalf("state = %v, want Absent", state)
	}
	if !errors.Is(err, ErrCacheMetadata) {
		t.Fatalf("err = %v, want ErrCacheMetadata", err)
	}
}

func TestClassifyFutureMtime(t *testing.T) {
	t.Parallel()

	now := time.Now()
	path := writeCacheFile(t, now.Add(time.Hour))

	state, _, err := Classify(path, time.Hour, now)
	if state != Absent {
		t.Fatalf("state = %v, want Absent", state)
	}
	if !errors.Is(err, ErrClock) {
		t.Fatalf("err = %v, want ErrClock", err)
	}
}

func TestFreshnessString(t *testing.T) {
	t.Parallel()
	if Fresh.String() != "fresh" || Stale.String() != "stale" || Absent.String() != "absent" {
		t.Fatalf("unexpected Freshness strings: %v %v %v", Fresh, Stale, Absent)
	}
}
