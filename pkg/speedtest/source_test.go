package speedtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "flux/pkg/logx"
)

// countingProber records invocations so tests can assert the decision logic
// without spawning processes.
type countingProber struct {
	calls int
	m     *Measurement
	err   error
}

func (p *countingProber) Probe(ctx context.Context) (*Measurement, error) {
	p.calls++
	return p.m, p.err
}

// failingStore fails every write.
type failingStore struct {
	*FileStore
}

func (s *failingStore) Store(*Measurement) error {
	return fmt.Errorf("%w: disk full", ErrWrite)
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "speed.toml"))
}

func TestMeasureFreshHitSkipsProbe(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Store(&Measurement{DownloadMbps: 330, LatencyMs: 17}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	prober := &countingProber{m: &Measurement{DownloadMbps: 1, LatencyMs: 1}}
	src := &Source{Cache: store, Prober: prober, TTL: time.Hour, Log: logx.Nop()}

	m, origin, err := src.Measure(context.Background())
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	if origin != OriginCache {
		t.Fatalf("origin = %v, want cache", origin)
	}
	if m.DownloadMbps != 330 || m.LatencyMs != 17 {
		t.Fatalf("got %+v, want cached 330/17", m)
	}
	if prober.calls != 0 {
		t.Fatalf("prober invoked %d times on a fresh cache", prober.calls)
	}
}

func TestMeasureStaleProbesAndPersists(t *testing.T) {
	t.Parallel()

	now := time.Now()
	store := newTestStore(t)
	if err := store.Store(&Measurement{DownloadMbps: 10, LatencyMs: 200}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	old := now.Add(-48 * time.Hour)
	if err := os.Chtimes(store.Filename, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	prober := &countingProber{m: &Measurement{DownloadMbps: 100, LatencyMs: 120}}
	src := &Source{Cache: store, Prober: prober, TTL: 24 * time.Hour, Log: logx.Nop()}

	m, origin, err := src.Measure(context.Background())
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	if origin != OriginProbe {
		t.Fatalf("origin = %v, want probe", origin)
	}
	if prober.calls != 1 {
		t.Fatalf("prober invoked %d times, want 1", prober.calls)
	}
	if m.DownloadMbps != 100 || m.LatencyMs != 120 {
		t.Fatalf("got %+v, want probed 100/120", m)
	}

	// The cache must now decode to the probed values.
	cached, err := store.Load()
	if err != nil {
		t.Fatalf("Load after probe: %v", err)
	}
	if cached.DownloadMbps != 100 || cached.LatencyMs != 120 {
		t.Fatalf("cache holds %+v, want 100/120", cached)
	}
}

func TestMeasureAbsentProbes(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	prober := &countingProber{m: &Measurement{DownloadMbps: 50, LatencyMs: 30}}
	src := &Source{Cache: store, Prober: prober, TTL: time.Hour, Log: logx.Nop()}

	_, origin, err := src.Measure(context.Background())
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	if origin != OriginProbe || prober.calls != 1 {
		t.Fatalf("origin = %v, calls = %d; want probe/1", origin, prober.calls)
	}
}

func TestMeasureFreshCorruptCacheFailsWithoutProbe(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := os.WriteFile(store.Filename, []byte("{corrupt"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	prober := &countingProber{m: &Measurement{DownloadMbps: 1, LatencyMs: 1}}
	src := &Source{Cache: store, Prober: prober, TTL: time.Hour, Log: logx.Nop()}

	_, _, err := src.Measure(context.Background())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	// No fallback probe on a fresh-but-unreadable cache.
	if prober.calls != 0 {
		t.Fatalf("prober invoked %d times, want 0", prober.calls)
	}
}

func TestRefreshProbeFailureLeavesCacheUntouched(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Store(&Measurement{DownloadMbps: 42, LatencyMs: 7}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	before, err := os.ReadFile(store.Filename)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}

	prober := &countingProber{err: fmt.Errorf("%w: fast: dns failure", ErrCommandFailed)}
	src := &Source{Cache: store, Prober: prober, TTL: time.Hour, Log: logx.Nop()}

	if _, err := src.Refresh(context.Background()); !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}

	after, err := os.ReadFile(store.Filename)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("cache file modified by a failed probe")
	}
}

func TestRefreshPersistFailureFailsRun(t *testing.T) {
	t.Parallel()

	store := &failingStore{FileStore: newTestStore(t)}
	prober := &countingProber{m: &Measurement{DownloadMbps: 100, LatencyMs: 10}}
	src := &Source{Cache: store, Prober: prober, TTL: time.Hour, Log: logx.Nop()}

	// Policy: a successful probe whose persistence fails fails the whole run.
	if _, err := src.Refresh(context.Background()); !errors.Is(err, ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
}

func TestStageNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", ErrEnvironment), "environment"},
		{fmt.Errorf("x: %w", ErrCacheMetadata), "cache-metadata"},
		{fmt.Errorf("x: %w", ErrClock), "clock"},
		{fmt.Errorf("x: %w", ErrSpawn), "spawn"},
		{fmt.Errorf("x: %w", ErrCommandFailed), "command"},
		{fmt.Errorf("x: %w", ErrDecode), "decode"},
		{fmt.Errorf("x: %w", ErrEncode), "encode"},
		{fmt.Errorf("x: %w", ErrWrite), "write"},
		{errors.New("something else"), "run"},
	}
	for _, tt := range tests {
		if got := Stage(tt.err); got != tt.want {
			t.Fatalf("Stage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
