package speedtest

import (
	"context"
	"fmt"
	"time"

	logx "flux/pkg/logx"
)

// Origin records where a measurement came from.
type Origin string

const (
	OriginCache Origin = "cache"
	OriginProbe Origin = "probe"
)

// Source produces a Measurement, choosing between the cache and a fresh probe
// based on the cache's freshness.
type Source struct {
	Cache  Store
	Prober Prober
	TTL    time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time

	Log logx.Logger
}

func (s *Source) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Measure runs the freshness decision.
//
//   - Fresh cache: load it. A load or decode failure is a hard failure for
//     this run; there is deliberately no fallback probe.
//   - Stale or absent cache: probe and persist via Refresh.
func (s *Source) Measure(ctx context.Context) (*Measurement, Origin, error) {
	state, age, reason := s.Cache.Freshness(s.now(), s.TTL)

	switch state {
	case Fresh:
		s.Log.Info("cache hit",
			logx.String("path", s.Cache.Path()),
			logx.Uint64("elapsed_s", uint64(age.Seconds())),
		)
		m, err := s.Cache.Load()
		if err != nil {
			return nil, OriginCache, err
		}
		return m, OriginCache, nil
	case Stale:
		s.Log.Info("cache stale",
			logx.String("path", s.Cache.Path()),
			logx.Uint64("elapsed_s", uint64(age.Seconds())),
			logx.Duration("ttl", s.TTL),
		)
	default:
		s.Log.Info("cache absent",
			logx.String("path", s.Cache.Path()),
			logx.Err(reason),
		)
	}

	m, err := s.Refresh(ctx)
	if err != nil {
		return nil, OriginProbe, err
	}
	return m, OriginProbe, nil
}

// Refresh probes the external tool and persists the result. A successful
// probe whose persistence fails fails the whole operation, even though a
// valid measurement was obtained.
func (s *Source) Refresh(ctx context.Context) (*Measurement, error) {
	s.Log.Info("probing for current internet speed")
	start := s.now()

	m, err := s.Prober.Probe(ctx)
	if err != nil {
		return nil, err
	}

	s.Log.Debug("probe done",
		logx.Uint64("download_mbps", m.DownloadMbps),
		logx.Uint64("latency_ms", m.LatencyMs),
		logx.Duration("took", time.Since(start)),
	)

	if err := s.Cache.Store(m); err != nil {
		return nil, fmt.Errorf("persist measurement: %w", err)
	}
	return m, nil
}
