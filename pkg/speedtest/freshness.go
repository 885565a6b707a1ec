package speedtest

import (
	"fmt"
	"os"
	"time"
)

// Freshness classifies the usability of a cached measurement by age.
type Freshness int

const (
	// Absent: no usable cache file (missing, not a regular file, metadata
	// unreadable, or a clock anomaly made its age meaningless).
	Absent Freshness = iota
	// Stale: a regular file older than the TTL.
	Stale
	// Fresh: a regular file whose age is within the TTL (inclusive).
	Fresh
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "absent"
	}
}

// Classify inspects the file at path and decides whether its content is still
// usable at time now given the ttl. The returned age is zero unless the file
// is Fresh or Stale.
//
// Anomalies never panic: a stat failure, a non-regular file, or a
// modification time in the future all fold into Absent, with the reason
// returned as an error (wrapping ErrCacheMetadata or ErrClock) so the caller
// can log it. A plainly missing file is Absent with a nil error.
func Classify(path string, ttl time.Duration, now time.Time) (Freshness, time.Duration, error) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Absent, 0, nil
		}
		return Absent, 0, fmt.Errorf("%w: stat %s: %v", ErrCacheMetadata, path, err)
	}
	if !st.Mode().IsRegular() {
		return Absent, 0, fmt.Errorf("%w: %s is not a regular file", ErrCacheMetadata, path)
	}

	age := now.Sub(st.ModTime())
	if age < 0 {
		return Absent, 0, fmt.Errorf("%w: %s modified %s in the future", ErrClock, path, (-age).Round(time.Second))
	}
	// Inclusive upper bound: age == ttl is still fresh.
	if age <= ttl {
		return Fresh, age, nil
	}
	return Stale, age, nil
}
