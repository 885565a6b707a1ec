package speedtest

import "errors"

// Sentinel errors for the stages of a run. Call sites wrap them with
// fmt.Errorf("...: %w", ...) and the orchestrator matches with errors.Is.
var (
	// ErrCacheMetadata: the cache file cannot be stat'ed, read, or is not a
	// regular file.
	ErrCacheMetadata = errors.New("cache metadata unreadable")
	// ErrClock: elapsed-time computation failed (mtime in the future).
	ErrClock = errors.New("clock anomaly")
	// ErrSpawn: the external tool could not be started at all.
	ErrSpawn = errors.New("speedtest command could not be started")
	// ErrCommandFailed: the tool ran but exited non-zero; the wrapping error
	// carries the captured stderr.
	ErrCommandFailed = errors.New("speedtest command failed")
	// ErrDecode: tool output or cache payload does not parse as a Measurement.
	ErrDecode = errors.New("measurement decode failed")
	// ErrEncode: the cache payload could not be encoded.
	ErrEncode = errors.New("measurement encode failed")
	// ErrWrite: the cache file could not be written or replaced.
	ErrWrite = errors.New("cache write failed")
	// ErrEnvironment: no cache directory base could be resolved.
	ErrEnvironment = errors.New("cache directory base unavailable")
)

// Stage names the pipeline stage a wrapped error belongs to. Used as a log
// field and in the stderr failure message.
func Stage(err error) string {
	switch {
	case errors.Is(err, ErrEnvironment):
		return "environment"
	case errors.Is(err, ErrCacheMetadata):
		return "cache-metadata"
	case errors.Is(err, ErrClock):
		return "clock"
	case errors.Is(err, ErrSpawn):
		return "spawn"
	case errors.Is(err, ErrCommandFailed):
		return "command"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "run"
	}
}
