// Package speedtest holds the domain core: the Measurement record, the
// freshness classification of the on-disk cache, the cache store, the
// external-command prober, and the source that decides between them.
package speedtest

import (
	"encoding/json"
	"fmt"
)

// Measurement is a single speed-test sample.
//
// IMPORTANT: TOML tags are kept stable because measurements are persisted to
// the cache file. JSON tags match the external tool's output schema
// (`fast --json` dialect).
type Measurement struct {
	DownloadMbps uint64 `toml:"download_mbps" json:"downloadSpeed"`
	LatencyMs    uint64 `toml:"latency_ms" json:"latency"`

	// Extension fields; populated when the tool reports them, not required
	// to round-trip through the cache.
	DownloadedMB uint64 `toml:"downloaded_mb,omitempty" json:"downloaded,omitempty"`
	UserLocation string `toml:"user_location,omitempty" json:"userLocation,omitempty"`
	UserIP       string `toml:"user_ip,omitempty" json:"userIp,omitempty"`
}

// toolPayload mirrors the tool's JSON output. downloadSpeed and latency are
// pointers so that an incomplete payload is rejected rather than silently
// zero-filled. bufferBloat is accepted and dropped; unknown fields tolerated.
type toolPayload struct {
	DownloadSpeed *uint64 `json:"downloadSpeed"`
	Latency       *uint64 `json:"latency"`
	Downloaded    uint64  `json:"downloaded"`
	BufferBloat   uint64  `json:"bufferBloat"`
	UserLocation  string  `json:"userLocation"`
	UserIP        string  `json:"userIp"`
}

// DecodeToolOutput parses the external tool's JSON stdout into a Measurement.
// Failures (including missing required fields) wrap ErrDecode.
func DecodeToolOutput(data []byte) (*Measurement, error) {
	var p toolPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse tool output: %v", ErrDecode, err)
	}
	if p.DownloadSpeed == nil {
		return nil, fmt.Errorf("%w: tool output missing downloadSpeed", ErrDecode)
	}
	if p.Latency == nil {
		return nil, fmt.Errorf("%w: tool output missing latency", ErrDecode)
	}
	return &Measurement{
		DownloadMbps: *p.DownloadSpeed,
		LatencyMs:    *p.Latency,
		DownloadedMB: p.Downloaded,
		UserLocation: p.UserLocation,
		UserIP:       p.UserIP,
	}, nil
}
