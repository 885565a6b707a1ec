// Package render formats a measurement as the single status-bar line. It is
// pure formatting over an already-valid measurement; no renderer can fail.
package render

import (
	"encoding/json"
	"errors"
	"fmt"

	"flux/pkg/speedtest"
)

// Renderer turns a measurement into one line of status-bar text.
type Renderer interface {
	Render(m *speedtest.Measurement) string
}

// Options selects and parameterizes a renderer.
type Options struct {
	// Format is one of: plain, polybar, waybar, pretty.
	Format string

	// Glyph leads the line in the color-capable formats.
	Glyph string

	Thresholds Thresholds

	// Colors per band, as "#rrggbb".
	GoodColor    string
	WarningColor string
	BadColor     string

	// NoColor disables ANSI styling in the pretty format (non-TTY stdout).
	NoColor bool
}

func (o Options) color(b Band) string {
	switch b {
	case BandGood:
		return o.GoodColor
	case BandWarning:
		return o.WarningColor
	default:
		return o.BadColor
	}
}

// New returns the renderer for the configured format.
func New(opts Options) (Renderer, error) {
	switch opts.Format {
	case "plain":
		return &PlainRenderer{}, nil
	case "polybar":
		return &PolybarRenderer{opts: opts}, nil
	case "waybar":
		return &WaybarRenderer{opts: opts}, nil
	case "pretty":
		return &PrettyRenderer{opts: opts}, nil
	default:
		return nil, errors.New("unknown output format: " + opts.Format)
	}
}

func line(m *speedtest.Measurement) string {
	return fmt.Sprintf("%d ms %d Mbps", m.LatencyMs, m.DownloadMbps)
}

// PlainRenderer emits the bare values with no markup.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(m *speedtest.Measurement) string {
	return line(m)
}

// PolybarRenderer wraps the glyph in polybar foreground-color tags
// (%{F#rrggbb}...%{F-}), color keyed by latency band.
type PolybarRenderer struct {
	opts Options
}

func (r *PolybarRenderer) Render(m *speedtest.Measurement) string {
	band := ClassifyLatency(m.LatencyMs, r.opts.Thresholds)
	return fmt.Sprintf("%%{F%s}%s%%{F-} %s", r.opts.color(band), r.opts.Glyph, line(m))
}

// WaybarRenderer emits waybar's one-line JSON protocol; the band becomes the
// CSS class so the bar's stylesheet picks the color.
type WaybarRenderer struct {
	opts Options
}

type waybarPayload struct {
	Text    string `json:"text"`
	Class   string `json:"class"`
	Tooltip string `json:"tooltip"`
}

func (r *WaybarRenderer) Render(m *speedtest.Measurement) string {
	band := ClassifyLatency(m.LatencyMs, r.opts.Thresholds)
	p := waybarPayload{
		Text:    r.opts.Glyph + " " + line(m),
		Class:   band.String(),
		Tooltip: fmt.Sprintf("download %d Mbps, latency %d ms", m.DownloadMbps, m.LatencyMs),
	}
	b, err := json.Marshal(p)
	if err != nil {
		// Cannot happen for this payload shape; keep the line usable anyway.
		return p.Text
	}
	return string(b)
}
