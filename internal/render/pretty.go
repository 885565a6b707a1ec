package render

import (
	"github.com/charmbracelet/lipgloss"

	"flux/pkg/speedtest"
)

// PrettyRenderer is for interactive runs: glyph and values styled with the
// band color. With NoColor set (stdout is not a terminal) it degrades to the
// glyph plus the plain line, no escapes.
type PrettyRenderer struct {
	opts Options
}

func (r *PrettyRenderer) Render(m *speedtest.Measurement) string {
	band := ClassifyLatency(m.LatencyMs, r.opts.Thresholds)
	if r.opts.NoColor {
		return r.opts.Glyph + " " + line(m)
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(r.opts.color(band)))
	return style.Render(r.opts.Glyph) + " " + line(m)
}
