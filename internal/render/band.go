package render

// Band is the severity classification of a measurement's latency.
type Band int

const (
	BandGood Band = iota
	BandWarning
	BandBad
)

func (b Band) String() string {
	switch b {
	case BandGood:
		return "good"
	case BandWarning:
		return "warning"
	default:
		return "bad"
	}
}

// Thresholds holds the inclusive upper bounds of the good and warning bands.
type Thresholds struct {
	GoodMaxMs    uint64
	WarningMaxMs uint64
}

// ClassifyLatency maps a latency to its band: good up to GoodMaxMs, warning
// up to WarningMaxMs, bad above.
func ClassifyLatency(latencyMs uint64, t Thresholds) Band {
	switch {
	case latencyMs <= t.GoodMaxMs:
		return BandGood
	case latencyMs <= t.WarningMaxMs:
		return BandWarning
	default:
		return BandBad
	}
}
