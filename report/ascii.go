package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/floats"

	"hypersurface/core"
)

const (
	barWidth  = 50
	ruleWidth = 70
)

// Trend marks a height as valley, plateau or peak.
func Trend(height float64) string {
	switch {
	case height < -0.5:
		return "▼"
	case height > 0.5:
		return "▲"
	}
	return "─"
}

// Bar places a marker for height in [-1, 1] on a barWidth track.
func Bar(height float64) string {
	pos := int((height + 1) * barWidth / 2)
	if pos < 0 {
		pos = 0
	}
	if pos > barWidth {
		pos = barWidth
	}
	return strings.Repeat(" ", pos) + "█" + strings.Repeat(" ", barWidth-pos)
}

// byBeat groups samples by beat, each group ordered by theta.
func byBeat(set *core.SampleSet) ([]int, map[int][]core.Sample) {
	groups := make(map[int][]core.Sample)
	for _, s := range set.Samples() {
		groups[s.Quantum.Beat] = append(groups[s.Quantum.Beat], s)
	}
	beats := make([]int, 0, len(groups))
	for beat, samples := range groups {
		beats = append(beats, beat)
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].Spherical.Theta < samples[j].Spherical.Theta
		})
	}
	sort.Ints(beats)
	return beats, groups
}

func sourceFor(set *core.SampleSet, beat int) core.SourceRecord {
	for _, src := range set.Sources() {
		if src.Beat == beat {
			return src
		}
	}
	return core.SourceRecord{Beat: beat, Type: "unknown", Backend: "unknown"}
}

// WriteASCII renders one bar per sample, grouped by beat, followed by the
// set's statistics.
func WriteASCII(w io.Writer, set *core.SampleSet) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "  HYPERSPHERE SURFACE")
	fmt.Fprintln(&b, rule)
	if set.Len() == 0 {
		fmt.Fprintln(&b, "  no samples")
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintln(&b, "  ▼ valley (low error)   ─ plateau   ▲ peak (high error)")
	fmt.Fprintln(&b)

	beats, groups := byBeat(set)

	// Qubit labels share one column even when counts reach two digits
	labelWidth := 0
	for _, beat := range beats {
		if lw := runewidth.StringWidth(fmt.Sprintf("Q%d", len(groups[beat])-1)); lw > labelWidth {
			labelWidth = lw
		}
	}

	for _, beat := range beats {
		src := sourceFor(set, beat)
		fmt.Fprintf(&b, "  Beat %d [%s] %s\n", beat, src.Type, src.Backend)
		fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", barWidth+2))
		for i, s := range groups[beat] {
			label := runewidth.FillRight(fmt.Sprintf("Q%d", i), labelWidth)
			fmt.Fprintf(&b, "    %s [%s] %+.3f %s (%.2f%%)\n",
				label, Bar(s.Height), s.Height, Trend(s.Height), s.Quantum.Error*100)
		}
		fmt.Fprintln(&b)
	}

	stats := core.ComputeStatistics(set)
	heights := set.Heights()
	rows := [][2]string{
		{"Samples", fmt.Sprintf("%d", set.Len())},
		{"Beats", fmt.Sprintf("%d", set.Beats())},
		{"Mean height", fmt.Sprintf("%+.4f", stats.MeanHeight)},
		{"Height range", fmt.Sprintf("[%+.3f, %+.3f]", floats.Min(heights), floats.Max(heights))},
		{"Roughness (variance)", fmt.Sprintf("%.6f", stats.HeightVariance)},
		{"Mean error", fmt.Sprintf("%.2f%%", stats.MeanError*100)},
		{"Error range", fmt.Sprintf("[%.2f%%, %.2f%%]", stats.MinError*100, stats.MaxError*100)},
	}
	keyWidth := 0
	for _, row := range rows {
		keyWidth = max(keyWidth, runewidth.StringWidth(row[0]))
	}
	fmt.Fprintln(&b, "  STATISTICS")
	fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", barWidth+2))
	for _, row := range rows {
		fmt.Fprintf(&b, "    %s  %s\n", runewidth.FillRight(row[0], keyWidth), row[1])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCoordinates lists every sample's displaced position and angles.
func WriteCoordinates(w io.Writer, set *core.SampleSet) error {
	var b strings.Builder
	fmt.Fprintln(&b, "  (x, y, z) on the displaced unit sphere")
	for i, s := range set.Samples() {
		c := s.Cartesian
		fmt.Fprintf(&b, "  V%02d: (%+.4f, %+.4f, %+.4f)  θ=%.3f φ=%.3f h=%+.3f\n",
			i, c.X, c.Y, c.Z, s.Spherical.Theta, s.Spherical.Phi, s.Height)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
