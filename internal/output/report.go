// Package output renders saved benchmark runs for the console.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tictoc-bench/tictoc/record"
)

// Bar chart characters
const (
	barFilled = "█"
	barEmpty  = "░"
	barWidth  = 32
)

// Renderer writes a loaded run to a console or file.
type Renderer struct {
	writer io.Writer
	scheme *ColorScheme
}

// NewRenderer creates a renderer for w. Pass NoColorScheme for
// non-terminal writers.
func NewRenderer(w io.Writer, scheme *ColorScheme) *Renderer {
	if scheme == nil {
		scheme = NoColorScheme()
	}
	return &Renderer{writer: w, scheme: scheme}
}

// RenderRun writes the whole run in the requested format.
func (r *Renderer) RenderRun(run *record.Run, format Format) error {
	if format == FormatJSON {
		return r.renderJSON(run)
	}
	return r.renderText(run)
}

func (r *Renderer) renderJSON(run *record.Run) error {
	type benchmarkDoc struct {
		Summary map[string]record.TopicSummary `json:"summary"`
		Steps   []record.StepIterationRecord   `json:"steps"`
		Memory  []record.MemoryIterationRecord `json:"memory,omitempty"`
	}
	doc := struct {
		Dir        string                  `json:"dir"`
		Benchmarks map[string]benchmarkDoc `json:"benchmarks"`
	}{
		Dir:        run.Dir,
		Benchmarks: make(map[string]benchmarkDoc, len(run.Benchmarks)),
	}
	for name, b := range run.Benchmarks {
		doc.Benchmarks[name] = benchmarkDoc{Summary: b.Summary, Steps: b.Steps, Memory: b.Memory}
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (r *Renderer) renderText(run *record.Run) error {
	line := strings.Repeat("━", 56)
	r.println(r.scheme.Title.Sprint(line))
	r.println(r.scheme.Title.Sprintf("Run: %s", run.Dir))
	r.println(r.scheme.Title.Sprint(line))

	for _, name := range sortedKeys(run.Benchmarks) {
		r.println("")
		r.renderBenchmark(name, run.Benchmarks[name])
	}
	return nil
}

func (r *Renderer) renderBenchmark(name string, b record.Benchmark) {
	r.println(r.scheme.Benchmark.Sprint(name))

	topics := sortedTopics(b.Summary)
	maxMean := 0.0
	width := len("topic")
	for _, t := range topics {
		if b.Summary[t].Mean > maxMean {
			maxMean = b.Summary[t].Mean
		}
		if len(t) > width {
			width = len(t)
		}
	}

	r.println(fmt.Sprintf("  %-*s  %10s  %10s  %10s  %10s  %5s",
		width, "topic", "mean", "filtered", "min", "max", "count"))
	for _, t := range topics {
		s := b.Summary[t]
		r.println(fmt.Sprintf("  %-*s  %10s  %10s  %10s  %10s  %5d",
			width, r.scheme.Topic.Sprint(t),
			formatSeconds(s.Mean), formatSeconds(s.QuantileFiltered),
			formatSeconds(s.Min), formatSeconds(s.Max), s.Count))
	}

	if maxMean > 0 {
		r.println("")
		for _, t := range topics {
			bar := renderBar(b.Summary[t].Mean/maxMean, barWidth)
			r.println(fmt.Sprintf("  %-*s  %s %s",
				width, t, r.scheme.Bar.Sprint(bar), formatSeconds(b.Summary[t].Mean)))
		}
	}

	if len(b.Memory) > 0 {
		r.println("")
		r.println(fmt.Sprintf("  %s peak RSS %s across %d iterations",
			r.scheme.Dim.Sprint("memory:"),
			formatBytes(peakRSS(b.Memory)), len(b.Memory)))
	}
}

// renderBar renders a horizontal bar, ratio in [0, 1].
func renderBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}

func peakRSS(records []record.MemoryIterationRecord) uint64 {
	var peak uint64
	for _, rec := range records {
		for _, samples := range rec.Data {
			for _, s := range samples {
				if s.RSS > peak {
					peak = s.RSS
				}
				if s.MaxRSS > peak {
					peak = s.MaxRSS
				}
			}
		}
	}
	return peak
}

// sortedTopics orders topics alphabetically with GLOBAL last, so the
// whole-iteration row reads as the footer of the table.
func sortedTopics(summary map[string]record.TopicSummary) []string {
	topics := make([]string, 0, len(summary))
	global := false
	for t := range summary {
		if t == record.TopicGlobal {
			global = true
			continue
		}
		topics = append(topics, t)
	}
	sort.Strings(topics)
	if global {
		topics = append(topics, record.TopicGlobal)
	}
	return topics
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatSeconds renders a duration in seconds with a unit suited to
// its magnitude.
func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1e6)
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.writer, s)
}
