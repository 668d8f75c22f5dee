package output

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/tictoc-bench/tictoc/record"
)

// htmlBenchmark is the template view of one benchmark.
type htmlBenchmark struct {
	Name       string
	Rows       []htmlTopicRow
	Iterations int
	PeakRSS    string
	HasMemory  bool
}

type htmlTopicRow struct {
	Topic    string
	Mean     string
	Filtered string
	Min      string
	Max      string
	Count    int64

	// BarPercent is the mean relative to the slowest topic, 0-100.
	BarPercent float64
}

// GenerateHTML writes an HTML report of the run to outputPath.
func GenerateHTML(run *record.Run, outputPath string) error {
	html, err := GenerateHTMLString(run)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}

	return nil
}

// GenerateHTMLString renders the run as a self-contained HTML page.
func GenerateHTMLString(run *record.Run) (string, error) {
	if run == nil {
		return "", fmt.Errorf("run cannot be nil")
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		Dir        string
		Benchmarks []htmlBenchmark
	}{Dir: run.Dir}
	for _, name := range sortedKeys(run.Benchmarks) {
		data.Benchmarks = append(data.Benchmarks, htmlBenchmarkView(name, run.Benchmarks[name]))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func htmlBenchmarkView(name string, b record.Benchmark) htmlBenchmark {
	view := htmlBenchmark{Name: name}

	maxMean := 0.0
	for _, s := range b.Summary {
		if s.Mean > maxMean {
			maxMean = s.Mean
		}
	}
	for _, topic := range sortedTopics(b.Summary) {
		s := b.Summary[topic]
		percent := 0.0
		if maxMean > 0 {
			percent = s.Mean / maxMean * 100
		}
		view.Rows = append(view.Rows, htmlTopicRow{
			Topic:      topic,
			Mean:       formatSeconds(s.Mean),
			Filtered:   formatSeconds(s.QuantileFiltered),
			Min:        formatSeconds(s.Min),
			Max:        formatSeconds(s.Max),
			Count:      s.Count,
			BarPercent: percent,
		})
	}

	if len(b.Memory) > 0 {
		view.HasMemory = true
		view.Iterations = len(b.Memory)
		view.PeakRSS = formatBytes(peakRSS(b.Memory))
	}
	return view
}
