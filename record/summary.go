package record

import (
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds for per-topic iteration totals: 1 microsecond to
// 1 hour, 3 significant figures.
const (
	histMinMicros  = 1
	histMaxMicros  = 3600000000
	histSigFigures = 3
)

// SummaryOptions control the aggregation performed by Summarize.
type SummaryOptions struct {
	// Percentile sets the quantile window used for outlier filtering.
	// Values between Percentile and (100 - Percentile), widened by 1.5x
	// the inter-quantile range, survive the filter. Default 75.
	Percentile float64

	// FilterBelow raises the lower filter bound, excluding values
	// smaller than this many seconds from the filtered mean.
	FilterBelow float64
}

// DefaultSummaryOptions returns the options used by auto-save.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{Percentile: 75}
}

// TopicSummary is the aggregated view of one topic across all
// iterations. Values are in seconds.
type TopicSummary struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`

	// QuantileFiltered is the mean with outliers excluded.
	QuantileFiltered float64 `json:"quantile_filtered"`

	// Count is the number of iterations the topic appeared in.
	Count int64 `json:"count"`
}

// Summarize aggregates a snapshot into per-topic statistics. The value
// aggregated per iteration is the topic's total time within that
// iteration, so repeated calls with one topic count once per
// iteration. The snapshot is immutable; no lock is involved.
func Summarize(snap StepSnapshot, opts SummaryOptions) map[string]TopicSummary {
	if opts.Percentile <= 0 || opts.Percentile >= 100 {
		opts.Percentile = 75
	}

	// Per-topic list of per-iteration totals.
	series := make(map[string][]float64)
	for _, it := range snap.Iterations {
		for topic, samples := range it.Samples {
			total := 0.0
			for _, s := range samples {
				total += s.Duration
			}
			series[topic] = append(series[topic], total)
		}
	}

	out := make(map[string]TopicSummary, len(series))
	for topic, values := range series {
		out[topic] = summarizeTopic(values, opts)
	}
	return out
}

func summarizeTopic(values []float64, opts SummaryOptions) TopicSummary {
	if len(values) == 0 {
		return TopicSummary{}
	}

	sum := 0.0
	min, max := values[0], values[0]
	hist := hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigures)
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		hist.RecordValue(clampMicros(v))
	}

	upperQ := microsToSeconds(hist.ValueAtQuantile(opts.Percentile))
	lowerQ := microsToSeconds(hist.ValueAtQuantile(100 - opts.Percentile))
	qRange := upperQ - lowerQ
	upperBound := upperQ + qRange*1.5
	lowerBound := math.Max(lowerQ-qRange*1.5, opts.FilterBelow)

	filteredSum, filteredCount := 0.0, 0
	for _, v := range values {
		if v >= lowerBound && v <= upperBound {
			filteredSum += v
			filteredCount++
		}
	}
	filtered := 0.0
	if filteredCount > 0 {
		filtered = filteredSum / float64(filteredCount)
	}

	return TopicSummary{
		Mean:             sum / float64(len(values)),
		Min:              min,
		Max:              max,
		QuantileFiltered: filtered,
		Count:            int64(len(values)),
	}
}

func clampMicros(seconds float64) int64 {
	micros := int64(seconds * float64(time.Second/time.Microsecond))
	if micros < histMinMicros {
		return histMinMicros
	}
	if micros > histMaxMicros {
		return histMaxMicros
	}
	return micros
}

func microsToSeconds(micros int64) float64 {
	return float64(micros) / 1e6
}
