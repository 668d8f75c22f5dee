// Package record provides the persistence layer for benchmark results:
// the immutable snapshot model, the JSON artifact writers, summary
// statistics, and the loader used by reporting tools.
//
// # Artifact Layout
//
// Each saved run lives under a timestamped directory:
//
//	TICTOC_PERFORMANCE/<run-timestamp>/<name>/
//	    <name>_STEP_DICT_DATA.json     per-iteration step samples
//	    <name>_STEP_DICT_SUMMARY.json  per-topic mean/min/max stats
//	    <name>_MEMORY.json             memory snapshots
//
// # Locking Contract
//
// Snapshots are deep copies taken by the recorders while holding their
// own lock; everything in this package operates on those copies with
// no lock held, so file I/O never blocks measurement calls.
package record
