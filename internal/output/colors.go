package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Title     *color.Color
	Benchmark *color.Color
	Topic     *color.Color
	Value     *color.Color
	Bar       *color.Color
	Good      *color.Color
	Warn      *color.Color
	Error     *color.Color
	Dim       *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:     color.New(color.FgCyan, color.Bold),
		Benchmark: color.New(color.FgMagenta, color.Bold),
		Topic:     color.New(color.FgBlue),
		Value:     color.New(color.FgWhite),
		Bar:       color.New(color.FgCyan),
		Good:      color.New(color.FgGreen),
		Warn:      color.New(color.FgYellow),
		Error:     color.New(color.FgRed),
		Dim:       color.New(color.Faint),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Title.DisableColor()
	scheme.Benchmark.DisableColor()
	scheme.Topic.DisableColor()
	scheme.Value.DisableColor()
	scheme.Bar.DisableColor()
	scheme.Good.DisableColor()
	scheme.Warn.DisableColor()
	scheme.Error.DisableColor()
	scheme.Dim.DisableColor()

	return scheme
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}

// IsTerminal reports whether w is an interactive terminal. Only
// stdout and stderr are ever treated as terminals.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if f != os.Stdout && f != os.Stderr {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
