// Package colors provides centralized color output with TTY-aware defaults.
//
// Colors are automatically disabled when stdout is not a terminal. Use Init()
// to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//   - forceColor == nil: keep auto-detected value
//   - forceColor == true: force colors on (--color)
//   - forceColor == false: force colors off (--no-color)
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// Styles used by the ipainfo output
var (
	Title = color.New(color.Bold, color.FgHiBlue).SprintFunc()
	Key   = color.New(color.Bold).SprintFunc()
	Value = color.New(color.FgHiWhite).SprintFunc()
	Faint = color.New(color.Faint).SprintFunc()
	Good  = color.New(color.FgHiGreen).SprintFunc()
	Bad   = color.New(color.FgHiRed).SprintFunc()
	Warn  = color.New(color.FgHiYellow).SprintFunc()
)
