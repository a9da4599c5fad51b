// Package viz renders compiler output for the terminal.
//
// [Summary] and [Script] style CLI output with lipgloss, [Profile] plots a
// field component along x with asciigraph and [Sparkline] gives a one-line
// preview for tables.
package viz
