// Package viz renders fit results for the terminal.
//
// Static output uses lipgloss panels and asciigraph line charts; the live
// fit view is a Bubble Tea program fed by grid search progress messages.
package viz
