// Package ui renders colored terminal output for the tf command.
package ui

import (
	"fmt"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorWarn   = 179 // amber
	colorError  = 203 // red
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}

// RenderStatus colors a ticket status: Done green, Blocked red,
// in-flight states amber, To Do unstyled.
func RenderStatus(s model.Status) string {
	switch s {
	case model.StatusDone:
		return render(colorOK, string(s))
	case model.StatusBlocked:
		return render(colorError, string(s))
	case model.StatusInProgress, model.StatusInReview:
		return render(colorWarn, string(s))
	}
	return string(s)
}

// RenderSprintStatus colors a sprint status.
func RenderSprintStatus(s model.SprintStatus) string {
	switch s {
	case model.SprintCompleted:
		return render(colorOK, string(s))
	case model.SprintActive:
		return render(colorWarn, string(s))
	}
	return RenderMuted(string(s))
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
