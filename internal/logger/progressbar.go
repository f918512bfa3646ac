package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar renders a fixed-width ASCII bar for a 0-100 percentage
type ProgressBar struct {
	percent     int
	width       int
	enableColor bool
	mu          sync.RWMutex
}

// NewProgressBar creates a progress bar of the given width (default 20)
func NewProgressBar(width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 20
	}
	return &ProgressBar{width: width, enableColor: enableColor}
}

// Set updates the percentage, clamped to 0-100
func (pb *ProgressBar) Set(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.percent = percent
}

// Percent returns the current percentage
func (pb *ProgressBar) Percent() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.percent
}

// Reset sets the bar back to 0%
func (pb *ProgressBar) Reset() {
	pb.Set(0)
}

// VisibleWidth is the number of terminal columns Render occupies
func (pb *ProgressBar) VisibleWidth() int {
	return pb.width + len("[] 100%")
}

// Render returns "[=====     ]  50%", cyan while in progress and green when full
func (pb *ProgressBar) Render() string {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	filled := pb.percent * pb.width / 100
	bar := fmt.Sprintf("[%s%s] %3d%%",
		strings.Repeat("=", filled),
		strings.Repeat(" ", pb.width-filled),
		pb.percent)

	if !pb.enableColor {
		return bar
	}
	if pb.percent < 100 {
		return color.New(color.FgCyan).Sprint(bar)
	}
	return color.New(color.FgGreen).Sprint(bar)
}
