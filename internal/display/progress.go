package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/harrison/txtmerge/internal/logger"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Status labels shown next to the progress bar
const (
	StatusReady       = "Ready"
	StatusDone        = "Done"
	StatusInterrupted = "Interrupted"

	processingPrefix = "Processing: "
)

const (
	defaultBarWidth = 30
	minBarWidth     = 10
	maxBarWidth     = 40
)

// StatusPresenter shows run progress with a bar and a status label
type StatusPresenter struct {
	writer      io.Writer
	bar         *logger.ProgressBar
	interactive bool
	columns     int
	status      string
	lineOpen    bool
	suspended   bool // another writer owns the terminal line
	mu          sync.Mutex
}

// NewStatusPresenter creates a presenter writing to w.
// Single-line redraw is used only when w is a terminal.
func NewStatusPresenter(w io.Writer) *StatusPresenter {
	interactive := IsTerminal(w)
	columns := 0
	if interactive {
		columns = terminalColumns(w)
	}
	return &StatusPresenter{
		writer:      w,
		bar:         logger.NewProgressBar(barWidth(columns), interactive && !color.NoColor),
		interactive: interactive,
		columns:     columns,
		status:      StatusReady,
	}
}

// terminalColumns returns the width of the terminal behind w, or 0 if unknown
func terminalColumns(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return cols
}

// barWidth sizes the bar to a third of the terminal
func barWidth(columns int) int {
	if columns <= 0 {
		return defaultBarWidth
	}
	width := columns / 3
	if width < minBarWidth {
		return minBarWidth
	}
	if width > maxBarWidth {
		return maxBarWidth
	}
	return width
}

// fitLine cuts line to fewer than columns runes so a redraw never wraps
func fitLine(line string, columns int) string {
	if columns <= 1 {
		return ""
	}
	runes := []rune(line)
	if len(runes) < columns {
		return line
	}
	return string(runes[:columns-2]) + "…"
}

// IsTerminal reports whether w is backed by a terminal file descriptor
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Status returns the current status label
func (p *StatusPresenter) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Percent returns the percentage currently displayed
func (p *StatusPresenter) Percent() int {
	return p.bar.Percent()
}

// Reset clears displayed progress before a new run
func (p *StatusPresenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Reset()
	p.status = StatusReady
	p.lineOpen = false
	p.suspended = false
}

// Suspend stops progress output so a prompt written to the same terminal
// stays visible. Progress keeps tracking state until Resume.
func (p *StatusPresenter) Suspend() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLine()
	p.suspended = true
}

// Resume restarts progress output and redraws the latest state
func (p *StatusPresenter) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.suspended {
		return
	}
	p.suspended = false
	if strings.HasPrefix(p.status, processingPrefix) {
		p.draw()
	}
}

// Progress shows the percentage and the file currently being processed
func (p *StatusPresenter) Progress(percent int, fileName string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar.Set(percent)
	p.status = processingPrefix + fileName

	if p.suspended {
		return
	}
	p.draw()
}

// draw writes the bar and status, redrawing in place when interactive
func (p *StatusPresenter) draw() {
	if p.interactive {
		status := p.status
		if p.columns > 0 {
			status = fitLine(status, p.columns-p.bar.VisibleWidth()-1)
		}
		// \x1b[2K clears the previous, possibly longer, line
		fmt.Fprintf(p.writer, "\r\x1b[2K%s %s", p.bar.Render(), status)
		p.lineOpen = true
		return
	}
	fmt.Fprintf(p.writer, "%s %s\n", p.bar.Render(), p.status)
}

// Completed reports a successful export
func (p *StatusPresenter) Completed(outputPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLine()
	p.bar.Set(100)
	p.status = StatusDone
	fmt.Fprintf(p.writer, "%s Processing complete! File saved to: %s\n", color.GreenString("✓"), outputPath)
}

// Error reports a run-terminating error
func (p *StatusPresenter) Error(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLine()
	p.status = StatusInterrupted
	Notice{Title: "Error", Message: message}.Display(p.writer)
}

// closeLine ends an open redraw line so the next output starts cleanly
func (p *StatusPresenter) closeLine() {
	if p.lineOpen {
		fmt.Fprintln(p.writer)
		p.lineOpen = false
	}
}

// Confirm writes question followed by " [y/N]: " and reads one line from in.
// Only "y" or "yes" (any case) confirm; EOF or anything else declines.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line.WriteByte(buf[0])
		}
		if err != nil {
			break
		}
	}

	response := strings.TrimSpace(strings.ToLower(line.String()))
	return response == "y" || response == "yes"
}
