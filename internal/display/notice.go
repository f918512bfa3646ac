package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Notice represents a user-facing message block
type Notice struct {
	Title      string // Main title, e.g. "Error"
	Message    string // Detailed explanation (optional)
	Suggestion string // Action to take (optional)
}

// Display writes the notice: errors in red, everything else in yellow.
// Colors are dropped automatically when out is not a terminal.
func (n Notice) Display(out io.Writer) {
	c := color.New(color.FgYellow)
	marker := "⚠️ "
	if strings.EqualFold(n.Title, "error") {
		c = color.New(color.FgRed)
		marker = "❌"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", marker, n.Title)
	if n.Message != "" {
		fmt.Fprintf(&b, ": %s", n.Message)
	}
	b.WriteString("\n")

	if n.Suggestion != "" {
		fmt.Fprintf(&b, "    Suggestion: %s\n", n.Suggestion)
	}

	c.Fprint(out, b.String())
}
