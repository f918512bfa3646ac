package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotice_Display(t *testing.T) {
	tests := []struct {
		name     string
		notice   Notice
		contains []string
		excludes []string
	}{
		{
			name:     "error with message",
			notice:   Notice{Title: "Error", Message: "export failed"},
			contains: []string{"❌ Error: export failed\n"},
			excludes: []string{"Suggestion"},
		},
		{
			name:     "warning with suggestion",
			notice:   Notice{Title: "Warning", Message: "a run is already active", Suggestion: "wait for it to finish"},
			contains: []string{"Warning: a run is already active", "    Suggestion: wait for it to finish\n"},
		},
		{
			name:     "title only",
			notice:   Notice{Title: "Cancelled"},
			contains: []string{"Cancelled\n"},
			excludes: []string{": "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.notice.Display(&buf)

			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
