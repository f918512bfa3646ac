// Package display renders run status on a terminal.
//
// StatusPresenter receives the three notifications a run produces
// (progress, completed, error) and keeps a status label plus a progress bar
// up to date. When the output is a TTY it redraws a single line; otherwise
// every update is printed on its own line so logs stay readable.
//
//	p := display.NewStatusPresenter(os.Stderr)
//	p.Reset()
//	p.Progress(50, "a.txt")
//	p.Completed("/data/processing-results/merged-data_20240115_143022.xlsx")
//
// Notice prints a highlighted message block, and Confirm asks a y/N question.
// All functions accept io.Writer/io.Reader so they can be tested with buffers.
package display
