// Package launcher opens files with the host platform's default application.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// startTimeout bounds how long the launcher command may take to hand off
const startTimeout = 10 * time.Second

// Launcher opens files through an OS command such as xdg-open.
type Launcher struct {
	name string
	args []string
	run  func(ctx context.Context, name string, args ...string) error
}

// New returns the launcher for the current platform
func New() *Launcher {
	name, args := platformCommand()
	return &Launcher{name: name, args: args, run: runCommand}
}

// Command returns the program and leading arguments used to open files
func (l *Launcher) Command() (string, []string) {
	return l.name, append([]string(nil), l.args...)
}

// Open asks the platform to open path with its default application.
func (l *Launcher) Open(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	args := append(append([]string(nil), l.args...), path)
	if err := l.run(ctx, l.name, args...); err != nil {
		return fmt.Errorf("open %s with %s: %w", path, l.name, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Noop is an opener that does nothing; used when opening is disabled.
type Noop struct{}

// Open implements the opener contract without side effects.
func (Noop) Open(string) error {
	return nil
}
