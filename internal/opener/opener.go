// Package opener opens downloaded files and their folders with the
// desktop's default handler.
package opener

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// StartFunc starts a process without waiting for the user to close it.
type StartFunc func(name string, args ...string) error

// Opener launches the platform "open" command.
type Opener struct {
	goos  string
	start StartFunc
}

// New creates an Opener for the running platform.
func New() *Opener {
	return &Opener{goos: runtime.GOOS, start: startDetached}
}

// NewWith creates an Opener for goos using start; used by tests.
func NewWith(goos string, start StartFunc) *Opener {
	return &Opener{goos: goos, start: start}
}

// OpenFile opens path with its associated application.
func (o *Opener) OpenFile(path string) error {
	switch o.goos {
	case "darwin":
		return o.start("open", path)
	case "windows":
		return o.start("cmd", "/C", "start", "", path)
	default:
		return o.start("xdg-open", path)
	}
}

// OpenFolder shows the folder containing path, selecting the file where the
// platform file manager supports it.
func (o *Opener) OpenFolder(path string) error {
	switch o.goos {
	case "darwin":
		return o.start("open", "-R", path)
	case "windows":
		return o.start("explorer", "/select,"+path)
	default:
		return o.start("xdg-open", filepath.Dir(path))
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
