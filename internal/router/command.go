package router

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/errmsg"
)

// CommandRunner starts a shell command line.
type CommandRunner func(ctx context.Context, command string) error

// Command template placeholders.
const (
	PlaceholderImage = "%image"
	PlaceholderTitle = "%title"
	PlaceholderText  = "%text"
)

// ExpandCommand fills the first occurrence of each placeholder with the
// literal value, in image, title, text order. Values are NOT escaped: the
// template comes from the operator's configuration and whoever controls it
// already controls what runs. Any structured-argument hardening belongs here.
func ExpandCommand(template, image, title, text string) string {
	command := strings.Replace(template, PlaceholderImage, image, 1)
	command = strings.Replace(command, PlaceholderTitle, title, 1)
	return strings.Replace(command, PlaceholderText, text, 1)
}

// RunDetached starts command through the platform shell and reaps it in the
// background. The process is not tied to ctx.
func RunDetached(_ context.Context, command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (r *Router) runCommand(ctx context.Context, cfg *config.Config, image, title, text string) Outcome {
	if !cfg.HasCommand() {
		r.log.Warn().Msg("command engine selected but no command configured, alert suppressed")
		return OutcomeSuppressed
	}

	command := ExpandCommand(cfg.Command, image, title, text)
	if err := r.run(ctx, command); err != nil {
		r.log.Error().Err(err).Str("command", command).Msg(errmsg.Format(errmsg.OpCommandRun, err))
		return OutcomeFailed
	}
	return OutcomeCommand
}
