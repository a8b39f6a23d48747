package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/gnotifier/internal/downloads"
	"github.com/llehouerou/gnotifier/internal/router"
)

var downloadOpts struct {
	failed bool
	wait   time.Duration
}

var downloadCmd = &cobra.Command{
	Use:   "download PATH",
	Short: "Announce a finished download",
	Long: `Announce a finished download. The alert is skipped when download alerts
are disabled, the file is missing, or its extension is excluded. When a native
notification is shown the command stays alive for --wait so the "open file" /
"open folder" buttons keep working.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	f := downloadCmd.Flags()
	f.BoolVar(&downloadOpts.failed, "failed", false, "the download did not succeed")
	f.DurationVar(&downloadOpts.wait, "wait", 30*time.Second, "how long to keep the alert's buttons alive")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	s, err := newStack(cfg, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	if !s.service.Init() {
		return errNotShown
	}
	defer s.service.DeInit()

	out := s.service.DownloadFinished(ctx, downloads.Event{
		Path:      path,
		Succeeded: !downloadOpts.failed,
		Exists:    &exists,
	})
	switch out {
	case router.OutcomeSuppressed, router.OutcomeFailed:
		fmt.Fprintf(cmd.ErrOrStderr(), "no alert for %s (%s)\n", path, out)
		return nil
	}
	if !keepAlive(out) {
		return nil
	}

	waitFor(ctx, nil, downloadOpts.wait)
	return nil
}

// keepAlive reports whether out left a notification whose buttons or body
// click still need this process.
func keepAlive(out router.Outcome) bool {
	return out == router.OutcomeShown || out == router.OutcomeFallback
}
