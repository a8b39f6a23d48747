package downloads

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/l10n"
	"github.com/llehouerou/gnotifier/internal/router"
)

// Event reports one completed download.
type Event struct {
	Path      string
	Succeeded bool
	Exists    *bool // nil when the source cannot tell
}

// FileDispatcher shows the alert for a finished download.
type FileDispatcher interface {
	DispatchFile(ctx context.Context, title, text, path string) router.Outcome
}

// Notifier filters download events and forwards the survivors.
type Notifier struct {
	cfg      config.Source
	dispatch FileDispatcher
	log      zerolog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(cfg config.Source, dispatch FileDispatcher, log zerolog.Logger) *Notifier {
	return &Notifier{cfg: cfg, dispatch: dispatch, log: log}
}

// HandleEvent alerts about ev unless download alerts are off, the download
// failed, the file is gone, or its extension is excluded. Filtered events
// report router.OutcomeSuppressed; otherwise the dispatcher's outcome is
// returned.
func (n *Notifier) HandleEvent(ctx context.Context, ev Event) router.Outcome {
	cfg := n.cfg.Current()
	log := n.log.With().Str("path", ev.Path).Logger()

	switch {
	case !cfg.DownloadAlertsEnabled():
		log.Debug().Msg("download alerts disabled")
		return router.OutcomeSuppressed
	case !ev.Succeeded:
		log.Debug().Msg("download did not succeed")
		return router.OutcomeSuppressed
	case ev.Exists != nil && !*ev.Exists:
		log.Debug().Msg("downloaded file no longer exists")
		return router.OutcomeSuppressed
	case !ShouldNotify(ev.Path, cfg.Exclusions()):
		log.Debug().Str("ext", Extension(ev.Path)).Msg("extension excluded")
		return router.OutcomeSuppressed
	}

	title := l10n.New(cfg.Labels).Get(l10n.DownloadFinished)
	out := n.dispatch.DispatchFile(ctx, title, fileName(ev.Path), ev.Path)
	log.Debug().Str("outcome", out.String()).Msg("download alert dispatched")
	return out
}

// fileName returns the last element of path, accepting both separators.
func fileName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return filepath.Base(path)
}
