package cli

import (
	"context"
	"errors"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/downloads"
	"github.com/llehouerou/gnotifier/internal/errmsg"
	"github.com/llehouerou/gnotifier/internal/logx"
)

var watchSettle = downloads.DefaultSettle

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Alert on every download that lands in a directory",
	Long: `Watch a download directory and alert on each file once it is complete.
Partial files (.part, .crdownload, .tmp) are ignored until renamed into place.
DIR defaults to downloads.dir from the config, then the XDG download directory.
The configuration file is reloaded when it changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", downloads.DefaultSettle, "quiet period before a new file counts as complete")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	dir := watchDir(args, cfg)
	if dir == "" {
		return errors.New("no download directory configured")
	}

	s, err := newStack(cfg, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	if !s.service.Init() {
		return errNotShown
	}
	defer s.service.DeInit()

	if path := config.ActivePath(cfgFile); path != "" {
		if err := config.Watch(ctx, path, s.store, logx.Component(log, "config")); err != nil {
			log.Warn().Err(err).Str("path", path).Msg(errmsg.Format(errmsg.OpConfigReload, err))
		}
	}

	w := downloads.NewWatcher(dir, watchSettle, logx.Component(log, "watch"))
	err = w.Run(ctx, func(ctx context.Context, ev downloads.Event) {
		s.service.DownloadFinished(ctx, ev)
	})
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpDownloadWatch, dir, err))
	}
	return nil
}

// watchDir picks the directory from the argument, the config, then XDG.
func watchDir(args []string, c *config.Config) string {
	switch {
	case len(args) > 0:
		return args[0]
	case c.Downloads.Dir != "":
		return c.Downloads.Dir
	default:
		return xdg.UserDirs.Download
	}
}
