// Package cli provides the gnotifier command line: one-shot alerts,
// download alerts, a download directory watcher and icon cache upkeep.
package cli

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/errmsg"
	"github.com/llehouerou/gnotifier/internal/logx"
)

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gnotifier",
	Short: "Route alerts to the desktop's native notifications",
	Long: `gnotifier shows alerts through the desktop's native notification
service, an external command or nothing at all, depending on the configured
engine. Remote icons are downloaded once and cached as local files.`,
	Example: `  # Show an alert with a remote icon
  gnotifier notify --title "New mail" --text "From: alice" --icon https://example.com/a.png

  # Announce a finished download
  gnotifier download ~/Downloads/report.pdf

  # Alert on every file that lands in the download directory
  gnotifier watch ~/Downloads`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/gnotifier/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.AddCommand(notifyCmd, downloadCmd, watchCmd, purgeCmd, capabilitiesCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	cfg = loaded

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log = logx.New(cmd.ErrOrStderr(), level)
	return nil
}
