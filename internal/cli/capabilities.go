package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/gnotifier/internal/logx"
	"github.com/llehouerou/gnotifier/internal/notify"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Probe the desktop notification service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n := notify.New(logx.Component(log, "notify"))
		if !n.Init() {
			return errNotShown
		}
		defer n.DeInit()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "engine:  %s\n", cfg.Engine)
		fmt.Fprintf(out, "desktop: %s\n", n.DesktopVariant())
		fmt.Fprintf(out, "buttons: %t\n", n.ButtonsSupported())
		return nil
	},
}
