package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/gnotifier/internal/errmsg"
	"github.com/llehouerou/gnotifier/internal/iconcache"
	"github.com/llehouerou/gnotifier/internal/logx"
)

var purgeOpts struct {
	olderThan time.Duration
	dryRun    bool
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached icons",
	Long: `Delete the icons gnotifier cached from remote URLs. With --older-than only
icons not refreshed within that duration are removed.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOpts.olderThan, "older-than", 0, "only remove icons older than this")
	purgeCmd.Flags().BoolVarP(&purgeOpts.dryRun, "dry-run", "n", false, "report cache usage without deleting")
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cache, err := iconcache.NewCache(cfg.IconCache.Dir, logx.Component(log, "iconcache"))
	if err != nil {
		return err
	}

	files, size, err := cache.Usage()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s in %s\n", cache.Dir(), humanize.Bytes(uint64(size)), plural(files, "icon"))
	if purgeOpts.dryRun {
		return nil
	}

	if purgeOpts.olderThan > 0 {
		n, err := cache.Prune(purgeOpts.olderThan)
		fmt.Fprintf(out, "removed %s older than %s\n", plural(n, "icon"), purgeOpts.olderThan)
		if err != nil {
			return fmt.Errorf("%s: %w", errmsg.OpIconPrune, err)
		}
		return nil
	}

	if err := cache.PurgeAll(); err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpIconPurge, err)
	}
	fmt.Fprintf(out, "removed %s, freed %s\n", plural(files, "icon"), humanize.Bytes(uint64(size)))
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
