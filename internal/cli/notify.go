package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/gnotifier/internal/router"
)

var errNotShown = errors.New("notification service unavailable")

var notifyOpts struct {
	title     string
	text      string
	icon      string
	cookie    string
	clickable bool
	wait      time.Duration
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Show one alert",
	Long: `Show one alert through the configured engine. With the native engine the
command stays alive until the notification is closed or --wait elapses, and
prints the alert's lifecycle events.`,
	Args: cobra.NoArgs,
	RunE: runNotify,
}

func init() {
	f := notifyCmd.Flags()
	f.StringVarP(&notifyOpts.title, "title", "t", "", "alert title")
	f.StringVarP(&notifyOpts.text, "text", "b", "", "alert body")
	f.StringVarP(&notifyOpts.icon, "icon", "i", "", "icon URL or local path")
	f.StringVar(&notifyOpts.cookie, "cookie", "", "opaque value echoed with lifecycle events")
	f.BoolVar(&notifyOpts.clickable, "clickable", false, "report clicks on the alert")
	f.DurationVar(&notifyOpts.wait, "wait", 10*time.Second, "how long to wait for the alert to close")
	_ = notifyCmd.MarkFlagRequired("title")
}

func runNotify(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	s, err := newStack(cfg, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	if !s.service.Init() {
		return errNotShown
	}
	defer s.service.DeInit()

	finished := make(chan struct{}, 1)
	listener := router.ListenerFunc(func(topic, cookie string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", topic, cookie)
		if topic == router.TopicFinished {
			select {
			case finished <- struct{}{}:
			default:
			}
		}
	})

	out := s.service.Dispatch(ctx, router.AlertRequest{
		Title:         notifyOpts.title,
		Text:          notifyOpts.text,
		IconRef:       notifyOpts.icon,
		TextClickable: notifyOpts.clickable,
		Cookie:        notifyOpts.cookie,
		Listener:      listener,
	})
	log.Debug().Str("outcome", out.String()).Msg("notify")

	switch out {
	case router.OutcomeFailed:
		return errNotShown
	case router.OutcomeShown:
		waitFor(ctx, finished, notifyOpts.wait)
	}
	return nil
}

// waitFor blocks until done fires, d elapses or ctx ends.
func waitFor(ctx context.Context, done <-chan struct{}, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	case <-ctx.Done():
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
