package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/gnotifier/internal/alerts"
	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/iconcache"
	"github.com/llehouerou/gnotifier/internal/logx"
	"github.com/llehouerou/gnotifier/internal/notify"
	"github.com/llehouerou/gnotifier/internal/opener"
	"github.com/llehouerou/gnotifier/internal/router"
)

// stack is the fully wired alert pipeline.
type stack struct {
	store    *config.Store
	cache    *iconcache.Cache
	resolver *iconcache.Resolver
	notifier notify.Notifier
	router   *router.Router
	host     *alerts.Registry
	service  *alerts.Service
}

// newStack wires the pipeline for c. Alerts handed back to the host by the
// builtin engine are printed to out.
func newStack(c *config.Config, out io.Writer, log zerolog.Logger) (*stack, error) {
	store := config.NewStore(c)

	cache, err := iconcache.NewCache(c.IconCache.Dir, logx.Component(log, "iconcache"))
	if err != nil {
		return nil, err
	}
	resolver := iconcache.NewResolver(
		cache,
		iconcache.NewHTTPFetcher(c.IconCache.FetchTimeout),
		logx.Component(log, "resolver"),
	)

	notifier := notify.New(logx.Component(log, "notify"))
	r := router.New(router.Options{
		Config:   store,
		Notifier: notifier,
		Icons:    resolver,
		Opener:   opener.New(),
		Log:      logx.Component(log, "router"),
	})

	host := alerts.NewRegistry(&consoleProvider{out: out})
	service := alerts.New(alerts.Options{
		Config:   store,
		Host:     host,
		Notifier: notifier,
		Cache:    cache,
		Resolver: resolver,
		Router:   r,
		Log:      logx.Component(log, "alerts"),
	})

	return &stack{
		store:    store,
		cache:    cache,
		resolver: resolver,
		notifier: notifier,
		router:   r,
		host:     host,
		service:  service,
	}, nil
}

// consoleProvider is the host's own provider: it prints alerts.
type consoleProvider struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *consoleProvider) ShowAlert(_ context.Context, req router.AlertRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if req.Text == "" {
		fmt.Fprintf(p.out, "[%s]\n", req.Title)
	} else {
		fmt.Fprintf(p.out, "[%s] %s\n", req.Title, req.Text)
	}
	if req.Listener != nil {
		req.Listener.Observe(router.TopicShow, req.Cookie)
		req.Listener.Observe(router.TopicFinished, req.Cookie)
	}
}
