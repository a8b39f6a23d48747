package alerts

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/downloads"
	"github.com/llehouerou/gnotifier/internal/errmsg"
	"github.com/llehouerou/gnotifier/internal/iconcache"
	"github.com/llehouerou/gnotifier/internal/notify"
	"github.com/llehouerou/gnotifier/internal/router"
)

var errNotifierUnavailable = errors.New("notification service unavailable, not registering")

// Options configures a Service.
type Options struct {
	Config   config.Source
	Host     Host
	Notifier notify.Notifier
	Cache    *iconcache.Cache
	Resolver *iconcache.Resolver
	Router   *router.Router
	Log      zerolog.Logger
}

// Service is the alert provider installed into the host while active.
type Service struct {
	cfg       config.Source
	host      Host
	notifier  notify.Notifier
	cache     *iconcache.Cache
	resolver  *iconcache.Resolver
	router    *router.Router
	downloads *downloads.Notifier
	log       zerolog.Logger

	mu     sync.Mutex
	active bool
}

// New creates an inactive Service.
func New(opts Options) *Service {
	return &Service{
		cfg:       opts.Config,
		host:      opts.Host,
		notifier:  opts.Notifier,
		cache:     opts.Cache,
		resolver:  opts.Resolver,
		router:    opts.Router,
		downloads: downloads.NewNotifier(opts.Config, opts.Router, opts.Log),
		log:       opts.Log,
	}
}

// Init starts the native notifier and registers the service with the host,
// keeping the host's previous provider for the builtin engine. On failure
// nothing stays registered or initialized.
func (s *Service) Init() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return true
	}

	if !s.notifier.Init() {
		s.log.Warn().Msg(errmsg.Format(errmsg.OpNotifierInit, errNotifierUnavailable))
		return false
	}

	s.router.SetDelegate(s.host.Current())

	if err := s.host.Register(s); err != nil {
		s.log.Error().Err(err).Msg(errmsg.Format(errmsg.OpRegister, err))
		s.router.SetDelegate(nil)
		s.notifier.DeInit()
		return false
	}

	if maxAge := s.cfg.Current().IconCache.MaxAge; maxAge > 0 {
		if n, err := s.cache.Prune(maxAge); err != nil {
			s.log.Warn().Err(err).Msg(errmsg.Format(errmsg.OpIconPrune, err))
		} else if n > 0 {
			s.log.Debug().Int("removed", n).Msg("stale icons pruned")
		}
	}

	s.active = true
	s.log.Info().Str("engine", s.cfg.Current().Engine.String()).Msg("alerts service registered")
	return true
}

// DeInit unregisters the service, restoring the host's original provider,
// deletes the cached icons and shuts down the notifier. It reports whether
// every step succeeded.
func (s *Service) DeInit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return true
	}
	s.active = false
	ok := true

	if err := s.host.Unregister(); err != nil {
		s.log.Error().Err(err).Msg(errmsg.Format(errmsg.OpUnregister, err))
		ok = false
	}
	s.router.SetDelegate(nil)

	if err := s.cache.PurgeAll(); err != nil {
		s.log.Warn().Err(err).Msg(errmsg.Format(errmsg.OpIconPurge, err))
		ok = false
	}
	s.resolver.Forget()

	s.notifier.DeInit()
	s.log.Info().Msg("alerts service unregistered")
	return ok
}

// Active reports whether the service is registered.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ShowAlert routes req through the configured engine.
func (s *Service) ShowAlert(ctx context.Context, req router.AlertRequest) {
	s.Dispatch(ctx, req)
}

// Dispatch is ShowAlert that also reports what happened.
func (s *Service) Dispatch(ctx context.Context, req router.AlertRequest) router.Outcome {
	return s.router.Dispatch(ctx, req)
}

// DownloadFinished alerts about a completed download when it passes the
// download filters.
func (s *Service) DownloadFinished(ctx context.Context, ev downloads.Event) router.Outcome {
	return s.downloads.HandleEvent(ctx, ev)
}
