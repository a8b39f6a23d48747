package config

import (
	"context"
	"sync/atomic"

	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"

	"github.com/llehouerou/gnotifier/internal/errmsg"
)

// Source yields the configuration snapshot in effect right now.
// Dispatchers read it once per request.
type Source interface {
	Current() *Config
}

// Store holds the live configuration and swaps it atomically on reload.
type Store struct {
	cfg atomic.Pointer[Config]
}

// NewStore creates a store seeded with cfg (Default() when nil).
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = Default()
	}
	s := &Store{}
	s.cfg.Store(cfg)
	return s
}

// Current returns the active configuration.
func (s *Store) Current() *Config {
	return s.cfg.Load()
}

// Set replaces the active configuration.
func (s *Store) Set(cfg *Config) {
	if cfg != nil {
		s.cfg.Store(cfg)
	}
}

// Static wraps a fixed configuration as a Source.
type Static struct{ Config *Config }

// Current returns the wrapped configuration.
func (s Static) Current() *Config { return s.Config }

// Watch reloads the configuration into store whenever path changes, until
// ctx is done. A reload that fails to parse or validate keeps the previous
// configuration.
func Watch(ctx context.Context, path string, store *Store, log zerolog.Logger) error {
	path = expandPath(path)
	fp := file.Provider(path)

	err := fp.Watch(func(_ any, err error) {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg(errmsg.Format(errmsg.OpConfigReload, err))
			return
		}
		cfg, err := Load(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("keeping previous configuration")
			return
		}
		store.Set(cfg)
		log.Info().Str("path", path).Str("engine", cfg.Engine.String()).Msg("configuration reloaded")
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = fp.Unwatch()
	}()
	return nil
}
