// Package alerts installs the notifier as the host's alert provider and
// removes it again.
package alerts

import (
	"context"
	"errors"
	"sync"

	"github.com/llehouerou/gnotifier/internal/router"
)

// ErrNotRegistered is returned by Unregister when nothing was registered.
var ErrNotRegistered = errors.New("no provider registered")

// Provider renders alerts for the host.
type Provider interface {
	ShowAlert(ctx context.Context, req router.AlertRequest)
}

// Host owns the active alert provider.
type Host interface {
	Register(p Provider) error
	Unregister() error
	Current() Provider
}

// Registry is an in-process Host. Each Register shadows the current
// provider and the matching Unregister brings it back.
type Registry struct {
	mu      sync.Mutex
	current Provider
	saved   []Provider
}

// NewRegistry creates a Registry whose original provider is p (may be nil).
func NewRegistry(p Provider) *Registry {
	return &Registry{current: p}
}

func (r *Registry) Register(p Provider) error {
	if p == nil {
		return errors.New("nil provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, r.current)
	r.current = p
	return nil
}

func (r *Registry) Unregister() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return ErrNotRegistered
	}
	last := len(r.saved) - 1
	r.current = r.saved[last]
	r.saved = r.saved[:last]
	return nil
}

func (r *Registry) Current() Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ShowAlert forwards req to the current provider, dropping it when there
// is none.
func (r *Registry) ShowAlert(ctx context.Context, req router.AlertRequest) {
	if p := r.Current(); p != nil {
		p.ShowAlert(ctx, req)
	}
}
