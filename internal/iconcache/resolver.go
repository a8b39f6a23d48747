package iconcache

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/gnotifier/internal/errmsg"
)

// NoIcon is returned for an empty reference; the notification is shown
// without an icon.
const NoIcon = ""

// Fetcher retrieves the bytes behind a remote icon reference.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (io.ReadCloser, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}

// State is the lifecycle of a cached icon.
type State int

const (
	StateFetching State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry describes one icon known to the resolver.
type Entry struct {
	SourceRef string
	Hash      string
	Path      string
	State     State
}

// Resolver materializes icon references as local files:
// local path, then cached file, then a single shared fetch.
type Resolver struct {
	cache   *Cache
	fetcher Fetcher
	log     zerolog.Logger

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*Entry // by hash
	fetches atomic.Int64
}

// NewResolver creates a resolver backed by cache and fetcher.
func NewResolver(cache *Cache, fetcher Fetcher, log zerolog.Logger) *Resolver {
	return &Resolver{
		cache:   cache,
		fetcher: fetcher,
		log:     log,
		entries: make(map[string]*Entry),
	}
}

// Resolve returns a path for ref. It never fails: an empty ref yields NoIcon
// and any fetch or store problem yields ref itself. If ctx ends first, ref is
// returned while the fetch carries on for other callers.
func (r *Resolver) Resolve(ctx context.Context, ref string) string {
	if strings.TrimSpace(ref) == "" {
		return NoIcon
	}

	if path, ok := LookupLocal(ref); ok {
		return path
	}

	if path, ok := r.cache.LookupCached(ref); ok {
		r.setEntry(ref, Hash(ref), path, StateReady)
		return path
	}

	hash := Hash(ref)
	ch := r.group.DoChan(hash, func() (any, error) {
		return r.fetchAndStore(context.WithoutCancel(ctx), ref, hash)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			r.log.Warn().
				Err(res.Err).
				Str("ref", ref).
				Msg(errmsg.Format(errmsg.OpIconFetch, res.Err))
			return ref
		}
		path, _ := res.Val.(string)
		return path
	case <-ctx.Done():
		return ref
	}
}

// fetchAndStore runs once per hash at a time. A fetch that completed just
// before this flight started is picked up from the cache instead.
func (r *Resolver) fetchAndStore(ctx context.Context, ref, hash string) (string, error) {
	if path, ok := r.cache.LookupCached(ref); ok {
		r.setEntry(ref, hash, path, StateReady)
		return path, nil
	}

	r.setEntry(ref, hash, "", StateFetching)
	r.fetches.Add(1)

	body, err := r.fetcher.Fetch(ctx, ref)
	if err != nil {
		r.setEntry(ref, hash, "", StateFailed)
		return "", err
	}
	if body == nil {
		r.setEntry(ref, hash, "", StateFailed)
		return "", errors.New("fetcher returned no body")
	}
	defer body.Close()

	path, err := r.cache.Store(ref, body)
	if err != nil {
		r.setEntry(ref, hash, "", StateFailed)
		return "", errors.New(errmsg.Format(errmsg.OpIconStore, err))
	}

	r.setEntry(ref, hash, path, StateReady)
	return path, nil
}

func (r *Resolver) setEntry(ref, hash, path string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[hash] = &Entry{SourceRef: ref, Hash: hash, Path: path, State: state}
}

// Entry returns what the resolver knows about ref.
func (r *Resolver) Entry(ref string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[Hash(ref)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Fetches returns how many fetches have been issued.
func (r *Resolver) Fetches() int64 {
	return r.fetches.Load()
}

// Forget drops all in-memory entries; used after the cache is purged.
func (r *Resolver) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*Entry)
}
