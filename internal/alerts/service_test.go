package alerts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/downloads"
	"github.com/llehouerou/gnotifier/internal/iconcache"
	"github.com/llehouerou/gnotifier/internal/notify"
	"github.com/llehouerou/gnotifier/internal/router"
)

// mockNotifier records lifecycle calls and shown titles.
type mockNotifier struct {
	mu       sync.Mutex
	initOK   bool
	inits    int
	deinits  int
	shown    []string
	shownIco []string
}

func (m *mockNotifier) Init() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits++
	return m.initOK
}

func (m *mockNotifier) DeInit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deinits++
}

func (m *mockNotifier) ButtonsSupported() bool         { return false }
func (m *mockNotifier) DesktopVariant() notify.Variant { return notify.VariantOther }

func (m *mockNotifier) Notify(icon, title, _, _ string, _ notify.CloseHandler, _ func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = append(m.shown, title)
	m.shownIco = append(m.shownIco, icon)
	return true
}

func (m *mockNotifier) NotifyWithActions(icon, title, text, app string, onClose notify.CloseHandler, _ []notify.Action) bool {
	return m.Notify(icon, title, text, app, onClose, nil)
}

// providerFunc adapts a function to Provider.
type providerFunc func(ctx context.Context, req router.AlertRequest)

func (f providerFunc) ShowAlert(ctx context.Context, req router.AlertRequest) { f(ctx, req) }

// failingHost refuses registration.
type failingHost struct{ *Registry }

func (failingHost) Register(Provider) error { return errors.New("host busy") }

type noopOpener struct{}

func (noopOpener) OpenFile(string) error   { return nil }
func (noopOpener) OpenFolder(string) error { return nil }

type fixture struct {
	svc      *Service
	notifier *mockNotifier
	host     *Registry
	cache    *iconcache.Cache
	original []string
	cfg      *config.Config
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	src := config.Static{Config: cfg}

	cache, err := iconcache.NewCache(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	fetcher := iconcache.FetcherFunc(func(context.Context, string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("png")), nil
	})
	resolver := iconcache.NewResolver(cache, fetcher, zerolog.Nop())

	f := &fixture{notifier: &mockNotifier{initOK: true}, cache: cache, cfg: cfg}
	f.host = NewRegistry(providerFunc(func(_ context.Context, req router.AlertRequest) {
		f.original = append(f.original, req.Title)
	}))

	r := router.New(router.Options{
		Config:   src,
		Notifier: f.notifier,
		Icons:    resolver,
		Opener:   noopOpener{},
		Log:      zerolog.Nop(),
	})
	f.svc = New(Options{
		Config:   src,
		Host:     f.host,
		Notifier: f.notifier,
		Cache:    cache,
		Resolver: resolver,
		Router:   r,
		Log:      zerolog.Nop(),
	})
	return f
}

func TestService_InitRegisters(t *testing.T) {
	f := newFixture(t, nil)
	original := f.host.Current()

	require.True(t, f.svc.Init())

	assert.True(t, f.svc.Active())
	assert.Equal(t, Provider(f.svc), f.host.Current())
	assert.Equal(t, 1, f.notifier.inits)

	// Second Init is a no-op.
	require.True(t, f.svc.Init())
	assert.Equal(t, 1, f.notifier.inits)

	require.True(t, f.svc.DeInit())
	assert.False(t, f.svc.Active())
	assert.NotEqual(t, Provider(f.svc), f.host.Current())
	assert.NotNil(t, original)
	assert.Equal(t, 1, f.notifier.deinits)
}

func TestService_InitNotifierFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.notifier.initOK = false
	before := f.host.Current()
	var logged bytes.Buffer
	f.svc.log = zerolog.New(&logged)

	assert.False(t, f.svc.Init())
	assert.Contains(t, logged.String(), "Failed to initialize native notifier")
	assert.False(t, f.svc.Active())
	assert.Equal(t, 0, len(f.host.saved), "nothing registered")
	f.host.ShowAlert(context.Background(), router.AlertRequest{Title: "still original"})
	assert.Equal(t, []string{"still original"}, f.original)
	assert.NotNil(t, before)
}

func TestService_InitRegisterFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.host = failingHost{f.host}

	assert.False(t, f.svc.Init())
	assert.False(t, f.svc.Active())
	assert.Equal(t, 1, f.notifier.deinits, "notifier torn down again")
}

func TestService_DeInitWithoutInit(t *testing.T) {
	f := newFixture(t, nil)
	assert.True(t, f.svc.DeInit())
	assert.Equal(t, 0, f.notifier.deinits)
}

func TestService_ShowAlertNative(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.svc.Init())

	f.host.ShowAlert(context.Background(), router.AlertRequest{Title: "hello", IconRef: "http://x/icon.png"})

	require.Equal(t, []string{"hello"}, f.notifier.shown)
	icon := f.notifier.shownIco[0]
	assert.Equal(t, f.cache.PathFor("http://x/icon.png"), icon)
	assert.FileExists(t, icon)
	assert.Empty(t, f.original)
}

func TestService_BuiltinUsesOriginalProvider(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Engine = config.EngineBuiltin })
	require.True(t, f.svc.Init())

	out := f.svc.Dispatch(context.Background(), router.AlertRequest{Title: "legacy"})

	assert.Equal(t, router.OutcomeDelegated, out)
	assert.Equal(t, []string{"legacy"}, f.original)
	assert.Empty(t, f.notifier.shown)
}

func TestService_DeInitPurgesCache(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.svc.Init())

	f.svc.ShowAlert(context.Background(), router.AlertRequest{Title: "a", IconRef: "http://x/a.png"})
	f.svc.ShowAlert(context.Background(), router.AlertRequest{Title: "b", IconRef: "http://x/b.png"})
	foreign := filepath.Join(f.cache.Dir(), "keep.txt")
	require.NoError(t, os.WriteFile(foreign, []byte("x"), 0o600))

	require.True(t, f.svc.DeInit())

	files, _, err := f.cache.Usage()
	require.NoError(t, err)
	assert.Zero(t, files)
	assert.FileExists(t, foreign)
}

func TestService_DownloadFinished(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.ExcludedExtensions = "exe" })
	require.True(t, f.svc.Init())

	assert.Equal(t, router.OutcomeSuppressed,
		f.svc.DownloadFinished(context.Background(), downloads.Event{Path: "/dl/setup.EXE", Succeeded: true}))
	assert.Equal(t, router.OutcomeShown,
		f.svc.DownloadFinished(context.Background(), downloads.Event{Path: "/dl/a.zip", Succeeded: true}))
	assert.Equal(t, []string{"Download finished"}, f.notifier.shown)
}

func TestService_InitPrunesStaleIcons(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.IconCache.MaxAge = time.Hour })
	old, err := f.cache.Store("http://x/old.png", strings.NewReader("png"))
	require.NoError(t, err)
	_, err = f.cache.Store("http://x/new.png", strings.NewReader("png"))
	require.NoError(t, err)
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	require.True(t, f.svc.Init())

	_, ok := f.cache.LookupCached("http://x/old.png")
	assert.False(t, ok)
	_, ok = f.cache.LookupCached("http://x/new.png")
	assert.True(t, ok)
}
