// Package router decides how each alert is rendered: by the native
// notifier, by an external command, by the host's original provider, or not
// at all.
package router

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/gnotifier/internal/config"
	"github.com/llehouerou/gnotifier/internal/errmsg"
	"github.com/llehouerou/gnotifier/internal/l10n"
	"github.com/llehouerou/gnotifier/internal/notify"
)

// Listener topics, as delivered to the host's alert observer.
const (
	TopicShow     = "alertshow"
	TopicFinished = "alertfinished"
	TopicClick    = "alertclickcallback"
)

var errNotifierRefused = errors.New("notifier refused the notification")

// Listener observes the lifecycle of one alert.
type Listener interface {
	Observe(topic, cookie string)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(topic, cookie string)

// Observe calls f.
func (f ListenerFunc) Observe(topic, cookie string) { f(topic, cookie) }

// AlertRequest is one notification-worthy event.
type AlertRequest struct {
	Title         string
	Text          string
	IconRef       string // URL or local path, may be empty
	TextClickable bool
	Cookie        string
	Listener      Listener
	Name          string
	Dir           string
	Lang          string
}

// Delegate renders alerts the router hands back to the host.
type Delegate interface {
	ShowAlert(ctx context.Context, req AlertRequest)
}

// IconResolver turns an icon reference into a local path.
type IconResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// FileOpener opens a downloaded file or its folder.
type FileOpener interface {
	OpenFile(path string) error
	OpenFolder(path string) error
}

// Outcome reports what Dispatch did with a request.
type Outcome int

const (
	OutcomeSuppressed Outcome = iota // dropped on purpose
	OutcomeDelegated                 // handed to the host's original provider
	OutcomeCommand                   // external command started
	OutcomeShown                     // native notification shown
	OutcomeFallback                  // shown natively without action buttons
	OutcomeFailed                    // rendering failed; request dropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeDelegated:
		return "delegated"
	case OutcomeCommand:
		return "command"
	case OutcomeShown:
		return "shown"
	case OutcomeFallback:
		return "fallback"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Router.
type Options struct {
	Config   config.Source
	Notifier notify.Notifier
	Icons    IconResolver
	Opener   FileOpener
	Run      CommandRunner // defaults to RunDetached
	Log      zerolog.Logger
}

// Router dispatches alerts to the engine selected in the configuration.
type Router struct {
	cfg      config.Source
	notifier notify.Notifier
	icons    IconResolver
	opener   FileOpener
	run      CommandRunner
	log      zerolog.Logger

	mu       sync.RWMutex
	delegate Delegate
}

// New creates a Router.
func New(opts Options) *Router {
	run := opts.Run
	if run == nil {
		run = RunDetached
	}
	return &Router{
		cfg:      opts.Config,
		notifier: opts.Notifier,
		icons:    opts.Icons,
		opener:   opts.Opener,
		run:      run,
		log:      opts.Log,
	}
}

// SetDelegate sets the provider used by the builtin engine; nil clears it.
func (r *Router) SetDelegate(d Delegate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delegate = d
}

func (r *Router) currentDelegate() Delegate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.delegate
}

// Dispatch renders req with the engine configured right now.
func (r *Router) Dispatch(ctx context.Context, req AlertRequest) Outcome {
	cfg := r.cfg.Current()
	log := r.log.With().Str("engine", cfg.Engine.String()).Str("title", req.Title).Logger()

	var out Outcome
	switch cfg.Engine {
	case config.EngineDisabled:
		out = OutcomeSuppressed
	case config.EngineBuiltin:
		out = r.delegateAlert(ctx, req)
	case config.EngineCommand:
		out = r.runCommand(ctx, cfg, req.IconRef, req.Title, req.Text)
	case config.EngineNative:
		out = r.showNative(ctx, cfg, req)
	default:
		log.Warn().Msg("unsupported engine, alert suppressed")
		out = OutcomeSuppressed
	}

	log.Debug().Str("outcome", out.String()).Msg("alert dispatched")
	return out
}

func (r *Router) delegateAlert(ctx context.Context, req AlertRequest) Outcome {
	d := r.currentDelegate()
	if d == nil {
		return OutcomeSuppressed
	}
	d.ShowAlert(ctx, req)
	return OutcomeDelegated
}

func (r *Router) showNative(ctx context.Context, cfg *config.Config, req AlertRequest) Outcome {
	icon := r.icons.Resolve(ctx, req.IconRef)

	listener := req.Listener
	cookie := req.Cookie

	onClose := func(notify.CloseReason) {
		if listener != nil {
			listener.Observe(TopicFinished, cookie)
		}
	}

	var onClick func()
	if req.TextClickable {
		onClick = func() {
			if listener != nil {
				listener.Observe(TopicClick, cookie)
			}
		}
	}

	if !r.notifier.Notify(icon, req.Title, req.Text, cfg.AppName, onClose, onClick) {
		r.log.Error().Str("title", req.Title).Msg(errmsg.Format(errmsg.OpNotifyNative, errNotifierRefused))
		return OutcomeFailed
	}

	if listener != nil {
		listener.Observe(TopicShow, cookie)
	}
	return OutcomeShown
}

// DispatchFile announces a finished download at path. On the native engine
// it offers "open folder" / "open file" buttons when the server supports
// them, falling back to a plain notification whose click opens the target
// chosen by click_option.
func (r *Router) DispatchFile(ctx context.Context, title, text, path string) Outcome {
	cfg := r.cfg.Current()
	openFile := func() { r.open(errmsg.OpOpenFile, r.opener.OpenFile, path) }
	openFolder := func() { r.open(errmsg.OpOpenFolder, r.opener.OpenFolder, path) }
	click := openFolder
	if cfg.ClickOption == config.ClickOpenFile {
		click = openFile
	}

	if cfg.Engine != config.EngineNative {
		return r.Dispatch(ctx, AlertRequest{
			Title:         title,
			Text:          text,
			IconRef:       cfg.AppIcon,
			TextClickable: true,
			Listener: ListenerFunc(func(topic, _ string) {
				if topic == TopicClick {
					click()
				}
			}),
		})
	}

	icon := r.icons.Resolve(ctx, cfg.AppIcon)

	fallback := false
	if r.notifier.ButtonsSupported() {
		actions := BuildActions(
			cfg.ClickOption,
			r.notifier.DesktopVariant(),
			l10n.New(cfg.Labels),
			openFile,
			openFolder,
		)
		if r.notifier.NotifyWithActions(icon, title, text, cfg.AppName, nil, actions) {
			return OutcomeShown
		}
		r.log.Warn().Str("path", path).Msg(errmsg.Format(errmsg.OpNotifyActions, errNotifierRefused))
		fallback = true
	}

	if !r.notifier.Notify(icon, title, text, cfg.AppName, nil, click) {
		r.log.Error().Str("path", path).Msg(errmsg.Format(errmsg.OpNotifyNative, errNotifierRefused))
		return OutcomeFailed
	}
	if fallback {
		return OutcomeFallback
	}
	return OutcomeShown
}

func (r *Router) open(op errmsg.Op, fn func(string) error, path string) {
	if err := fn(path); err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg(errmsg.FormatWith(op, path, err))
	}
}

// BuildActions returns the two download buttons ordered by clickOption:
// folder first for ClickOpenFolder, file first otherwise. Plasma gets the
// short labels because its buttons are narrow.
func BuildActions(clickOption int, variant notify.Variant, labels *l10n.Catalog, openFile, openFolder func()) []notify.Action {
	folderKey, fileKey := l10n.OpenFolder, l10n.OpenFile
	if variant == notify.VariantPlasma {
		folderKey, fileKey = l10n.Folder, l10n.File
	}

	folder := notify.Action{Label: labels.Get(folderKey), Handler: openFolder}
	file := notify.Action{Label: labels.Get(fileKey), Handler: openFile}

	if clickOption == config.ClickOpenFolder {
		return []notify.Action{folder, file}
	}
	return []notify.Action{file, folder}
}
