//go:build linux

package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	signalActionInvoked = dbusNotifyInterface + ".ActionInvoked"
	signalClosed        = dbusNotifyInterface + ".NotificationClosed"
)

// handlers are the callbacks attached to one shown notification.
type handlers struct {
	onClose CloseHandler
	onClick func()
	actions map[string]func()
}

// dbusNotifier sends notifications via D-Bus and routes the server's
// ActionInvoked / NotificationClosed signals back to the callers.
type dbusNotifier struct {
	log zerolog.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	obj     dbus.BusObject
	signals chan *dbus.Signal
	stop    chan struct{}
	done    chan struct{}
	caps    []string
	variant Variant
	pending map[uint32]*handlers
}

// New creates the platform notifier. Call Init before use.
func New(log zerolog.Logger) Notifier {
	return &dbusNotifier{log: log}
}

// Init opens a private session bus connection, subscribes to the
// notification signals and probes the server's capabilities.
func (n *dbusNotifier) Init() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		return true
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		n.log.Warn().Err(err).Msg("D-Bus session bus unavailable")
		return false
	}

	obj := conn.Object(dbusNotifyDest, dbusNotifyPath)

	var caps []string
	if err := obj.Call(dbusNotifyInterface+".GetCapabilities", 0).Store(&caps); err != nil {
		n.log.Warn().Err(err).Msg("notification server not reachable")
		conn.Close()
		return false
	}

	variant := VariantUnknown
	var name, vendor, version, specVersion string
	call := obj.Call(dbusNotifyInterface+".GetServerInformation", 0)
	if call.Store(&name, &vendor, &version, &specVersion) == nil {
		variant = variantFromServer(name, vendor)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
	); err != nil {
		n.log.Warn().Err(err).Msg("cannot subscribe to notification signals")
		conn.Close()
		return false
	}

	n.conn = conn
	n.obj = obj
	n.caps = caps
	n.variant = variant
	n.pending = make(map[uint32]*handlers)
	n.signals = make(chan *dbus.Signal, 16)
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	conn.Signal(n.signals)

	go n.dispatchSignals(n.signals, n.stop, n.done)

	n.log.Debug().
		Str("server", name).
		Str("vendor", vendor).
		Strs("capabilities", caps).
		Str("variant", variant.String()).
		Msg("notification server ready")
	return true
}

// DeInit closes the connection and stops signal dispatch.
func (n *dbusNotifier) DeInit() {
	n.mu.Lock()
	conn, signals, stop, done := n.conn, n.signals, n.stop, n.done
	n.conn = nil
	n.obj = nil
	n.pending = nil
	n.mu.Unlock()

	if conn == nil {
		return
	}
	close(stop)
	<-done
	conn.RemoveSignal(signals)
	_ = conn.Close()
}

func (n *dbusNotifier) ButtonsSupported() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return hasCapability(n.caps, "actions")
}

func (n *dbusNotifier) DesktopVariant() Variant {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.variant
}

func (n *dbusNotifier) Notify(iconPath, title, text, appName string, onClose CloseHandler, onClick func()) bool {
	h := &handlers{onClose: onClose, onClick: onClick}
	notif := Notification{AppName: appName, Title: title, Body: text, Icon: iconPath, Timeout: -1, Urgency: UrgencyNormal}
	return n.send(notif, actionKeys(nil, onClick != nil), h)
}

func (n *dbusNotifier) NotifyWithActions(iconPath, title, text, appName string, onClose CloseHandler, actions []Action) bool {
	if !n.ButtonsSupported() {
		return false
	}
	h := &handlers{onClose: onClose, actions: make(map[string]func(), len(actions))}
	for i, a := range actions {
		h.actions[actionKey(i)] = a.Handler
	}
	notif := Notification{AppName: appName, Title: title, Body: text, Icon: iconPath, Timeout: -1, Urgency: UrgencyNormal}
	return n.send(notif, actionKeys(actions, false), h)
}

// send holds the lock across the call so a signal for the new id cannot be
// dispatched before its handlers are registered.
func (n *dbusNotifier) send(notif Notification, actions []string, h *handlers) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.obj == nil {
		return false
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(notif.Urgency)),
	}

	// D-Bus Notify method signature:
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		notif.AppName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		actions,
		hints,
		notif.Timeout,
	)
	if call.Err != nil {
		n.log.Warn().Err(call.Err).Str("title", notif.Title).Msg("Notify call failed")
		return false
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		n.log.Warn().Err(err).Msg("Notify returned no id")
		return false
	}

	n.pending[id] = h
	return true
}

func (n *dbusNotifier) dispatchSignals(signals <-chan *dbus.Signal, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		var sig *dbus.Signal
		select {
		case sig = <-signals:
		case <-stop:
			return
		}
		if sig == nil || len(sig.Body) < 2 {
			continue
		}
		id, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}

		switch sig.Name {
		case signalActionInvoked:
			key, _ := sig.Body[1].(string)
			if fn := n.lookupAction(id, key); fn != nil {
				fn()
			}
		case signalClosed:
			reason, _ := sig.Body[1].(uint32)
			if h := n.take(id); h != nil && h.onClose != nil {
				h.onClose(CloseReason(reason))
			}
		}
	}
}

func (n *dbusNotifier) lookupAction(id uint32, key string) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	h := n.pending[id]
	if h == nil {
		return nil
	}
	if key == defaultActionKey {
		return h.onClick
	}
	return h.actions[key]
}

func (n *dbusNotifier) take(id uint32) *handlers {
	n.mu.Lock()
	defer n.mu.Unlock()
	h := n.pending[id]
	delete(n.pending, id)
	return h
}
