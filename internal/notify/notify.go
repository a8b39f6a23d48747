// Package notify provides native desktop notifications.
package notify

import (
	"strconv"
	"strings"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Variant identifies the desktop shell rendering notifications.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantGNOME
	VariantPlasma
	VariantOther
)

func (v Variant) String() string {
	switch v {
	case VariantGNOME:
		return "gnome"
	case VariantPlasma:
		return "plasma"
	case VariantOther:
		return "other"
	default:
		return "unknown"
	}
}

// CloseReason tells why a notification went away.
type CloseReason uint32

// Values from the freedesktop NotificationClosed signal.
const (
	ClosedExpired   CloseReason = 1
	ClosedDismissed CloseReason = 2
	ClosedByCall    CloseReason = 3
	ClosedUndefined CloseReason = 4
)

// CloseHandler is invoked once when a notification closes.
type CloseHandler func(reason CloseReason)

// Action is a button shown on the notification.
type Action struct {
	Label   string
	Handler func()
}

// Notification contains data for a desktop notification.
type Notification struct {
	AppName    string
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier is the native notification capability.
type Notifier interface {
	// Init connects to the notification service; false means unusable.
	Init() bool
	// DeInit releases the connection. Pending handlers are dropped.
	DeInit()
	// ButtonsSupported reports whether notifications can carry actions.
	ButtonsSupported() bool
	// DesktopVariant reports the desktop shell, used for label lengths.
	DesktopVariant() Variant
	// Notify shows a notification; onClick may be nil.
	Notify(iconPath, title, text, appName string, onClose CloseHandler, onClick func()) bool
	// NotifyWithActions shows a notification with ordered action buttons.
	NotifyWithActions(iconPath, title, text, appName string, onClose CloseHandler, actions []Action) bool
}

const defaultActionKey = "default"

// actionKeys flattens actions into the D-Bus [key, label, ...] layout.
// onClick registers the "default" action invoked by clicking the body.
func actionKeys(actions []Action, withDefault bool) []string {
	keys := make([]string, 0, 2*len(actions)+2)
	if withDefault {
		keys = append(keys, defaultActionKey, "")
	}
	for i, a := range actions {
		keys = append(keys, actionKey(i), a.Label)
	}
	return keys
}

func actionKey(i int) string {
	return "action-" + strconv.Itoa(i)
}

// variantFromServer maps GetServerInformation results to a Variant.
func variantFromServer(name, vendor string) Variant {
	n := strings.ToLower(name)
	v := strings.ToLower(vendor)
	switch {
	case n == "" && v == "":
		return VariantUnknown
	case strings.Contains(n, "plasma") || strings.Contains(v, "kde"):
		return VariantPlasma
	case strings.Contains(n, "gnome") || strings.Contains(v, "gnome"):
		return VariantGNOME
	default:
		return VariantOther
	}
}

func hasCapability(caps []string, want string) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}
