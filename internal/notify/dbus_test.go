//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestDBusNotifierInit(t *testing.T) {
	// Skip if no D-Bus session (CI environment)
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	n := New(zerolog.Nop())
	if !n.Init() {
		t.Skip("no notification server on the session bus")
	}
	defer n.DeInit()

	if !n.Init() {
		t.Error("second Init() should be a no-op success")
	}
	_ = n.DesktopVariant()
}

func TestDBusNotifySendsNotification(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	n := New(zerolog.Nop())
	if !n.Init() {
		t.Skip("no notification server on the session bus")
	}
	defer n.DeInit()

	if !n.Notify("", "GNotifier Test", "Test notification from unit test", "gnotifier", nil, nil) {
		t.Error("Notify() = false, want true")
	}

	if n.ButtonsSupported() {
		ok := n.NotifyWithActions("", "GNotifier Test", "With actions", "gnotifier", nil, []Action{
			{Label: "Folder", Handler: func() {}},
			{Label: "File", Handler: func() {}},
		})
		if !ok {
			t.Error("NotifyWithActions() = false, want true")
		}
	}
}

func TestDBusNotifierUninitialized(t *testing.T) {
	n := New(zerolog.Nop())
	if n.Notify("", "t", "b", "a", nil, nil) {
		t.Error("Notify() before Init should fail")
	}
	if n.ButtonsSupported() {
		t.Error("ButtonsSupported() before Init should be false")
	}
	n.DeInit()
}
