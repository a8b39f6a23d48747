//go:build !linux

package notify

import "github.com/rs/zerolog"

// stubNotifier is used where no native backend exists. Init fails so the
// alerts service refuses to take over from the host.
type stubNotifier struct {
	log zerolog.Logger
}

// New returns a notifier that cannot be initialized on this platform.
func New(log zerolog.Logger) Notifier {
	return &stubNotifier{log: log}
}

func (s *stubNotifier) Init() bool {
	s.log.Warn().Msg("native notifications are only supported on Linux (D-Bus)")
	return false
}

func (s *stubNotifier) DeInit() {}

func (s *stubNotifier) ButtonsSupported() bool { return false }

func (s *stubNotifier) DesktopVariant() Variant { return VariantUnknown }

func (s *stubNotifier) Notify(_, _, _, _ string, _ CloseHandler, _ func()) bool {
	return false
}

func (s *stubNotifier) NotifyWithActions(_, _, _, _ string, _ CloseHandler, _ []Action) bool {
	return false
}
