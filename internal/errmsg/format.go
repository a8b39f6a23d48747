// Package errmsg provides consistent error formatting for log and CLI messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Icon operations
	OpIconFetch   Op = "fetch icon"
	OpIconStore   Op = "store icon"
	OpIconPurge   Op = "purge icon cache"
	OpIconPrune   Op = "prune icon cache"
	OpCacheCreate Op = "create icon cache"

	// Dispatch operations
	OpNotifyNative  Op = "show native notification"
	OpNotifyActions Op = "show notification with actions"
	OpCommandRun    Op = "run notification command"
	OpOpenFile      Op = "open file"
	OpOpenFolder    Op = "open folder"

	// Download operations
	OpDownloadWatch Op = "watch download directory"

	// Lifecycle
	OpNotifierInit Op = "initialize native notifier"
	OpRegister     Op = "register alerts provider"
	OpUnregister   Op = "unregister alerts provider"
	OpConfigLoad   Op = "load configuration"
	OpConfigReload Op = "reload configuration"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
