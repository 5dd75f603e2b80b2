package memory

import "errors"

var (
	// ErrProcessNotFound is returned when no running process matches the
	// requested executable name.
	ErrProcessNotFound = errors.New("memory: process not found")

	// ErrProcessNotOpen is returned when an operation requiring an open
	// process handle is attempted after Close or before a successful attach.
	ErrProcessNotOpen = errors.New("memory: process not open")

	// ErrModuleNotFound is returned when the target has no loaded module
	// with the requested name.
	ErrModuleNotFound = errors.New("memory: module not found")

	// ErrUnreadable is returned (wrapped with the failing address) whenever
	// a read of target memory fails. It carries no recovery semantics.
	ErrUnreadable = errors.New("memory: address range not readable")

	// ErrPatternNotFound is returned when a byte signature does not occur
	// anywhere in the scanned module image.
	ErrPatternNotFound = errors.New("memory: pattern not found")

	// ErrBadImage is returned when a module's in-memory PE headers fail
	// basic sanity checks.
	ErrBadImage = errors.New("memory: malformed PE image")

	// ErrExportNotFound is returned when a module does not export the
	// requested symbol by name.
	ErrExportNotFound = errors.New("memory: export not found")

	// ErrForwardedExport is returned when an export resolves to a forwarder
	// entry, which this package does not follow.
	ErrForwardedExport = errors.New("memory: forwarded exports are not supported")

	// ErrInterfaceNotFound is returned when walking a module's interface
	// registration list finds no entry with the requested name.
	ErrInterfaceNotFound = errors.New("memory: interface not found")
)
