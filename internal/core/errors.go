// Package core defines sentinel errors.
package core

import "errors"

// Session-starting failures escape to the caller. Per-frame conditions
// never do.
var (
	// Interface catalog / selection errors
	ErrEnumerationFailed = errors.New("sentinel: interface enumeration failed")
	ErrNoUsableInterface = errors.New("sentinel: no usable network interface")

	// Capture channel errors
	ErrChannelOpen        = errors.New("sentinel: failed to open capture channel")
	ErrBackendUnsupported = errors.New("sentinel: capture backend not supported on this platform")

	// Capture loop errors
	ErrInvalidCount         = errors.New("sentinel: capture count must be non-negative")
	ErrCaptureAborted       = errors.New("sentinel: capture aborted")
	ErrReadRetriesExhausted = errors.New("sentinel: read retries exhausted")
	ErrSourceExhausted      = errors.New("sentinel: capture source exhausted")

	// Configuration errors
	ErrConfigInvalid = errors.New("sentinel: invalid configuration")
)
