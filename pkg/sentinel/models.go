package sentinel

import "firestige.xyz/sentinel/internal/core"

// Re-export core types for callers outside this module
type (
	Interface = core.InterfaceInfo
	Record    = core.Record
	Protocol  = core.Protocol
)

const (
	ProtocolTCP   = core.ProtocolTCP
	ProtocolUDP   = core.ProtocolUDP
	ProtocolOther = core.ProtocolOther
)

// Errors returned by ListInterfaces and Capture. Match with errors.Is.
var (
	ErrEnumerationFailed    = core.ErrEnumerationFailed
	ErrNoUsableInterface    = core.ErrNoUsableInterface
	ErrChannelOpen          = core.ErrChannelOpen
	ErrBackendUnsupported   = core.ErrBackendUnsupported
	ErrInvalidCount         = core.ErrInvalidCount
	ErrCaptureAborted       = core.ErrCaptureAborted
	ErrReadRetriesExhausted = core.ErrReadRetriesExhausted
	ErrSourceExhausted      = core.ErrSourceExhausted
)
