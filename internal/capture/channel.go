// Package capture opens link-layer capture channels on a network interface.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket"

	"firestige.xyz/sentinel/internal/config"
	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/log"
)

const (
	defaultSnapLen     = 65535
	defaultPollTimeout = 100 * time.Millisecond
)

var (
	// ErrReadTimeout is returned by ReadFrame when the poll timeout expired
	// with no frame. It is idle time, not a failure.
	ErrReadTimeout = errors.New("capture: read timeout")

	// ErrTransientRead marks a read failure worth retrying.
	ErrTransientRead = errors.New("capture: transient read error")
)

// Channel is an open link-layer capture handle with a single reader.
type Channel interface {
	// ReadFrame blocks until a frame arrives or the poll timeout expires.
	// The returned slice may alias a ring buffer and is only valid until
	// the next call.
	ReadFrame() ([]byte, gopacket.CaptureInfo, error)

	// Interface returns the name of the interface (or file) being read.
	Interface() string

	// Close releases the handle. It is safe to call more than once.
	Close() error
}

// Options configures a capture channel. Zero values take defaults.
type Options struct {
	Backend     string        // afpacket | pcap | file | auto
	SnapLen     int           // bytes kept per frame
	PollTimeout time.Duration // bound on one blocking read
	FilePath    string        // pcap file for the file backend
}

func (o Options) withDefaults() Options {
	if o.Backend == "" || o.Backend == config.BackendAuto {
		o.Backend = config.ResolveAutoBackend()
	}
	switch {
	case o.SnapLen <= 0:
		o.SnapLen = defaultSnapLen
	case o.SnapLen < config.MinSnapLen:
		o.SnapLen = config.MinSnapLen
	case o.SnapLen > config.MaxSnapLen:
		o.SnapLen = config.MaxSnapLen
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = defaultPollTimeout
	}
	return o
}

// OpenError describes a failure to open a capture channel.
type OpenError struct {
	Interface string
	Backend   string
	Err       error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%s: %s on %q: %v", core.ErrChannelOpen, e.Backend, e.Interface, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is reports a match for core.ErrChannelOpen so callers need not know the
// concrete type.
func (e *OpenError) Is(target error) bool { return target == core.ErrChannelOpen }

// Open opens a capture channel on iface using the configured backend.
// Promiscuous mode stays off and no filter is installed.
func Open(iface core.InterfaceInfo, opts Options) (Channel, error) {
	opts = opts.withDefaults()

	logger := log.GetLogger().WithFields(map[string]interface{}{
		"interface": iface.Name,
		"backend":   opts.Backend,
		"snap_len":  opts.SnapLen,
	})

	var (
		ch  Channel
		err error
	)
	switch opts.Backend {
	case config.BackendAFPacket:
		ch, err = openAFPacket(iface, opts)
	case config.BackendPcap:
		ch, err = openPcap(iface, opts)
	case config.BackendFile:
		ch, err = openFile(opts)
	default:
		err = fmt.Errorf("%w: %q", core.ErrBackendUnsupported, opts.Backend)
	}
	if err != nil {
		name := iface.Name
		if opts.Backend == config.BackendFile {
			name = opts.FilePath
		}
		logger.WithError(err).Debug("capture channel open failed")
		return nil, &OpenError{Interface: name, Backend: opts.Backend, Err: err}
	}

	logger.Info("capture channel opened")
	return ch, nil
}

// IsTimeout reports whether err is a poll timeout with no frame.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrReadTimeout)
}

// IsTransient reports whether a failed read may be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientRead)
}

func transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransientRead, err)
}
