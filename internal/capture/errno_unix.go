//go:build unix

package capture

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isTransientErrno matches interrupted or momentarily starved reads.
func isTransientErrno(err error) bool {
	return errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.ENOBUFS)
}
