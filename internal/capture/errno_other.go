//go:build !unix

package capture

func isTransientErrno(error) bool { return false }
