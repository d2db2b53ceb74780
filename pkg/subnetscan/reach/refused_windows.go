//go:build windows

package reach

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// isConnRefused reports whether a dial failed because the peer sent a reset.
// Winsock reports WSAECONNREFUSED rather than the POSIX errno.
func isConnRefused(err error) bool {
	return errors.Is(err, windows.WSAECONNREFUSED) || errors.Is(err, syscall.ECONNREFUSED)
}
