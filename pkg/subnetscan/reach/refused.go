//go:build !windows

package reach

import (
	"errors"
	"syscall"
)

// isConnRefused reports whether a dial failed because the peer sent a reset.
func isConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
