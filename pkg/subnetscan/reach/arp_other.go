//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package reach

import (
	"context"
	"time"
)

// ARPChecker is a stub on platforms without arping support.
type ARPChecker struct {
	timeout time.Duration
}

// NewARPChecker creates an ARP checker stub.
func NewARPChecker(timeout time.Duration) *ARPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ARPChecker{timeout: timeout}
}

// Timeout returns the per-request timeout.
func (a *ARPChecker) Timeout() time.Duration {
	return a.timeout
}

// Check always fails with ErrNotSupported.
func (a *ARPChecker) Check(ctx context.Context, ip string) (*Result, error) {
	return &Result{IP: ip, Method: MethodARP, Error: ErrNotSupported}, ErrNotSupported
}

// ARPSupported reports whether the arp method is available on this platform.
func ARPSupported() bool {
	return false
}
