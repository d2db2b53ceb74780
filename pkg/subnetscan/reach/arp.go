//go:build linux || darwin || freebsd || netbsd || openbsd

package reach

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/j-keck/arping"
)

var (
	arpTimeoutMu sync.Mutex
	arpTimeout   time.Duration
)

// setARPTimeout forwards the timeout to arping, which only offers a
// package-level setting read without synchronization by Ping. It is called
// when a checker is built, never while a Check is in flight.
func setARPTimeout(d time.Duration) {
	arpTimeoutMu.Lock()
	defer arpTimeoutMu.Unlock()
	if arpTimeout != d {
		arping.SetTimeout(d)
		arpTimeout = d
	}
}

// ARPChecker sends one ARP request. It only works for hosts on the local
// segment and usually requires elevated privileges. arping's timeout is
// process-wide: the most recently built checker's timeout applies to all.
type ARPChecker struct {
	timeout time.Duration
}

// NewARPChecker creates an ARP checker; timeout <= 0 selects DefaultTimeout.
func NewARPChecker(timeout time.Duration) *ARPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	setARPTimeout(timeout)
	return &ARPChecker{timeout: timeout}
}

// Timeout returns the per-request timeout.
func (a *ARPChecker) Timeout() time.Duration {
	return a.timeout
}

// Check implements Checker.
func (a *ARPChecker) Check(ctx context.Context, ip string) (*Result, error) {
	res := &Result{IP: ip, Method: MethodARP}

	dst, err := parseIPv4(ip)
	if err != nil {
		res.Error = err
		return res, err
	}

	type arpResponse struct {
		mac net.HardwareAddr
		dur time.Duration
		err error
	}
	responseChan := make(chan arpResponse, 1)

	go func() {
		mac, dur, err := arping.Ping(dst)
		responseChan <- arpResponse{mac: mac, dur: dur, err: err}
	}()

	select {
	case <-ctx.Done():
		res.Error = ctx.Err()
		debugLog("%s: context cancelled", ip)
		return res, res.Error
	case resp := <-responseChan:
		res.RTT = resp.dur
		if resp.err != nil {
			res.Error = resp.err
			debugLog("%s: arp error: %v", ip, resp.err)
			return res, resp.err
		}
		res.MACAddress = resp.mac.String()
		res.IsUp = true
		debugLog("%s -> MAC: %s (%.2fms)", ip, res.MACAddress, float64(resp.dur.Microseconds())/1000)
		return res, nil
	}
}

// ARPSupported reports whether the arp method is available on this platform.
func ARPSupported() bool {
	return true
}
