// Package reach provides single-shot host reachability checks.
//
// Every method sits behind the Checker interface so callers never branch on
// the platform or the probing primitive. A check sends exactly one probe and
// waits at most Timeout for the answer.
//
// Methods:
//   - icmp: one ICMP echo request (unprivileged datagram socket, raw socket fallback)
//   - tcp:  one TCP connect to a single port (a refused connection still proves the host is up)
//   - arp:  one ARP who-has on the local segment, also yields the MAC address
package reach

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout is the bound applied to a single reachability probe.
const DefaultTimeout = 500 * time.Millisecond

// DefaultTCPPort is probed by the tcp method when no port is configured.
const DefaultTCPPort = 80

// Method identifies a reachability probing primitive.
type Method string

const (
	MethodICMP Method = "icmp"
	MethodTCP  Method = "tcp"
	MethodARP  Method = "arp"
)

// Errors
var (
	// ErrInvalidIP is returned when an address is not a valid IPv4 address.
	ErrInvalidIP = errors.New("invalid IPv4 address")
	// ErrNotSupported is returned when a method is unavailable on this platform.
	ErrNotSupported = errors.New("reachability method not supported on this platform")
	// ErrUnknownMethod is returned by New for an unrecognised method name.
	ErrUnknownMethod = errors.New("unknown reachability method")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from reachability checks.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Result contains the outcome of one reachability check.
type Result struct {
	IP         string
	IsUp       bool
	RTT        time.Duration
	MACAddress string // only set by the arp method
	Method     Method
	Error      error
}

// Checker performs a single reachability probe against one address.
// Implementations must honour ctx and their own timeout, whichever is sooner.
type Checker interface {
	Check(ctx context.Context, ip string) (*Result, error)
}

// Options selects and tunes a Checker.
type Options struct {
	Method  Method
	Timeout time.Duration
	// Port is used by the tcp method.
	Port int
	// Privileged makes the icmp method open a raw socket directly instead of
	// trying an unprivileged datagram socket first.
	Privileged bool
}

// ParseMethod converts a configuration string into a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodICMP, MethodTCP, MethodARP:
		return m, nil
	case "":
		return MethodICMP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// New builds the Checker described by opts.
func New(opts Options) (Checker, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	switch opts.Method {
	case MethodICMP, "":
		return &ICMPChecker{Timeout: timeout, Privileged: opts.Privileged}, nil
	case MethodTCP:
		port := opts.Port
		if port <= 0 {
			port = DefaultTCPPort
		}
		return &TCPChecker{Port: port, Timeout: timeout}, nil
	case MethodARP:
		if !ARPSupported() {
			return nil, ErrNotSupported
		}
		return NewARPChecker(timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, opts.Method)
	}
}

func parseIPv4(ip string) (net.IP, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, ErrInvalidIP
	}
	ip4 := parsed.To4()
	if ip4 == nil {
		return nil, ErrInvalidIP
	}
	return ip4, nil
}

// probeDeadline returns the earlier of now+timeout and the context deadline.
func probeDeadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}
