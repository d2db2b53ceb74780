package reach

import (
	"context"
	"net"
	"strconv"
	"time"
)

// TCPChecker attempts one TCP connection to a single port. It needs no
// privileges. A refused connection means the host answered with a reset and
// is therefore considered up.
type TCPChecker struct {
	Port    int
	Timeout time.Duration
}

// NewTCPChecker creates a TCP checker with defaults.
func NewTCPChecker() *TCPChecker {
	return &TCPChecker{Port: DefaultTCPPort, Timeout: DefaultTimeout}
}

// Check implements Checker.
func (c *TCPChecker) Check(ctx context.Context, ip string) (*Result, error) {
	res := &Result{IP: ip, Method: MethodTCP}

	if _, err := parseIPv4(ip); err != nil {
		res.Error = err
		return res, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	port := c.Port
	if port <= 0 {
		port = DefaultTCPPort
	}

	d := net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err == nil {
		conn.Close()
		res.IsUp = true
		res.RTT = time.Since(start)
		return res, nil
	}
	if isConnRefused(err) {
		res.IsUp = true
		res.RTT = time.Since(start)
		debugLog("%s: port %d refused, host is up", ip, port)
		return res, nil
	}

	res.Error = err
	debugLog("%s: dial failed: %v", ip, err)
	return res, err
}
