// Package dns provides reverse DNS (PTR) lookup utilities.
//
// Lookups go either through the operating system resolver or, when Server is
// set, straight to that DNS server as a single PTR query built with miekg/dns.
package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// DefaultTimeout is the default timeout for a reverse lookup.
const DefaultTimeout = 1 * time.Second

// ErrNoName is returned when a lookup completes without yielding a hostname.
var ErrNoName = errors.New("no PTR record")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from DNS operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Result contains the result of a reverse DNS lookup.
type Result struct {
	IP       string
	Hostname string   // Primary hostname (first result)
	All      []string // All returned hostnames
	Cached   bool
	Error    error
}

// Resolver maps an address back to its host names.
type Resolver interface {
	LookupAddr(ctx context.Context, ip string) (*Result, error)
}

// Discovery performs reverse DNS lookups.
type Discovery struct {
	Timeout time.Duration
	// Server, when set ("192.168.1.1" or "192.168.1.1:53"), receives the PTR
	// query directly instead of the system resolver.
	Server string
}

// NewDiscovery creates a new DNS discovery helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout}
}

// LookupAddr performs a reverse DNS (PTR) lookup for the given IP address.
func (d *Discovery) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	res := &Result{IP: ip}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		names []string
		err   error
	)
	if d.Server != "" {
		names, err = d.queryPTR(lookupCtx, ip, timeout)
	} else {
		resolver := &net.Resolver{}
		names, err = resolver.LookupAddr(lookupCtx, ip)
	}
	if err != nil {
		res.Error = err
		debugLog("%s: lookup failed: %v", ip, err)
		return res, err
	}

	// Clean up trailing dots from DNS names
	clean := names[:0]
	for _, name := range names {
		if name = strings.TrimSuffix(name, "."); name != "" {
			clean = append(clean, name)
		}
	}
	if len(clean) == 0 {
		res.Error = ErrNoName
		debugLog("%s: empty answer", ip)
		return res, ErrNoName
	}

	res.All = clean
	res.Hostname = clean[0]
	debugLog("%s -> %s", ip, res.Hostname)
	return res, nil
}

// queryPTR sends one PTR query for ip to d.Server.
func (d *Discovery) queryPTR(ctx context.Context, ip string, timeout time.Duration) ([]string, error) {
	reverseName, err := mdns.ReverseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("reverse name: %w", err)
	}

	msg := new(mdns.Msg)
	msg.SetQuestion(reverseName, mdns.TypePTR)
	msg.RecursionDesired = true

	client := &mdns.Client{Net: "udp", Timeout: timeout}
	resp, _, err := client.ExchangeContext(ctx, msg, serverAddr(d.Server))
	if err != nil {
		return nil, err
	}
	if resp.Rcode != mdns.RcodeSuccess {
		return nil, fmt.Errorf("%w: %s", ErrNoName, mdns.RcodeToString[resp.Rcode])
	}

	var names []string
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*mdns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	return names, nil
}

func serverAddr(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// ShortName returns the label before the first dot: "nas.home.lan" -> "nas".
func ShortName(hostname string) string {
	hostname = strings.TrimSuffix(strings.TrimSpace(hostname), ".")
	if i := strings.IndexByte(hostname, '.'); i >= 0 {
		return hostname[:i]
	}
	return hostname
}
