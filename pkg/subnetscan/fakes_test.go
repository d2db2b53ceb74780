package subnetscan

import (
	"context"
	"errors"
	"time"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/dns"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/network"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

var errSimulatedTimeout = errors.New("simulated probe timeout")

// fakeChecker reports the listed last octets as up and everything else as a
// timed-out probe.
type fakeChecker struct {
	up    map[int]bool
	mac   map[int]string
	delay time.Duration
}

func (f *fakeChecker) Check(ctx context.Context, ip string) (*reach.Result, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return &reach.Result{IP: ip, Error: ctx.Err()}, ctx.Err()
		}
	}
	octet := network.LastOctet(ip)
	if !f.up[octet] {
		return &reach.Result{IP: ip, Error: errSimulatedTimeout}, errSimulatedTimeout
	}
	return &reach.Result{IP: ip, IsUp: true, MACAddress: f.mac[octet]}, nil
}

// fakeResolver answers for the listed last octets and fails for the rest.
type fakeResolver struct {
	names map[int]string
}

func (f *fakeResolver) LookupAddr(ctx context.Context, ip string) (*dns.Result, error) {
	name, ok := f.names[network.LastOctet(ip)]
	if !ok {
		return &dns.Result{IP: ip, Error: dns.ErrNoName}, dns.ErrNoName
	}
	return &dns.Result{IP: ip, Hostname: name, All: []string{name}}, nil
}

type panicChecker struct{}

func (panicChecker) Check(ctx context.Context, ip string) (*reach.Result, error) {
	panic("checker exploded")
}

type panicResolver struct{}

func (panicResolver) LookupAddr(ctx context.Context, ip string) (*dns.Result, error) {
	panic("resolver exploded")
}

// hangingProber blocks on the listed octets until release is closed and
// panics on the octets in boom.
type hangingProber struct {
	inner   HostProber
	hang    map[int]bool
	boom    map[int]bool
	release chan struct{}
}

func (h *hangingProber) Probe(ctx context.Context, address string) HostRecord {
	octet := network.LastOctet(address)
	if h.hang[octet] {
		<-h.release
	}
	if h.boom[octet] {
		panic("probe exploded")
	}
	return h.inner.Probe(ctx, address)
}

// misaddressedProber returns records carrying the wrong address.
type misaddressedProber struct{}

func (misaddressedProber) Probe(ctx context.Context, address string) HostRecord {
	return HostRecord{Address: "0.0.0.0", Reachable: true, DisplayName: "ghost"}
}

type slowResolver struct {
	delay time.Duration
}

func (s *slowResolver) LookupAddr(ctx context.Context, ip string) (*dns.Result, error) {
	time.Sleep(s.delay)
	return &dns.Result{IP: ip, Hostname: "slow.lan", All: []string{"slow.lan"}}, nil
}
