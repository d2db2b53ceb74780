// Package subnetscan: per-address probing.
package subnetscan

import (
	"context"
	"sync"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/dns"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/oui"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

// Prober checks one address for liveness and identity. It holds no mutable
// state and is safe for concurrent use.
type Prober struct {
	Checker  reach.Checker
	Resolver dns.Resolver
	// Vendors is optional; when set, MACs reported by the checker are mapped
	// to a manufacturer.
	Vendors *oui.DB
}

// NewProber creates a Prober from a reachability checker and a resolver.
func NewProber(checker reach.Checker, resolver dns.Resolver) *Prober {
	return &Prober{Checker: checker, Resolver: resolver}
}

// Probe runs the reachability check and the reverse lookup for address
// concurrently and waits for both. It never fails: a failed check yields
// Reachable=false and a failed lookup yields NameUnresolved, independently of
// each other.
func (p *Prober) Probe(ctx context.Context, address string) HostRecord {
	var (
		wg        sync.WaitGroup
		reachable bool
		mac       string
		name      string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		reachable, mac = p.checkReachable(ctx, address)
	}()
	go func() {
		defer wg.Done()
		name = p.resolveName(ctx, address)
	}()
	wg.Wait()

	rec := HostRecord{
		Address:     address,
		Reachable:   reachable,
		DisplayName: name,
		MAC:         mac,
	}
	if mac != "" && p.Vendors != nil {
		rec.Vendor = p.Vendors.LookupName(mac)
	}

	debugLogVerbose(ComponentProbe, "%s: reachable=%v name=%s", address, rec.Reachable, rec.DisplayName)
	return rec
}

func (p *Prober) checkReachable(ctx context.Context, address string) (up bool, mac string) {
	defer func() {
		if r := recover(); r != nil {
			debugLog(ComponentProbe, "%s: reachability check panicked: %v", address, r)
			up, mac = false, ""
		}
	}()

	if p.Checker == nil {
		return false, ""
	}
	res, err := p.Checker.Check(ctx, address)
	if err != nil || res == nil || !res.IsUp {
		return false, ""
	}
	return true, res.MACAddress
}

func (p *Prober) resolveName(ctx context.Context, address string) (name string) {
	defer func() {
		if r := recover(); r != nil {
			debugLog(ComponentProbe, "%s: reverse lookup panicked: %v", address, r)
			name = NameUnresolved
		}
	}()

	if p.Resolver == nil {
		return NameUnresolved
	}
	res, err := p.Resolver.LookupAddr(ctx, address)
	if err != nil || res == nil {
		return NameUnresolved
	}
	if short := dns.ShortName(res.Hostname); short != "" {
		return short
	}
	return NameUnresolved
}
