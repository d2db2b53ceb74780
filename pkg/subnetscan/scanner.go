// Package subnetscan: subnet scanning.
package subnetscan

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/marcuoli/go-subnetscan/internal/scanner"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/dns"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/network"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/oui"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

// ErrNoProber is returned by Scan when the Scanner has no prober.
var ErrNoProber = errors.New("scanner has no prober")

// HostProber probes a single address. *Prober is the production implementation.
type HostProber interface {
	Probe(ctx context.Context, address string) HostRecord
}

// Options configures the worker pool of a Scanner.
type Options struct {
	// Workers is the number of addresses probed concurrently.
	Workers int
	// CollectTimeout bounds how long the Scanner waits for one probe once a
	// worker has started it.
	CollectTimeout time.Duration
	// Progress, if set, is called after each collected result.
	Progress func(done, total int)
}

// DefaultOptions returns the documented worker and timeout defaults.
func DefaultOptions() Options {
	return Options{
		Workers:        DefaultWorkers,
		CollectTimeout: DefaultCollectTimeout,
	}
}

// Scanner probes every host address of a /24 prefix.
type Scanner struct {
	Prober  HostProber
	Options Options
}

// NewScanner creates a Scanner with default options.
func NewScanner(prober HostProber) *Scanner {
	return &Scanner{Prober: prober, Options: DefaultOptions()}
}

// Config describes a fully wired Scanner.
type Config struct {
	Workers        int
	CollectTimeout time.Duration

	ReachMethod  reach.Method
	ReachTimeout time.Duration
	TCPPort      int
	Privileged   bool

	ResolveTimeout time.Duration
	// DNSServer sends PTR queries to this server instead of the system resolver.
	DNSServer string
	// NameCacheTTL enables a name cache across scans when positive.
	NameCacheTTL time.Duration

	// OUIDatabase is the path of an IEEE oui.txt used to name MAC vendors.
	OUIDatabase string
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        DefaultWorkers,
		CollectTimeout: DefaultCollectTimeout,
		ReachMethod:    reach.MethodICMP,
		ReachTimeout:   DefaultReachTimeout,
		TCPPort:        reach.DefaultTCPPort,
		ResolveTimeout: DefaultResolveTimeout,
	}
}

// New builds a Scanner, its Prober and their collaborators from cfg.
func New(cfg Config) (*Scanner, error) {
	checker, err := reach.New(reach.Options{
		Method:     cfg.ReachMethod,
		Timeout:    cfg.ReachTimeout,
		Port:       cfg.TCPPort,
		Privileged: cfg.Privileged,
	})
	if err != nil {
		return nil, fmt.Errorf("reachability checker: %w", err)
	}

	var resolver dns.Resolver = &dns.Discovery{Timeout: cfg.ResolveTimeout, Server: cfg.DNSServer}
	if cfg.NameCacheTTL > 0 {
		resolver = dns.NewCachedResolver(resolver, dns.DefaultCacheSize, cfg.NameCacheTTL)
	}

	prober := NewProber(checker, resolver)
	if cfg.OUIDatabase != "" {
		vendors, err := oui.Open(cfg.OUIDatabase)
		if err != nil {
			return nil, fmt.Errorf("vendor database: %w", err)
		}
		prober.Vendors = vendors
	}

	s := NewScanner(prober)
	if cfg.Workers > 0 {
		s.Options.Workers = cfg.Workers
	}
	if cfg.CollectTimeout > 0 {
		s.Options.CollectTimeout = cfg.CollectTimeout
	}
	return s, nil
}

// Scan probes prefix.1 through prefix.254 and returns a report with exactly
// one entry per address, sorted by last octet. Individual probe failures,
// panics and collection timeouts become unreachable entries; the only error
// returned is for an invalid prefix or a Scanner without a prober.
func (s *Scanner) Scan(ctx context.Context, prefix string) (*ScanReport, error) {
	if s.Prober == nil {
		return nil, ErrNoProber
	}
	canonical, err := network.ParsePrefix(prefix)
	if err != nil {
		return nil, err
	}
	addrs, err := network.EnumeratePrefixStrings(canonical)
	if err != nil {
		return nil, err
	}

	opts := s.Options
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.CollectTimeout <= 0 {
		opts.CollectTimeout = DefaultCollectTimeout
	}

	start := time.Now()
	debugLog(ComponentScan, "scanning %s.1-%s.254 with %d workers", canonical, canonical, opts.Workers)

	outcomes := scanner.Run[HostRecord](ctx, addrs, scanner.Options{
		Workers:        opts.Workers,
		CollectTimeout: opts.CollectTimeout,
		Progress:       opts.Progress,
	}, s.Prober.Probe)

	entries := make([]HostRecord, 0, len(outcomes))
	for _, o := range outcomes {
		rec := o.Value
		if o.Err != nil {
			debugLog(ComponentScan, "%s: %v after %v", o.Address, o.Err, o.Elapsed)
			rec = HostRecord{Address: o.Address, DisplayName: NameScanError}
		}
		rec.Address = o.Address
		entries = append(entries, rec)
	}
	SortByLastOctet(entries)

	report := newReport(canonical, entries, start)
	debugLog(ComponentScan, "%s: %d active, %d inactive in %.2fs",
		canonical, report.ActiveCount, report.InactiveCount, report.ElapsedSeconds())
	return report, nil
}

// SortByLastOctet orders records numerically by the fourth octet, so .9
// precedes .10.
func SortByLastOctet(entries []HostRecord) {
	slices.SortStableFunc(entries, func(a, b HostRecord) int {
		return cmp.Compare(a.LastOctet(), b.LastOctet())
	})
}

func newReport(prefix string, entries []HostRecord, start time.Time) *ScanReport {
	report := &ScanReport{
		Prefix:    prefix,
		Entries:   entries,
		StartedAt: start,
	}
	for _, e := range entries {
		if e.Reachable {
			report.ActiveCount++
		} else {
			report.InactiveCount++
		}
	}
	report.Elapsed = time.Since(start)
	return report
}
