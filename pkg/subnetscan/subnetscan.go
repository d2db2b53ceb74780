// Package subnetscan finds the live hosts of an IPv4 /24 and resolves their
// short hostnames.
//
// A Scanner enumerates prefix.1 through prefix.254, probes every address on a
// bounded worker pool and returns a ScanReport ordered by last octet. Each
// address is probed by a Prober, which runs one reachability check and one
// reverse lookup and folds every failure into the returned HostRecord.
//
// Reachability methods (see package reach):
//   - icmp: ICMP echo (default)
//   - tcp:  TCP connect to one port, no privileges needed
//   - arp:  ARP request on the local segment, also reports MAC and vendor
package subnetscan

import (
	"encoding/json"
	"time"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/dns"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/network"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

// Display name sentinels.
const (
	// NameUnresolved marks a host whose reverse lookup failed or timed out.
	NameUnresolved = "unresolved"
	// NameScanError marks a host whose probe did not complete (collection
	// timeout or internal failure).
	NameScanError = "scan error"
)

// Defaults. 50 workers finish a /24 in about six probe rounds; fewer workers
// lower socket pressure at the cost of scan latency.
const (
	DefaultWorkers        = 50
	DefaultReachTimeout   = reach.DefaultTimeout
	DefaultResolveTimeout = dns.DefaultTimeout
	DefaultCollectTimeout = 2 * time.Second
)

// HostsPerScan is the number of entries in every ScanReport.
const HostsPerScan = network.HostsPerPrefix

// ErrInvalidPrefix is returned by Scan for a malformed subnet prefix.
var ErrInvalidPrefix = network.ErrInvalidPrefix

// HostRecord is the outcome for a single address. It is never modified after
// a Prober or Scanner produces it.
type HostRecord struct {
	Address     string `json:"address"`
	Reachable   bool   `json:"reachable"`
	DisplayName string `json:"display_name"`
	MAC         string `json:"mac,omitempty"`
	Vendor      string `json:"vendor,omitempty"`
}

// LastOctet returns the fourth octet of the record's address.
func (h HostRecord) LastOctet() int {
	return network.LastOctet(h.Address)
}

// ScanReport is the complete result of one Scan.
type ScanReport struct {
	Prefix        string        `json:"prefix"`
	Entries       []HostRecord  `json:"entries"`
	ActiveCount   int           `json:"active_count"`
	InactiveCount int           `json:"inactive_count"`
	StartedAt     time.Time     `json:"started_at"`
	Elapsed       time.Duration `json:"-"`
}

// ElapsedSeconds returns the wall-clock scan duration in seconds.
func (r *ScanReport) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// MarshalJSON adds elapsed_seconds to the encoded report.
func (r ScanReport) MarshalJSON() ([]byte, error) {
	type report ScanReport
	return json.Marshal(struct {
		report
		ElapsedSeconds float64 `json:"elapsed_seconds"`
	}{report: report(r), ElapsedSeconds: r.Elapsed.Seconds()})
}
