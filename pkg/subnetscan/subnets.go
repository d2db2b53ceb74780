// Package subnetscan: static subnet configuration and local address detection.
package subnetscan

import (
	"fmt"
	"net"
	"strings"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/network"
)

// LoopbackAddress is returned by DetectLocalAddress when detection fails.
const LoopbackAddress = "127.0.0.1"

// probeTarget is never contacted: connecting a UDP socket only selects a route.
const probeTarget = "10.255.255.255:1"

// SubnetSpec names a scannable /24 prefix.
type SubnetSpec struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// SubnetList is the static, read-only list of selectable subnets.
type SubnetList []SubnetSpec

// Find returns the entry for prefix. When the prefix is not listed it falls
// back to the first entry and reports found=false; an empty list yields the
// zero SubnetSpec.
func (l SubnetList) Find(prefix string) (spec SubnetSpec, found bool) {
	if canonical, err := network.ParsePrefix(prefix); err == nil {
		for _, s := range l {
			if s.Prefix == canonical {
				return s, true
			}
		}
	}
	if len(l) == 0 {
		return SubnetSpec{}, false
	}
	return l[0], false
}

// IsPrivate reports whether the prefix lies in RFC 1918 space.
func (s SubnetSpec) IsPrivate() bool {
	return network.IsPrivateIP(net.ParseIP(s.Prefix + ".0"))
}

// ParseSubnetList parses "Name=prefix;Name=prefix". A bare prefix is named
// after itself. Empty input yields an empty list.
func ParseSubnetList(s string) (SubnetList, error) {
	var list SubnetList
	seen := make(map[string]struct{})
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, prefix, ok := strings.Cut(item, "=")
		if !ok {
			prefix = name
		}
		canonical, err := network.ParsePrefix(prefix)
		if err != nil {
			return nil, fmt.Errorf("subnet %q: %w", item, err)
		}
		name = strings.TrimSpace(name)
		if name == "" || !ok {
			name = canonical
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		list = append(list, SubnetSpec{Name: name, Prefix: canonical})
	}
	return list, nil
}

// DetectLocalAddress returns the IPv4 address of the interface that routes
// to private space, or LoopbackAddress if that cannot be determined. No
// packet is sent.
func DetectLocalAddress() string {
	conn, err := net.Dial("udp4", probeTarget)
	if err != nil {
		return LoopbackAddress
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil || addr.IP.IsUnspecified() {
		return LoopbackAddress
	}
	return addr.IP.String()
}

// PrefixOf drops the last octet of an IPv4 address.
func PrefixOf(address string) (string, error) {
	return network.PrefixOf(address)
}

// LocalSubnet describes the /24 of the detected local address.
func LocalSubnet() SubnetSpec {
	prefix, err := PrefixOf(DetectLocalAddress())
	if err != nil {
		prefix = "127.0.0"
	}
	return SubnetSpec{Name: "Local network", Prefix: prefix}
}
