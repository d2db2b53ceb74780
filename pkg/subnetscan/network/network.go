// Package network provides /24 prefix parsing and host enumeration.
package network

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// HostsPerPrefix is the number of usable host addresses in a /24
// (network .0 and broadcast .255 excluded).
const HostsPerPrefix = 254

// ErrInvalidPrefix is returned when a prefix is not three dot-separated octets.
var ErrInvalidPrefix = errors.New("invalid subnet prefix")

// ParsePrefix validates a three-octet prefix such as "192.168.1" and returns
// it in canonical form (no leading zeros, no surrounding spaces).
func ParsePrefix(prefix string) (string, error) {
	parts := strings.Split(strings.TrimSpace(prefix), ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	octets := make([]string, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 255 {
			return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
		}
		octets[i] = strconv.Itoa(v)
	}
	return strings.Join(octets, "."), nil
}

// EnumeratePrefix returns prefix.1 through prefix.254 in ascending order.
func EnumeratePrefix(prefix string) ([]net.IP, error) {
	p, err := ParsePrefix(prefix)
	if err != nil {
		return nil, err
	}
	base := net.ParseIP(p + ".0").To4()
	network := ipToUint32(base)
	res := make([]net.IP, 0, HostsPerPrefix)
	for u := network + 1; u < network+255; u++ {
		res = append(res, uint32ToIP(u))
	}
	return res, nil
}

// EnumeratePrefixStrings returns the host addresses of a prefix as strings.
func EnumeratePrefixStrings(prefix string) ([]string, error) {
	ips, err := EnumeratePrefix(prefix)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(ips))
	for i, ip := range ips {
		result[i] = ip.String()
	}
	return result, nil
}

// PrefixOf drops the last octet of an IPv4 address: "10.0.0.7" -> "10.0.0".
func PrefixOf(address string) (string, error) {
	ip := net.ParseIP(strings.TrimSpace(address)).To4()
	if ip == nil {
		return "", fmt.Errorf("%w: not an IPv4 address: %q", ErrInvalidPrefix, address)
	}
	return fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2]), nil
}

// LastOctet returns the numeric value of the fourth octet of an IPv4 address,
// or -1 if address is not IPv4.
func LastOctet(address string) int {
	ip := net.ParseIP(address).To4()
	if ip == nil {
		return -1
	}
	return int(ip[3])
}

// IsPrivateIP checks if an IP address is in private (RFC 1918) address space.
func IsPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 10 || // 10.0.0.0/8
			(ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31) || // 172.16.0.0/12
			(ip4[0] == 192 && ip4[1] == 168) // 192.168.0.0/16
	}
	return false
}

func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func uint32ToIP(u uint32) net.IP {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}
