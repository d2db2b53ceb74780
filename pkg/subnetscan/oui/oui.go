// Package oui provides MAC address vendor lookup using the IEEE OUI database.
// The database is a local copy of http://standards-oui.ieee.org/oui.txt; a
// lookup never touches the network.
package oui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/klauspost/oui"
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from OUI operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// ErrInvalidMAC is returned for strings that are not 48-bit MAC addresses.
var ErrInvalidMAC = errors.New("invalid MAC address format")

// VendorInfo contains information about a MAC address vendor.
type VendorInfo struct {
	Manufacturer string
	Address      []string
	Country      string
	Prefix       string
}

// DB resolves MAC prefixes to manufacturers. A nil *DB is valid and knows
// no vendors.
type DB struct {
	path string
	db   oui.OuiDB
}

// Open loads the OUI database file at path.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("OUI database file not found: %w", err)
	}
	debugLog("Loading OUI database from: %s", path)
	db, err := oui.OpenStaticFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OUI database: %w", err)
	}
	return &DB{path: path, db: db}, nil
}

// Path returns the file the database was loaded from.
func (d *DB) Path() string {
	if d == nil {
		return ""
	}
	return d.path
}

// Lookup looks up the vendor information for a MAC address.
// The MAC address can be in various formats: "00:11:22:33:44:55", "00-11-22-33-44-55", "001122334455".
// An unknown vendor yields (nil, nil).
func (d *DB) Lookup(mac string) (*VendorInfo, error) {
	normalized := NormalizeMAC(mac)
	if normalized == "" {
		return nil, ErrInvalidMAC
	}
	if d == nil || d.db == nil {
		return nil, nil
	}

	hwAddr, err := net.ParseMAC(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MAC address: %w", err)
	}

	entry, err := d.db.Query(hwAddr.String())
	if err != nil {
		if errors.Is(err, oui.ErrNotFound) {
			debugLog("%s: vendor not found in database", normalized)
			return nil, nil
		}
		return nil, fmt.Errorf("OUI lookup failed: %w", err)
	}

	vendor := &VendorInfo{
		Manufacturer: entry.Manufacturer,
		Prefix:       entry.Prefix.String(),
		Country:      entry.Country,
	}
	if len(entry.Address) > 0 {
		vendor.Address = entry.Address
	}

	debugLog("%s -> %s", normalized, vendor.Manufacturer)
	return vendor, nil
}

// LookupName returns just the manufacturer name, or "" when unknown.
func (d *DB) LookupName(mac string) string {
	vendor, err := d.Lookup(mac)
	if err != nil || vendor == nil {
		return ""
	}
	return vendor.Manufacturer
}

// NormalizeMAC normalizes various MAC address formats to standard format.
// Returns empty string if invalid.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(strings.TrimSpace(mac))
	mac = strings.ReplaceAll(mac, "-", "")
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, ".", "")

	if len(mac) != 12 {
		return ""
	}
	for _, c := range mac {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return ""
		}
	}

	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		mac[0:2], mac[2:4], mac[4:6], mac[6:8], mac[8:10], mac[10:12])
}
