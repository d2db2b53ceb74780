// Package subnetscan: Debug logging support.
package subnetscan

import (
	"sync"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/dns"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/oui"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

// DebugLevel represents the verbosity level for debug logging.
type DebugLevel int

const (
	// DebugOff disables all debug logging.
	DebugOff DebugLevel = iota
	// DebugBasic logs scan-level operations (start/complete/timeouts).
	DebugBasic
	// DebugVerbose additionally logs every probe and lookup.
	DebugVerbose
)

// Component identifies the part of the scanner that produced a log message.
type Component string

const (
	ComponentScan  Component = "scan"
	ComponentProbe Component = "probe"
	ComponentReach Component = "reach"
	ComponentDNS   Component = "dns"
	ComponentOUI   Component = "oui"
)

// DebugLogger is a callback function for debug logging.
type DebugLogger func(component Component, format string, args ...interface{})

var (
	debugLogger DebugLogger
	debugLevel  DebugLevel
	debugMu     sync.RWMutex
)

func init() {
	reach.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentReach, format, args...)
	}
	dns.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentDNS, format, args...)
	}
	oui.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(ComponentOUI, format, args...)
	}
}

// SetDebugLogger sets a custom debug logger callback.
// Pass nil to disable debug logging.
func SetDebugLogger(logger DebugLogger) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLogger = logger
}

// SetDebugLevel sets the debug verbosity level.
func SetDebugLevel(level DebugLevel) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLevel = level
}

// GetDebugLevel returns the current debug level.
func GetDebugLevel() DebugLevel {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugLevel
}

func debugLog(component Component, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugBasic {
		logger(component, format, args...)
	}
}

func debugLogVerbose(component Component, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugVerbose {
		logger(component, format, args...)
	}
}
