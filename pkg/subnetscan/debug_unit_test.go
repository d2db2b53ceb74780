package subnetscan

import (
	"testing"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/dns"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

func TestDebugLog_Gating(t *testing.T) {
	oldLogger := debugLogger
	oldLevel := debugLevel
	defer func() {
		SetDebugLogger(oldLogger)
		SetDebugLevel(oldLevel)
	}()

	var calls []struct {
		component Component
		msg       string
	}

	SetDebugLogger(func(component Component, format string, args ...interface{}) {
		calls = append(calls, struct {
			component Component
			msg       string
		}{component: component, msg: format})
	})

	SetDebugLevel(DebugOff)
	debugLog(ComponentScan, "a")
	debugLogVerbose(ComponentProbe, "b")
	if len(calls) != 0 {
		t.Fatalf("expected 0 calls with DebugOff, got %d", len(calls))
	}

	SetDebugLevel(DebugBasic)
	debugLog(ComponentScan, "c")
	debugLogVerbose(ComponentProbe, "d")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call with DebugBasic, got %d", len(calls))
	}
	if calls[0].component != ComponentScan || calls[0].msg != "c" {
		t.Fatalf("unexpected call: %#v", calls[0])
	}

	SetDebugLevel(DebugVerbose)
	debugLogVerbose(ComponentProbe, "e")
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls with DebugVerbose, got %d", len(calls))
	}
	if GetDebugLevel() != DebugVerbose {
		t.Fatalf("expected GetDebugLevel()=%v, got %v", DebugVerbose, GetDebugLevel())
	}
}

func TestSubpackageLoggersAreWired(t *testing.T) {
	oldLogger := debugLogger
	oldLevel := debugLevel
	defer func() {
		SetDebugLogger(oldLogger)
		SetDebugLevel(oldLevel)
	}()

	var got []Component
	SetDebugLogger(func(component Component, format string, args ...interface{}) {
		got = append(got, component)
	})
	SetDebugLevel(DebugVerbose)

	reach.DebugLogger("probe %s", "x")
	dns.DebugLogger("lookup %s", "y")

	if len(got) != 2 || got[0] != ComponentReach || got[1] != ComponentDNS {
		t.Fatalf("unexpected components: %v", got)
	}
}

func TestComponentToPrefix(t *testing.T) {
	tests := map[Component]string{
		ComponentScan:  LogPrefixScan,
		ComponentProbe: LogPrefixProbe,
		ComponentReach: LogPrefixReach,
		ComponentDNS:   LogPrefixDNS,
		ComponentOUI:   LogPrefixOUI,
		"other":        LogPrefixScan,
	}
	for c, want := range tests {
		if got := ComponentToPrefix(c); got != want {
			t.Errorf("ComponentToPrefix(%q) = %q, want %q", c, got, want)
		}
	}
}

func TestVersionInfo(t *testing.T) {
	if VersionInfo() != "go-subnetscan v"+Version {
		t.Fatalf("unexpected version string %q", VersionInfo())
	}
}
