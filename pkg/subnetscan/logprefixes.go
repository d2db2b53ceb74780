// Package subnetscan: Log prefix constants for consistent log tagging.
package subnetscan

// Log prefix constants. Format follows [Component] or [Component:Subcomponent].
const (
	LogPrefixScan  = "[Scan]"
	LogPrefixProbe = "[Scan:Probe]"
	LogPrefixReach = "[Scan:Reach]"
	LogPrefixDNS   = "[Scan:DNS]"
	LogPrefixOUI   = "[Scan:OUI]"
	LogPrefixWeb   = "[Web]"
)

// ComponentToPrefix returns the log prefix for a component, for use inside
// a DebugLogger callback.
func ComponentToPrefix(component Component) string {
	switch component {
	case ComponentProbe:
		return LogPrefixProbe
	case ComponentReach:
		return LogPrefixReach
	case ComponentDNS:
		return LogPrefixDNS
	case ComponentOUI:
		return LogPrefixOUI
	default:
		return LogPrefixScan
	}
}
