// Package config loads scanner settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	envutil "github.com/projectdiscovery/utils/env"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/network"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

// Environment variable names.
const (
	EnvListen         = "SUBNETSCAN_LISTEN"
	EnvSubnets        = "SUBNETSCAN_SUBNETS"
	EnvWorkers        = "SUBNETSCAN_WORKERS"
	EnvReachMethod    = "SUBNETSCAN_REACH_METHOD"
	EnvReachTimeout   = "SUBNETSCAN_REACH_TIMEOUT"
	EnvResolveTimeout = "SUBNETSCAN_RESOLVE_TIMEOUT"
	EnvCollectTimeout = "SUBNETSCAN_COLLECT_TIMEOUT"
	EnvDNSServer      = "SUBNETSCAN_DNS_SERVER"
	EnvTCPPort        = "SUBNETSCAN_TCP_PORT"
	EnvOUIDatabase    = "SUBNETSCAN_OUI_DB"
	EnvNameCacheTTL   = "SUBNETSCAN_NAME_CACHE_TTL"
	EnvPrivileged     = "SUBNETSCAN_PRIVILEGED"
)

// DefaultListenAddr is the web UI address when SUBNETSCAN_LISTEN is unset.
const DefaultListenAddr = ":8080"

var (
	ErrInvalidWorkers = errors.New("workers must be between 1 and 254")
	ErrInvalidTimeout = errors.New("timeout must be positive")
	ErrInvalidPort    = errors.New("port must be between 1 and 65535")
)

type Config struct {
	ListenAddr string
	// Subnets is the selectable list; empty means "scan the local /24".
	Subnets subnetscan.SubnetList
	Scan    subnetscan.Config
}

// Default returns a Config holding the documented defaults and no subnets.
func Default() *Config {
	return &Config{
		ListenAddr: DefaultListenAddr,
		Scan:       subnetscan.DefaultConfig(),
	}
}

// Load reads the given .env files (or ./.env when none are named) and then
// the SUBNETSCAN_* environment. A missing default .env is not an error; a
// malformed one is.
// Values already present in the environment win over .env entries.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()
	cfg.ListenAddr = envutil.GetEnvOrDefault(EnvListen, cfg.ListenAddr)

	subnets, err := subnetscan.ParseSubnetList(envutil.GetEnvOrDefault(EnvSubnets, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvSubnets, err)
	}
	cfg.Subnets = subnets

	if cfg.Scan.Workers, err = intEnv(EnvWorkers, cfg.Scan.Workers); err != nil {
		return nil, err
	}
	if cfg.Scan.TCPPort, err = intEnv(EnvTCPPort, cfg.Scan.TCPPort); err != nil {
		return nil, err
	}
	if cfg.Scan.ReachMethod, err = reach.ParseMethod(envutil.GetEnvOrDefault(EnvReachMethod, string(cfg.Scan.ReachMethod))); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvReachMethod, err)
	}
	if cfg.Scan.ReachTimeout, err = durationEnv(EnvReachTimeout, cfg.Scan.ReachTimeout); err != nil {
		return nil, err
	}
	if cfg.Scan.ResolveTimeout, err = durationEnv(EnvResolveTimeout, cfg.Scan.ResolveTimeout); err != nil {
		return nil, err
	}
	if cfg.Scan.CollectTimeout, err = durationEnv(EnvCollectTimeout, cfg.Scan.CollectTimeout); err != nil {
		return nil, err
	}
	if cfg.Scan.NameCacheTTL, err = durationEnv(EnvNameCacheTTL, cfg.Scan.NameCacheTTL); err != nil {
		return nil, err
	}
	if cfg.Scan.Privileged, err = boolEnv(EnvPrivileged, cfg.Scan.Privileged); err != nil {
		return nil, err
	}
	cfg.Scan.DNSServer = strings.TrimSpace(envutil.GetEnvOrDefault(EnvDNSServer, ""))
	cfg.Scan.OUIDatabase = strings.TrimSpace(envutil.GetEnvOrDefault(EnvOUIDatabase, ""))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Load calls it; callers that change fields
// afterwards (command-line overrides) should call it again.
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 || c.Scan.Workers > network.HostsPerPrefix {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Scan.Workers)
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"reach timeout", c.Scan.ReachTimeout},
		{"resolve timeout", c.Scan.ResolveTimeout},
		{"collect timeout", c.Scan.CollectTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s: %w", t.name, ErrInvalidTimeout)
		}
	}
	if c.Scan.NameCacheTTL < 0 {
		return fmt.Errorf("name cache ttl: %w", ErrInvalidTimeout)
	}
	if c.Scan.ReachMethod == reach.MethodTCP && (c.Scan.TCPPort < 1 || c.Scan.TCPPort > 65535) {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Scan.TCPPort)
	}
	if _, err := reach.ParseMethod(string(c.Scan.ReachMethod)); err != nil {
		return err
	}
	for _, s := range c.Subnets {
		if _, err := network.ParsePrefix(s.Prefix); err != nil {
			return fmt.Errorf("subnet %q: %w", s.Name, err)
		}
	}
	return nil
}

// DefaultSubnet is the subnet scanned when the user picks none: the first
// configured entry, or the local /24 when nothing is configured.
func (c *Config) DefaultSubnet() subnetscan.SubnetSpec {
	if len(c.Subnets) > 0 {
		return c.Subnets[0]
	}
	return subnetscan.LocalSubnet()
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(envutil.GetEnvOrDefault(key, ""))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

// durationEnv accepts Go durations ("750ms") or bare seconds ("2", "0.5").
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(envutil.GetEnvOrDefault(key, ""))
	if raw == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a duration", key, raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(envutil.GetEnvOrDefault(key, ""))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
