package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/marcuoli/go-subnetscan/internal/config"
	"github.com/marcuoli/go-subnetscan/internal/web"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/network"
	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/reach"
)

// Options holds the command line. Zero values leave the environment
// configuration untouched.
type Options struct {
	EnvFile string
	Serve   bool
	Listen  string

	Subnet string
	All    bool
	JSON   bool

	Workers        int
	Method         string
	Port           int
	Privileged     bool
	ReachTimeout   time.Duration
	ResolveTimeout time.Duration
	CollectTimeout time.Duration
	DNSServer      string
	NameCacheTTL   time.Duration
	OUIDatabase    string

	Verbose bool
	Debug   bool
	NoColor bool
	Version bool
}

func parseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`subnetscan finds live hosts on a /24 and resolves their names`)

	flagSet.CreateGroup("mode", "Mode",
		flagSet.BoolVarP(&options.Serve, "serve", "s", false, "serve the web UI instead of scanning once"),
		flagSet.StringVarP(&options.Listen, "listen", "l", "", "web UI listen address (default :8080)"),
		flagSet.StringVarP(&options.EnvFile, "env-file", "ef", "", "load settings from this env file instead of ./.env"),
	)

	flagSet.CreateGroup("target", "Target",
		flagSet.StringVarP(&options.Subnet, "subnet", "n", "", "three-octet prefix to scan (e.g. 192.168.1)"),
		flagSet.BoolVarP(&options.All, "all", "a", false, "list inactive hosts too"),
		flagSet.BoolVar(&options.JSON, "json", false, "print the report as JSON"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.Workers, "workers", "w", 0, "number of concurrent probes (1-254)"),
		flagSet.StringVarP(&options.Method, "method", "m", "", "reachability method (icmp, tcp, arp)"),
		flagSet.IntVarP(&options.Port, "port", "p", 0, "port for the tcp method"),
		flagSet.BoolVar(&options.Privileged, "privileged", false, "use raw ICMP sockets"),
		flagSet.DurationVarP(&options.ReachTimeout, "reach-timeout", "rt", 0, "reachability probe timeout"),
		flagSet.DurationVarP(&options.CollectTimeout, "collect-timeout", "ct", 0, "per-host result timeout"),
	)

	flagSet.CreateGroup("names", "Names",
		flagSet.DurationVarP(&options.ResolveTimeout, "resolve-timeout", "dt", 0, "reverse lookup timeout"),
		flagSet.StringVarP(&options.DNSServer, "dns-server", "ds", "", "send PTR queries to this server"),
		flagSet.DurationVar(&options.NameCacheTTL, "name-cache-ttl", 0, "cache resolved names for this long"),
		flagSet.StringVar(&options.OUIDatabase, "oui", "", "IEEE oui.txt for MAC vendor names"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show scanner debug output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring"),
		flagSet.BoolVar(&options.Version, "version", false, "show version and exit"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	configureLogging(options)
	return options
}

func configureLogging(options *Options) {
	switch {
	case options.Verbose:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
		subnetscan.SetDebugLevel(subnetscan.DebugVerbose)
	case options.Debug:
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
		subnetscan.SetDebugLevel(subnetscan.DebugBasic)
	}
	subnetscan.SetDebugLogger(func(component subnetscan.Component, format string, args ...interface{}) {
		gologger.Debug().Msgf(subnetscan.ComponentToPrefix(component)+" "+format, args...)
	})
}

// loadConfig merges the environment with command-line overrides.
func loadConfig(options *Options) (*config.Config, error) {
	var files []string
	if options.EnvFile != "" {
		files = append(files, options.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	if options.Listen != "" {
		cfg.ListenAddr = options.Listen
	}
	if options.Workers != 0 {
		cfg.Scan.Workers = options.Workers
	}
	if options.Method != "" {
		method, err := reach.ParseMethod(options.Method)
		if err != nil {
			return nil, err
		}
		cfg.Scan.ReachMethod = method
	}
	if options.Port != 0 {
		cfg.Scan.TCPPort = options.Port
	}
	if options.Privileged {
		cfg.Scan.Privileged = true
	}
	if options.ReachTimeout != 0 {
		cfg.Scan.ReachTimeout = options.ReachTimeout
	}
	if options.ResolveTimeout != 0 {
		cfg.Scan.ResolveTimeout = options.ResolveTimeout
	}
	if options.CollectTimeout != 0 {
		cfg.Scan.CollectTimeout = options.CollectTimeout
	}
	if options.DNSServer != "" {
		cfg.Scan.DNSServer = options.DNSServer
	}
	if options.NameCacheTTL != 0 {
		cfg.Scan.NameCacheTTL = options.NameCacheTTL
	}
	if options.OUIDatabase != "" {
		cfg.Scan.OUIDatabase = options.OUIDatabase
	}
	return cfg, cfg.Validate()
}

func main() {
	options := parseOptions()
	if options.Version {
		fmt.Println(subnetscan.VersionInfo())
		return
	}

	cfg, err := loadConfig(options)
	if err != nil {
		gologger.Fatal().Msgf("invalid configuration: %v", err)
	}

	scanner, err := subnetscan.New(cfg.Scan)
	if err != nil {
		gologger.Fatal().Msgf("could not create scanner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if options.Serve {
		serve(ctx, cfg, scanner)
		return
	}

	subnet := cfg.DefaultSubnet()
	if options.Subnet != "" {
		prefix, err := network.ParsePrefix(options.Subnet)
		if err != nil {
			gologger.Fatal().Msgf("%v", err)
		}
		var found bool
		if subnet, found = cfg.Subnets.Find(prefix); !found {
			subnet = subnetscan.SubnetSpec{Name: prefix, Prefix: prefix}
		}
	}
	if !subnet.IsPrivate() {
		gologger.Warning().Msgf("%s.0/24 is not a private range", subnet.Prefix)
	}

	if options.Verbose {
		scanner.Options.Progress = func(done, total int) {
			if done%50 == 0 || done == total {
				gologger.Verbose().Msgf("%s %d/%d hosts", subnetscan.LogPrefixScan, done, total)
			}
		}
	}

	gologger.Info().Msgf("Scanning %s (%s.1-%s.254) from %s with %s",
		subnet.Name, subnet.Prefix, subnet.Prefix, subnetscan.DetectLocalAddress(), cfg.Scan.ReachMethod)

	report, err := scanner.Scan(ctx, subnet.Prefix)
	if err != nil {
		gologger.Fatal().Msgf("scan failed: %v", err)
	}

	if options.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			gologger.Fatal().Msgf("could not encode report: %v", err)
		}
		return
	}
	printReport(report, options)
}

func printReport(report *subnetscan.ScanReport, options *Options) {
	au := aurora.New(aurora.WithColors(!options.NoColor))

	for _, e := range report.Entries {
		if !e.Reachable && !options.All {
			continue
		}
		status := au.Red(fmt.Sprintf("%-8s", "inactive"))
		if e.Reachable {
			status = au.Green(fmt.Sprintf("%-8s", "active"))
		}
		line := fmt.Sprintf("%-15s %s %s", e.Address, status, e.DisplayName)
		if e.MAC != "" {
			line += fmt.Sprintf(" [%s", e.MAC)
			if e.Vendor != "" {
				line += " " + e.Vendor
			}
			line += "]"
		}
		fmt.Println(line)
	}

	gologger.Info().Msgf("%s: %d active, %d inactive in %.2fs",
		report.Prefix, report.ActiveCount, report.InactiveCount, report.ElapsedSeconds())
}

func serve(ctx context.Context, cfg *config.Config, scanner *subnetscan.Scanner) {
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.NewServer(scanner, cfg.Subnets),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		gologger.Info().Msgf("%s listening on %s", subnetscan.VersionInfo(), cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			gologger.Fatal().Msgf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	gologger.Info().Msgf("Received shutdown signal, stopping web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		gologger.Warning().Msgf("HTTP server shutdown failed: %v", err)
	}
}
