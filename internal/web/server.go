// Package web serves the scan page, a JSON scan endpoint and a health check.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/projectdiscovery/gologger"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan"
)

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"delay": func(index int) string {
		return time.Duration(index*15*int(time.Millisecond)).String()
	},
}).Parse(indexHTML))

// Scanner runs one complete scan of a /24 prefix.
type Scanner interface {
	Scan(ctx context.Context, prefix string) (*subnetscan.ScanReport, error)
}

// Server renders scan results. Every page load runs a fresh scan.
type Server struct {
	scanner Scanner
	subnets subnetscan.SubnetList
	router  *mux.Router

	// LocalAddr reports the host's own address; it also picks the subnet
	// when no subnets are configured.
	LocalAddr func() string
}

// NewServer wires the routes. subnets may be empty.
func NewServer(scanner Scanner, subnets subnetscan.SubnetList) *Server {
	s := &Server{
		scanner:   scanner,
		subnets:   subnets,
		router:    mux.NewRouter(),
		LocalAddr: subnetscan.DetectLocalAddress,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(loggingMiddleware)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scan", s.handleScan).Methods(http.MethodGet)
	api.HandleFunc("/subnets", s.handleSubnets).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Entry is one row of the results table. Index is the row's position and
// drives the staggered row animation.
type Entry struct {
	Index       int    `json:"index"`
	Address     string `json:"address"`
	Reachable   bool   `json:"reachable"`
	DisplayName string `json:"display_name"`
	MAC         string `json:"mac,omitempty"`
	Vendor      string `json:"vendor,omitempty"`
}

// ScanView is the data behind both the HTML page and /api/scan.
type ScanView struct {
	LocalIP        string                `json:"local_ip"`
	Subnet         subnetscan.SubnetSpec `json:"subnet"`
	Subnets        subnetscan.SubnetList `json:"subnets,omitempty"`
	Entries        []Entry               `json:"entries"`
	ActiveCount    int                   `json:"active_count"`
	InactiveCount  int                   `json:"inactive_count"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Version        string                `json:"version"`
}

// selectSubnet resolves the requested prefix against the configured list,
// falling back to its first entry, or to the local /24 when the list is empty.
func (s *Server) selectSubnet(requested, localIP string) subnetscan.SubnetSpec {
	if len(s.subnets) > 0 {
		spec, _ := s.subnets.Find(requested)
		return spec
	}
	prefix, err := subnetscan.PrefixOf(localIP)
	if err != nil {
		prefix, _ = subnetscan.PrefixOf(subnetscan.LoopbackAddress)
	}
	return subnetscan.SubnetSpec{Name: "Local network", Prefix: prefix}
}

func (s *Server) scan(ctx context.Context, requested string) (*ScanView, error) {
	localIP := s.LocalAddr()
	subnet := s.selectSubnet(requested, localIP)

	report, err := s.scanner.Scan(ctx, subnet.Prefix)
	if err != nil {
		return nil, err
	}

	view := &ScanView{
		LocalIP:        localIP,
		Subnet:         subnet,
		Subnets:        s.subnets,
		Entries:        make([]Entry, len(report.Entries)),
		ActiveCount:    report.ActiveCount,
		InactiveCount:  report.InactiveCount,
		ElapsedSeconds: roundSeconds(report.Elapsed),
		Version:        subnetscan.Version,
	}
	for i, e := range report.Entries {
		view.Entries[i] = Entry{
			Index:       i,
			Address:     e.Address,
			Reachable:   e.Reachable,
			DisplayName: e.DisplayName,
			MAC:         e.MAC,
			Vendor:      e.Vendor,
		}
	}
	return view, nil
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	view, err := s.scan(r.Context(), r.PostFormValue("subnet"))
	if err != nil {
		gologger.Error().Msgf("%s scan failed: %v", subnetscan.LogPrefixWeb, err)
		http.Error(w, "Scan failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, view); err != nil {
		gologger.Error().Msgf("%s render failed: %v", subnetscan.LogPrefixWeb, err)
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	view, err := s.scan(r.Context(), r.URL.Query().Get("subnet"))
	if err != nil {
		gologger.Error().Msgf("%s scan failed: %v", subnetscan.LogPrefixWeb, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubnets(w http.ResponseWriter, r *http.Request) {
	list := s.subnets
	if len(list) == 0 {
		list = subnetscan.SubnetList{s.selectSubnet("", s.LocalAddr())}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": subnetscan.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		gologger.Warning().Msgf("%s encode response: %v", subnetscan.LogPrefixWeb, err)
	}
}
