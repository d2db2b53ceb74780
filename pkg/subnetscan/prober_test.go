package subnetscan

import (
	"context"
	"testing"
	"time"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan/oui"
)

func TestProbe_NeverResponding(t *testing.T) {
	p := NewProber(&fakeChecker{}, &fakeResolver{})
	rec := p.Probe(context.Background(), "192.168.1.77")

	if rec.Address != "192.168.1.77" {
		t.Errorf("expected address to be kept, got %q", rec.Address)
	}
	if rec.Reachable {
		t.Error("expected unreachable host")
	}
	if rec.DisplayName != NameUnresolved {
		t.Errorf("expected %q, got %q", NameUnresolved, rec.DisplayName)
	}
}

func TestProbe_LivenessIndependentOfResolution(t *testing.T) {
	p := NewProber(&fakeChecker{up: map[int]bool{5: true}}, &fakeResolver{})
	rec := p.Probe(context.Background(), "192.168.1.5")

	if !rec.Reachable {
		t.Error("resolution failure must not hide liveness")
	}
	if rec.DisplayName != NameUnresolved {
		t.Errorf("expected %q, got %q", NameUnresolved, rec.DisplayName)
	}
}

func TestProbe_ResolutionIndependentOfLiveness(t *testing.T) {
	p := NewProber(&fakeChecker{}, &fakeResolver{names: map[int]string{9: "printer.office.lan"}})
	rec := p.Probe(context.Background(), "192.168.1.9")

	if rec.Reachable {
		t.Error("expected unreachable host")
	}
	if rec.DisplayName != "printer" {
		t.Errorf("expected short name printer, got %q", rec.DisplayName)
	}
}

func TestProbe_ShortName(t *testing.T) {
	p := NewProber(&fakeChecker{up: map[int]bool{1: true}}, &fakeResolver{names: map[int]string{1: "gw.example.com."}})
	rec := p.Probe(context.Background(), "10.0.0.1")

	if !rec.Reachable || rec.DisplayName != "gw" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestProbe_EmptyNameIsUnresolved(t *testing.T) {
	p := NewProber(&fakeChecker{}, &fakeResolver{names: map[int]string{3: "."}})
	if rec := p.Probe(context.Background(), "10.0.0.3"); rec.DisplayName != NameUnresolved {
		t.Fatalf("expected %q, got %q", NameUnresolved, rec.DisplayName)
	}
}

func TestProbe_PanicsAreContained(t *testing.T) {
	p := NewProber(panicChecker{}, panicResolver{})
	rec := p.Probe(context.Background(), "10.0.0.4")

	if rec.Reachable {
		t.Error("expected unreachable after checker panic")
	}
	if rec.DisplayName != NameUnresolved {
		t.Errorf("expected %q after resolver panic, got %q", NameUnresolved, rec.DisplayName)
	}
}

func TestProbe_NilCollaborators(t *testing.T) {
	rec := (&Prober{}).Probe(context.Background(), "10.0.0.5")
	if rec.Reachable || rec.DisplayName != NameUnresolved {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestProbe_ChecksRunConcurrently(t *testing.T) {
	p := NewProber(&fakeChecker{up: map[int]bool{2: true}, delay: 150 * time.Millisecond}, &slowResolver{delay: 150 * time.Millisecond})

	start := time.Now()
	rec := p.Probe(context.Background(), "10.0.0.2")
	if elapsed := time.Since(start); elapsed > 270*time.Millisecond {
		t.Errorf("expected checks to overlap, took %v", elapsed)
	}
	if !rec.Reachable || rec.DisplayName != "slow" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestProbe_VendorFromDB(t *testing.T) {
	vendors, err := oui.Open("oui/testdata/oui.txt")
	if err != nil {
		t.Fatalf("oui.Open failed: %v", err)
	}
	checker := &fakeChecker{
		up:  map[int]bool{8: true, 9: true},
		mac: map[int]string{8: "00:50:56:aa:bb:cc", 9: "02:00:00:00:00:09"},
	}
	p := NewProber(checker, &fakeResolver{})
	p.Vendors = vendors

	rec := p.Probe(context.Background(), "10.0.0.8")
	if rec.MAC != "00:50:56:aa:bb:cc" || rec.Vendor != "VMware, Inc." {
		t.Errorf("expected VMware vendor for known MAC, got %+v", rec)
	}

	rec = p.Probe(context.Background(), "10.0.0.9")
	if rec.MAC == "" || rec.Vendor != "" {
		t.Errorf("expected MAC without vendor for unknown prefix, got %+v", rec)
	}

	rec = p.Probe(context.Background(), "10.0.0.10")
	if rec.Reachable || rec.MAC != "" || rec.Vendor != "" {
		t.Errorf("expected no MAC or vendor for a down host, got %+v", rec)
	}
}

func TestProbe_MACWithoutVendorDB(t *testing.T) {
	p := NewProber(&fakeChecker{up: map[int]bool{8: true}, mac: map[int]string{8: "00:03:93:aa:bb:cc"}}, &fakeResolver{})
	rec := p.Probe(context.Background(), "10.0.0.8")

	if rec.MAC != "00:03:93:aa:bb:cc" {
		t.Errorf("expected MAC to be recorded, got %q", rec.MAC)
	}
	if rec.Vendor != "" {
		t.Errorf("expected no vendor without a database, got %q", rec.Vendor)
	}
}
