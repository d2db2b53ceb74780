// Package reach tests for reachability checks.
package reach

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    Method
		wantErr bool
	}{
		{"icmp", MethodICMP, false},
		{"ICMP", MethodICMP, false},
		{" tcp ", MethodTCP, false},
		{"arp", MethodARP, false},
		{"", MethodICMP, false},
		{"syn", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMethod) {
					t.Fatalf("expected ErrUnknownMethod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	icmpChecker, ok := c.(*ICMPChecker)
	if !ok {
		t.Fatalf("expected *ICMPChecker, got %T", c)
	}
	if icmpChecker.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, icmpChecker.Timeout)
	}

	c, err = New(Options{Method: MethodTCP})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tcpChecker, ok := c.(*TCPChecker)
	if !ok {
		t.Fatalf("expected *TCPChecker, got %T", c)
	}
	if tcpChecker.Port != DefaultTCPPort {
		t.Errorf("expected port %d, got %d", DefaultTCPPort, tcpChecker.Port)
	}

	if _, err := New(Options{Method: "bogus"}); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestNew_ARP(t *testing.T) {
	c, err := New(Options{Method: MethodARP, Timeout: 50 * time.Millisecond})
	if !ARPSupported() {
		if !errors.Is(err, ErrNotSupported) {
			t.Fatalf("expected ErrNotSupported, got %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c.(*ARPChecker); !ok {
		t.Fatalf("expected *ARPChecker, got %T", c)
	}
}

func TestCheck_InvalidIP(t *testing.T) {
	checkers := map[string]Checker{
		"icmp": NewICMPChecker(),
		"tcp":  NewTCPChecker(),
	}
	if ARPSupported() {
		checkers["arp"] = NewARPChecker(0)
	}
	for name, c := range checkers {
		for _, ip := range []string{"not-an-ip", "::1", ""} {
			t.Run(name+"/"+ip, func(t *testing.T) {
				res, err := c.Check(context.Background(), ip)
				if !errors.Is(err, ErrInvalidIP) {
					t.Fatalf("expected ErrInvalidIP, got %v", err)
				}
				if res == nil || res.IsUp {
					t.Fatalf("expected a down result, got %+v", res)
				}
				if res.Error == nil {
					t.Error("expected result.Error to be set")
				}
			})
		}
	}
}

func TestTCPChecker_OpenPort(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	c := &TCPChecker{Port: ln.Addr().(*net.TCPAddr).Port, Timeout: time.Second}
	res, err := c.Check(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsUp {
		t.Fatal("expected host to be up")
	}
	if res.Method != MethodTCP {
		t.Errorf("expected method tcp, got %q", res.Method)
	}
}

func TestTCPChecker_RefusedCountsAsUp(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := &TCPChecker{Port: port, Timeout: time.Second}
	res, err := c.Check(context.Background(), "127.0.0.1")
	if err != nil {
		t.Skipf("loopback did not refuse port %s: %v", strconv.Itoa(port), err)
	}
	if !res.IsUp {
		t.Fatal("expected refused connection to count as up")
	}
}

func TestTCPChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &TCPChecker{Port: 80, Timeout: time.Second}
	res, err := c.Check(ctx, "192.0.2.1")
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
	if res.IsUp {
		t.Fatal("expected host to be down")
	}
}

func TestICMPChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &ICMPChecker{Timeout: 100 * time.Millisecond}
	start := time.Now()
	res, err := c.Check(ctx, "192.0.2.1")
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
	if res.IsUp {
		t.Fatal("expected host to be down")
	}
	if time.Since(start) > time.Second {
		t.Errorf("check took too long: %v", time.Since(start))
	}
}

func TestProbeDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	d := probeDeadline(ctx, time.Hour)
	if time.Until(d) > time.Second {
		t.Errorf("expected context deadline to win, got %v", time.Until(d))
	}

	d = probeDeadline(context.Background(), 50*time.Millisecond)
	if time.Until(d) > 50*time.Millisecond {
		t.Errorf("expected timeout deadline, got %v", time.Until(d))
	}
}
