package reach

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestIsConnRefused(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"wrapped refusal", refused, true},
		{"bare errno", syscall.ECONNREFUSED, true},
		{"deadline", context.DeadlineExceeded, false},
		{"host unreachable", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnRefused(tt.err); got != tt.want {
				t.Errorf("isConnRefused(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
