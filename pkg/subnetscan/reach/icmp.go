package reach

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	networkICMPDatagram = "udp4"
	networkICMPRaw      = "ip4:icmp"
)

var echoPayload = []byte("SUBNETSCAN-ECHO")

// echoSeq hands out distinct sequence numbers so that concurrent raw-socket
// checks, which all see every reply, can tell their answers apart.
var echoSeq uint32

// ICMPChecker sends one ICMP echo request and waits for the matching reply.
type ICMPChecker struct {
	Timeout    time.Duration
	Privileged bool
}

// NewICMPChecker creates an ICMP checker with defaults.
func NewICMPChecker() *ICMPChecker {
	return &ICMPChecker{Timeout: DefaultTimeout}
}

// Check implements Checker.
func (c *ICMPChecker) Check(ctx context.Context, ip string) (*Result, error) {
	res := &Result{IP: ip, Method: MethodICMP}

	dst, err := parseIPv4(ip)
	if err != nil {
		res.Error = err
		return res, err
	}

	conn, network, err := c.listen()
	if err != nil {
		res.Error = fmt.Errorf("icmp listen: %w", err)
		debugLog("%s: %v", ip, res.Error)
		return res, res.Error
	}
	defer conn.Close()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	_ = conn.SetDeadline(probeDeadline(ctx, timeout))
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	id := os.Getpid() & 0xffff
	seq := int(atomic.AddUint32(&echoSeq, 1) & 0xffff)
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: echoPayload},
	}
	data, err := msg.Marshal(nil)
	if err != nil {
		res.Error = fmt.Errorf("marshal echo: %w", err)
		return res, res.Error
	}

	var addr net.Addr = &net.IPAddr{IP: dst}
	if network == networkICMPDatagram {
		addr = &net.UDPAddr{IP: dst}
	}

	start := time.Now()
	if _, err := conn.WriteTo(data, addr); err != nil {
		res.Error = fmt.Errorf("send echo: %w", err)
		debugLog("%s: %v", ip, res.Error)
		return res, res.Error
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			res.Error = err
			return res, err
		}

		rm, err := icmp.ParseMessage(ipv4.ICMPTypeEcho.Protocol(), buf[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq || !peerIP(peer).Equal(dst) {
			continue
		}
		// The kernel rewrites the identifier on datagram sockets.
		if network == networkICMPRaw && echo.ID != id {
			continue
		}

		res.IsUp = true
		res.RTT = time.Since(start)
		debugLog("%s: echo reply in %.2fms", ip, float64(res.RTT.Microseconds())/1000)
		return res, nil
	}
}

func (c *ICMPChecker) listen() (*icmp.PacketConn, string, error) {
	if !c.Privileged {
		conn, err := icmp.ListenPacket(networkICMPDatagram, "0.0.0.0")
		if err == nil {
			return conn, networkICMPDatagram, nil
		}
		debugLog("datagram ICMP socket unavailable: %v", err)
	}
	conn, err := icmp.ListenPacket(networkICMPRaw, "0.0.0.0")
	if err != nil {
		return nil, "", err
	}
	return conn, networkICMPRaw, nil
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	}
	return nil
}
