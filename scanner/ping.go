package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"netsweep/netutil"
)

const (
	protoICMP   = 1
	protoICMPv6 = 58
)

// errNoICMP means no ICMP socket could be opened, as opposed to the echo
// going unanswered.
var errNoICMP = errors.New("icmp socket unavailable")

var echoSeq uint32

// Ping sends a single ICMP echo request to host and waits up to timeout for
// the matching reply. Raw sockets are used when the process is privileged,
// datagram ICMP sockets otherwise; when neither can be opened the system
// ping command is run instead. Every failure is reported as false.
func Ping(ctx context.Context, host string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ok, err := echo(ctx, host, timeout)
	if errors.Is(err, errNoICMP) {
		return systemPing(ctx, host, timeout)
	}
	return err == nil && ok
}

func echo(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	ip, err := resolveIP(ctx, host, timeout)
	if err != nil {
		return false, err
	}
	v4 := ip.To4() != nil
	conn, privileged, err := listenICMP(v4)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	var (
		request, reply icmp.Type = ipv4.ICMPTypeEcho, ipv4.ICMPTypeEchoReply
		proto                    = protoICMP
	)
	if !v4 {
		request, reply, proto = ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply, protoICMPv6
	}

	id := os.Getpid() & 0xffff
	seq := int(atomic.AddUint32(&echoSeq, 1) & 0xffff)
	msg := icmp.Message{
		Type: request,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("netsweep")},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return false, err
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if !privileged {
		dst = &net.UDPAddr{IP: ip}
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return false, err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.WriteTo(wb, dst); err != nil {
		return false, err
	}

	rb := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			return false, err
		}
		rm, err := icmp.ParseMessage(proto, rb[:n])
		if err != nil || rm.Type != reply {
			continue
		}
		body, ok := rm.Body.(*icmp.Echo)
		if !ok || body.Seq != seq {
			continue
		}
		// datagram sockets rewrite the identifier to the local port
		if privileged && body.ID != id {
			continue
		}
		if !fromHost(peer, ip) {
			continue
		}
		return true, nil
	}
}

// listenICMP opens a raw ICMP socket when the process is privileged and a
// datagram ICMP socket otherwise. Failure wraps errNoICMP.
func listenICMP(v4 bool) (*icmp.PacketConn, bool, error) {
	privileged, _ := netutil.CanOpenRawSocket()

	network, laddr := "udp6", "::"
	switch {
	case v4 && privileged:
		network, laddr = "ip4:icmp", "0.0.0.0"
	case v4:
		network, laddr = "udp4", "0.0.0.0"
	case privileged:
		network = "ip6:ipv6-icmp"
	}
	conn, err := icmp.ListenPacket(network, laddr)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", errNoICMP, err)
	}
	return conn, privileged, nil
}

func resolveIP(ctx context.Context, host string, timeout time.Duration) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4, nil
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}
	return addrs[0].IP, nil
}

func fromHost(peer net.Addr, ip net.IP) bool {
	switch a := peer.(type) {
	case *net.IPAddr:
		return a.IP.Equal(ip)
	case *net.UDPAddr:
		return a.IP.Equal(ip)
	}
	return false
}

// systemPing runs the platform ping binary once.
func systemPing(ctx context.Context, host string, timeout time.Duration) bool {
	if host == "" || strings.HasPrefix(host, "-") {
		return false
	}
	secs := int(math.Ceil(timeout.Seconds()))
	if secs < 1 {
		secs = 1
	}

	var args []string
	switch runtime.GOOS {
	case "windows":
		args = []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), host}
	case "darwin", "freebsd", "openbsd", "netbsd":
		args = []string{"-c", "1", "-t", strconv.Itoa(secs), host}
	default:
		args = []string{"-c", "1", "-W", strconv.Itoa(secs), host}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+2*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "ping", args...).Run() == nil
}
