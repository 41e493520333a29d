package scanner

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"netsweep/port"
)

// DefaultTimeout bounds reachability and port checks when no timeout is set.
const DefaultTimeout = 5 * time.Second

// Probe performs one TCP connect to host:p and reports why it failed, or
// port.ReasonNone when the connection completed. The connection is closed
// immediately; banner reads use their own connection.
func Probe(ctx context.Context, host string, p uint16, timeout time.Duration) (port.Reason, time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(p)))
	d := net.Dialer{Timeout: timeout}

	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", addr)
	rtt := time.Since(start)
	if err != nil {
		return classifyDialErr(err), rtt
	}
	_ = conn.Close()
	return port.ReasonNone, rtt
}

// CheckPort reports whether a TCP connection to host:p completes within
// timeout. Every failure, whatever its cause, is reported as false.
func CheckPort(ctx context.Context, host string, p uint16, timeout time.Duration) bool {
	reason, _ := Probe(ctx, host, p, timeout)
	return reason == port.ReasonNone
}

func classifyDialErr(err error) port.Reason {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return port.ReasonTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return port.ReasonTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return port.ReasonRefused
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return port.ReasonUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return port.ReasonUnreachable
	}
	// some platforms only surface the refusal in the message
	if strings.Contains(err.Error(), "connection refused") {
		return port.ReasonRefused
	}
	return port.ReasonError
}
