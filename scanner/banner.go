package scanner

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// DefaultBannerTimeout bounds the connect and the read of a banner grab.
	DefaultBannerTimeout = 3 * time.Second

	bannerLimit = 1024
)

// GrabBanner opens a fresh connection to host:p and returns whatever the
// service sends first, up to 1024 bytes, decoded as UTF-8 with invalid bytes
// replaced and surrounding whitespace trimmed. It returns "" when nothing
// arrives before the timeout or the connection fails.
func GrabBanner(ctx context.Context, host string, p uint16, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultBannerTimeout
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(p)))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return ""
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return ""
	}
	buf := make([]byte, bannerLimit)
	n, _ := conn.Read(buf)
	if n <= 0 {
		return ""
	}
	return decodeBanner(buf[:n])
}

func decodeBanner(b []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		out = bytes.ToValidUTF8(b, []byte("\uFFFD"))
	}
	return strings.TrimSpace(string(out))
}
