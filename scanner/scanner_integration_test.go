package scanner

import (
	"context"
	"net"
	"testing"
	"time"

	"netsweep/port"
)

// listen starts a loopback listener that runs serve for every accepted
// connection.
func listen(t *testing.T, serve func(net.Conn)) (uint16, func()) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				if serve != nil {
					serve(c)
				}
			}()
		}
	}()
	return uint16(l.Addr().(*net.TCPAddr).Port), func() { _ = l.Close() }
}

// closedPort returns a loopback port that nothing listens on.
func closedPort(t *testing.T) uint16 {
	t.Helper()
	p, stop := listen(t, nil)
	stop()
	// small sleep to allow OS to release socket
	time.Sleep(50 * time.Millisecond)
	return p
}

func TestCheckPort_OpenAndClosed(t *testing.T) {
	p, stop := listen(t, nil)
	defer stop()

	if !CheckPort(context.Background(), "127.0.0.1", p, time.Second) {
		t.Fatalf("expected port %d open", p)
	}

	cp := closedPort(t)
	reason, _ := Probe(context.Background(), "127.0.0.1", cp, 500*time.Millisecond)
	if reason != port.ReasonRefused && reason != port.ReasonTimeout {
		t.Fatalf("expected refused or timeout after close, got %q", reason)
	}
	if reason.State() != port.StateClosed {
		t.Fatalf("expected closed, got %s", reason.State())
	}
}

func TestCheckPort_BlackholeWithinTimeout(t *testing.T) {
	start := time.Now()
	// TEST-NET-1 is never routed; the dial either times out or fails fast
	if CheckPort(context.Background(), "192.0.2.1", 81, time.Second) {
		t.Fatal("blackholed address reported open")
	}
	if elapsed := time.Since(start); elapsed >= 2*time.Second {
		t.Fatalf("probe took %v, want < 2s", elapsed)
	}
}

func TestCheckPort_Unresolvable(t *testing.T) {
	if CheckPort(context.Background(), "no-such-host.invalid", 80, time.Second) {
		t.Fatal("unresolvable host reported open")
	}
}

func TestCheckPort_CancelledContext(t *testing.T) {
	p, stop := listen(t, nil)
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if CheckPort(ctx, "127.0.0.1", p, time.Second) {
		t.Fatal("cancelled context must not report open")
	}
}

func TestGrabBanner(t *testing.T) {
	p, stop := listen(t, func(c net.Conn) {
		_, _ = c.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
	})
	defer stop()

	got := GrabBanner(context.Background(), "127.0.0.1", p, time.Second)
	if got != "SSH-2.0-OpenSSH_9.6" {
		t.Fatalf("got %q", got)
	}
}

func TestGrabBanner_InvalidBytesReplaced(t *testing.T) {
	p, stop := listen(t, func(c net.Conn) {
		_, _ = c.Write([]byte{' ', 'a', 0xff, 'b', '\n'})
	})
	defer stop()

	got := GrabBanner(context.Background(), "127.0.0.1", p, time.Second)
	if got != "a\uFFFDb" {
		t.Fatalf("got %q", got)
	}
}

func TestGrabBanner_Truncated(t *testing.T) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = 'x'
	}
	p, stop := listen(t, func(c net.Conn) { _, _ = c.Write(payload) })
	defer stop()

	got := GrabBanner(context.Background(), "127.0.0.1", p, time.Second)
	if len(got) == 0 || len(got) > bannerLimit {
		t.Fatalf("banner length %d, want 1..%d", len(got), bannerLimit)
	}
}

func TestGrabBanner_SilentService(t *testing.T) {
	p, stop := listen(t, func(c net.Conn) { time.Sleep(time.Second) })
	defer stop()

	start := time.Now()
	if got := GrabBanner(context.Background(), "127.0.0.1", p, 200*time.Millisecond); got != "" {
		t.Fatalf("expected no banner, got %q", got)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Fatalf("banner read ignored its timeout: %v", elapsed)
	}
}

func TestGrabBanner_Closed(t *testing.T) {
	if got := GrabBanner(context.Background(), "127.0.0.1", closedPort(t), 300*time.Millisecond); got != "" {
		t.Fatalf("expected no banner, got %q", got)
	}
}

func TestManager_ScanPortNoListener(t *testing.T) {
	m := NewManager(Config{Timeout: 500 * time.Millisecond, GrabBanner: true})
	cp := closedPort(t)

	res := m.ScanPort(context.Background(), "127.0.0.1", cp)
	if res.State != port.StateClosed {
		t.Fatalf("expected closed, got %s", res.State)
	}
	if res.Banner != "" {
		t.Fatalf("closed port must not carry a banner, got %q", res.Banner)
	}
}

func TestManager_PortSweepLoopback(t *testing.T) {
	open, stop := listen(t, func(c net.Conn) { _, _ = c.Write([]byte("220 mail ready\r\n")) })
	defer stop()
	closed := closedPort(t)

	m := NewManager(Config{Workers: 4, Timeout: time.Second, BannerTimeout: time.Second, GrabBanner: true})
	var calls int
	res, err := m.PortSweep(context.Background(), "127.0.0.1", []uint16{open, closed}, func(done, total int) {
		calls++
		if total != 2 {
			t.Errorf("total %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("progress called %d times, want 2", calls)
	}
	if len(res) != 1 || res[0].Port != open {
		t.Fatalf("expected only port %d, got %+v", open, res)
	}
	if res[0].Banner != "220 mail ready" {
		t.Fatalf("banner %q", res[0].Banner)
	}
}
