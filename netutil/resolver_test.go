package netutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startDNS serves a tiny fixed zone on a loopback UDP port.
func startDNS(t *testing.T) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}

	records := map[uint16]map[string]string{
		dns.TypeA: {
			"scanme.test.": "scanme.test. 60 IN A 10.1.2.3",
		},
		dns.TypeAAAA: {
			"v6only.test.": "v6only.test. 60 IN AAAA 2001:db8::7",
		},
		dns.TypePTR: {
			"3.2.1.10.in-addr.arpa.": "3.2.1.10.in-addr.arpa. 60 IN PTR scanme.test.",
		},
	}
	known := map[string]bool{"scanme.test.": true, "v6only.test.": true, "3.2.1.10.in-addr.arpa.": true}

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		q := req.Question[0]
		if rec, ok := records[q.Qtype][q.Name]; ok {
			rr, err := dns.NewRR(rec)
			if err == nil {
				m.Answer = append(m.Answer, rr)
			}
		} else if !known[q.Name] {
			m.Rcode = dns.RcodeNameError
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

func TestResolver_Server(t *testing.T) {
	r := NewResolver(startDNS(t), time.Second)
	ctx := context.Background()

	if ip, ok := r.ResolveHostname(ctx, "scanme.test"); !ok || ip != "10.1.2.3" {
		t.Fatalf("A lookup: got %q ok=%v", ip, ok)
	}
	if ip, ok := r.ResolveHostname(ctx, "v6only.test."); !ok || ip != "2001:db8::7" {
		t.Fatalf("AAAA fallback: got %q ok=%v", ip, ok)
	}
	if _, ok := r.ResolveHostname(ctx, "missing.test"); ok {
		t.Fatal("NXDOMAIN must report ok=false")
	}
	if name, ok := r.ReverseDNS(ctx, "10.1.2.3"); !ok || name != "scanme.test" {
		t.Fatalf("PTR lookup: got %q ok=%v", name, ok)
	}
	if _, ok := r.ReverseDNS(ctx, "10.9.9.9"); ok {
		t.Fatal("missing PTR must report ok=false")
	}
}

func TestResolver_UnreachableServer(t *testing.T) {
	// nothing listens here; the query times out
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	addr := pc.LocalAddr().String()
	_ = pc.Close()

	r := NewResolver(addr, 200*time.Millisecond)
	if _, ok := r.ResolveHostname(context.Background(), "scanme.test"); ok {
		t.Fatal("expected failure against dead server")
	}
}

func TestResolveHostname_Literal(t *testing.T) {
	ip, ok := ResolveHostname(context.Background(), "1.2.3.4")
	if !ok || ip != "1.2.3.4" {
		t.Fatalf("got %q ok=%v", ip, ok)
	}
	if _, ok := ResolveHostname(context.Background(), ""); ok {
		t.Fatal("empty name must fail")
	}
}

func TestReverseDNS_Invalid(t *testing.T) {
	if _, ok := ReverseDNS(context.Background(), "not-an-ip"); ok {
		t.Fatal("invalid ip must fail")
	}
}

func TestNewResolver_DefaultPort(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"9.9.9.9":       "9.9.9.9:53",
		"9.9.9.9:5353":  "9.9.9.9:5353",
		"2001:db8::1":   "[2001:db8::1]:53",
		"[2001:db8::1]": "[2001:db8::1]:53",
	}
	for in, want := range cases {
		if got := NewResolver(in, 0).Server(); got != want {
			t.Errorf("NewResolver(%q).Server() = %q, want %q", in, got, want)
		}
	}
}
