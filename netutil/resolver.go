package netutil

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DefaultDNSTimeout bounds a single lookup when no timeout is configured.
const DefaultDNSTimeout = 3 * time.Second

// Resolver performs forward and reverse lookups. With an empty server it
// uses the system resolver; otherwise every query is sent to server
// directly. Lookups never return errors: a failure is reported as ok=false.
type Resolver struct {
	server  string
	timeout time.Duration
	client  *dns.Client
	system  *net.Resolver
}

// NewResolver builds a resolver. server may be "", "host" or "host:port";
// port 53 is assumed when missing.
func NewResolver(server string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}
	r := &Resolver{timeout: timeout, system: net.DefaultResolver}
	if server = strings.TrimSpace(server); server != "" {
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(strings.Trim(server, "[]"), "53")
		}
		r.server = server
		r.client = &dns.Client{Net: "udp", Timeout: timeout}
	}
	return r
}

// Server returns the configured DNS server, or "" for the system resolver.
func (r *Resolver) Server() string { return r.server }

var defaultResolver = NewResolver("", DefaultDNSTimeout)

// ResolveHostname resolves name with the system resolver.
func ResolveHostname(ctx context.Context, name string) (string, bool) {
	return defaultResolver.ResolveHostname(ctx, name)
}

// ReverseDNS looks up the PTR name of ip with the system resolver.
func ReverseDNS(ctx context.Context, ip string) (string, bool) {
	return defaultResolver.ReverseDNS(ctx, ip)
}

// ResolveHostname returns the first address of name, preferring IPv4.
// IP literals are returned unchanged.
func (r *Resolver) ResolveHostname(ctx context.Context, name string) (string, bool) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if name == "" {
		return "", false
	}
	if addr, err := netip.ParseAddr(name); err == nil {
		return addr.String(), true
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.client == nil {
		addrs, err := r.system.LookupIPAddr(ctx, name)
		if err != nil || len(addrs) == 0 {
			return "", false
		}
		for _, a := range addrs {
			if v4 := a.IP.To4(); v4 != nil {
				return v4.String(), true
			}
		}
		return addrs[0].IP.String(), true
	}

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		answers, err := r.exchange(ctx, name, qtype)
		if err != nil {
			continue
		}
		for _, rr := range answers {
			switch v := rr.(type) {
			case *dns.A:
				return v.A.String(), true
			case *dns.AAAA:
				return v.AAAA.String(), true
			}
		}
	}
	return "", false
}

// ReverseDNS returns the first PTR name for ip without the trailing dot.
func (r *Resolver) ReverseDNS(ctx context.Context, ip string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.client == nil {
		names, err := r.system.LookupAddr(ctx, addr.String())
		if err != nil || len(names) == 0 {
			return "", false
		}
		return strings.TrimSuffix(names[0], "."), true
	}

	arpa, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return "", false
	}
	answers, err := r.exchange(ctx, arpa, dns.TypePTR)
	if err != nil {
		return "", false
	}
	for _, rr := range answers {
		if ptr, ok := rr.(*dns.PTR); ok {
			return strings.TrimSuffix(ptr.Ptr, "."), true
		}
	}
	return "", false
}

func (r *Resolver) exchange(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, err
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s %s: %s", dns.TypeToString[qtype], name, dns.RcodeToString[in.Rcode])
	}
	return in.Answer, nil
}
