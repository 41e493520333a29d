package netutil

import (
	"net/netip"
	"testing"
)

func TestNetworkRangeFor(t *testing.T) {
	cases := map[string]string{
		"192.168.1.37":     "192.168.1.0/24",
		"10.0.0.1":         "10.0.0.0/24",
		"::ffff:172.16.5.9": "172.16.5.0/24",
	}
	for in, want := range cases {
		got, ok := NetworkRangeFor(in)
		if !ok || got != want {
			t.Errorf("NetworkRangeFor(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "2001:db8::1", "nope"} {
		if _, ok := NetworkRangeFor(in); ok {
			t.Errorf("NetworkRangeFor(%q) should fail", in)
		}
	}
}

func TestGetLocalIP(t *testing.T) {
	ip, ok := GetLocalIP()
	if !ok {
		t.Skip("no outbound route in this environment")
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		t.Fatalf("local ip %q is not IPv4", ip)
	}
	cidr, ok := GetNetworkRange()
	if !ok {
		t.Fatal("network range unavailable although local ip is known")
	}
	if want, _ := NetworkRangeFor(ip); cidr != want {
		t.Fatalf("got %s want %s", cidr, want)
	}
}
