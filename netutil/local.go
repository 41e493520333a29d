package netutil

import (
	"net"
	"net/netip"
)

// routeProbeAddr is only used to let the kernel pick an outbound route.
// Connecting a UDP socket sends nothing on the wire.
const routeProbeAddr = "8.8.8.8:80"

// GetLocalIP returns the IPv4 address the host would use for outbound
// traffic, or ok=false when there is no usable route.
func GetLocalIP() (string, bool) {
	conn, err := net.Dial("udp4", routeProbeAddr)
	if err != nil {
		return "", false
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsUnspecified() {
		return "", false
	}
	return addr.IP.String(), true
}

// GetNetworkRange returns the /24 containing the local IPv4 address.
func GetNetworkRange() (string, bool) {
	ip, ok := GetLocalIP()
	if !ok {
		return "", false
	}
	return NetworkRangeFor(ip)
}

// NetworkRangeFor returns the /24 CIDR built from the first three octets of
// ip. Non-IPv4 input yields ok=false.
func NetworkRangeFor(ip string) (string, bool) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "", false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return "", false
	}
	p, err := addr.Prefix(24)
	if err != nil {
		return "", false
	}
	return p.String(), true
}
