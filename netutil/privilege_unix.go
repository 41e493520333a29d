//go:build !windows
// +build !windows

package netutil

import "os"

// CanOpenRawSocket reports whether the process may open raw ICMP sockets.
// On Unix this requires euid 0; unprivileged processes fall back to
// datagram ICMP sockets where the kernel allows them.
func CanOpenRawSocket() (bool, error) {
	return os.Geteuid() == 0, nil
}
