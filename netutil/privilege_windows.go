//go:build windows
// +build windows

package netutil

import "errors"

// CanOpenRawSocket always reports false on Windows; ping falls back to the
// system ping command there.
func CanOpenRawSocket() (bool, error) {
	return false, errors.New("raw sockets not supported on Windows in this build")
}
