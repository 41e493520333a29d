package output

import (
	"fmt"
	"io"
	"net/netip"
	"sort"
	"strings"
	"text/tabwriter"

	"netsweep/port"
	"netsweep/scanner"
)

const maxBannerWidth = 60

// PrintHosts prints reachable hosts as a table, sorted by address. Sweep
// results arrive in completion order, so the slice is copied before sorting.
func PrintHosts(w io.Writer, hosts []scanner.HostResult) {
	rows := append([]scanner.HostResult(nil), hosts...)
	sort.Slice(rows, func(i, j int) bool { return lessHost(rows[i].Host, rows[j].Host) })

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tSTATUS")
	for _, h := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", h.Host, h.Status)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d host(s) up\n", len(rows))
}

// PrintPorts prints open ports of host as a table, sorted by port.
func PrintPorts(w io.Writer, host string, ports []port.PortResult) {
	rows := append([]port.PortResult(nil), ports...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Port < rows[j].Port })

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tSTATE\tSERVICE\tBANNER")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d/tcp\t%s\t%s\t%s\n", r.Port, r.State, r.Service, shortBanner(r.Banner))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d open port(s) on %s\n", len(rows), host)
}

func shortBanner(b string) string {
	b = strings.Join(strings.Fields(b), " ")
	if r := []rune(b); len(r) > maxBannerWidth {
		return string(r[:maxBannerWidth]) + "..."
	}
	return b
}

// lessHost orders IP literals numerically and everything else after them
// lexically.
func lessHost(a, b string) bool {
	ia, errA := netip.ParseAddr(a)
	ib, errB := netip.ParseAddr(b)
	switch {
	case errA == nil && errB == nil:
		return ia.Less(ib)
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
