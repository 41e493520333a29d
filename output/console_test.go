package output

import (
	"bytes"
	"strings"
	"testing"

	"netsweep/port"
	"netsweep/scanner"
)

func TestPrintHosts_SortedNumerically(t *testing.T) {
	var buf bytes.Buffer
	PrintHosts(&buf, []scanner.HostResult{
		{Host: "10.0.0.10", Reachable: true, Status: scanner.StatusUp},
		{Host: "router.lan", Reachable: true, Status: scanner.StatusUp},
		{Host: "10.0.0.9", Reachable: true, Status: scanner.StatusUp},
	})
	out := buf.String()
	i9, i10, iName := strings.Index(out, "10.0.0.9"), strings.Index(out, "10.0.0.10"), strings.Index(out, "router.lan")
	if !(i9 < i10 && i10 < iName) {
		t.Fatalf("rows not sorted:\n%s", out)
	}
	if !strings.Contains(out, "3 host(s) up") {
		t.Fatalf("missing summary:\n%s", out)
	}
}

func TestPrintPorts(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("A", 100) + "\r\nsecond line"
	PrintPorts(&buf, "10.0.0.5", []port.PortResult{
		{Port: 443, State: port.StateOpen, Service: "HTTPS"},
		{Port: 22, State: port.StateOpen, Service: "SSH", Banner: long},
	})
	out := buf.String()
	if strings.Index(out, "22/tcp") > strings.Index(out, "443/tcp") {
		t.Fatalf("ports not sorted:\n%s", out)
	}
	if strings.Contains(out, "second line") || !strings.Contains(out, "...") {
		t.Fatalf("banner not shortened:\n%s", out)
	}
	if !strings.Contains(out, "2 open port(s) on 10.0.0.5") {
		t.Fatalf("missing summary:\n%s", out)
	}
}

func TestProgress_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	fn := Progress(&buf, "ping")
	for i := 1; i <= 20; i++ {
		fn(i, 20)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 11 {
		t.Fatalf("want one line per 10%% step, got %d:\n%s", len(lines), buf.String())
	}
	if lines[len(lines)-1] != "ping 20/20 (100%)" {
		t.Fatalf("last line %q", lines[len(lines)-1])
	}
}
