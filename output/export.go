package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"netsweep/port"
	"netsweep/scanner"
)

// ErrUnknownFormat is returned for export formats other than json and csv.
var ErrUnknownFormat = errors.New("unknown export format")

// Kind names the sweep a report came from.
type Kind string

const (
	KindPing  Kind = "ping"
	KindPorts Kind = "ports"
)

// Report is everything one sweep produced, ready for export or storage.
type Report struct {
	Kind       Kind                 `json:"kind"`
	Target     string               `json:"target"`
	StartedAt  time.Time            `json:"started_at"`
	DurationMS int64                `json:"duration_ms"`
	Scanned    int                  `json:"scanned"`
	Hosts      []scanner.HostResult `json:"hosts,omitempty"`
	Ports      []port.PortResult    `json:"ports,omitempty"`
}

// FormatFor picks the export format from the file extension of path and
// falls back to def.
func FormatFor(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	}
	return strings.ToLower(def)
}

// Encode renders r in the given format.
func Encode(r Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case "csv":
		return encodeCSV(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Export encodes r and writes it atomically to path.
func Export(path, format string, r Report) error {
	data, err := Encode(r, format)
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}

func encodeCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	var rows [][]string
	if r.Kind == KindPorts {
		rows = append(rows, []string{"host", "port", "state", "service", "banner"})
		for _, p := range r.Ports {
			rows = append(rows, []string{p.Host, strconv.Itoa(int(p.Port)), string(p.State), p.Service, p.Banner})
		}
	} else {
		rows = append(rows, []string{"host", "reachable", "status"})
		for _, h := range r.Hosts {
			rows = append(rows, []string{h.Host, strconv.FormatBool(h.Reachable), string(h.Status)})
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
