package port

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePortSpec parses a port specification string and returns a sorted, deduplicated slice of ports.
// Supported forms:
//   - single: "22"
//   - list: "22,80,443"
//   - range: "1-1024"
//   - mixed: "22,80,8000-8100"
//   - keyword: "common" expands to every port in the service table
func ParsePortSpec(spec string) ([]uint16, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("empty port spec")
	}
	seen := make(map[uint16]struct{})
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
			return nil, errors.New("invalid empty token in port spec")
		case strings.EqualFold(tok, "common"):
			for _, p := range CommonPorts() {
				seen[p] = struct{}{}
			}
		case strings.Contains(tok, "-"):
			lo, hi, ok := strings.Cut(tok, "-")
			if !ok {
				return nil, fmt.Errorf("invalid range token: %s", tok)
			}
			start, err := parseBound(lo)
			if err != nil {
				return nil, err
			}
			end, err := parseBound(hi)
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, fmt.Errorf("range start greater than end: %s", tok)
			}
			for p := int(start); p <= int(end); p++ {
				seen[uint16(p)] = struct{}{}
			}
		default:
			p, err := parseBound(tok)
			if err != nil {
				return nil, err
			}
			seen[p] = struct{}{}
		}
	}

	out := make([]uint16, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func parseBound(s string) (uint16, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if v < 1 || v > 65535 {
		return 0, errors.New("port numbers must be in 1..65535")
	}
	return uint16(v), nil
}
