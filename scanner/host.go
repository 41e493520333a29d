package scanner

// HostStatus is the public reachability label of a host.
type HostStatus string

const (
	StatusUp   HostStatus = "up"
	StatusDown HostStatus = "down"
)

// HostResult is the outcome of one reachability probe.
type HostResult struct {
	Host      string     `json:"host"`
	Reachable bool       `json:"reachable"`
	Status    HostStatus `json:"status"`
}

func newHostResult(host string, reachable bool) HostResult {
	r := HostResult{Host: host, Reachable: reachable, Status: StatusDown}
	if reachable {
		r.Status = StatusUp
	}
	return r
}
