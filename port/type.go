package port

// State is the public classification of a probed port.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Reason records why a connect attempt failed. It is finer grained than
// State: every reason other than ReasonNone maps to StateClosed.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonRefused     Reason = "refused"
	ReasonTimeout     Reason = "timeout"
	ReasonUnreachable Reason = "unreachable"
	ReasonError       Reason = "error"
)

// State collapses a probe reason to the public open/closed state.
func (r Reason) State() State {
	if r == ReasonNone {
		return StateOpen
	}
	return StateClosed
}

// PortResult is the outcome of probing one TCP port on one host.
// Banner is only set when State is open and a banner read succeeded.
type PortResult struct {
	Host    string `json:"host"`
	Port    uint16 `json:"port"`
	State   State  `json:"state"`
	Service string `json:"service"`
	Banner  string `json:"banner,omitempty"`
}

// Open reports whether the port accepted a connection.
func (r PortResult) Open() bool {
	return r.State == StateOpen
}
