package svxconf

import (
	"net"
	"time"
)

// Section type tags as they appear in svxlink.conf TYPE options.
// The TYPE match in Document.RemoteNodes is exact and case-sensitive,
// which is how svxlink itself reads the file.
const (
	TypeNet   = "Net"
	TypeMulti = "Multi"
)

// DefaultProbeTimeout bounds the reachability probe of a remote node.
// Past it the node is reported offline rather than retried.
const DefaultProbeTimeout = 3 * time.Second

var netNodeOptions = []string{"TYPE", "HOST", "TCP_PORT", "AUTH_KEY", "CODEC"}

var multiTransmitterOptions = []string{"TRANSMITTERS"}

// NetNode represents a TYPE=Net section: a remote svxlink node reachable
// over TCP.
type NetNode struct {
	Section

	probeTimeout time.Duration
	lastProbeErr error
}

// NewNetNode creates a remote node record. With nil data the record is
// seeded with TYPE=Net; otherwise data pairs are validated in order and a
// ValidationError is returned for any option outside the Net allow-list.
func NewNetNode(sectionName string, data []Item) (*NetNode, error) {
	base, err := newSection(TypeNet, sectionName, netNodeOptions, data)
	if err != nil {
		return nil, err
	}
	return &NetNode{Section: *base, probeTimeout: DefaultProbeTimeout}, nil
}

// SetProbeTimeout overrides the reachability probe timeout.
// Non-positive values are ignored.
func (n *NetNode) SetProbeTimeout(d time.Duration) {
	if d > 0 {
		n.probeTimeout = d
	}
}

// IsOnline probes whether the remote node accepts TCP connections on
// (HOST, TCP_PORT). It returns a PreconditionError unless both options are
// set. Any dial failure folds into false; the underlying error is kept and
// can be read back with LastProbeError. The connection is closed
// immediately, no data is exchanged.
func (n *NetNode) IsOnline() (bool, error) {
	missing := make([]string, 0, 2)
	if !n.HasOption("HOST") {
		missing = append(missing, "HOST")
	}
	if !n.HasOption("TCP_PORT") {
		missing = append(missing, "TCP_PORT")
	}
	if len(missing) > 0 {
		return false, &PreconditionError{Op: "reachability probe", Missing: missing}
	}

	host, _ := n.Get("HOST")
	port, _ := n.Get("TCP_PORT")

	timeout := n.probeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), timeout)
	if err != nil {
		n.lastProbeErr = err
		return false, nil
	}
	conn.Close()
	n.lastProbeErr = nil
	return true, nil
}

// LastProbeError returns the dial error behind the most recent IsOnline
// false result, or nil if the last probe succeeded or none ran yet.
func (n *NetNode) LastProbeError() error {
	return n.lastProbeErr
}

// MultiTransmitter represents a TYPE=Multi section grouping several
// transmitters under one logical one.
type MultiTransmitter struct {
	Section
}

// NewMultiTransmitter creates a multi transmitter record. The only valid
// option is TRANSMITTERS, a comma separated list of transmitter sections.
func NewMultiTransmitter(sectionName string, data []Item) (*MultiTransmitter, error) {
	base, err := newSection(TypeMulti, sectionName, multiTransmitterOptions, data)
	if err != nil {
		return nil, err
	}
	return &MultiTransmitter{Section: *base}, nil
}
