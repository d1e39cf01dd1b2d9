package companion

type State int

const (
	StateInactive State = iota
	StateActivating
	StateActivated
	StateReachable
	StateUnreachable
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateReachable:
		return "reachable"
	case StateUnreachable:
		return "unreachable"
	default:
		return "invalid"
	}
}

// active reports whether sends go straight to the transport.
func (s State) active() bool {
	return s == StateActivated || s == StateReachable || s == StateUnreachable
}
