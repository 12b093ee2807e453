package engine

// ConnectionState tracks the sync protocol state machine for the session.
type ConnectionState uint8

const (
	// StateConnecting is the initial state, before the local entity exists.
	StateConnecting ConnectionState = iota
	// StateReady holds once the local entity is constructed and the ready
	// signal has been emitted, before the first snapshot lands.
	StateReady
	// StateSynced holds from the first applied snapshot onwards; every
	// snapshot arrival re-enters it.
	StateSynced
	// StateEnded is terminal: the local entity is retired and snapshot
	// application halts.
	StateEnded
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateSynced:
		return "synced"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}
