package service

// EngineState is the sync engine lifecycle state.
type EngineState int

const (
	// StateDisabled means no adapter instance and no timer exist. Initial
	// state, and the state after a configuration failure.
	StateDisabled EngineState = iota

	// StateInitializing means the adapter is being constructed from
	// configuration.
	StateInitializing

	// StateEnabled means exactly one adapter is live with either one poll
	// timer or one push subscription.
	StateEnabled

	// StateSuspended means sync is temporarily stopped without discarding
	// configuration.
	StateSuspended
)

func (s EngineState) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateInitializing:
		return "initializing"
	case StateEnabled:
		return "enabled"
	case StateSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}
