package domain

import "encoding/json"

// State is the session-scoped key/value map. It is seeded from the
// manifest's stateDefaults, overlaid with the last persisted snapshot,
// read for runtime fallbacks and mutated by declared side effects.
// It is the single piece of data with a lifecycle longer than one command.
type State map[string]any

// NewState returns an empty state.
func NewState() State {
	return make(State)
}

// Clone returns a deep copy of the state via JSON round-trip.
// State values are JSON-representable by contract (they must survive the
// context snapshot file), so the round-trip is lossless for valid states.
func (s State) Clone() State {
	if s == nil {
		return NewState()
	}
	data, err := json.Marshal(s)
	if err != nil {
		// Values that cannot be represented cannot be persisted either;
		// fall back to a shallow copy so callers still get an independent map.
		return s.shallow()
	}
	out := make(State, len(s))
	if err := json.Unmarshal(data, &out); err != nil {
		return s.shallow()
	}
	return out
}

func (s State) shallow() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge overlays other on top of s and returns s.
func (s State) Merge(other State) State {
	for k, v := range other {
		s[k] = v
	}
	return s
}
