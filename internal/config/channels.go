package config

import "sort"

// StateChannels maps a derived data-quality flag to the state channel it is
// computed from. The zero value is an empty table. Values never change after
// construction.
type StateChannels struct {
	m map[string]string
}

// NewStateChannels copies m into a new table.
func NewStateChannels(m map[string]string) StateChannels {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return StateChannels{m: cp}
}

// DefaultStateChannels returns the built-in detector table.
func DefaultStateChannels() StateChannels {
	return NewStateChannels(map[string]string{
		"H1:DMT-UP:1":         "H1:GRD-ISC_LOCK_OK",
		"L1:DMT-UP:1":         "L1:GRD-ISC_LOCK_OK",
		"H1:DMT-CALIBRATED:1": "H1:GDS-CALIB_STATE_VECTOR",
		"L1:DMT-CALIBRATED:1": "L1:GDS-CALIB_STATE_VECTOR",
	})
}

// Lookup returns the state channel for name.
func (s StateChannels) Lookup(name string) (string, bool) {
	v, ok := s.m[name]
	return v, ok
}

// Resolve returns the state channel for name, or name itself when the
// table has no entry.
func (s StateChannels) Resolve(name string) string {
	if v, ok := s.m[name]; ok {
		return v
	}
	return name
}

// With returns a new table with overrides applied on top of s.
func (s StateChannels) With(overrides map[string]string) StateChannels {
	merged := make(map[string]string, len(s.m)+len(overrides))
	for k, v := range s.m {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return StateChannels{m: merged}
}

// Names returns the flag names in sorted order.
func (s StateChannels) Names() []string {
	names := make([]string, 0, len(s.m))
	for k := range s.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (s StateChannels) Len() int { return len(s.m) }
