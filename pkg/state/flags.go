package state

// Flags is the narrative world-state store: boolean flags and numeric
// values in separate namespaces. Last write wins; there is no history
// and no versioning. Absent entries read as the zero value.
type Flags struct {
	Bools  map[string]bool `json:"flags,omitempty"`
	Values map[string]int  `json:"values,omitempty"`
}

// NewFlags returns an empty store.
func NewFlags() *Flags {
	return &Flags{
		Bools:  make(map[string]bool),
		Values: make(map[string]int),
	}
}

// Flag returns the flag's value, false for unknown IDs.
func (f *Flags) Flag(id string) bool {
	return f.Bools[id]
}

// SetFlag overwrites the flag and reports whether the stored value
// changed.
func (f *Flags) SetFlag(id string, value bool) bool {
	if f.Bools == nil {
		f.Bools = make(map[string]bool)
	}
	prev, existed := f.Bools[id]
	f.Bools[id] = value
	return !existed || prev != value
}

// Value returns the numeric value, 0 for unknown IDs.
func (f *Flags) Value(id string) int {
	return f.Values[id]
}

// SetValue overwrites the numeric value and reports whether it changed.
func (f *Flags) SetValue(id string, value int) bool {
	if f.Values == nil {
		f.Values = make(map[string]int)
	}
	prev, existed := f.Values[id]
	f.Values[id] = value
	return !existed || prev != value
}
