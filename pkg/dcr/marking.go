package dcr

// Marking is the runtime state of a DCR graph.
// An event may be pending without being included; such an obligation is latent
// and does not block acceptance until the event is included again.
type Marking struct {
	Executed Set `json:"executed" yaml:"executed"`
	Included Set `json:"included" yaml:"included"`
	Pending  Set `json:"pending" yaml:"pending"`
}

func NewMarking() Marking {
	return Marking{
		Executed: NewSet(),
		Included: NewSet(),
		Pending:  NewSet(),
	}
}

// Clone deep-copies all three sets, the result never aliases m.
func (m Marking) Clone() Marking {
	return Marking{
		Executed: m.Executed.Clone(),
		Included: m.Included.Clone(),
		Pending:  m.Pending.Clone(),
	}
}

func (m Marking) Equal(other Marking) bool {
	return m.Executed.Equal(other.Executed) &&
		m.Included.Equal(other.Included) &&
		m.Pending.Equal(other.Pending)
}

func (m Marking) IsExecuted(id string) bool { return m.Executed.Has(id) }
func (m Marking) IsIncluded(id string) bool { return m.Included.Has(id) }
func (m Marking) IsPending(id string) bool  { return m.Pending.Has(id) }

// EnsureSets replaces nil sets with empty ones, decoded markings may lack some.
func (m *Marking) EnsureSets() {
	if m.Executed == nil {
		m.Executed = NewSet()
	}
	if m.Included == nil {
		m.Included = NewSet()
	}
	if m.Pending == nil {
		m.Pending = NewSet()
	}
}
