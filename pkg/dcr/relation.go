package dcr

import (
	"cmp"
	"fmt"
	"strings"
)

type RelationKind int

const (
	Condition RelationKind = iota + 1
	Response
	Include
	Exclude
	Milestone
)

var relationKindNames = map[RelationKind]string{
	Condition: "condition",
	Response:  "response",
	Include:   "include",
	Exclude:   "exclude",
	Milestone: "milestone",
}

// RelationKinds lists every kind in declaration order.
var RelationKinds = []RelationKind{Condition, Response, Include, Exclude, Milestone}

func (k RelationKind) String() string {
	if name, ok := relationKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

func ParseRelationKind(s string) (RelationKind, error) {
	for kind, name := range relationKindNames {
		if strings.EqualFold(name, s) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown relation kind %q", s)
}

func (k RelationKind) MarshalText() ([]byte, error) {
	if _, ok := relationKindNames[k]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

func (k *RelationKind) UnmarshalText(text []byte) error {
	parsed, err := ParseRelationKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Relation is a directed DCR constraint between two events (or a group pseudo-event).
type Relation struct {
	Source string       `json:"source" yaml:"source"`
	Target string       `json:"target" yaml:"target"`
	Kind   RelationKind `json:"type" yaml:"type"`
}

func (r Relation) String() string {
	return fmt.Sprintf("%s(%s,%s)", r.Kind, r.Source, r.Target)
}

// CompareRelations orders relations by source, target and kind.
func CompareRelations(a, b Relation) int {
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Target, b.Target); c != 0 {
		return c
	}
	return cmp.Compare(a.Kind, b.Kind)
}
