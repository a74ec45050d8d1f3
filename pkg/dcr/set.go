package dcr

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"
)

// Set is an unordered set of event ids.
// Encoded forms (JSON, YAML) are always sorted so that equal sets produce equal bytes.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id string) {
	s[id] = struct{}{}
}

func (s Set) Remove(id string) {
	delete(s, id)
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	res := make([]string, 0, len(s))
	for id := range s {
		res = append(res, id)
	}
	slices.Sort(res)
	return res
}

// Clone returns an independent copy, never nil.
func (s Set) Clone() Set {
	res := make(Set, len(s))
	for id := range s {
		res[id] = struct{}{}
	}
	return res
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

func (s Set) MarshalYAML() (interface{}, error) {
	return s.Sorted(), nil
}

func (s *Set) UnmarshalYAML(value *yaml.Node) error {
	var ids []string
	if err := value.Decode(&ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
