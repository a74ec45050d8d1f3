package dcr

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

type Event struct {
	Id    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

type GroupKind string

const (
	// GroupKindSubProcess is entered through its boundary event, which shares the group id.
	GroupKindSubProcess GroupKind = "subprocess"
	// GroupKindNesting clusters densely related events. Its id is a pseudo-event
	// that is never executed, only included or excluded.
	GroupKindNesting GroupKind = "nesting"
)

type Group struct {
	Id      string    `json:"id" yaml:"id"`
	Label   string    `json:"label" yaml:"label"`
	Kind    GroupKind `json:"kind" yaml:"kind"`
	Parent  string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Members []string  `json:"members" yaml:"members"`
}

// Graph is an immutable DCR graph value once produced by the translator.
// Groups of both kinds scope enabledness. They are stored flat; SubProcessMap
// points every member event to its innermost enclosing group and Parent links
// a group to the group around it.
type Graph struct {
	Id            string            `json:"id" yaml:"id"`
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`
	Events        []Event           `json:"events" yaml:"events"`
	Relations     []Relation        `json:"relations" yaml:"relations"`
	Marking       Marking           `json:"marking" yaml:"marking"`
	Groups        []Group           `json:"groups,omitempty" yaml:"groups,omitempty"`
	SubProcessMap map[string]string `json:"subProcessMap,omitempty" yaml:"subProcessMap,omitempty"`

	mu    sync.Mutex
	index *graphIndex
}

// graphIndex speeds up lookups by id. It is rebuilt when events, relations or
// groups were changed without going through the Graph methods.
type graphIndex struct {
	events, relations, groups int
	eventIdx                  map[string]int
	groupIdx                  map[string]int
	relationSet               map[Relation]struct{}
}

// lookup returns the current index, the caller must hold g.mu.
func (g *Graph) lookup() *graphIndex {
	idx := g.index
	if idx != nil && idx.events == len(g.Events) && idx.relations == len(g.Relations) && idx.groups == len(g.Groups) {
		return idx
	}
	idx = &graphIndex{
		events:      len(g.Events),
		relations:   len(g.Relations),
		groups:      len(g.Groups),
		eventIdx:    make(map[string]int, len(g.Events)),
		groupIdx:    make(map[string]int, len(g.Groups)),
		relationSet: make(map[Relation]struct{}, len(g.Relations)),
	}
	for i, e := range g.Events {
		if _, ok := idx.eventIdx[e.Id]; !ok {
			idx.eventIdx[e.Id] = i
		}
	}
	for i, gr := range g.Groups {
		if _, ok := idx.groupIdx[gr.Id]; !ok {
			idx.groupIdx[gr.Id] = i
		}
	}
	for _, r := range g.Relations {
		idx.relationSet[r] = struct{}{}
	}
	g.index = idx
	return idx
}

func NewGraph(id string) *Graph {
	return &Graph{
		Id:            id,
		Events:        []Event{},
		Relations:     []Relation{},
		Marking:       NewMarking(),
		SubProcessMap: map[string]string{},
	}
}

// AddEvent appends the event unless an event with the same id exists.
func (g *Graph) AddEvent(e Event) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.lookup()
	if _, ok := idx.eventIdx[e.Id]; ok {
		return false
	}
	idx.eventIdx[e.Id] = len(g.Events)
	g.Events = append(g.Events, e)
	idx.events = len(g.Events)
	return true
}

// AddRelation appends r unless an identical relation exists.
func (g *Graph) AddRelation(r Relation) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.lookup()
	if _, ok := idx.relationSet[r]; ok {
		return false
	}
	idx.relationSet[r] = struct{}{}
	g.Relations = append(g.Relations, r)
	idx.relations = len(g.Relations)
	return true
}

// NormalizeRelations removes duplicates and sorts relations by source, target and kind.
func (g *Graph) NormalizeRelations() {
	g.mu.Lock()
	defer g.mu.Unlock()
	slices.SortFunc(g.Relations, CompareRelations)
	g.Relations = slices.Compact(g.Relations)
	g.index = nil
}

func (g *Graph) HasEvent(id string) bool {
	_, ok := g.Event(id)
	return ok
}

func (g *Graph) Event(id string) (Event, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.lookup().eventIdx[id]
	if !ok {
		return Event{}, false
	}
	return g.Events[i], true
}

// EventIds returns all event ids in ascending order.
func (g *Graph) EventIds() []string {
	ids := make([]string, len(g.Events))
	for i, e := range g.Events {
		ids[i] = e.Id
	}
	slices.Sort(ids)
	return ids
}

func (g *Graph) Group(id string) (Group, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.lookup().groupIdx[id]
	if !ok {
		return Group{}, false
	}
	return g.Groups[i], true
}

// IsSubProcessGroup reports whether id names a sub-process group.
func (g *Graph) IsSubProcessGroup(id string) bool {
	gr, ok := g.Group(id)
	return ok && gr.Kind == GroupKindSubProcess
}

func (g *Graph) IsGroup(id string) bool {
	_, ok := g.Group(id)
	return ok
}

// GroupOf returns the innermost group of an event, "" for top level.
func (g *Graph) GroupOf(eventId string) string {
	return g.SubProcessMap[eventId]
}

// GroupsOfKind returns groups of the given kind in stored order.
func (g *Graph) GroupsOfKind(kind GroupKind) []Group {
	var res []Group
	for _, gr := range g.Groups {
		if gr.Kind == kind {
			res = append(res, gr)
		}
	}
	return res
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	res := &Graph{
		Id:            g.Id,
		Name:          g.Name,
		Events:        slices.Clone(g.Events),
		Relations:     slices.Clone(g.Relations),
		Marking:       g.Marking.Clone(),
		SubProcessMap: maps.Clone(g.SubProcessMap),
	}
	if res.SubProcessMap == nil {
		res.SubProcessMap = map[string]string{}
	}
	for _, gr := range g.Groups {
		gr.Members = slices.Clone(gr.Members)
		res.Groups = append(res.Groups, gr)
	}
	return res
}

// Validate checks that every id referenced by relations, marking and groups exists.
// Groups are addressable as relation endpoints through their pseudo-event id.
func (g *Graph) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(g.Events))
	for _, e := range g.Events {
		if e.Id == "" {
			errs = append(errs, errors.New("event with empty id"))
			continue
		}
		if seen[e.Id] {
			errs = append(errs, fmt.Errorf("duplicate event id %s", e.Id))
		}
		seen[e.Id] = true
	}
	known := func(id string) bool {
		return seen[id] || g.IsGroup(id)
	}
	for _, r := range g.Relations {
		if _, ok := relationKindNames[r.Kind]; !ok {
			errs = append(errs, fmt.Errorf("relation %s has unknown kind", r))
		}
		if !known(r.Source) || !known(r.Target) {
			errs = append(errs, fmt.Errorf("relation %s references unknown event", r))
		}
	}
	markingSets := []struct {
		name string
		set  Set
	}{{"executed", g.Marking.Executed}, {"included", g.Marking.Included}, {"pending", g.Marking.Pending}}
	for _, ms := range markingSets {
		for _, id := range ms.set.Sorted() {
			if !known(id) {
				errs = append(errs, fmt.Errorf("marking %s contains unknown event %s", ms.name, id))
			}
		}
	}
	for eventId, groupId := range g.SubProcessMap {
		if !seen[eventId] {
			errs = append(errs, fmt.Errorf("sub-process map contains unknown event %s", eventId))
		}
		if !g.IsGroup(groupId) {
			errs = append(errs, fmt.Errorf("event %s mapped to unknown group %s", eventId, groupId))
		}
	}
	for _, gr := range g.Groups {
		if gr.Kind == GroupKindNesting && seen[gr.Id] {
			errs = append(errs, fmt.Errorf("nesting group %s collides with an event id", gr.Id))
		}
		if gr.Parent != "" && !g.IsGroup(gr.Parent) {
			errs = append(errs, fmt.Errorf("group %s has unknown parent %s", gr.Id, gr.Parent))
		}
	}
	return errors.Join(errs...)
}
