// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package engine

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pbinitiative/zendcr/pkg/dcr"
)

// Engine interprets a DCR graph as a state machine over markings.
// It never stores a marking, callers pass the marking they own into every call.
type Engine struct {
	graph *dcr.Graph
	// incoming holds condition and milestone relations per target, sorted by source then kind
	incoming map[string][]dcr.Relation
	// outgoing holds response, include and exclude relations per source
	outgoing map[string][]dcr.Relation
	// children lists the groups directly nested in a scope, "" is top level
	children map[string][]string
	// scopeEvents lists the events whose innermost group is the scope
	scopeEvents map[string][]string
	parents     map[string]string
}

// EnabledResult explains the enabledness of an event. Blocker names the id that
// prevents execution when Enabled is false.
type EnabledResult struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
	Blocker string `json:"blocker,omitempty"`
}

func New(graph *dcr.Graph) (*Engine, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph must not be nil")
	}
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph %s: %w", graph.Id, err)
	}
	e := &Engine{
		graph:       graph,
		incoming:    map[string][]dcr.Relation{},
		outgoing:    map[string][]dcr.Relation{},
		children:    map[string][]string{},
		scopeEvents: map[string][]string{},
		parents:     map[string]string{},
	}
	for _, r := range graph.Relations {
		switch r.Kind {
		case dcr.Condition, dcr.Milestone:
			if r.Source != r.Target {
				e.incoming[r.Target] = append(e.incoming[r.Target], r)
			}
		case dcr.Response, dcr.Include, dcr.Exclude:
			e.outgoing[r.Source] = append(e.outgoing[r.Source], r)
		}
	}
	for target := range e.incoming {
		slices.SortFunc(e.incoming[target], func(a, b dcr.Relation) int {
			if c := cmp.Compare(a.Source, b.Source); c != 0 {
				return c
			}
			return cmp.Compare(a.Kind, b.Kind)
		})
	}
	for _, gr := range graph.Groups {
		e.parents[gr.Id] = gr.Parent
		e.children[gr.Parent] = append(e.children[gr.Parent], gr.Id)
	}
	for _, id := range graph.EventIds() {
		scope := graph.GroupOf(id)
		e.scopeEvents[scope] = append(e.scopeEvents[scope], id)
	}
	return e, nil
}

func (e *Engine) Graph() *dcr.Graph {
	return e.graph
}

// InitialMarking returns a copy of the graph's declared marking.
func (e *Engine) InitialMarking() dcr.Marking {
	return e.graph.Marking.Clone()
}

// enclosing returns the chain of groups around eventId, innermost first.
func (e *Engine) enclosing(eventId string) []string {
	var res []string
	for group := e.graph.GroupOf(eventId); group != ""; group = e.parents[group] {
		res = append(res, group)
	}
	return res
}

// inScope reports whether source counts for the enabledness of an event whose
// innermost group is scope. Top level events see the whole graph. Sources
// outside the scope, including the pseudo-event of a group, are ignored.
func (e *Engine) inScope(source, scope string) bool {
	if scope == "" {
		return true
	}
	for group := e.graph.GroupOf(source); group != ""; group = e.parents[group] {
		if group == scope {
			return true
		}
	}
	return false
}

// IsEnabled checks the enabledness rules in a fixed order so the reported reason is stable.
func (e *Engine) IsEnabled(m *dcr.Marking, eventId string) (EnabledResult, error) {
	if m == nil {
		return EnabledResult{}, ErrNilMarking
	}
	if !e.graph.HasEvent(eventId) {
		return EnabledResult{}, newUnknownEventError(eventId)
	}
	if !m.IsIncluded(eventId) {
		return EnabledResult{Reason: "event is excluded", Blocker: eventId}, nil
	}
	for _, group := range e.enclosing(eventId) {
		if !m.IsIncluded(group) {
			return EnabledResult{Reason: fmt.Sprintf("enclosing group %s is excluded", group), Blocker: group}, nil
		}
	}

	scope := e.graph.GroupOf(eventId)
	for _, r := range e.incoming[eventId] {
		if !e.inScope(r.Source, scope) || !m.IsIncluded(r.Source) {
			continue
		}
		switch r.Kind {
		case dcr.Condition:
			if !m.IsExecuted(r.Source) {
				return EnabledResult{Reason: fmt.Sprintf("condition %s is not executed", r.Source), Blocker: r.Source}, nil
			}
		case dcr.Milestone:
			if m.IsPending(r.Source) {
				return EnabledResult{Reason: fmt.Sprintf("milestone %s is pending", r.Source), Blocker: r.Source}, nil
			}
		}
	}

	if e.graph.IsSubProcessGroup(eventId) {
		if blocker, ok := e.scopeBlocker(m, eventId); !ok {
			return EnabledResult{Reason: fmt.Sprintf("sub-process %s is not accepting, %s is pending", eventId, blocker), Blocker: blocker}, nil
		}
	}
	return EnabledResult{Enabled: true}, nil
}

// ExecuteOption adjusts a single Execute call.
type ExecuteOption func(*executeOptions)

type executeOptions struct {
	unchecked bool
}

// Unchecked skips the enabledness check. Meant for tests and debugging tools.
func Unchecked() ExecuteOption {
	return func(o *executeOptions) {
		o.unchecked = true
	}
}

// Execute fires eventId against m. When the event is not enabled an
// *ExecutionError is returned and m is left untouched.
func (e *Engine) Execute(m *dcr.Marking, eventId string, opts ...ExecuteOption) error {
	options := executeOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if m == nil {
		return ErrNilMarking
	}
	if !e.graph.HasEvent(eventId) {
		return newUnknownEventError(eventId)
	}
	if !options.unchecked {
		res, err := e.IsEnabled(m, eventId)
		if err != nil {
			return err
		}
		if !res.Enabled {
			return &ExecutionError{Kind: EventNotEnabled, EventId: eventId, Reason: res.Reason}
		}
	}

	m.EnsureSets()
	m.Executed.Add(eventId)
	m.Pending.Remove(eventId)
	effects := e.outgoing[eventId]
	for _, r := range effects {
		if r.Kind == dcr.Response {
			m.Pending.Add(r.Target)
		}
	}
	for _, r := range effects {
		if r.Kind == dcr.Include {
			m.Included.Add(r.Target)
		}
	}
	for _, r := range effects {
		if r.Kind == dcr.Exclude {
			m.Included.Remove(r.Target)
		}
	}
	return nil
}

// IsAccepting reports whether the whole graph may stop in marking m.
func (e *Engine) IsAccepting(m *dcr.Marking) bool {
	return e.ScopeAccepting(m, "")
}

// ScopeAccepting reports whether no included event of scope is pending. Included
// child groups must be accepting as well, excluded ones are ignored. A nil
// marking is never accepting.
func (e *Engine) ScopeAccepting(m *dcr.Marking, scope string) bool {
	if m == nil {
		return false
	}
	_, ok := e.scopeBlocker(m, scope)
	return ok
}

func (e *Engine) scopeBlocker(m *dcr.Marking, scope string) (string, bool) {
	for _, id := range e.scopeEvents[scope] {
		if m.IsIncluded(id) && m.IsPending(id) {
			return id, false
		}
	}
	for _, child := range e.children[scope] {
		if !m.IsIncluded(child) {
			continue
		}
		if blocker, ok := e.scopeBlocker(m, child); !ok {
			return blocker, false
		}
	}
	return "", true
}

// Enabled lists the enabled events of m in ascending id order.
func (e *Engine) Enabled(m *dcr.Marking) []string {
	res := []string{}
	if m == nil {
		return res
	}
	for _, id := range e.graph.EventIds() {
		if r, err := e.IsEnabled(m, id); err == nil && r.Enabled {
			res = append(res, id)
		}
	}
	return res
}
