package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/dcr"
)

// Translator lowers a process model into a DCR graph.
// It holds no mutable state, one Translator may serve concurrent requests.
type Translator struct {
	logger      hclog.Logger
	placeholder PlaceholderFunc
}

// PlaceholderFunc names a node with an empty label. ordinal is the 1-based
// position of the node among nodes of the same kind in its process.
type PlaceholderFunc func(n process.Node, ordinal int) string

type Option func(*Translator)

func WithLogger(logger hclog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

func WithPlaceholderLabel(f PlaceholderFunc) Option {
	return func(t *Translator) {
		t.placeholder = f
	}
}

func New(opts ...Option) *Translator {
	t := &Translator{
		logger:      hclog.Default().Named("translator"),
		placeholder: SystemName,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SystemName is the default placeholder for unlabeled nodes.
func SystemName(n process.Node, ordinal int) string {
	switch n.Kind {
	case process.StartEvent:
		return "Start Event"
	case process.EndEvent:
		return fmt.Sprintf("End Event %d", ordinal)
	case process.Task:
		return "Task " + n.Id
	case process.SubProcess:
		return "Sub-process " + n.Id
	default:
		return n.Id
	}
}

// Translate produces the DCR graph of p together with every diagnostic found on
// the way. An error is returned only when the model cannot be translated at all;
// the diagnostics are returned in both cases.
func (t *Translator) Translate(ctx context.Context, p *process.Process) (*dcr.Graph, process.Diagnostics, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, &TranslationError{Msg: "process model is nil"}
	}

	diagnostics := process.Validate(p)
	if diagnostics.HasErrors() {
		var fatal process.Diagnostics
		for _, d := range diagnostics {
			if d.Severity == process.SeverityError {
				fatal = append(fatal, d)
			}
		}
		return nil, diagnostics, &TranslationError{
			ProcessId:   p.Id,
			Msg:         "process model is structurally unrecoverable",
			Diagnostics: fatal,
		}
	}

	graph := dcr.NewGraph(p.Id)
	graph.Name = p.Name
	_, scopeDiagnostics := t.translateScope(graph, p, "")
	diagnostics = append(diagnostics, scopeDiagnostics...)
	graph.NormalizeRelations()

	if err := graph.Validate(); err != nil {
		return nil, diagnostics, errors.Join(&TranslationError{ProcessId: p.Id, Msg: "produced graph is inconsistent"}, err)
	}
	for _, d := range diagnostics {
		t.logger.Debug("translation diagnostic", "process", p.Id, "node", d.NodeId, "kind", d.Kind, "message", d.Message)
	}
	t.logger.Debug("translated process", "process", p.Id, "events", len(graph.Events), "relations", len(graph.Relations))
	return graph, diagnostics, nil
}

// translateScope adds the events and relations of one process level to graph and
// returns the ids of the events it created directly.
func (t *Translator) translateScope(graph *dcr.Graph, p *process.Process, group string) ([]string, process.Diagnostics) {
	var roots []string
	for _, s := range p.StartEvents() {
		roots = append(roots, s.Id)
	}
	s := &scope{
		p:         p,
		graph:     graph,
		reachable: p.Reachable(roots...),
		backEdges: p.BackEdges(roots...),
		pairs:     process.PairGateways(p),
	}

	var members []string
	var diagnostics process.Diagnostics
	ordinals := map[process.NodeKind]int{}
	for _, n := range p.Nodes {
		if n.Kind.IsGateway() {
			continue
		}
		ordinals[n.Kind]++
		if !s.reachable[n.Id] {
			continue
		}
		label := n.Label
		if label == "" {
			label = t.placeholder(n, ordinals[n.Kind])
		}
		if !graph.AddEvent(dcr.Event{Id: n.Id, Label: label}) {
			diagnostics = append(diagnostics, process.Diagnostic{
				NodeId:   n.Id,
				Kind:     process.UnsupportedConstruct,
				Severity: process.SeverityWarning,
				Message:  "node id is already used by another process level, node skipped",
			})
			continue
		}
		members = append(members, n.Id)
		if group != "" {
			graph.SubProcessMap[n.Id] = group
		}

		switch n.Kind {
		case process.StartEvent:
			graph.Marking.Included.Add(n.Id)
			graph.Marking.Pending.Add(n.Id)
		case process.Task, process.EndEvent:
			graph.Marking.Included.Add(n.Id)
		case process.SubProcess:
			// the boundary stays excluded until its inbound flow includes it
			idx := len(graph.Groups)
			graph.Groups = append(graph.Groups, dcr.Group{
				Id:     n.Id,
				Label:  label,
				Kind:   dcr.GroupKindSubProcess,
				Parent: group,
			})
			inner, innerDiagnostics := t.translateScope(graph, n.SubProcess, n.Id)
			graph.Groups[idx].Members = inner
			diagnostics = append(diagnostics, innerDiagnostics...)
		default:
			panic("[invariant check] unsupported node kind " + n.Kind.String())
		}
	}

	for _, id := range members {
		s.addLinks(id)
	}
	for _, n := range p.Nodes {
		if !n.Kind.IsGateway() || !s.reachable[n.Id] || !p.GatewayRole(n.Id).Splits() {
			continue
		}
		switch n.Kind {
		case process.ExclusiveGateway:
			diagnostics = append(diagnostics, s.exclusiveSplit(n.Id)...)
		case process.ParallelGateway:
			s.parallelSplit(n.Id)
		case process.InclusiveGateway:
			s.inclusiveSplit(n.Id)
		}
	}
	return members, diagnostics
}
