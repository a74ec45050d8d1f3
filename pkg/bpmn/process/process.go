package process

import (
	"fmt"
	"slices"
	"sync"
)

type NodeKind int

const (
	Task NodeKind = iota + 1
	StartEvent
	EndEvent
	ExclusiveGateway
	ParallelGateway
	InclusiveGateway
	SubProcess
)

func (k NodeKind) String() string {
	switch k {
	case Task:
		return "TASK"
	case StartEvent:
		return "START_EVENT"
	case EndEvent:
		return "END_EVENT"
	case ExclusiveGateway:
		return "EXCLUSIVE_GATEWAY"
	case ParallelGateway:
		return "PARALLEL_GATEWAY"
	case InclusiveGateway:
		return "INCLUSIVE_GATEWAY"
	case SubProcess:
		return "SUB_PROCESS"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

func (k NodeKind) IsGateway() bool {
	return k == ExclusiveGateway || k == ParallelGateway || k == InclusiveGateway
}

type Node struct {
	Id    string
	Kind  NodeKind
	Label string
	// SubProcess is the nested model of a SubProcess node, nil otherwise.
	SubProcess *Process
}

type Flow struct {
	Id       string
	SourceId string
	TargetId string
}

// Process is the validated BPMN process graph handed to the translator.
// It is read-only once built.
type Process struct {
	Id    string
	Name  string
	Nodes []Node
	Flows []Flow

	mu    sync.Mutex
	index *processIndex
}

// processIndex holds lookups by id. It is rebuilt when nodes or flows were
// appended after it was built.
type processIndex struct {
	nodes, flows int
	nodeIdx      map[string]int
	outgoing     map[string][]Flow
	incoming     map[string][]Flow
	successors   map[string][]string
}

func (p *Process) lookup() *processIndex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index != nil && p.index.nodes == len(p.Nodes) && p.index.flows == len(p.Flows) {
		return p.index
	}
	idx := &processIndex{
		nodes:      len(p.Nodes),
		flows:      len(p.Flows),
		nodeIdx:    make(map[string]int, len(p.Nodes)),
		outgoing:   map[string][]Flow{},
		incoming:   map[string][]Flow{},
		successors: map[string][]string{},
	}
	for i, n := range p.Nodes {
		if _, ok := idx.nodeIdx[n.Id]; !ok {
			idx.nodeIdx[n.Id] = i
		}
	}
	seen := map[[2]string]bool{}
	for _, f := range p.Flows {
		idx.outgoing[f.SourceId] = append(idx.outgoing[f.SourceId], f)
		idx.incoming[f.TargetId] = append(idx.incoming[f.TargetId], f)
		edge := [2]string{f.SourceId, f.TargetId}
		if !seen[edge] {
			seen[edge] = true
			idx.successors[f.SourceId] = append(idx.successors[f.SourceId], f.TargetId)
		}
	}
	p.index = idx
	return idx
}

func (p *Process) Node(id string) (Node, bool) {
	i, ok := p.lookup().nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return p.Nodes[i], true
}

// Outgoing returns the flows leaving id in declaration order.
func (p *Process) Outgoing(id string) []Flow {
	return slices.Clone(p.lookup().outgoing[id])
}

// Incoming returns the flows entering id in declaration order.
func (p *Process) Incoming(id string) []Flow {
	return slices.Clone(p.lookup().incoming[id])
}

// Successors returns the targets of the outgoing flows of id, duplicates removed.
func (p *Process) Successors(id string) []string {
	return slices.Clone(p.lookup().successors[id])
}

func (p *Process) StartEvents() []Node {
	return p.NodesOfKind(StartEvent)
}

func (p *Process) EndEvents() []Node {
	return p.NodesOfKind(EndEvent)
}

func (p *Process) NodesOfKind(kind NodeKind) []Node {
	var res []Node
	for _, n := range p.Nodes {
		if n.Kind == kind {
			res = append(res, n)
		}
	}
	return res
}

// Reachable returns the ids reachable from the given roots, roots included.
// The traversal keeps a visited set, so cyclic flows terminate.
func (p *Process) Reachable(roots ...string) map[string]bool {
	visited := make(map[string]bool, len(p.Nodes))
	queue := slices.Clone(roots)
	for _, r := range roots {
		visited[r] = true
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range p.Successors(current) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// Edge is a source and target pair of a sequence flow.
type Edge struct {
	SourceId string
	TargetId string
}

// BackEdges returns the flows that close a cycle when the process is walked
// depth first from roots. Successors are visited in id order, so the result
// does not depend on the declaration order of flows.
func (p *Process) BackEdges(roots ...string) map[Edge]bool {
	const (
		unvisited = iota
		onStack
		done
	)
	res := map[Edge]bool{}
	state := make(map[string]int, len(p.Nodes))
	var visit func(id string)
	visit = func(id string) {
		state[id] = onStack
		next := p.Successors(id)
		slices.Sort(next)
		for _, n := range next {
			switch state[n] {
			case unvisited:
				visit(n)
			case onStack:
				res[Edge{SourceId: id, TargetId: n}] = true
			}
		}
		state[id] = done
	}
	sorted := slices.Clone(roots)
	slices.Sort(sorted)
	for _, r := range sorted {
		if state[r] == unvisited {
			visit(r)
		}
	}
	return res
}

type GatewayRole int

const (
	RoleNone GatewayRole = iota
	RoleSplit
	RoleJoin
	// RoleMixed gateways converge first and diverge afterwards.
	RoleMixed
)

func (r GatewayRole) String() string {
	switch r {
	case RoleSplit:
		return "Split"
	case RoleJoin:
		return "Join"
	case RoleMixed:
		return "Mixed"
	default:
		return "None"
	}
}

func (r GatewayRole) Splits() bool { return r == RoleSplit || r == RoleMixed }
func (r GatewayRole) Joins() bool  { return r == RoleJoin || r == RoleMixed }

// GatewayRole classifies a gateway by its flow counts. Non gateway nodes are RoleNone.
func (p *Process) GatewayRole(id string) GatewayRole {
	n, ok := p.Node(id)
	if !ok || !n.Kind.IsGateway() {
		return RoleNone
	}
	in, out := len(p.Incoming(id)), len(p.Outgoing(id))
	switch {
	case in >= 2 && out >= 2:
		return RoleMixed
	case out >= 2:
		return RoleSplit
	case in >= 2:
		return RoleJoin
	default:
		return RoleNone
	}
}
