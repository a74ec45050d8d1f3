package translate

import (
	"slices"

	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/dcr"
)

// scope translates the flows of a single process level.
type scope struct {
	p         *process.Process
	graph     *dcr.Graph
	reachable map[string]bool
	backEdges map[process.Edge]bool
	pairs     map[string]string
}

func (s *scope) node(id string) process.Node {
	n, _ := s.p.Node(id)
	return n
}

func (s *scope) isGateway(id string) bool {
	return s.node(id).Kind.IsGateway()
}

func (s *scope) relate(source, target string, kind dcr.RelationKind) {
	s.graph.AddRelation(dcr.Relation{Source: source, Target: target, Kind: kind})
}

// addLinks emits the relations for every path from event u through zero or
// more gateways to another event. The relation guarding the target depends on
// the last converging gateway of the path: inclusive joins wait with a
// milestone, every other path with a condition. A path that closes a cycle
// only leaves a response, the target has already run once when it is repeated.
func (s *scope) addLinks(u string) {
	type state struct {
		node string
		join process.NodeKind
		back bool
	}
	visited := map[state]bool{}

	var walk func(node string, join process.NodeKind, back bool)
	walk = func(node string, join process.NodeKind, back bool) {
		for _, next := range s.p.Successors(node) {
			if !s.reachable[next] {
				continue
			}
			nextBack := back || s.backEdges[process.Edge{SourceId: node, TargetId: next}]
			if !s.isGateway(next) {
				s.link(u, next, join, nextBack)
				continue
			}
			nextJoin := join
			if s.p.GatewayRole(next).Joins() {
				nextJoin = s.node(next).Kind
			}
			st := state{node: next, join: nextJoin, back: nextBack}
			if visited[st] {
				continue
			}
			visited[st] = true
			walk(next, nextJoin, nextBack)
		}
	}
	walk(u, 0, false)
}

func (s *scope) link(u, v string, join process.NodeKind, back bool) {
	s.relate(u, v, dcr.Response)
	if u != v && !back {
		if join == process.InclusiveGateway {
			s.relate(u, v, dcr.Milestone)
		} else {
			s.relate(u, v, dcr.Condition)
		}
	}
	if s.node(v).Kind == process.SubProcess {
		s.relate(u, v, dcr.Include)
	}
}

// entries returns the events reached from node by passing only through gateways.
func (s *scope) entries(node string) []string {
	var res []string
	visited := map[string]bool{}
	var walk func(string)
	walk = func(id string) {
		if visited[id] || !s.reachable[id] {
			return
		}
		visited[id] = true
		if !s.isGateway(id) {
			res = append(res, id)
			return
		}
		for _, next := range s.p.Successors(id) {
			walk(next)
		}
	}
	walk(node)
	return res
}

// predecessors returns the events that reach gateway g through gateways only.
func (s *scope) predecessors(g string) []string {
	var res []string
	visited := map[string]bool{g: true}
	var walk func(string)
	walk = func(id string) {
		for _, f := range s.p.Incoming(id) {
			src := f.SourceId
			if visited[src] || !s.reachable[src] {
				continue
			}
			visited[src] = true
			if s.isGateway(src) {
				walk(src)
			} else {
				res = append(res, src)
			}
		}
	}
	walk(g)
	return res
}

// joinSuccessors returns the events directly after the join paired with split g.
func (s *scope) joinSuccessors(g string) []string {
	join, ok := s.pairs[g]
	if !ok {
		return nil
	}
	var res []string
	for _, next := range s.p.Successors(join) {
		for _, e := range s.entries(next) {
			if !slices.Contains(res, e) {
				res = append(res, e)
			}
		}
	}
	return res
}

// forwardJoin returns the join paired with g if it lies downstream of g.
// A paired join that can reach g again is the merge point of a loop.
func (s *scope) forwardJoin(g string) string {
	join, ok := s.pairs[g]
	if !ok || s.p.Reachable(join)[g] {
		return ""
	}
	return join
}

// region collects the events downstream of start without crossing split g or
// its forward join. loopBack is set when the walk arrives back at g.
func (s *scope) region(start, g, join string) (events []string, loopBack bool) {
	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == g {
			loopBack = true
			continue
		}
		if current == join || visited[current] || !s.reachable[current] {
			continue
		}
		visited[current] = true
		if !s.isGateway(current) {
			events = append(events, current)
		}
		queue = append(queue, s.p.Successors(current)...)
	}
	return events, loopBack
}

type exclusiveBranch struct {
	entries  []string
	region   []string
	loopBack bool
}

// exclusiveSplit makes the branches of g mutually exclusive: every entry of a
// branch excludes the events of all sibling branches. Branches looping back to
// g never exclude, so a loop can be repeated and still be left.
func (s *scope) exclusiveSplit(g string) process.Diagnostics {
	var diagnostics process.Diagnostics
	join := s.forwardJoin(g)

	var branches []exclusiveBranch
	for _, f := range s.p.Outgoing(g) {
		if join != "" && f.TargetId == join {
			diagnostics = append(diagnostics, process.Diagnostic{
				NodeId:   g,
				Kind:     process.UnsupportedConstruct,
				Severity: process.SeverityWarning,
				Message:  "exclusive branch " + f.Id + " has no activity, it cannot exclude its siblings",
			})
			continue
		}
		region, loopBack := s.region(f.TargetId, g, join)
		branches = append(branches, exclusiveBranch{
			entries:  s.entries(f.TargetId),
			region:   region,
			loopBack: loopBack,
		})
	}

	for i, bi := range branches {
		if bi.loopBack {
			continue
		}
		for j, bj := range branches {
			if i == j {
				continue
			}
			for _, target := range bj.region {
				if slices.Contains(bi.region, target) {
					continue
				}
				for _, entry := range bi.entries {
					if entry != target {
						s.relate(entry, target, dcr.Exclude)
					}
				}
			}
		}
	}
	return diagnostics
}

// parallelSplit makes the join successors a pending obligation as soon as the split fires.
func (s *scope) parallelSplit(g string) {
	successors := s.joinSuccessors(g)
	for _, p := range s.predecessors(g) {
		for _, t := range successors {
			s.relate(p, t, dcr.Response)
		}
	}
}

// inclusiveSplit guards the join successors by the split. Every event of a
// branch holds the successors back with a milestone while it is pending, and
// the successors close every branch once they run.
func (s *scope) inclusiveSplit(g string) {
	successors := s.joinSuccessors(g)
	join := s.pairs[g]
	for _, p := range s.predecessors(g) {
		for _, t := range successors {
			s.relate(p, t, dcr.Condition)
			s.relate(p, t, dcr.Response)
		}
	}
	for _, f := range s.p.Outgoing(g) {
		if f.TargetId == join {
			continue
		}
		branch, _ := s.region(f.TargetId, g, join)
		for _, x := range branch {
			for _, t := range successors {
				if t == x {
					continue
				}
				s.relate(x, t, dcr.Milestone)
				s.relate(t, x, dcr.Exclude)
			}
		}
	}
}
