package process

import "slices"

// PairGateways matches every split gateway with the join gateway that closes it.
//
// Splits are visited breadth first from the start events. For each split a
// multi-source BFS runs from its branches; the first unpaired converging gateway
// of the same kind that has been reached by every branch (branches that ended
// in an end event count as reached) becomes its join. Splits without such a
// join are left unpaired.
func PairGateways(p *Process) map[string]string {
	pairs := map[string]string{}
	paired := map[string]bool{}

	var roots []string
	for _, s := range p.StartEvents() {
		roots = append(roots, s.Id)
	}
	visited := map[string]bool{}
	for _, r := range roots {
		visited[r] = true
	}
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if p.GatewayRole(current).Splits() && !paired[current] {
			node, _ := p.Node(current)
			var candidates []string
			for _, n := range p.NodesOfKind(node.Kind) {
				if n.Id != current && p.GatewayRole(n.Id).Joins() && !paired[n.Id] {
					candidates = append(candidates, n.Id)
				}
			}
			if join, ok := findJoin(p, current, candidates); ok {
				pairs[current] = join
				paired[current] = true
				paired[join] = true
			}
		}
		for _, next := range p.Successors(current) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return pairs
}

type branchCursor struct {
	node   string
	origin string
}

func findJoin(p *Process, splitId string, candidates []string) (string, bool) {
	children := p.Successors(splitId)
	if len(children) < 2 || len(candidates) == 0 {
		return "", false
	}
	visitedFrom := map[string]map[string]bool{}
	mark := func(node, origin string) bool {
		if visitedFrom[node] == nil {
			visitedFrom[node] = map[string]bool{}
		}
		if visitedFrom[node][origin] {
			return false
		}
		visitedFrom[node][origin] = true
		return true
	}
	terminated := map[string]bool{}
	coversAll := func(node string) bool {
		for _, c := range children {
			if !visitedFrom[node][c] && !terminated[c] {
				return false
			}
		}
		return true
	}

	queue := make([]branchCursor, 0, len(children))
	for _, c := range children {
		mark(c, c)
		queue = append(queue, branchCursor{node: c, origin: c})
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if n, ok := p.Node(cur.node); ok && n.Kind == EndEvent {
			terminated[cur.origin] = true
			for _, candidate := range candidates {
				if len(visitedFrom[candidate]) > 0 && coversAll(candidate) {
					return candidate, true
				}
			}
			continue
		}
		if slices.Contains(candidates, cur.node) && coversAll(cur.node) {
			return cur.node, true
		}
		for _, next := range p.Successors(cur.node) {
			if next == splitId {
				continue
			}
			if mark(next, cur.origin) {
				queue = append(queue, branchCursor{node: next, origin: cur.origin})
			}
		}
	}
	return "", false
}
