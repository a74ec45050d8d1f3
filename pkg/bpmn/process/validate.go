package process

import "slices"

// Validate checks the structural rules of a process model and its nested
// sub-processes. All findings are returned as diagnostics; the caller decides
// which ones are fatal.
func Validate(p *Process) Diagnostics {
	var res Diagnostics

	ids := map[string]bool{}
	for _, n := range p.Nodes {
		if ids[n.Id] {
			res = append(res, errorf(n.Id, UnsupportedConstruct, "duplicate node id"))
		}
		ids[n.Id] = true
	}
	for _, f := range p.Flows {
		if !ids[f.SourceId] {
			res = append(res, errorf(f.SourceId, UnsupportedConstruct, "sequence flow %s starts at unknown node", f.Id))
		}
		if !ids[f.TargetId] {
			res = append(res, errorf(f.TargetId, UnsupportedConstruct, "sequence flow %s ends at unknown node", f.Id))
		}
	}

	switch starts := p.StartEvents(); len(starts) {
	case 0:
		res = append(res, errorf(p.Id, UnsupportedConstruct, "process has no start event"))
	case 1:
	default:
		for _, s := range starts[1:] {
			res = append(res, warnf(s.Id, UnsupportedConstruct, "process has more than one start event"))
		}
	}
	if len(p.EndEvents()) == 0 {
		res = append(res, warnf(p.Id, UnsupportedConstruct, "process has no end event"))
	}

	for _, n := range p.Nodes {
		in, out := len(p.Incoming(n.Id)), len(p.Outgoing(n.Id))
		switch n.Kind {
		case Task, SubProcess:
			if in != 1 || out != 1 {
				res = append(res, warnf(n.Id, UnsupportedConstruct,
					"activity should have exactly one incoming and one outgoing flow, has %d and %d", in, out))
			}
			if n.Kind == SubProcess {
				if n.SubProcess == nil {
					res = append(res, errorf(n.Id, UnsupportedConstruct, "sub-process has no inner model"))
				} else {
					res = append(res, Validate(n.SubProcess)...)
				}
			}
		case StartEvent:
			if in > 0 {
				res = append(res, warnf(n.Id, UnsupportedConstruct, "start event has incoming flows"))
			}
		case EndEvent:
			if out > 0 {
				res = append(res, warnf(n.Id, UnsupportedConstruct, "end event has outgoing flows"))
			}
		case ExclusiveGateway, ParallelGateway, InclusiveGateway:
			if in == 0 && out == 0 {
				res = append(res, errorf(n.Id, MalformedGateway, "gateway has no flows"))
				continue
			}
			if p.GatewayRole(n.Id) == RoleNone {
				res = append(res, warnf(n.Id, MalformedGateway,
					"gateway is neither a split nor a join (%d incoming, %d outgoing)", in, out))
			}
		default:
			panic("[invariant check] unsupported node kind " + n.Kind.String())
		}
	}

	var roots []string
	for _, s := range p.StartEvents() {
		roots = append(roots, s.Id)
	}
	reachable := p.Reachable(roots...)
	for _, n := range p.Nodes {
		if len(roots) > 0 && !reachable[n.Id] {
			res = append(res, warnf(n.Id, UnreachableNode, "node is not reachable from a start event"))
		}
	}
	return res
}

// FlattenNodes returns the nodes of p and of every nested sub-process, depth first.
func FlattenNodes(p *Process) []Node {
	res := slices.Clone(p.Nodes)
	for _, n := range p.Nodes {
		if n.Kind == SubProcess && n.SubProcess != nil {
			res = append(res, FlattenNodes(n.SubProcess)...)
		}
	}
	return res
}
