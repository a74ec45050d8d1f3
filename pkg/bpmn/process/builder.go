package process

import "fmt"

// Builder assembles a Process. Flow ids are generated when not given.
type Builder struct {
	p *Process
}

func NewBuilder(id string) *Builder {
	return &Builder{p: &Process{Id: id}}
}

func (b *Builder) Name(name string) *Builder {
	b.p.Name = name
	return b
}

func (b *Builder) Node(id string, kind NodeKind, label string) *Builder {
	b.p.Nodes = append(b.p.Nodes, Node{Id: id, Kind: kind, Label: label})
	return b
}

func (b *Builder) Start(id string) *Builder       { return b.Node(id, StartEvent, "") }
func (b *Builder) End(id string) *Builder         { return b.Node(id, EndEvent, "") }
func (b *Builder) Task(id, label string) *Builder { return b.Node(id, Task, label) }
func (b *Builder) Exclusive(id string) *Builder   { return b.Node(id, ExclusiveGateway, "") }
func (b *Builder) Parallel(id string) *Builder    { return b.Node(id, ParallelGateway, "") }
func (b *Builder) Inclusive(id string) *Builder   { return b.Node(id, InclusiveGateway, "") }

func (b *Builder) SubProcess(id, label string, inner *Process) *Builder {
	b.p.Nodes = append(b.p.Nodes, Node{Id: id, Kind: SubProcess, Label: label, SubProcess: inner})
	return b
}

// Flow adds a sequence flow, a chain of ids adds one flow per consecutive pair.
func (b *Builder) Flow(ids ...string) *Builder {
	for i := 0; i+1 < len(ids); i++ {
		b.FlowWithId(fmt.Sprintf("flow_%d", len(b.p.Flows)+1), ids[i], ids[i+1])
	}
	return b
}

func (b *Builder) FlowWithId(id, source, target string) *Builder {
	b.p.Flows = append(b.p.Flows, Flow{Id: id, SourceId: source, TargetId: target})
	return b
}

func (b *Builder) Build() *Process {
	return b.p
}
