package translate

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rel(kind dcr.RelationKind, source, target string) dcr.Relation {
	return dcr.Relation{Source: source, Target: target, Kind: kind}
}

func translate(t *testing.T, p *process.Process) (*dcr.Graph, process.Diagnostics) {
	t.Helper()
	graph, diagnostics, err := New().Translate(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, graph)
	return graph, diagnostics
}

func exclusiveScenario() *process.Process {
	return process.NewBuilder("scenario").
		Start("start").Task("A", "Task A").Exclusive("split").Task("B", "Task B").Task("C", "Task C").Exclusive("join").End("end").
		Flow("start", "A", "split").
		Flow("split", "B", "join").
		Flow("split", "C", "join").
		Flow("join", "end").
		Build()
}

func TestExclusiveSplitJoin(t *testing.T) {
	// when
	graph, diagnostics := translate(t, exclusiveScenario())

	// then
	assert.Empty(t, diagnostics)
	assert.Equal(t, []string{"start", "A", "B", "C", "end"}, eventIds(graph))
	assert.Equal(t, []dcr.Relation{
		rel(dcr.Condition, "A", "B"),
		rel(dcr.Response, "A", "B"),
		rel(dcr.Condition, "A", "C"),
		rel(dcr.Response, "A", "C"),
		rel(dcr.Exclude, "B", "C"),
		rel(dcr.Condition, "B", "end"),
		rel(dcr.Response, "B", "end"),
		rel(dcr.Exclude, "C", "B"),
		rel(dcr.Condition, "C", "end"),
		rel(dcr.Response, "C", "end"),
		rel(dcr.Condition, "start", "A"),
		rel(dcr.Response, "start", "A"),
	}, graph.Relations)
	assert.ElementsMatch(t, []string{"start", "A", "B", "C", "end"}, graph.Marking.Included.Sorted())
	assert.Equal(t, []string{"start"}, graph.Marking.Pending.Sorted())
	assert.Empty(t, graph.Marking.Executed.Sorted())
}

func TestParallelSplitJoin(t *testing.T) {
	// given
	p := process.NewBuilder("and").
		Start("s").Task("P", "").Parallel("fork").Task("A", "").Task("B", "").Parallel("sync").Task("J", "").End("e").
		Flow("s", "P", "fork").
		Flow("fork", "A", "sync").
		Flow("fork", "B", "sync").
		Flow("sync", "J", "e").
		Build()

	// when
	graph, _ := translate(t, p)

	// then
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "A", "J"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "B", "J"))
	assert.Contains(t, graph.Relations, rel(dcr.Response, "P", "A"))
	assert.Contains(t, graph.Relations, rel(dcr.Response, "P", "B"))
	assert.Contains(t, graph.Relations, rel(dcr.Response, "P", "J"))
	for _, r := range graph.Relations {
		assert.NotEqual(t, dcr.Exclude, r.Kind, "parallel branches must not exclude each other: %s", r)
	}
}

func TestInclusiveSplitJoin(t *testing.T) {
	// given
	p := process.NewBuilder("or").
		Start("s").Task("P", "").Inclusive("fork").Task("A", "").Task("B", "").Inclusive("merge").Task("J", "").End("e").
		Flow("s", "P", "fork").
		Flow("fork", "A", "merge").
		Flow("fork", "B", "merge").
		Flow("merge", "J", "e").
		Build()

	// when
	graph, _ := translate(t, p)

	// then
	assert.Contains(t, graph.Relations, rel(dcr.Milestone, "A", "J"))
	assert.Contains(t, graph.Relations, rel(dcr.Milestone, "B", "J"))
	assert.NotContains(t, graph.Relations, rel(dcr.Condition, "A", "J"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "P", "J"))
	assert.Contains(t, graph.Relations, rel(dcr.Exclude, "J", "A"))
	assert.Contains(t, graph.Relations, rel(dcr.Exclude, "J", "B"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "J", "e"))
}

func TestExclusiveLoopBranchDoesNotExclude(t *testing.T) {
	// given
	p := process.NewBuilder("loop").
		Start("s").Exclusive("merge").Task("work", "").Exclusive("check").Task("done", "").End("e").
		Flow("s", "merge", "work", "check", "merge").
		Flow("check", "done", "e").
		Build()

	// when
	graph, diagnostics := translate(t, p)

	// then
	assert.Empty(t, diagnostics)
	assert.Contains(t, graph.Relations, rel(dcr.Exclude, "done", "work"))
	assert.NotContains(t, graph.Relations, rel(dcr.Exclude, "work", "done"))
	assert.Contains(t, graph.Relations, rel(dcr.Response, "work", "work"))
	assert.NotContains(t, graph.Relations, rel(dcr.Condition, "work", "work"))
}

func reworkLoop() *process.Process {
	return process.NewBuilder("rework").
		Start("s").Exclusive("merge").Task("work", "").Exclusive("check").Task("fix", "").Task("done", "").End("e").
		Flow("s", "merge", "work", "check").
		Flow("check", "fix", "merge").
		Flow("check", "done", "e").
		Build()
}

func TestLoopBackBranchWithTaskOnlyResponds(t *testing.T) {
	// when
	graph, diagnostics := translate(t, reworkLoop())

	// then
	assert.Empty(t, diagnostics)
	assert.Contains(t, graph.Relations, rel(dcr.Response, "fix", "work"))
	assert.NotContains(t, graph.Relations, rel(dcr.Condition, "fix", "work"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "s", "work"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "work", "fix"))
	assert.Contains(t, graph.Relations, rel(dcr.Exclude, "done", "fix"))
	assert.Contains(t, graph.Relations, rel(dcr.Exclude, "done", "work"))
	assert.NotContains(t, graph.Relations, rel(dcr.Exclude, "fix", "done"))
}

func TestInclusiveBranchWithSeveralTasks(t *testing.T) {
	// given
	p := process.NewBuilder("or-chain").
		Start("s").Task("P", "").Inclusive("fork").Task("A1", "").Task("A2", "").Task("B", "").Inclusive("merge").Task("J", "").End("e").
		Flow("s", "P", "fork").
		Flow("fork", "A1", "A2", "merge").
		Flow("fork", "B", "merge").
		Flow("merge", "J", "e").
		Build()

	// when
	graph, _ := translate(t, p)

	// then
	for _, id := range []string{"A1", "A2", "B"} {
		assert.Contains(t, graph.Relations, rel(dcr.Milestone, id, "J"))
		assert.Contains(t, graph.Relations, rel(dcr.Exclude, "J", id))
	}
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "A1", "A2"))
	assert.NotContains(t, graph.Relations, rel(dcr.Milestone, "P", "J"))
}

func TestExclusiveEmptyBranchIsReported(t *testing.T) {
	// given
	p := process.NewBuilder("skip").
		Start("s").Exclusive("split").Task("A", "").Exclusive("join").End("e").
		Flow("s", "split").
		Flow("split", "A", "join").
		Flow("split", "join").
		Flow("join", "e").
		Build()

	// when
	graph, diagnostics := translate(t, p)

	// then
	unsupported := diagnostics.OfKind(process.UnsupportedConstruct)
	require.Len(t, unsupported, 1)
	assert.Equal(t, "split", unsupported[0].NodeId)
	assert.Contains(t, graph.Relations, rel(dcr.Response, "s", "e"))
}

func TestSubProcessBecomesGroup(t *testing.T) {
	// given
	inner := process.NewBuilder("inner").
		Start("is").Task("x", "X").End("ie").
		Flow("is", "x", "ie").
		Build()
	p := process.NewBuilder("outer").
		Start("s").SubProcess("sub", "Sub", inner).Task("after", "").End("e").
		Flow("s", "sub", "after", "e").
		Build()

	// when
	graph, diagnostics := translate(t, p)

	// then
	assert.Empty(t, diagnostics)
	group, ok := graph.Group("sub")
	require.True(t, ok)
	assert.Equal(t, dcr.GroupKindSubProcess, group.Kind)
	assert.Equal(t, "", group.Parent)
	assert.Equal(t, []string{"is", "x", "ie"}, group.Members)
	for _, id := range group.Members {
		assert.Equal(t, "sub", graph.GroupOf(id))
	}
	assert.Equal(t, "", graph.GroupOf("sub"))

	assert.Contains(t, graph.Relations, rel(dcr.Include, "s", "sub"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "sub", "after"))
	assert.Contains(t, graph.Relations, rel(dcr.Condition, "is", "x"))
	assert.False(t, graph.Marking.IsIncluded("sub"))
	assert.True(t, graph.Marking.IsPending("is"))
}

func TestNestedSubProcessParents(t *testing.T) {
	// given
	deepest := process.NewBuilder("deepest").Start("ds").End("de").Flow("ds", "de").Build()
	middle := process.NewBuilder("middle").
		Start("ms").SubProcess("inner", "Inner", deepest).End("me").
		Flow("ms", "inner", "me").
		Build()
	p := process.NewBuilder("top").
		Start("s").SubProcess("outer", "Outer", middle).End("e").
		Flow("s", "outer", "e").
		Build()

	// when
	graph, _ := translate(t, p)

	// then
	inner, ok := graph.Group("inner")
	require.True(t, ok)
	assert.Equal(t, "outer", inner.Parent)
	assert.Equal(t, "inner", graph.GroupOf("ds"))
	assert.Equal(t, "outer", graph.GroupOf("inner"))
	assert.NoError(t, graph.Validate())
}

func TestUnreachableNodeIsDropped(t *testing.T) {
	// given
	p := process.NewBuilder("dangling").
		Start("s").Task("a", "").Task("ghost", "").End("e").
		Flow("s", "a", "e").
		Flow("ghost", "e").
		Build()

	// when
	graph, diagnostics := translate(t, p)

	// then
	unreachable := diagnostics.OfKind(process.UnreachableNode)
	require.Len(t, unreachable, 1)
	assert.Equal(t, "ghost", unreachable[0].NodeId)
	assert.False(t, graph.HasEvent("ghost"))
	for _, r := range graph.Relations {
		assert.NotEqual(t, "ghost", r.Source)
	}
}

func TestMissingStartEventIsFatal(t *testing.T) {
	// given
	p := process.NewBuilder("headless").Task("a", "").End("e").Flow("a", "e").Build()

	// when
	graph, diagnostics, err := New().Translate(context.Background(), p)

	// then
	assert.Nil(t, graph)
	var translationError *TranslationError
	require.True(t, errors.As(err, &translationError))
	assert.Equal(t, "headless", translationError.ProcessId)
	assert.True(t, diagnostics.HasErrors())
}

func TestGatewayWithoutFlowsIsFatal(t *testing.T) {
	// given
	p := process.NewBuilder("stray").
		Start("s").Exclusive("nowhere").End("e").
		Flow("s", "e").
		Build()

	// when
	_, _, err := New().Translate(context.Background(), p)

	// then
	var translationError *TranslationError
	require.ErrorAs(t, err, &translationError)
	require.Len(t, translationError.Diagnostics, 1)
	assert.Equal(t, process.MalformedGateway, translationError.Diagnostics[0].Kind)
}

func TestTranslationIgnoresDeclarationOrder(t *testing.T) {
	// given
	p := exclusiveScenario()
	shuffled := &process.Process{Id: p.Id, Nodes: slices.Clone(p.Nodes), Flows: slices.Clone(p.Flows)}
	slices.Reverse(shuffled.Nodes)
	slices.Reverse(shuffled.Flows)

	// when
	a, _ := translate(t, p)
	b, _ := translate(t, shuffled)

	// then
	assert.Equal(t, a.Relations, b.Relations)
	assert.True(t, a.Marking.Equal(b.Marking))
}

func TestPlaceholderLabels(t *testing.T) {
	// given
	p := process.NewBuilder("labels").
		Start("s").Task("t1", "").Exclusive("split").End("e1").End("e2").
		Flow("s", "t1", "split").
		Flow("split", "e1").
		Flow("split", "e2").
		Build()

	// when
	graph, _ := translate(t, p)

	// then
	labels := map[string]string{}
	for _, e := range graph.Events {
		labels[e.Id] = e.Label
	}
	assert.Equal(t, map[string]string{
		"s":  "Start Event",
		"t1": "Task t1",
		"e1": "End Event 1",
		"e2": "End Event 2",
	}, labels)
}

func TestCustomPlaceholder(t *testing.T) {
	// given
	translator := New(WithPlaceholderLabel(func(n process.Node, _ int) string { return "?" + n.Id }))

	// when
	graph, _, err := translator.Translate(context.Background(), exclusiveScenario())

	// then
	require.NoError(t, err)
	ev, ok := graph.Event("end")
	require.True(t, ok)
	assert.Equal(t, "?end", ev.Label)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New().Translate(ctx, exclusiveScenario())

	assert.ErrorIs(t, err, context.Canceled)
}

func eventIds(g *dcr.Graph) []string {
	ids := make([]string, len(g.Events))
	for i, e := range g.Events {
		ids[i] = e.Id
	}
	return ids
}
