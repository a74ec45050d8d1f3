package dcrxml

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	"github.com/pbinitiative/zendcr/pkg/dcr/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenario(t *testing.T) *dcr.Graph {
	t.Helper()
	p := process.NewBuilder("scenario").
		Start("start").Task("A", "Task A").Exclusive("split").Task("B", "Task B").Task("C", "Task C").Exclusive("join").End("end").
		Flow("start", "A", "split").
		Flow("split", "B", "join").
		Flow("split", "C", "join").
		Flow("join", "end").
		Build()
	graph, _, err := translate.New().Translate(context.Background(), p)
	require.NoError(t, err)
	return graph
}

func TestMarshalContainsEveryRelation(t *testing.T) {
	// given
	graph := scenario(t)

	// when
	out, err := Marshal(graph)
	require.NoError(t, err)

	// then
	var doc tDcrGraph
	require.NoError(t, xml.Unmarshal(out, &doc))
	c := doc.Specification.Constraints
	total := len(c.Conditions.Relation) + len(c.Responses.Relation) + len(c.Includes.Relation) +
		len(c.Excludes.Relation) + len(c.Milestones.Relation)
	assert.Equal(t, len(graph.Relations), total)
	assert.Len(t, c.Excludes.Relation, 2)
	assert.Contains(t, string(out), `<id id="Relation_12"></id>`)
	assert.NotContains(t, string(out), "Relation_13")
	assert.Contains(t, string(out), `<condition sourceId="A" targetId="B">`)
}

func TestMarshalResourcesAndMarking(t *testing.T) {
	// given
	graph := scenario(t)

	// when
	out, err := Marshal(graph)
	require.NoError(t, err)

	// then
	var doc tDcrGraph
	require.NoError(t, xml.Unmarshal(out, &doc))
	events := doc.Specification.Resources.Events.Event
	require.Len(t, events, 5)
	assert.Equal(t, tLocation{XLoc: 100, YLoc: 100}, events[0].Custom.Visualization.Location)
	assert.Equal(t, tLocation{XLoc: 820, YLoc: 100}, events[4].Custom.Visualization.Location)
	assert.Equal(t, "End Event 1", doc.Specification.Resources.Labels.Label[0].Id)
	assert.Len(t, doc.Runtime.Marking.Included.Event, 5)
	assert.Equal(t, []tEventId{{Id: "start"}}, doc.Runtime.Marking.PendingResponses.Event)
	assert.Empty(t, doc.Runtime.Marking.Executed.Event)
	assert.True(t, strings.HasPrefix(string(out), "<?xml"))
}

func TestMarshalWrapsGridRows(t *testing.T) {
	// given
	g := dcr.NewGraph("grid")
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		g.AddEvent(dcr.Event{Id: id, Label: id})
	}

	// when
	out, err := Marshal(g)
	require.NoError(t, err)

	// then
	var doc tDcrGraph
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Equal(t, tLocation{XLoc: 100, YLoc: 300}, doc.Specification.Resources.Events.Event[5].Custom.Visualization.Location)
}

func TestMarshalListsGroups(t *testing.T) {
	// given
	g := dcr.NewGraph("groups")
	g.AddEvent(dcr.Event{Id: "sub", Label: "Sub"})
	g.AddEvent(dcr.Event{Id: "x", Label: "X"})
	g.Groups = []dcr.Group{{Id: "sub", Label: "Sub", Kind: dcr.GroupKindSubProcess, Members: []string{"x"}}}

	// when
	out, err := Marshal(g)
	require.NoError(t, err)

	// then
	var doc tDcrGraph
	require.NoError(t, xml.Unmarshal(out, &doc))
	sps := doc.Specification.Resources.SubProcesses.SubProcess
	require.Len(t, sps, 1)
	assert.Equal(t, "subprocess", sps[0].Kind)
	assert.Equal(t, []tEventId{{Id: "x"}}, sps[0].Events)
}

func TestToDOT(t *testing.T) {
	// given
	graph := scenario(t)

	// when
	dot := ToDOT(graph)

	// then
	assert.True(t, strings.HasPrefix(dot, `digraph "scenario" {`))
	assert.Equal(t, len(graph.Relations), strings.Count(dot, " -> "))
	assert.Contains(t, dot, `label="Task A"`)
	assert.Contains(t, dot, nodeName("start")+` [label="Start Event" style="rounded,bold"];`)
	assert.Equal(t, dot, ToDOT(graph), "output is stable")
}
