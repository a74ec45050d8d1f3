package bpmn

import (
	"os"
	"testing"

	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFile(t *testing.T, filename string) (*process.Process, process.Diagnostics) {
	t.Helper()
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	p, diagnostics, err := ParseProcess(data)
	require.NoError(t, err)
	return p, diagnostics
}

func TestParseExclusiveGateway(t *testing.T) {
	// when
	p, diagnostics := parseFile(t, "./test-cases/exclusive-gateway.bpmn")

	// then
	assert.Empty(t, diagnostics)
	assert.Equal(t, "exclusive-gateway", p.Id)
	assert.Equal(t, "Exclusive choice", p.Name)
	assert.Len(t, p.Nodes, 7)
	assert.Len(t, p.Flows, 7)
	split, ok := p.Node("split")
	require.True(t, ok)
	assert.Equal(t, process.ExclusiveGateway, split.Kind)
	assert.Equal(t, process.RoleSplit, p.GatewayRole("split"))
	b, _ := p.Node("B")
	assert.Equal(t, process.Task, b.Kind)
	c, _ := p.Node("C")
	assert.Equal(t, "Task C", c.Label)
}

func TestParseSubProcess(t *testing.T) {
	// when
	p, diagnostics := parseFile(t, "./test-cases/sub-process.bpmn")

	// then
	assert.Empty(t, diagnostics)
	review, ok := p.Node("review")
	require.True(t, ok)
	assert.Equal(t, process.SubProcess, review.Kind)
	require.NotNil(t, review.SubProcess)
	assert.Equal(t, "review", review.SubProcess.Id)
	assert.Len(t, review.SubProcess.Nodes, 3)
	assert.Len(t, review.SubProcess.Flows, 2)
	_, nested := p.Node("check")
	assert.False(t, nested, "inner nodes stay in the sub-process")
}

func TestParseLowersUnsupportedElements(t *testing.T) {
	// when
	p, diagnostics := parseFile(t, "./test-cases/unsupported-elements.bpmn")

	// then
	assert.Equal(t, "unsupported-elements", p.Id)
	call, ok := p.Node("call")
	require.True(t, ok)
	assert.Equal(t, process.Task, call.Kind)
	wait, _ := p.Node("wait")
	assert.Equal(t, process.Task, wait.Kind)
	_, ok = p.Node("timeout")
	assert.False(t, ok)
	for _, f := range p.Flows {
		assert.NotEqual(t, "timeout", f.SourceId)
	}

	reported := map[string]bool{}
	for _, d := range diagnostics.OfKind(process.UnsupportedConstruct) {
		reported[d.NodeId] = true
		assert.Equal(t, process.SeverityWarning, d.Severity)
	}
	assert.Equal(t, map[string]bool{"call": true, "wait": true, "timeout": true, "second": true}, reported)
	assert.False(t, diagnostics.HasErrors())
}

func TestParseGatewayFallbacks(t *testing.T) {
	// given
	data := []byte(`<definitions><process id="fallbacks">
		<startEvent id="s"/>
		<eventBasedGateway id="race"/>
		<complexGateway id="vote"/>
		<endEvent id="e"/>
		<sequenceFlow id="f1" sourceRef="s" targetRef="race"/>
		<sequenceFlow id="f2" sourceRef="race" targetRef="vote"/>
		<sequenceFlow id="f3" sourceRef="vote" targetRef="e"/>
	</process></definitions>`)

	// when
	p, diagnostics, err := ParseProcess(data)

	// then
	require.NoError(t, err)
	race, _ := p.Node("race")
	vote, _ := p.Node("vote")
	assert.Equal(t, process.ExclusiveGateway, race.Kind)
	assert.Equal(t, process.InclusiveGateway, vote.Kind)
	assert.Len(t, diagnostics, 2)
}

func TestParseWithoutProcess(t *testing.T) {
	_, _, err := ParseProcess([]byte(`<definitions id="empty"></definitions>`))

	var unmarshallingError *UnmarshallingError
	require.ErrorAs(t, err, &unmarshallingError)
	assert.ErrorIs(t, err, ErrNoProcess)
}
