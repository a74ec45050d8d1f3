package bpmn

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	dcrengine "github.com/pbinitiative/zendcr/pkg/dcr/engine"
	"github.com/pbinitiative/zendcr/pkg/dcr/exporter"
	"github.com/pbinitiative/zendcr/pkg/dcr/translate"
	"github.com/pbinitiative/zendcr/pkg/storage"
	"github.com/pbinitiative/zendcr/pkg/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bpmnEngine Engine
var engineStorage *inmemory.Storage

func TestMain(m *testing.M) {
	engineStorage = inmemory.NewStorage(getGlobalSnowflakeIdGenerator())

	var exitCode int

	defer func() {
		os.Exit(exitCode)
	}()

	bpmnEngine = NewEngine(EngineWithStorage(engineStorage))

	// Run the tests
	exitCode = m.Run()
}

type recordingExporter struct {
	mu         sync.Mutex
	graphs     []exporter.GraphEvent
	intents    []exporter.Intent
	executions []exporter.ExecutionInfo
}

func (r *recordingExporter) NewGraphEvent(event *exporter.GraphEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs = append(r.graphs, *event)
}

func (r *recordingExporter) NewSimulationEvent(event *exporter.SimulationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, event.Intent)
}

func (r *recordingExporter) NewExecutionEvent(event *exporter.SimulationEvent, execution *exporter.ExecutionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, event.Intent)
	r.executions = append(r.executions, *execution)
}

func TestLoadExclusiveGateway(t *testing.T) {
	// when
	definition, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/exclusive-gateway.bpmn")

	// then
	require.NoError(t, err)
	assert.Equal(t, "exclusive-gateway", definition.BpmnProcessId)
	assert.Equal(t, int32(1), definition.Version)
	assert.NotZero(t, definition.Key)
	assert.Len(t, definition.Graph.Events, 5)
	assert.Len(t, definition.Graph.Relations, 12)
	assert.Empty(t, definition.Diagnostics)
	assert.Equal(t, []string{"nesting_1"}, definition.NestingIds)
	assert.Contains(t, definition.DcrXml, "<dcrgraph")
	assert.Equal(t, "./test-cases/exclusive-gateway.bpmn", definition.BpmnResourceName)
	ev, ok := definition.Graph.Event("C")
	require.True(t, ok)
	assert.Equal(t, "Task C", ev.Label)

	stored, err := bpmnEngine.FindGraphDefinition(t.Context(), definition.Key)
	require.NoError(t, err)
	assert.Equal(t, definition.Checksum(), stored.Checksum())
}

func TestLoadingSameDataTwiceKeepsVersion(t *testing.T) {
	// given
	data, err := os.ReadFile("./test-cases/loop.bpmn")
	require.NoError(t, err)
	first, err := bpmnEngine.LoadFromBytes(t.Context(), data, "loop.bpmn")
	require.NoError(t, err)

	// when
	second, err := bpmnEngine.LoadFromBytes(t.Context(), data, "loop.bpmn")
	require.NoError(t, err)
	changed, err := bpmnEngine.LoadFromBytes(t.Context(), []byte(strings.Replace(string(data), `name="Draft"`, `name="Write draft"`, 1)), "loop.bpmn")
	require.NoError(t, err)

	// then
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.Version+1, changed.Version)
	versions, err := bpmnEngine.FindGraphDefinitionsById(t.Context(), "loop")
	require.NoError(t, err)
	assert.Equal(t, changed.Key, versions[len(versions)-1].Key)
}

func TestThresholdChangesDefinition(t *testing.T) {
	// given
	data, err := os.ReadFile("./test-cases/parallel-gateway.bpmn")
	require.NoError(t, err)
	coarse := NewEngine(EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())), EngineWithNestingThreshold(3))

	// when
	definition, err := coarse.LoadFromBytes(t.Context(), data, "parallel-gateway.bpmn")

	// then
	require.NoError(t, err)
	assert.Equal(t, 3, definition.Threshold)
	assert.Empty(t, definition.NestingIds)
}

func TestThresholdOverrideCreatesNewVersion(t *testing.T) {
	// given
	data, err := os.ReadFile("./test-cases/exclusive-gateway.bpmn")
	require.NoError(t, err)
	e := NewEngine(EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())))
	first, err := e.LoadFromBytes(t.Context(), data, "exclusive-gateway.bpmn")
	require.NoError(t, err)

	// when
	overridden, err := e.LoadFromBytesWithThreshold(t.Context(), data, "exclusive-gateway.bpmn", 3)
	require.NoError(t, err)
	_, negativeErr := e.LoadFromBytesWithThreshold(t.Context(), data, "exclusive-gateway.bpmn", -1)

	// then
	assert.Equal(t, DefaultNestingThreshold, first.Threshold)
	assert.Equal(t, first.Version+1, overridden.Version)
	assert.Equal(t, 3, overridden.Threshold)
	assert.Empty(t, overridden.NestingIds)
	var engineError *EngineError
	assert.ErrorAs(t, negativeErr, &engineError)
}

func TestMalformedXml(t *testing.T) {
	// when
	_, err := bpmnEngine.LoadFromBytes(t.Context(), []byte("<bpmn:definitions><bpmn:process"), "broken.bpmn")

	// then
	var unmarshallingError *UnmarshallingError
	assert.ErrorAs(t, err, &unmarshallingError)
}

func TestFatalTranslationIsReported(t *testing.T) {
	// when
	_, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/no-start-event.bpmn")

	// then
	var translationError *translate.TranslationError
	require.ErrorAs(t, err, &translationError)
	assert.Equal(t, "no-start-event", translationError.ProcessId)
	var engineError *EngineError
	assert.ErrorAs(t, err, &engineError)
	_, err = bpmnEngine.FindGraphDefinitionsById(t.Context(), "no-start-event")
	assert.NoError(t, err)
}

func TestSimulationLifecycle(t *testing.T) {
	// given
	definition, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/exclusive-gateway.bpmn")
	require.NoError(t, err)

	// when
	state, err := bpmnEngine.CreateSimulation(t.Context(), definition.Key)
	require.NoError(t, err)

	// then
	assert.Equal(t, definition.Key, state.DefinitionKey)
	assert.False(t, state.Accepting)
	assert.Contains(t, state.Enabled, "start")
	assert.Empty(t, state.Trace)

	// when
	for _, id := range []string{"start", "A", "B"} {
		state, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, id)
		require.NoError(t, err)
	}
	_, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, "C")

	// then
	assert.ErrorIs(t, err, dcrengine.ErrEventNotEnabled)
	assert.True(t, IsRejection(err))
	state, err = bpmnEngine.SimulationState(t.Context(), state.Key)
	require.NoError(t, err)
	assert.Len(t, state.Trace, 3)
	assert.Contains(t, pendingOf(state), "end")
	assert.False(t, state.Accepting)

	// when
	state, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, "end")
	require.NoError(t, err)

	// then
	assert.True(t, state.Accepting)

	// when
	state, err = bpmnEngine.ResetSimulation(t.Context(), state.Key)
	require.NoError(t, err)

	// then
	assert.Empty(t, state.Trace)
	assert.True(t, state.Marking.Equal(definition.Graph.Marking))
}

func pendingOf(state *SimulationState) []string {
	return state.Marking.Pending.Sorted()
}

func TestUnknownEventIsRejected(t *testing.T) {
	// given
	definition, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/parallel-gateway.bpmn")
	require.NoError(t, err)
	state, err := bpmnEngine.CreateSimulation(t.Context(), definition.Key)
	require.NoError(t, err)

	// when
	_, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, "fork")

	// then
	assert.ErrorIs(t, err, dcrengine.ErrUnknownEvent)
	assert.True(t, IsRejection(err))
}

func TestUnknownSimulation(t *testing.T) {
	_, err := bpmnEngine.ExecuteEvent(t.Context(), -1, "start")

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, IsRejection(err))
}

func TestCreateSimulationOfUnknownDefinition(t *testing.T) {
	_, err := bpmnEngine.CreateSimulation(t.Context(), -1)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	var engineError *EngineError
	assert.True(t, errors.As(err, &engineError))
}

func TestSubProcessSimulation(t *testing.T) {
	// given
	definition, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/sub-process.bpmn")
	require.NoError(t, err)
	state, err := bpmnEngine.CreateSimulation(t.Context(), definition.Key)
	require.NoError(t, err)

	// then
	assert.NotContains(t, state.Enabled, "review", "sub-process boundary is excluded initially")

	// when
	for _, id := range []string{"s", "review-start", "check", "review-end", "review", "archive", "e"} {
		state, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, id)
		require.NoError(t, err, "executing %s", id)
	}

	// then
	assert.True(t, state.Accepting)
	group, ok := definition.Graph.Group("review")
	require.True(t, ok)
	assert.Equal(t, []string{"review-start", "check", "review-end"}, group.Members)
}

func TestReworkLoopSimulation(t *testing.T) {
	// given
	definition, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/rework-loop.bpmn")
	require.NoError(t, err)
	state, err := bpmnEngine.CreateSimulation(t.Context(), definition.Key)
	require.NoError(t, err)

	// when
	for _, id := range []string{"s", "work", "fix", "work", "done", "e"} {
		state, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, id)
		require.NoError(t, err, "executing %s", id)
	}

	// then
	assert.True(t, state.Accepting)
	assert.Len(t, state.Trace, 6)
}

func TestConcurrentExecutionsOnOneSimulation(t *testing.T) {
	// given
	definition, err := bpmnEngine.LoadFromFile(t.Context(), "./test-cases/exclusive-gateway.bpmn")
	require.NoError(t, err)
	state, err := bpmnEngine.CreateSimulation(t.Context(), definition.Key)
	require.NoError(t, err)
	for _, id := range []string{"start", "A"} {
		_, err = bpmnEngine.ExecuteEvent(t.Context(), state.Key, id)
		require.NoError(t, err)
	}

	// when
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []string{"B", "C"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = bpmnEngine.ExecuteEvent(t.Context(), state.Key, id)
		}()
	}
	wg.Wait()

	// then
	failed := 0
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, dcrengine.ErrEventNotEnabled)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	state, err = bpmnEngine.SimulationState(t.Context(), state.Key)
	require.NoError(t, err)
	assert.Len(t, state.Trace, 3)
	assert.Zero(t, bpmnEngine.runningSimulations.size())
}

func TestExportersReceiveEvents(t *testing.T) {
	// given
	rec := &recordingExporter{}
	engine := NewEngine(EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())), EngineWithExporter(rec))

	// when
	definition, err := engine.LoadFromFile(t.Context(), "./test-cases/inclusive-gateway.bpmn")
	require.NoError(t, err)
	state, err := engine.CreateSimulation(t.Context(), definition.Key)
	require.NoError(t, err)
	_, err = engine.ExecuteEvent(t.Context(), state.Key, "s")
	require.NoError(t, err)
	_, _ = engine.ExecuteEvent(t.Context(), state.Key, "J")

	// then
	require.Len(t, rec.graphs, 1)
	assert.Equal(t, "inclusive-gateway", rec.graphs[0].ProcessId)
	assert.Equal(t, definition.Key, rec.graphs[0].GraphKey)
	assert.Equal(t, []exporter.Intent{exporter.Created, exporter.EventExecuted, exporter.EventRejected}, rec.intents)
	assert.NotEmpty(t, rec.executions[1].Reason)
}

func TestTranslationCacheIsMemoizationOnly(t *testing.T) {
	// given
	cache := inmemory.NewTranslationCache(16, 0)
	data, err := os.ReadFile("./test-cases/inclusive-gateway.bpmn")
	require.NoError(t, err)
	cachedEngine := NewEngine(EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())), EngineWithTranslationCache(cache))
	plainEngine := NewEngine(EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())))

	// when
	first, err := cachedEngine.LoadFromBytes(t.Context(), data, "a.bpmn")
	require.NoError(t, err)
	other := NewEngine(EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())), EngineWithTranslationCache(cache))
	second, err := other.LoadFromBytes(t.Context(), data, "b.bpmn")
	require.NoError(t, err)
	plain, err := plainEngine.LoadFromBytes(t.Context(), data, "c.bpmn")
	require.NoError(t, err)

	// then
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, plain.Graph, second.Graph)
	assert.Equal(t, first.Graph, second.Graph)
	assert.NotSame(t, first.Graph, second.Graph)
	assert.Equal(t, plain.DcrXml, second.DcrXml)
}
