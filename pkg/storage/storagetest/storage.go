package storagetest

import (
	"crypto/md5"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	stdruntime "runtime"

	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	"github.com/pbinitiative/zendcr/pkg/dcr/simulation"
	"github.com/pbinitiative/zendcr/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type StorageTestFunc func(s storage.Storage, t *testing.T) func(t *testing.T)

// StorageTester runs the same behavioural checks against any storage.Storage implementation.
type StorageTester struct {
	graphDefinition runtime.GraphDefinition
	simulation      runtime.SimulationInstance
}

func (st *StorageTester) GetTests() map[string]StorageTestFunc {
	tests := map[string]StorageTestFunc{}

	// all test functions need to be registered here
	functions := []StorageTestFunc{
		st.TestGraphDefinitionStorageWriter,
		st.TestGraphDefinitionStorageReader,
		st.TestGraphDefinitionVersions,
		st.TestSimulationStorageWriter,
		st.TestSimulationStorageReader,
		st.TestBatchFlush,
	}

	for _, function := range functions {
		funcName := getFunctionName(function)
		strippedName := funcName[strings.LastIndex(funcName, ".")+1:]
		strippedName = strings.TrimSuffix(strippedName, "-fm")
		tests[strippedName] = function
	}
	return tests
}

func getFunctionName(i any) string {
	return stdruntime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}

func getGraphDefinition(r int64, processId string, version int32) runtime.GraphDefinition {
	data := fmt.Sprintf(`<bpmn:definitions><bpmn:process id="%s"/></bpmn:definitions><!-- %d -->`, processId, r)
	graph := dcr.NewGraph(processId)
	graph.AddEvent(dcr.Event{Id: "start", Label: "Start Event"})
	graph.Marking.Included.Add("start")
	graph.Marking.Pending.Add("start")
	return runtime.GraphDefinition{
		Key:              r,
		BpmnProcessId:    processId,
		Version:          version,
		BpmnResourceName: fmt.Sprintf("resource-%d", r),
		BpmnChecksum:     md5.Sum([]byte(data)),
		BpmnData:         data,
		Graph:            graph,
		NestingIds:       []string{},
		CreatedAt:        time.Now(),
	}
}

func getSimulation(r int64, definition runtime.GraphDefinition) runtime.SimulationInstance {
	return runtime.SimulationInstance{
		Key:           r,
		DefinitionKey: definition.Key,
		Marking:       definition.Graph.Marking.Clone(),
		Trace:         []simulation.TraceEntry{},
		CreatedAt:     time.Now(),
	}
}

// PrepareTestData will prepare common data for the tests
func (st *StorageTester) PrepareTestData(s storage.Storage, t *testing.T) {
	r := s.GenerateId()

	st.graphDefinition = getGraphDefinition(r, fmt.Sprintf("process-%d", r), 1)
	err := s.SaveGraphDefinition(t.Context(), st.graphDefinition)
	assert.NoError(t, err)

	st.simulation = getSimulation(s.GenerateId(), st.graphDefinition)
	err = s.SaveSimulation(t.Context(), st.simulation)
	assert.NoError(t, err)
}

func (st *StorageTester) TestGraphDefinitionStorageWriter(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		r := s.GenerateId()

		def := getGraphDefinition(r, fmt.Sprintf("writer-%d", r), 1)

		err := s.SaveGraphDefinition(t.Context(), def)
		assert.NoError(t, err)

		def.Graph = nil
		err = s.SaveGraphDefinition(t.Context(), def)
		assert.Error(t, err)
	}
}

func (st *StorageTester) TestGraphDefinitionStorageReader(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		def, err := s.FindGraphDefinitionByKey(t.Context(), st.graphDefinition.Key)
		assert.NoError(t, err)
		assert.Equal(t, st.graphDefinition.BpmnProcessId, def.BpmnProcessId)
		assert.Equal(t, st.graphDefinition.Checksum(), def.Checksum())

		_, err = s.FindGraphDefinitionByKey(t.Context(), -1)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.FindLatestGraphDefinitionById(t.Context(), "does-not-exist")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		defs, err := s.FindGraphDefinitionsById(t.Context(), "does-not-exist")
		assert.NoError(t, err)
		assert.NotNil(t, defs)
		assert.Empty(t, defs)
	}
}

func (st *StorageTester) TestGraphDefinitionVersions(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		processId := fmt.Sprintf("versioned-%d", s.GenerateId())
		for _, version := range []int32{2, 3, 1} {
			err := s.SaveGraphDefinition(t.Context(), getGraphDefinition(s.GenerateId(), processId, version))
			require.NoError(t, err)
		}

		defs, err := s.FindGraphDefinitionsById(t.Context(), processId)
		assert.NoError(t, err)
		require.Len(t, defs, 3)
		assert.Equal(t, []int32{1, 2, 3}, []int32{defs[0].Version, defs[1].Version, defs[2].Version})

		latest, err := s.FindLatestGraphDefinitionById(t.Context(), processId)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), latest.Version)
	}
}

func (st *StorageTester) TestSimulationStorageWriter(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		sim := getSimulation(s.GenerateId(), st.graphDefinition)

		err := s.SaveSimulation(t.Context(), sim)
		assert.NoError(t, err)

		sim.Marking.Executed.Add("start")
		sim.Trace = append(sim.Trace, simulation.TraceEntry{Sequence: 1, EventId: "start"})
		err = s.SaveSimulation(t.Context(), sim)
		assert.NoError(t, err)

		stored, err := s.FindSimulationByKey(t.Context(), sim.Key)
		assert.NoError(t, err)
		assert.True(t, stored.Marking.IsExecuted("start"))
		assert.Len(t, stored.Trace, 1)
	}
}

func (st *StorageTester) TestSimulationStorageReader(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		sim, err := s.FindSimulationByKey(t.Context(), st.simulation.Key)
		assert.NoError(t, err)
		assert.Equal(t, st.graphDefinition.Key, sim.DefinitionKey)

		// mutating a loaded simulation must not change the stored one
		sim.Marking.Included.Remove("start")
		again, err := s.FindSimulationByKey(t.Context(), st.simulation.Key)
		assert.NoError(t, err)
		assert.True(t, again.Marking.IsIncluded("start"))

		_, err = s.FindSimulationByKey(t.Context(), -1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}
}

func (st *StorageTester) TestBatchFlush(s storage.Storage, t *testing.T) func(t *testing.T) {
	return func(t *testing.T) {
		def := getGraphDefinition(s.GenerateId(), fmt.Sprintf("batch-%d", s.GenerateId()), 1)
		sim := getSimulation(s.GenerateId(), def)

		batch := s.NewBatch()
		assert.NoError(t, batch.SaveGraphDefinition(t.Context(), def))
		assert.NoError(t, batch.SaveSimulation(t.Context(), sim))

		_, err := s.FindGraphDefinitionByKey(t.Context(), def.Key)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.NoError(t, batch.Flush(t.Context()))

		_, err = s.FindGraphDefinitionByKey(t.Context(), def.Key)
		assert.NoError(t, err)
		_, err = s.FindSimulationByKey(t.Context(), sim.Key)
		assert.NoError(t, err)
	}
}
