package storage

import (
	"context"
	"errors"

	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
)

var ErrNotFound = errors.New("not found")

// Storage interface for reading and writing translated graphs and simulation state.
//
// Methods that are expected to return exactly one match MUST return ErrNotFound when the result does not exist.
type Storage interface {
	GraphDefinitionStorageReader
	GraphDefinitionStorageWriter
	SimulationStorageReader
	SimulationStorageWriter

	GenerateId() int64
	NewBatch() Batch
}

// Batch collects writes and applies them on Flush.
type Batch interface {
	GraphDefinitionStorageWriter
	SimulationStorageWriter

	Flush(ctx context.Context) error
}

type GraphDefinitionStorageReader interface {
	FindLatestGraphDefinitionById(ctx context.Context, bpmnProcessId string) (runtime.GraphDefinition, error)

	FindGraphDefinitionByKey(ctx context.Context, graphDefinitionKey int64) (runtime.GraphDefinition, error)

	// FindGraphDefinitionsById return zero or many graph definitions with given BPMN process id.
	// result array is ordered by version number, from 1 (first) and largest version (last)
	FindGraphDefinitionsById(ctx context.Context, bpmnProcessId string) ([]runtime.GraphDefinition, error)
}

type GraphDefinitionStorageWriter interface {
	SaveGraphDefinition(ctx context.Context, definition runtime.GraphDefinition) error
}

type SimulationStorageReader interface {
	FindSimulationByKey(ctx context.Context, simulationKey int64) (runtime.SimulationInstance, error)
}

type SimulationStorageWriter interface {
	// SaveSimulation persists the simulation
	// and overwrites prior data stored with the given key
	SaveSimulation(ctx context.Context, simulation runtime.SimulationInstance) error
}
