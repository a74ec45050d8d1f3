package inmemory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/storage"
)

// Storage keeps graph definitions and simulations in memory,
// please use NewStorage to create a new object of this type.
type Storage struct {
	mu               sync.RWMutex
	node             *snowflake.Node
	GraphDefinitions map[int64]runtime.GraphDefinition
	Simulations      map[int64]runtime.SimulationInstance
}

func NewStorage(node *snowflake.Node) *Storage {
	return &Storage{
		node:             node,
		GraphDefinitions: make(map[int64]runtime.GraphDefinition),
		Simulations:      make(map[int64]runtime.SimulationInstance),
	}
}

var _ storage.Storage = &Storage{}

func (mem *Storage) GenerateId() int64 {
	return mem.node.Generate().Int64()
}

func (mem *Storage) NewBatch() storage.Batch {
	return &StorageBatch{
		db:        mem,
		stmtToRun: make([]func() error, 0, 4),
	}
}

var _ storage.GraphDefinitionStorageReader = &Storage{}

func (mem *Storage) FindLatestGraphDefinitionById(ctx context.Context, bpmnProcessId string) (runtime.GraphDefinition, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	var res runtime.GraphDefinition
	found := false
	for _, def := range mem.GraphDefinitions {
		if def.BpmnProcessId != bpmnProcessId {
			continue
		}
		if found && def.Version < res.Version {
			continue
		}
		found = true
		res = def
	}
	if !found {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) FindGraphDefinitionByKey(ctx context.Context, graphDefinitionKey int64) (runtime.GraphDefinition, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res, ok := mem.GraphDefinitions[graphDefinitionKey]
	if !ok {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) FindGraphDefinitionsById(ctx context.Context, bpmnProcessId string) ([]runtime.GraphDefinition, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res := make([]runtime.GraphDefinition, 0)
	for _, def := range mem.GraphDefinitions {
		if def.BpmnProcessId != bpmnProcessId {
			continue
		}
		res = append(res, def)
	}
	slices.SortFunc(res, func(a, b runtime.GraphDefinition) int {
		return int(a.Version - b.Version)
	})
	return res, nil
}

var _ storage.GraphDefinitionStorageWriter = &Storage{}

func (mem *Storage) SaveGraphDefinition(ctx context.Context, definition runtime.GraphDefinition) error {
	if definition.Graph == nil {
		return fmt.Errorf("graph definition %d has no graph", definition.Key)
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.GraphDefinitions[definition.Key] = definition
	return nil
}

var _ storage.SimulationStorageReader = &Storage{}

func (mem *Storage) FindSimulationByKey(ctx context.Context, simulationKey int64) (runtime.SimulationInstance, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res, ok := mem.Simulations[simulationKey]
	if !ok {
		return res, storage.ErrNotFound
	}
	return copySimulation(res), nil
}

var _ storage.SimulationStorageWriter = &Storage{}

func (mem *Storage) SaveSimulation(ctx context.Context, simulation runtime.SimulationInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.Simulations[simulation.Key] = copySimulation(simulation)
	return nil
}

func copySimulation(s runtime.SimulationInstance) runtime.SimulationInstance {
	s.Marking = s.Marking.Clone()
	s.Trace = slices.Clone(s.Trace)
	return s
}

type StorageBatch struct {
	db        *Storage
	stmtToRun []func() error
}

var _ storage.Batch = &StorageBatch{}

func (b *StorageBatch) Flush(ctx context.Context) error {
	var joinErr error
	for _, stmt := range b.stmtToRun {
		joinErr = errors.Join(joinErr, stmt())
	}
	b.stmtToRun = make([]func() error, 0)
	return joinErr
}

func (b *StorageBatch) SaveGraphDefinition(ctx context.Context, definition runtime.GraphDefinition) error {
	b.stmtToRun = append(b.stmtToRun, func() error {
		return b.db.SaveGraphDefinition(ctx, definition)
	})
	return nil
}

func (b *StorageBatch) SaveSimulation(ctx context.Context, simulation runtime.SimulationInstance) error {
	b.stmtToRun = append(b.stmtToRun, func() error {
		return b.db.SaveSimulation(ctx, simulation)
	})
	return nil
}
