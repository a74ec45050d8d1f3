package bpmn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	dcrengine "github.com/pbinitiative/zendcr/pkg/dcr/engine"
	"github.com/pbinitiative/zendcr/pkg/dcr/exporter"
	"github.com/pbinitiative/zendcr/pkg/dcr/simulation"
	"github.com/pbinitiative/zendcr/pkg/dcr/translate"
	otelPkg "github.com/pbinitiative/zendcr/pkg/otel"
	"github.com/pbinitiative/zendcr/pkg/storage"
	"github.com/pbinitiative/zendcr/pkg/storage/inmemory"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const DefaultNestingThreshold = 1

type Engine struct {
	name               string
	threshold          int
	translator         *translate.Translator
	translationCache   *inmemory.TranslationCache
	exporters          []exporter.EventExporter
	snowflake          *snowflake.Node
	persistence        storage.Storage
	runningSimulations *RunningSimulationsCache
	logger             hclog.Logger
	tracer             trace.Tracer
	metrics            *otelPkg.EngineMetrics
}

// SimulationState is a snapshot of one simulation after the last call.
type SimulationState struct {
	Key           int64                   `json:"key,string"`
	DefinitionKey int64                   `json:"definitionKey,string"`
	Enabled       []string                `json:"enabled"`
	Marking       dcr.Marking             `json:"marking"`
	Accepting     bool                    `json:"accepting"`
	Trace         []simulation.TraceEntry `json:"trace"`
}

// NewEngine creates a new instance of the engine;
func NewEngine(options ...EngineOption) Engine {
	name := fmt.Sprintf("Dcr-Engine-%d", getGlobalSnowflakeIdGenerator().Generate().Int64())
	engine := Engine{
		name:               name,
		threshold:          DefaultNestingThreshold,
		exporters:          []exporter.EventExporter{},
		snowflake:          getGlobalSnowflakeIdGenerator(),
		runningSimulations: newRunningSimulationsCache(),
		logger:             hclog.Default().Named("engine"),
		tracer:             otel.GetTracerProvider().Tracer("zendcr-engine"),
	}

	for _, option := range options {
		option(&engine)
	}

	if engine.persistence == nil {
		engine.persistence = inmemory.NewStorage(engine.snowflake)
	}
	engine.translator = translate.New(translate.WithLogger(engine.logger.Named("translator")))
	metrics, err := otelPkg.NewMetrics(otel.GetMeterProvider().Meter("zendcr-engine"))
	if err != nil {
		engine.logger.Error("failed to register engine metrics", "err", err)
	}
	engine.metrics = metrics
	return engine
}

// Name returns the name of the engine, only useful in case you control multiple ones
func (engine *Engine) Name() string {
	return engine.name
}

func (engine *Engine) NestingThreshold() int {
	return engine.threshold
}

// FindGraphDefinition returns the graph definition stored under key,
// or storage.ErrNotFound
func (engine *Engine) FindGraphDefinition(ctx context.Context, key int64) (runtime.GraphDefinition, error) {
	return engine.persistence.FindGraphDefinitionByKey(ctx, key)
}

// FindGraphDefinitionsById returns all loaded versions for given BPMN process ID
// result array is ordered by version number, from 1 (first) and largest version (last)
func (engine *Engine) FindGraphDefinitionsById(ctx context.Context, bpmnProcessId string) ([]runtime.GraphDefinition, error) {
	return engine.persistence.FindGraphDefinitionsById(ctx, bpmnProcessId)
}

// CreateSimulation starts a simulation of the graph definition with given key in its initial marking.
func (engine *Engine) CreateSimulation(ctx context.Context, definitionKey int64) (*SimulationState, error) {
	definition, err := engine.persistence.FindGraphDefinitionByKey(ctx, definitionKey)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("no graph definition with key=%d was found", definitionKey), err)
	}
	key := engine.generateKey()
	ctx, createSpan := engine.tracer.Start(ctx, fmt.Sprintf("create-simulation:%s", definition.BpmnProcessId), trace.WithAttributes(
		attribute.Int64(otelPkg.AttributeSimulationKey, key),
		attribute.String(otelPkg.AttributeProcessId, definition.BpmnProcessId),
		attribute.Int64(otelPkg.AttributeGraphDefinitionKey, definition.Key),
	))
	defer createSpan.End()

	session, err := simulation.NewSession(definition.Graph, engine.sessionOptions(key)...)
	if err != nil {
		createSpan.RecordError(err)
		createSpan.SetStatus(codes.Error, err.Error())
		return nil, errors.Join(newEngineErrorf("failed to create simulation of graph %d", definitionKey), err)
	}
	now := time.Now()
	instance := runtime.SimulationInstance{
		Key:           key,
		DefinitionKey: definition.Key,
		Marking:       session.Marking(),
		Trace:         session.Trace(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = engine.persistence.SaveSimulation(ctx, instance)
	if err != nil {
		createSpan.RecordError(err)
		createSpan.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to save simulation %d: %w", key, err)
	}
	engine.metrics.SimulationsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String(otelPkg.AttributeProcessId, definition.BpmnProcessId)))
	return engine.state(instance, session), nil
}

// ExecuteEvent executes eventId in the simulation with given key. A rejected
// execution returns an error matching engine.ErrEventNotEnabled or engine.ErrUnknownEvent
// and leaves the stored simulation unchanged.
func (engine *Engine) ExecuteEvent(ctx context.Context, simulationKey int64, eventId string) (*SimulationState, error) {
	engine.runningSimulations.lockSimulation(simulationKey)
	defer engine.runningSimulations.unlockSimulation(simulationKey)

	ctx, executeSpan := engine.tracer.Start(ctx, fmt.Sprintf("execute:%s", eventId), trace.WithAttributes(
		attribute.Int64(otelPkg.AttributeSimulationKey, simulationKey),
		attribute.String(otelPkg.AttributeEventId, eventId),
	))
	defer executeSpan.End()

	instance, session, err := engine.restore(ctx, simulationKey)
	if err != nil {
		executeSpan.RecordError(err)
		executeSpan.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	err = session.Execute(eventId)
	if err != nil {
		engine.metrics.ExecutionsRejected.Add(ctx, 1)
		executeSpan.RecordError(err)
		executeSpan.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	engine.metrics.EventsExecuted.Add(ctx, 1)
	instance.Marking = session.Marking()
	instance.Trace = session.Trace()
	instance.UpdatedAt = time.Now()
	err = engine.persistence.SaveSimulation(ctx, instance)
	if err != nil {
		executeSpan.RecordError(err)
		executeSpan.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to save simulation %d: %w", simulationKey, err)
	}
	return engine.state(instance, session), nil
}

// ResetSimulation restores the initial marking and clears the trace.
func (engine *Engine) ResetSimulation(ctx context.Context, simulationKey int64) (*SimulationState, error) {
	engine.runningSimulations.lockSimulation(simulationKey)
	defer engine.runningSimulations.unlockSimulation(simulationKey)

	ctx, resetSpan := engine.tracer.Start(ctx, fmt.Sprintf("reset:%d", simulationKey), trace.WithAttributes(
		attribute.Int64(otelPkg.AttributeSimulationKey, simulationKey),
	))
	defer resetSpan.End()

	instance, session, err := engine.restore(ctx, simulationKey)
	if err != nil {
		resetSpan.RecordError(err)
		resetSpan.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	session.Reset()
	instance.Marking = session.Marking()
	instance.Trace = session.Trace()
	instance.UpdatedAt = time.Now()
	err = engine.persistence.SaveSimulation(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to save simulation %d: %w", simulationKey, err)
	}
	return engine.state(instance, session), nil
}

// SimulationState returns the enabled events, marking, accepting flag and trace of a simulation.
func (engine *Engine) SimulationState(ctx context.Context, simulationKey int64) (*SimulationState, error) {
	engine.runningSimulations.lockSimulation(simulationKey)
	defer engine.runningSimulations.unlockSimulation(simulationKey)

	ctx, stateSpan := engine.tracer.Start(ctx, fmt.Sprintf("state:%d", simulationKey), trace.WithAttributes(
		attribute.Int64(otelPkg.AttributeSimulationKey, simulationKey),
	))
	defer stateSpan.End()

	instance, session, err := engine.restore(ctx, simulationKey)
	if err != nil {
		stateSpan.RecordError(err)
		stateSpan.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return engine.state(instance, session), nil
}

func (engine *Engine) restore(ctx context.Context, simulationKey int64) (runtime.SimulationInstance, *simulation.Session, error) {
	instance, err := engine.persistence.FindSimulationByKey(ctx, simulationKey)
	if err != nil {
		return instance, nil, fmt.Errorf("failed to find simulation %d: %w", simulationKey, err)
	}
	definition, err := engine.persistence.FindGraphDefinitionByKey(ctx, instance.DefinitionKey)
	if err != nil {
		return instance, nil, fmt.Errorf("failed to find graph definition %d of simulation %d: %w", instance.DefinitionKey, simulationKey, err)
	}
	session, err := simulation.Restore(definition.Graph, instance.Marking, instance.Trace, engine.sessionOptions(simulationKey)...)
	if err != nil {
		return instance, nil, errors.Join(newEngineErrorf("failed to restore simulation %d", simulationKey), err)
	}
	return instance, session, nil
}

func (engine *Engine) sessionOptions(key int64) []simulation.Option {
	opts := []simulation.Option{
		simulation.WithKey(key),
		simulation.WithLogger(engine.logger.Named("simulation")),
	}
	for _, exp := range engine.exporters {
		opts = append(opts, simulation.WithExporter(exp))
	}
	return opts
}

func (engine *Engine) state(instance runtime.SimulationInstance, session *simulation.Session) *SimulationState {
	return &SimulationState{
		Key:           instance.Key,
		DefinitionKey: instance.DefinitionKey,
		Enabled:       session.Enabled(),
		Marking:       session.Marking(),
		Accepting:     session.IsAccepting(),
		Trace:         session.Trace(),
	}
}

// IsRejection reports whether err is a recoverable rejection of an execution request.
func IsRejection(err error) bool {
	return errors.Is(err, dcrengine.ErrEventNotEnabled) || errors.Is(err, dcrengine.ErrUnknownEvent)
}
