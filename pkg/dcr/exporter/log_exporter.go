package exporter

import "github.com/hashicorp/go-hclog"

// LogExporter writes every exported event to a logger.
type LogExporter struct {
	logger hclog.Logger
}

var _ EventExporter = &LogExporter{}

func NewLogExporter(logger hclog.Logger) *LogExporter {
	if logger == nil {
		logger = hclog.Default().Named("exporter")
	}
	return &LogExporter{logger: logger}
}

func (e *LogExporter) NewGraphEvent(event *GraphEvent) {
	e.logger.Info("graph definition loaded",
		"processId", event.ProcessId,
		"key", event.GraphKey,
		"version", event.Version,
		"resource", event.ResourceName,
		"events", event.Events,
		"relations", event.Relations,
		"diagnostics", event.Diagnostics,
	)
}

func (e *LogExporter) NewSimulationEvent(event *SimulationEvent) {
	e.logger.Info("simulation "+string(event.Intent),
		"graph", event.GraphId,
		"simulation", event.SimulationKey,
		"session", event.SessionId,
	)
}

func (e *LogExporter) NewExecutionEvent(event *SimulationEvent, execution *ExecutionInfo) {
	if event.Intent == EventRejected {
		e.logger.Debug("execution rejected", "simulation", event.SimulationKey, "event", execution.EventId, "reason", execution.Reason)
		return
	}
	e.logger.Debug("event "+string(event.Intent),
		"simulation", event.SimulationKey,
		"event", execution.EventId,
		"sequence", execution.Sequence,
		"unchecked", execution.Unchecked,
	)
}
