package exporter

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func TestLogExporterWritesEvents(t *testing.T) {
	// given
	var buf bytes.Buffer
	exp := NewLogExporter(hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug}))
	simulation := &SimulationEvent{GraphId: "order", SimulationKey: 11, SessionId: "s-1"}

	// when
	exp.NewGraphEvent(&GraphEvent{ProcessId: "order", GraphKey: 10, Version: 2, Relations: 12})
	simulation.Intent = Created
	exp.NewSimulationEvent(simulation)
	simulation.Intent = EventRejected
	exp.NewExecutionEvent(simulation, &ExecutionInfo{EventId: "end", Reason: "condition from B"})

	// then
	out := buf.String()
	assert.Contains(t, out, "graph definition loaded")
	assert.Contains(t, out, "processId=order")
	assert.Contains(t, out, "relations=12")
	assert.Contains(t, out, "simulation CREATED")
	assert.Contains(t, out, "execution rejected")
	assert.Contains(t, out, `reason="condition from B"`)
}

func TestNewLogExporterDefaultsLogger(t *testing.T) {
	exp := NewLogExporter(nil)

	assert.NotNil(t, exp.logger)
}
