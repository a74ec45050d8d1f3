package bpmn

import (
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/dcr/exporter"
)

// AddEventExporter registers an EventExporter instance
func (engine *Engine) AddEventExporter(exporter exporter.EventExporter) {
	engine.exporters = append(engine.exporters, exporter)
}

func (engine *Engine) exportNewGraphEvent(definition runtime.GraphDefinition) {
	event := exporter.GraphEvent{
		ProcessId:    definition.BpmnProcessId,
		GraphKey:     definition.Key,
		Version:      definition.Version,
		ResourceName: definition.BpmnResourceName,
		Checksum:     definition.Checksum(),
		Events:       len(definition.Graph.Events),
		Relations:    len(definition.Graph.Relations),
		Diagnostics:  len(definition.Diagnostics),
	}
	for _, exp := range engine.exporters {
		exp.NewGraphEvent(&event)
	}
}
