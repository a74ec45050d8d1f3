package bpmn

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pbinitiative/zendcr/pkg/bpmn/model/bpmn20"
	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
	"github.com/pbinitiative/zendcr/pkg/dcr/dcrxml"
	"github.com/pbinitiative/zendcr/pkg/dcr/nesting"
	otelPkg "github.com/pbinitiative/zendcr/pkg/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// LoadFromFile loads a given BPMN file by filename into the engine
// and returns the translated graph definition
func (engine *Engine) LoadFromFile(ctx context.Context, filename string) (*runtime.GraphDefinition, error) {
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load from file: %w", err)
	}
	return engine.load(ctx, xmlData, filename, engine.threshold)
}

// LoadFromBytes loads a given BPMN file by xmlData byte array into the engine
// and returns the translated graph definition
func (engine *Engine) LoadFromBytes(ctx context.Context, xmlData []byte, resourceName string) (*runtime.GraphDefinition, error) {
	return engine.LoadFromBytesWithThreshold(ctx, xmlData, resourceName, engine.threshold)
}

// LoadFromBytesWithThreshold is LoadFromBytes with a nesting threshold overriding the engine's one.
// Loading the same data with a different threshold creates a new version.
func (engine *Engine) LoadFromBytesWithThreshold(ctx context.Context, xmlData []byte, resourceName string, threshold int) (*runtime.GraphDefinition, error) {
	if threshold < 0 {
		return nil, newEngineErrorf("nesting threshold must not be negative, got %d", threshold)
	}
	def, err := engine.load(ctx, xmlData, resourceName, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to load from bytes: %w", err)
	}
	return def, nil
}

func (engine *Engine) load(ctx context.Context, xmlData []byte, resourceName string, threshold int) (*runtime.GraphDefinition, error) {
	md5sum := md5.Sum(xmlData)
	checksum := hex.EncodeToString(md5sum[:])
	ctx, loadSpan := engine.tracer.Start(ctx, fmt.Sprintf("load:%s", resourceName), trace.WithAttributes(
		attribute.String(otelPkg.AttributeResourceName, resourceName),
		attribute.String(otelPkg.AttributeChecksum, checksum),
		attribute.Int(otelPkg.AttributeThreshold, threshold),
	))
	defer loadSpan.End()

	translation, cached, err := engine.translateCached(ctx, xmlData, md5sum, threshold)
	loadSpan.SetAttributes(attribute.Bool(otelPkg.AttributeCached, cached))
	if err != nil {
		loadSpan.RecordError(err)
		loadSpan.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	loadSpan.SetAttributes(attribute.String(otelPkg.AttributeProcessId, translation.BpmnProcessId))

	definition := runtime.GraphDefinition{
		Version:          1,
		BpmnProcessId:    translation.BpmnProcessId,
		BpmnResourceName: resourceName,
		BpmnChecksum:     md5sum,
		BpmnData:         string(xmlData),
		Threshold:        threshold,
		Graph:            translation.Graph,
		NestingIds:       translation.NestingIds,
		Diagnostics:      translation.Diagnostics,
		DcrXml:           translation.DcrXml,
		CreatedAt:        time.Now(),
	}
	definitions, err := engine.persistence.FindGraphDefinitionsById(ctx, definition.BpmnProcessId)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph definitions by id %s: %w", definition.BpmnProcessId, err)
	}
	if len(definitions) > 0 {
		latest := definitions[len(definitions)-1]
		if latest.BpmnChecksum == md5sum && latest.Threshold == threshold {
			return &latest, nil
		}
		definition.Version = latest.Version + 1
	}
	definition.Key = engine.generateKey()
	err = engine.persistence.SaveGraphDefinition(ctx, definition)
	if err != nil {
		return nil, fmt.Errorf("failed to save graph definition: %w", err)
	}
	loadSpan.SetAttributes(attribute.Int64(otelPkg.AttributeGraphDefinitionKey, definition.Key))

	engine.exportNewGraphEvent(definition)
	return &definition, nil
}

// translateCached parses, translates and nests xmlData. The cache only memoizes,
// a miss and a hit yield the same translation.
func (engine *Engine) translateCached(ctx context.Context, xmlData []byte, md5sum [16]byte, threshold int) (runtime.Translation, bool, error) {
	if engine.translationCache != nil {
		if t, ok := engine.translationCache.Get(md5sum, threshold); ok {
			return t, true, nil
		}
	}
	engine.metrics.TranslationsStarted.Add(ctx, 1)

	p, diagnostics, err := ParseProcess(xmlData)
	if err != nil {
		engine.metrics.TranslationsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "unmarshalling")))
		return runtime.Translation{}, false, err
	}
	graph, translateDiagnostics, err := engine.translator.Translate(ctx, p)
	diagnostics = append(diagnostics, translateDiagnostics...)
	engine.recordDiagnostics(ctx, diagnostics)
	if err != nil {
		engine.metrics.TranslationsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "translation")))
		return runtime.Translation{}, false, errors.Join(newEngineErrorf("failed to translate process %s", p.Id), err)
	}
	nested := nesting.Nest(graph, threshold)
	dcrXml, err := dcrxml.Marshal(nested.Graph)
	if err != nil {
		return runtime.Translation{}, false, errors.Join(newEngineErrorf("failed to write dcr xml for process %s", p.Id), err)
	}
	t := runtime.Translation{
		BpmnProcessId: p.Id,
		Graph:         nested.Graph,
		NestingIds:    nested.NestingIds,
		Diagnostics:   diagnostics,
		DcrXml:        string(dcrXml),
	}
	if engine.translationCache != nil {
		engine.translationCache.Add(md5sum, threshold, t)
	}
	return t, false, nil
}

func (engine *Engine) recordDiagnostics(ctx context.Context, diagnostics process.Diagnostics) {
	for _, d := range diagnostics {
		engine.metrics.DiagnosticsEmitted.Add(ctx, 1, metric.WithAttributes(
			attribute.String(otelPkg.AttributeDiagnosticKind, string(d.Kind)),
			attribute.String("severity", string(d.Severity)),
		))
	}
}

// ParseProcess reads BPMN 2.0 XML and converts its first process into a process model.
// Elements outside the supported subset are lowered or skipped and reported as diagnostics.
func ParseProcess(xmlData []byte) (*process.Process, process.Diagnostics, error) {
	var definitions bpmn20.TDefinitions
	err := xml.Unmarshal(xmlData, &definitions)
	if err != nil {
		return nil, nil, &UnmarshallingError{Msg: "failed to unmarshal xml data", Err: err}
	}
	return ToProcess(&definitions)
}

// ToProcess converts the first process of definitions that has flow nodes.
func ToProcess(definitions *bpmn20.TDefinitions) (*process.Process, process.Diagnostics, error) {
	var diagnostics process.Diagnostics
	var selected *bpmn20.TProcess
	for i := range definitions.Processes {
		candidate := &definitions.Processes[i]
		if len(candidate.FlowNodes()) == 0 {
			continue
		}
		if selected != nil {
			diagnostics = append(diagnostics, unsupported(candidate.Id, "only process %s is translated, process %s is ignored", selected.Id, candidate.Id))
			continue
		}
		selected = candidate
	}
	if selected == nil {
		return nil, diagnostics, &UnmarshallingError{Msg: "no process with flow nodes found", Err: ErrNoProcess}
	}
	c := converter{}
	p := c.convert(selected.Id, selected.Name, &selected.TFlowElementsContainer)
	return p, append(diagnostics, c.diagnostics...), nil
}

type converter struct {
	diagnostics process.Diagnostics
}

func (c *converter) convert(id, name string, container *bpmn20.TFlowElementsContainer) *process.Process {
	p := &process.Process{Id: id, Name: normalizeLabel(name)}
	skipped := map[string]bool{}
	for _, n := range container.FlowNodes() {
		node := process.Node{Id: n.GetId(), Label: normalizeLabel(n.GetName())}
		switch t := n.GetType(); t {
		case bpmn20.ElementTypeStartEvent:
			node.Kind = process.StartEvent
		case bpmn20.ElementTypeEndEvent:
			node.Kind = process.EndEvent
		case bpmn20.ElementTypeTask, bpmn20.ElementTypeServiceTask, bpmn20.ElementTypeUserTask,
			bpmn20.ElementTypeManualTask, bpmn20.ElementTypeScriptTask, bpmn20.ElementTypeSendTask,
			bpmn20.ElementTypeReceiveTask, bpmn20.ElementTypeBusinessRuleTask:
			node.Kind = process.Task
		case bpmn20.ElementTypeCallActivity, bpmn20.ElementTypeIntermediateCatchEvent, bpmn20.ElementTypeIntermediateThrowEvent:
			node.Kind = process.Task
			c.warn(node.Id, "%s is translated as a plain task", t)
		case bpmn20.ElementTypeSubProcess:
			sub := container.GetSubProcessById(node.Id)
			if sub.TriggeredByEvent {
				skipped[node.Id] = true
				c.warn(node.Id, "event sub-process is not supported and was skipped")
				continue
			}
			node.Kind = process.SubProcess
			node.SubProcess = c.convert(sub.Id, sub.Name, &sub.TFlowElementsContainer)
		case bpmn20.ElementTypeExclusiveGateway:
			node.Kind = process.ExclusiveGateway
		case bpmn20.ElementTypeParallelGateway:
			node.Kind = process.ParallelGateway
		case bpmn20.ElementTypeInclusiveGateway:
			node.Kind = process.InclusiveGateway
		case bpmn20.ElementTypeEventBasedGateway:
			node.Kind = process.ExclusiveGateway
			c.warn(node.Id, "event-based gateway is translated as an exclusive gateway")
		case bpmn20.ElementTypeComplexGateway:
			node.Kind = process.InclusiveGateway
			c.warn(node.Id, "complex gateway is translated as an inclusive gateway")
		case bpmn20.ElementTypeBoundaryEvent:
			skipped[node.Id] = true
			c.warn(node.Id, "boundary event and its outgoing flows were skipped")
			continue
		default:
			panic(fmt.Sprintf("[invariant check] unsupported element type %s of %s", t, node.Id))
		}
		p.Nodes = append(p.Nodes, node)
	}
	for _, f := range container.SequenceFlows {
		if skipped[f.SourceRef] || skipped[f.TargetRef] {
			continue
		}
		p.Flows = append(p.Flows, process.Flow{Id: f.Id, SourceId: f.SourceRef, TargetId: f.TargetRef})
	}
	return p
}

func (c *converter) warn(nodeId string, msg string, args ...any) {
	c.diagnostics = append(c.diagnostics, unsupported(nodeId, msg, args...))
}

func unsupported(nodeId string, msg string, args ...any) process.Diagnostic {
	return process.Diagnostic{
		NodeId:   nodeId,
		Kind:     process.UnsupportedConstruct,
		Severity: process.SeverityWarning,
		Message:  fmt.Sprintf(msg, args...),
	}
}

// normalizeLabel collapses the line breaks and indentation modelers put into names.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
