package runtime

import (
	"encoding/hex"
	"time"

	"github.com/pbinitiative/zendcr/pkg/bpmn/process"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	"github.com/pbinitiative/zendcr/pkg/dcr/simulation"
)

type GraphDefinition struct {
	Key              int64               // The engines key for this given process with version
	BpmnProcessId    string              // The ID as defined in the BPMN file
	Version          int32               // default=1, incremented when another process with the same ID and a different checksum is loaded
	BpmnResourceName string              // some name for the resource; optional, can be empty
	BpmnChecksum     [16]byte            // md5 of the raw BPMN data
	BpmnData         string              // the raw source data
	Threshold        int                 // nesting threshold the graph was produced with
	Graph            *dcr.Graph          // nested DCR graph, never modified after save
	NestingIds       []string            // ids of nesting groups created for this graph
	Diagnostics      process.Diagnostics // warnings collected while translating
	DcrXml           string              // DCR-JS representation of Graph
	CreatedAt        time.Time
}

func (d GraphDefinition) Checksum() string {
	return hex.EncodeToString(d.BpmnChecksum[:])
}

type SimulationInstance struct {
	Key           int64
	DefinitionKey int64
	Marking       dcr.Marking
	Trace         []simulation.TraceEntry
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Translation is the outcome of translating and nesting one BPMN document.
type Translation struct {
	BpmnProcessId string
	Graph         *dcr.Graph
	NestingIds    []string
	Diagnostics   process.Diagnostics
	DcrXml        string
}
