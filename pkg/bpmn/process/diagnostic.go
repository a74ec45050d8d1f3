package process

import (
	"fmt"
	"strings"
)

type DiagnosticKind string

const (
	MalformedGateway     DiagnosticKind = "MalformedGateway"
	UnreachableNode      DiagnosticKind = "UnreachableNode"
	UnsupportedConstruct DiagnosticKind = "UnsupportedConstruct"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a non-fatal finding about a single node of the process model.
type Diagnostic struct {
	NodeId   string         `json:"nodeId" yaml:"nodeId"`
	Kind     DiagnosticKind `json:"kind" yaml:"kind"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", d.Severity, d.Kind, d.NodeId, d.Message)
}

type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (ds Diagnostics) OfKind(kind DiagnosticKind) Diagnostics {
	var res Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			res = append(res, d)
		}
	}
	return res
}

func (ds Diagnostics) String() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

func errorf(nodeId string, kind DiagnosticKind, msg string, args ...any) Diagnostic {
	return Diagnostic{NodeId: nodeId, Kind: kind, Severity: SeverityError, Message: fmt.Sprintf(msg, args...)}
}

func warnf(nodeId string, kind DiagnosticKind, msg string, args ...any) Diagnostic {
	return Diagnostic{NodeId: nodeId, Kind: kind, Severity: SeverityWarning, Message: fmt.Sprintf(msg, args...)}
}
