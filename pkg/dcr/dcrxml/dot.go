package dcrxml

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pbinitiative/zendcr/pkg/dcr"
)

var relationStyles = map[dcr.RelationKind]string{
	dcr.Condition: `color="#f39c12" arrowhead=normal arrowtail=none label="•"`,
	dcr.Response:  `color="#2980b9" arrowhead=normal dir=both arrowtail=dot`,
	dcr.Include:   `color="#27ae60" label="+"`,
	dcr.Exclude:   `color="#c0392b" label="%"`,
	dcr.Milestone: `color="#8e44ad" arrowhead=diamond`,
}

// nodeName derives a DOT-safe node name that is stable for a given id.
func nodeName(id string) string {
	return "n" + strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String(), "-", "")
}

// ToDOT renders the graph and its marking for Graphviz. Groups become clusters,
// excluded events are dashed, pending events bold and executed events filled.
func ToDOT(graph *dcr.Graph) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph \"%s\" {\n", escapeLabel(graph.Id)))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [fontname=\"Helvetica\" shape=box style=rounded];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\"];\n\n")

	grouped := map[string][]dcr.Event{}
	for _, e := range graph.Events {
		owner := graph.GroupOf(e.Id)
		grouped[owner] = append(grouped[owner], e)
	}

	sb.WriteString("  // Events\n")
	for _, e := range grouped[""] {
		writeEvent(&sb, graph, e, "  ")
	}
	for _, g := range graph.Groups {
		sb.WriteString(fmt.Sprintf("  subgraph cluster_%s {\n", nodeName(g.Id)))
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeLabel(g.Label)))
		if g.Kind == dcr.GroupKindNesting {
			sb.WriteString("    style=dotted;\n")
		}
		for _, e := range grouped[g.Id] {
			writeEvent(&sb, graph, e, "    ")
		}
		sb.WriteString("  }\n")
	}
	sb.WriteString("\n")

	sb.WriteString("  // Relations\n")
	for _, r := range graph.Relations {
		sb.WriteString(fmt.Sprintf("  %s -> %s [%s tooltip=\"%s\"];\n",
			nodeName(r.Source), nodeName(r.Target), relationStyles[r.Kind], r.Kind))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func writeEvent(sb *strings.Builder, graph *dcr.Graph, e dcr.Event, indent string) {
	var style []string
	if !graph.Marking.IsIncluded(e.Id) {
		style = append(style, "dashed")
	}
	if graph.Marking.IsPending(e.Id) {
		style = append(style, "bold")
	}
	if graph.Marking.IsExecuted(e.Id) {
		style = append(style, "filled")
	}
	attrs := fmt.Sprintf("label=\"%s\"", escapeLabel(e.Label))
	if len(style) > 0 {
		attrs += fmt.Sprintf(" style=\"rounded,%s\"", strings.Join(style, ","))
	}
	sb.WriteString(fmt.Sprintf("%s%s [%s];\n", indent, nodeName(e.Id), attrs))
}

// escapeLabel escapes special characters for DOT format.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
