// Package dcrxml writes DCR graphs in the DCR-JS XML exchange format and as Graphviz DOT.
package dcrxml

import (
	"encoding/xml"
	"fmt"
	"slices"

	"github.com/pbinitiative/zendcr/pkg/dcr"
)

const (
	gridStart = 100
	gridStepX = 180
	gridStepY = 200
	gridMaxX  = 900

	eventWidth  = 130
	eventHeight = 150
)

// Marshal writes graph as an indented DCR-JS document. Relations are numbered
// Relation_1..n in the graph's relation order.
func Marshal(graph *dcr.Graph) ([]byte, error) {
	if graph == nil {
		return nil, fmt.Errorf("cannot marshal nil graph")
	}
	doc := tDcrGraph{
		Title: graph.Name,
		Specification: tSpecification{
			Resources:   resources(graph),
			Constraints: constraints(graph),
		},
		Runtime: tRuntime{Marking: marking(graph.Marking)},
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dcr graph %s: %w", graph.Id, err)
	}
	return append([]byte(xml.Header), out...), nil
}

func resources(graph *dcr.Graph) tResources {
	res := tResources{}
	x, y := gridStart, gridStart
	labels := map[string]struct{}{}
	for _, e := range graph.Events {
		res.Events.Event = append(res.Events.Event, tEvent{
			Id: e.Id,
			Custom: tEventCustom{Visualization: tVisualization{
				Location: tLocation{XLoc: x, YLoc: y},
				Size:     tSize{Width: eventWidth, Height: eventHeight},
			}},
		})
		x += gridStepX
		if x > gridMaxX {
			x = gridStart
			y += gridStepY
		}
		res.LabelMappings.LabelMapping = append(res.LabelMappings.LabelMapping, tLabelMapping{EventId: e.Id, LabelId: e.Label})
		labels[e.Label] = struct{}{}
	}
	sorted := make([]string, 0, len(labels))
	for l := range labels {
		sorted = append(sorted, l)
	}
	slices.Sort(sorted)
	for _, l := range sorted {
		res.Labels.Label = append(res.Labels.Label, tLabel{Id: l})
	}
	for _, g := range graph.Groups {
		sp := tSubProcess{Id: g.Id, Label: g.Label, Kind: string(g.Kind), Parent: g.Parent}
		for _, m := range g.Members {
			sp.Events = append(sp.Events, tEventId{Id: m})
		}
		res.SubProcesses.SubProcess = append(res.SubProcesses.SubProcess, sp)
	}
	return res
}

func constraints(graph *dcr.Graph) tConstraints {
	c := tConstraints{}
	for i, r := range graph.Relations {
		rel := tRelation{
			XMLName:  xml.Name{Local: r.Kind.String()},
			SourceId: r.Source,
			TargetId: r.Target,
			Custom:   tRelationCustom{Id: tEventId{Id: fmt.Sprintf("Relation_%d", i+1)}},
		}
		switch r.Kind {
		case dcr.Condition:
			c.Conditions.Relation = append(c.Conditions.Relation, rel)
		case dcr.Response:
			c.Responses.Relation = append(c.Responses.Relation, rel)
		case dcr.Include:
			c.Includes.Relation = append(c.Includes.Relation, rel)
		case dcr.Exclude:
			c.Excludes.Relation = append(c.Excludes.Relation, rel)
		case dcr.Milestone:
			c.Milestones.Relation = append(c.Milestones.Relation, rel)
		default:
			panic(fmt.Sprintf("[invariant check] unsupported relation kind %s", r.Kind))
		}
	}
	return c
}

func marking(m dcr.Marking) tMarking {
	return tMarking{
		Executed:         eventIds(m.Executed),
		Included:         eventIds(m.Included),
		PendingResponses: eventIds(m.Pending),
	}
}

func eventIds(s dcr.Set) tEventIds {
	res := tEventIds{}
	for _, id := range s.Sorted() {
		res.Event = append(res.Event, tEventId{Id: id})
	}
	return res
}
