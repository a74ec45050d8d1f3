package dcrxml

import "encoding/xml"

// Element shapes of the DCR-JS exchange format. Empty containers are kept since
// DCR-JS expects them to be present.

type tDcrGraph struct {
	XMLName       xml.Name       `xml:"dcrgraph"`
	Title         string         `xml:"title,attr,omitempty"`
	Specification tSpecification `xml:"specification"`
	Runtime       tRuntime       `xml:"runtime"`
}

type tSpecification struct {
	Resources   tResources   `xml:"resources"`
	Constraints tConstraints `xml:"constraints"`
}

type tResources struct {
	Events           tEvents           `xml:"events"`
	Labels           tLabels           `xml:"labels"`
	LabelMappings    tLabelMappings    `xml:"labelMappings"`
	SubProcesses     tSubProcesses     `xml:"subProcesses"`
	Variables        tEmpty            `xml:"variables"`
	Expressions      tEmpty            `xml:"expressions"`
	VariableAccesses tVariableAccesses `xml:"variableAccesses"`
}

type tEmpty struct{}

type tEvents struct {
	Event []tEvent `xml:"event"`
}

type tEvent struct {
	Id     string       `xml:"id,attr"`
	Custom tEventCustom `xml:"custom"`
}

type tEventCustom struct {
	Visualization tVisualization `xml:"visualization"`
}

type tVisualization struct {
	Location tLocation `xml:"location"`
	Size     tSize     `xml:"size"`
}

type tLocation struct {
	XLoc int `xml:"xLoc,attr"`
	YLoc int `xml:"yLoc,attr"`
}

type tSize struct {
	Width  int `xml:"width,attr"`
	Height int `xml:"height,attr"`
}

type tLabels struct {
	Label []tLabel `xml:"label"`
}

type tLabel struct {
	Id string `xml:"id,attr"`
}

type tLabelMappings struct {
	LabelMapping []tLabelMapping `xml:"labelMapping"`
}

type tLabelMapping struct {
	EventId string `xml:"eventId,attr"`
	LabelId string `xml:"labelId,attr"`
}

type tSubProcesses struct {
	SubProcess []tSubProcess `xml:"subProcess"`
}

type tSubProcess struct {
	Id     string     `xml:"id,attr"`
	Label  string     `xml:"label,attr,omitempty"`
	Kind   string     `xml:"kind,attr"`
	Parent string     `xml:"parent,attr,omitempty"`
	Events []tEventId `xml:"event"`
}

type tVariableAccesses struct {
	ReadAccesses  tEmpty `xml:"readAccessess"`
	WriteAccesses tEmpty `xml:"writeAccessess"`
}

type tConstraints struct {
	Conditions  tRelations `xml:"conditions"`
	Responses   tRelations `xml:"responses"`
	Includes    tRelations `xml:"includes"`
	Excludes    tRelations `xml:"excludes"`
	Coresponces tEmpty     `xml:"coresponces"`
	Milestones  tRelations `xml:"milestones"`
	Updates     tEmpty     `xml:"updates"`
	Spawns      tEmpty     `xml:"spawns"`
}

type tRelations struct {
	Relation []tRelation `xml:",any"`
}

type tRelation struct {
	XMLName  xml.Name
	SourceId string          `xml:"sourceId,attr"`
	TargetId string          `xml:"targetId,attr"`
	Custom   tRelationCustom `xml:"custom"`
}

type tRelationCustom struct {
	Waypoints tEmpty   `xml:"waypoints"`
	Id        tEventId `xml:"id"`
}

type tRuntime struct {
	Marking tMarking `xml:"marking"`
}

type tMarking struct {
	Executed         tEventIds `xml:"executed"`
	Included         tEventIds `xml:"included"`
	PendingResponses tEventIds `xml:"pendingResponses"`
	GlobalStore      tEmpty    `xml:"globalStore"`
}

type tEventIds struct {
	Event []tEventId `xml:"event"`
}

type tEventId struct {
	Id string `xml:"id,attr"`
}
