package bpmn20

// All BPMN elements that inherit from the BaseElement will have the capability,
// through the Documentation element, to have one (1) or more text descriptions
// of that element.
type TDocumentation struct {
	Text   string `xml:",chardata"`
	Format string `xml:"textFormat,attr"`
}

type TBaseElement struct {
	// This attribute is used to uniquely identify BPMN elements. The id is
	// REQUIRED if this element is referenced or intended to be referenced by
	// something else.
	Id            string           `xml:"id,attr"`
	Documentation []TDocumentation `xml:"documentation"`
}

func (t TBaseElement) GetId() string {
	return t.Id
}

type BaseElement interface {
	GetId() string
}

type TDefinitions struct {
	TBaseElement
	Name            string     `xml:"name,attr"`
	TargetNamespace string     `xml:"targetNamespace,attr"`
	Exporter        string     `xml:"exporter,attr"`
	ExporterVersion string     `xml:"exporterVersion,attr"`
	Processes       []TProcess `xml:"process"`
}

type TCallableElement struct {
	TBaseElement
	Name string `xml:"name,attr"`
}

type TFlowElement struct {
	TBaseElement
	Name string `xml:"name,attr"`
}

func (fe TFlowElement) GetName() string {
	return fe.Name
}

type FlowElement interface {
	BaseElement
	GetName() string
	GetType() ElementType
}

type TFlowNode struct {
	TFlowElement
	IncomingAssociation []string `xml:"incoming"`
	OutgoingAssociation []string `xml:"outgoing"`
}

func (fn TFlowNode) GetIncomingAssociation() []string {
	return fn.IncomingAssociation
}

func (fn TFlowNode) GetOutgoingAssociation() []string {
	return fn.OutgoingAssociation
}

type FlowNode interface {
	FlowElement
	GetIncomingAssociation() []string
	GetOutgoingAssociation() []string
}

type TSequenceFlow struct {
	TFlowElement
	SourceRef           string       `xml:"sourceRef,attr"`
	TargetRef           string       `xml:"targetRef,attr"`
	ConditionExpression *TExpression `xml:"conditionExpression"`
}

func (sf TSequenceFlow) GetType() ElementType { return ElementTypeSequenceFlow }

type TExpression struct {
	Text string `xml:",innerxml"`
}
