package bpmn20

type GatewayDirection string

const (
	Unspecified GatewayDirection = "Unspecified"
	Converging  GatewayDirection = "Converging"
	Diverging   GatewayDirection = "Diverging"
	Mixed       GatewayDirection = "Mixed"
)

type TGateway struct {
	TFlowNode
	GatewayDirection GatewayDirection `xml:"gatewayDirection,attr"`
}

type TParallelGateway struct {
	TGateway
}

type TExclusiveGateway struct {
	TGateway
	DefaultFlowId string `xml:"default,attr"`
}

type TInclusiveGateway struct {
	TGateway
	DefaultFlowId string `xml:"default,attr"`
}

// TEventBasedGateway is lowered like an exclusive gateway.
type TEventBasedGateway struct {
	TGateway
	Instantiate bool `xml:"instantiate,attr"`
}

type TComplexGateway struct {
	TGateway
}

func (parallelGateway TParallelGateway) GetType() ElementType     { return ElementTypeParallelGateway }
func (exclusiveGateway TExclusiveGateway) GetType() ElementType   { return ElementTypeExclusiveGateway }
func (inclusiveGateway TInclusiveGateway) GetType() ElementType   { return ElementTypeInclusiveGateway }
func (eventBasedGateway TEventBasedGateway) GetType() ElementType { return ElementTypeEventBasedGateway }
func (complexGateway TComplexGateway) GetType() ElementType       { return ElementTypeComplexGateway }
