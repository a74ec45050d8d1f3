package bpmn20

type TFlowElementsContainer struct {
	StartEvents            []TStartEvent             `xml:"startEvent"`
	EndEvents              []TEndEvent               `xml:"endEvent"`
	SequenceFlows          []TSequenceFlow           `xml:"sequenceFlow"`
	Tasks                  []TTask                   `xml:"task"`
	ServiceTasks           []TServiceTask            `xml:"serviceTask"`
	UserTasks              []TUserTask               `xml:"userTask"`
	ManualTasks            []TManualTask             `xml:"manualTask"`
	ScriptTasks            []TScriptTask             `xml:"scriptTask"`
	SendTasks              []TSendTask               `xml:"sendTask"`
	ReceiveTasks           []TReceiveTask            `xml:"receiveTask"`
	BusinessRuleTasks      []TBusinessRuleTask       `xml:"businessRuleTask"`
	CallActivities         []TCallActivity           `xml:"callActivity"`
	SubProcesses           []TSubProcess             `xml:"subProcess"`
	ParallelGateways       []TParallelGateway        `xml:"parallelGateway"`
	ExclusiveGateways      []TExclusiveGateway       `xml:"exclusiveGateway"`
	InclusiveGateways      []TInclusiveGateway       `xml:"inclusiveGateway"`
	EventBasedGateways     []TEventBasedGateway      `xml:"eventBasedGateway"`
	ComplexGateways        []TComplexGateway         `xml:"complexGateway"`
	IntermediateCatchEvent []TIntermediateCatchEvent `xml:"intermediateCatchEvent"`
	IntermediateThrowEvent []TIntermediateThrowEvent `xml:"intermediateThrowEvent"`
	BoundaryEvents         []TBoundaryEvent          `xml:"boundaryEvent"`
}

type TProcess struct {
	TCallableElement
	TFlowElementsContainer
	ProcessType  string `xml:"processType,attr"`
	IsClosed     bool   `xml:"isClosed,attr"`
	IsExecutable bool   `xml:"isExecutable,attr"`
}

// FlowNodes returns every flow node of the container, grouped by element kind.
// Nested sub-process contents are not included.
func (c *TFlowElementsContainer) FlowNodes() []FlowNode {
	var res []FlowNode
	for _, e := range c.StartEvents {
		res = append(res, e)
	}
	for _, e := range c.Tasks {
		res = append(res, e)
	}
	for _, e := range c.ServiceTasks {
		res = append(res, e)
	}
	for _, e := range c.UserTasks {
		res = append(res, e)
	}
	for _, e := range c.ManualTasks {
		res = append(res, e)
	}
	for _, e := range c.ScriptTasks {
		res = append(res, e)
	}
	for _, e := range c.SendTasks {
		res = append(res, e)
	}
	for _, e := range c.ReceiveTasks {
		res = append(res, e)
	}
	for _, e := range c.BusinessRuleTasks {
		res = append(res, e)
	}
	for _, e := range c.CallActivities {
		res = append(res, e)
	}
	for _, e := range c.SubProcesses {
		res = append(res, e)
	}
	for _, e := range c.ExclusiveGateways {
		res = append(res, e)
	}
	for _, e := range c.ParallelGateways {
		res = append(res, e)
	}
	for _, e := range c.InclusiveGateways {
		res = append(res, e)
	}
	for _, e := range c.EventBasedGateways {
		res = append(res, e)
	}
	for _, e := range c.ComplexGateways {
		res = append(res, e)
	}
	for _, e := range c.IntermediateCatchEvent {
		res = append(res, e)
	}
	for _, e := range c.IntermediateThrowEvent {
		res = append(res, e)
	}
	for _, e := range c.BoundaryEvents {
		res = append(res, e)
	}
	for _, e := range c.EndEvents {
		res = append(res, e)
	}
	return res
}

func (c *TFlowElementsContainer) GetFlowNodeById(id string) FlowNode {
	for _, n := range c.FlowNodes() {
		if n.GetId() == id {
			return n
		}
	}
	return nil
}

func (c *TFlowElementsContainer) GetSubProcessById(id string) *TSubProcess {
	for i := range c.SubProcesses {
		if c.SubProcesses[i].Id == id {
			return &c.SubProcesses[i]
		}
	}
	return nil
}
