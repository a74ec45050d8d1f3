package bpmn20

type TActivity struct {
	TFlowNode
	CompletionQuantity int  `xml:"completionQuantity,attr"`
	IsForCompensation  bool `xml:"isForCompensation,attr"`
	StartQuantity      int  `xml:"startQuantity,attr" default:"1"`
}

type TTask struct {
	TActivity
}

func (task TTask) GetType() ElementType { return ElementTypeTask }

type TServiceTask struct {
	TTask
	OperationRef   string `xml:"operationRef,attr"`
	Implementation string `xml:"implementation,attr"`
}

func (serviceTask TServiceTask) GetType() ElementType { return ElementTypeServiceTask }

type TUserTask struct {
	TTask
}

func (userTask TUserTask) GetType() ElementType { return ElementTypeUserTask }

type TManualTask struct {
	TTask
}

func (manualTask TManualTask) GetType() ElementType { return ElementTypeManualTask }

type TScriptTask struct {
	TTask
	ScriptFormat string `xml:"scriptFormat,attr"`
}

func (scriptTask TScriptTask) GetType() ElementType { return ElementTypeScriptTask }

type TSendTask struct {
	TTask
	MessageRef string `xml:"messageRef,attr"`
}

func (sendTask TSendTask) GetType() ElementType { return ElementTypeSendTask }

type TReceiveTask struct {
	TTask
	MessageRef string `xml:"messageRef,attr"`
}

func (receiveTask TReceiveTask) GetType() ElementType { return ElementTypeReceiveTask }

type TBusinessRuleTask struct {
	TTask
	Implementation string `xml:"implementation,attr"`
}

func (businessRuleTask TBusinessRuleTask) GetType() ElementType { return ElementTypeBusinessRuleTask }

// TCallActivity is read so it can be reported, it is lowered like a task.
type TCallActivity struct {
	TActivity
	CalledElement string `xml:"calledElement,attr"`
}

func (callActivity TCallActivity) GetType() ElementType { return ElementTypeCallActivity }

type TSubProcess struct {
	TActivity
	TFlowElementsContainer
	TriggeredByEvent bool `xml:"triggeredByEvent,attr"`
}

func (subProcess TSubProcess) GetType() ElementType { return ElementTypeSubProcess }
