package bpmn20

type ElementType string

const (
	ElementTypeStartEvent             ElementType = "START_EVENT"
	ElementTypeEndEvent               ElementType = "END_EVENT"
	ElementTypeTask                   ElementType = "TASK"
	ElementTypeServiceTask            ElementType = "SERVICE_TASK"
	ElementTypeUserTask               ElementType = "USER_TASK"
	ElementTypeManualTask             ElementType = "MANUAL_TASK"
	ElementTypeScriptTask             ElementType = "SCRIPT_TASK"
	ElementTypeSendTask               ElementType = "SEND_TASK"
	ElementTypeReceiveTask            ElementType = "RECEIVE_TASK"
	ElementTypeBusinessRuleTask       ElementType = "BUSINESS_RULE_TASK"
	ElementTypeCallActivity           ElementType = "CALL_ACTIVITY"
	ElementTypeSubProcess             ElementType = "SUB_PROCESS"
	ElementTypeParallelGateway        ElementType = "PARALLEL_GATEWAY"
	ElementTypeExclusiveGateway       ElementType = "EXCLUSIVE_GATEWAY"
	ElementTypeInclusiveGateway       ElementType = "INCLUSIVE_GATEWAY"
	ElementTypeEventBasedGateway      ElementType = "EVENT_BASED_GATEWAY"
	ElementTypeComplexGateway         ElementType = "COMPLEX_GATEWAY"
	ElementTypeIntermediateCatchEvent ElementType = "INTERMEDIATE_CATCH_EVENT"
	ElementTypeIntermediateThrowEvent ElementType = "INTERMEDIATE_THROW_EVENT"
	ElementTypeBoundaryEvent          ElementType = "BOUNDARY_EVENT"
	ElementTypeSequenceFlow           ElementType = "SEQUENCE_FLOW"
)
