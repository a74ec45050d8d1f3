package otel

const (
	Prefix                      = "dcr-"
	AttributeProcessId          = Prefix + "process-id"
	AttributeGraphDefinitionKey = Prefix + "definition-key"
	AttributeSimulationKey      = Prefix + "simulation-key"
	AttributeEventId            = Prefix + "event-id"
	AttributeResourceName       = Prefix + "resource-name"
	AttributeChecksum           = Prefix + "checksum"
	AttributeThreshold          = Prefix + "threshold"
	AttributeDiagnosticKind     = Prefix + "diagnostic-kind"
	AttributeCached             = Prefix + "cached"
)
