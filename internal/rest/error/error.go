package apierror

import "github.com/pbinitiative/zendcr/pkg/bpmn/process"

const (
	TypeBadRequest        = "BAD_REQUEST"
	TypeNotFound          = "NOT_FOUND"
	TypeUnknownEvent      = "UNKNOWN_EVENT"
	TypeEventNotEnabled   = "EVENT_NOT_ENABLED"
	TypeTranslationFailed = "TRANSLATION_FAILED"
	TypeError             = "ERROR"
)

type ApiError struct {
	Type        string              `json:"type"`
	Message     string              `json:"message"`
	Diagnostics process.Diagnostics `json:"diagnostics,omitempty"`
}
