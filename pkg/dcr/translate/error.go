package translate

import "github.com/pbinitiative/zendcr/pkg/bpmn/process"

// TranslationError aborts a translation. Diagnostics holds the findings that made
// the model untranslatable.
type TranslationError struct {
	ProcessId   string
	Msg         string
	Diagnostics process.Diagnostics
}

func (e *TranslationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return e.Msg
	}
	return e.Msg + "\n" + e.Diagnostics.String()
}
