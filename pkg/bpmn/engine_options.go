package bpmn

import (
	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zendcr/pkg/dcr/exporter"
	"github.com/pbinitiative/zendcr/pkg/storage"
	"github.com/pbinitiative/zendcr/pkg/storage/inmemory"
)

type EngineOption = func(*Engine)

func EngineWithExporter(exporter exporter.EventExporter) EngineOption {
	return func(engine *Engine) { engine.AddEventExporter(exporter) }
}

func EngineWithStorage(persistence storage.Storage) EngineOption {
	return func(engine *Engine) {
		engine.persistence = persistence
	}
}

func EngineWithName(name string) EngineOption {
	return func(engine *Engine) {
		engine.name = name
	}
}

// EngineWithNestingThreshold sets the minimum number of relations between two
// events before they are grouped. Zero groups every connected component.
func EngineWithNestingThreshold(threshold int) EngineOption {
	return func(engine *Engine) {
		engine.threshold = threshold
	}
}

func EngineWithTranslationCache(cache *inmemory.TranslationCache) EngineOption {
	return func(engine *Engine) {
		engine.translationCache = cache
	}
}

func EngineWithLogger(logger hclog.Logger) EngineOption {
	return func(engine *Engine) {
		engine.logger = logger
	}
}
