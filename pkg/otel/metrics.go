package otel

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
)

type EngineMetrics struct {
	TranslationsStarted metric.Int64Counter
	TranslationsFailed  metric.Int64Counter
	DiagnosticsEmitted  metric.Int64Counter
	SimulationsCreated  metric.Int64Counter
	EventsExecuted      metric.Int64Counter
	ExecutionsRejected  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*EngineMetrics, error) {
	var errJoin error

	translationsStarted, err := meter.Int64Counter("translations_started", metric.WithDescription("Number of BPMN to DCR translations started"))
	errJoin = errors.Join(errJoin, err)

	translationsFailed, err := meter.Int64Counter("translations_failed", metric.WithDescription("Number of translations aborted on unrecoverable input"))
	errJoin = errors.Join(errJoin, err)

	diagnosticsEmitted, err := meter.Int64Counter("translation_diagnostics", metric.WithDescription("Number of diagnostics reported by translations"))
	errJoin = errors.Join(errJoin, err)

	simulationsCreated, err := meter.Int64Counter("simulations_created", metric.WithDescription("Number of simulations created"))
	errJoin = errors.Join(errJoin, err)

	eventsExecuted, err := meter.Int64Counter("events_executed", metric.WithDescription("Number of DCR events executed"))
	errJoin = errors.Join(errJoin, err)

	executionsRejected, err := meter.Int64Counter("executions_rejected", metric.WithDescription("Number of executions rejected because the event was not enabled"))
	errJoin = errors.Join(errJoin, err)

	metrics := EngineMetrics{
		TranslationsStarted: translationsStarted,
		TranslationsFailed:  translationsFailed,
		DiagnosticsEmitted:  diagnosticsEmitted,
		SimulationsCreated:  simulationsCreated,
		EventsExecuted:      eventsExecuted,
		ExecutionsRejected:  executionsRejected,
	}
	return &metrics, errJoin
}
