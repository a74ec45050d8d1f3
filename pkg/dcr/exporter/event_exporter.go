// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package exporter

import "time"

type EventExporter interface {
	NewGraphEvent(event *GraphEvent)
	NewSimulationEvent(event *SimulationEvent)
	NewExecutionEvent(event *SimulationEvent, execution *ExecutionInfo)
}

type Intent string

const (
	Created       Intent = "CREATED"
	Reset         Intent = "RESET"
	EventExecuted Intent = "EVENT_EXECUTED"
	EventRejected Intent = "EVENT_REJECTED"
	Accepting     Intent = "ACCEPTING"
)

type GraphEvent struct {
	ProcessId    string
	GraphKey     int64
	Version      int32
	ResourceName string
	Checksum     string
	Events       int
	Relations    int
	Diagnostics  int
}

type SimulationEvent struct {
	GraphId       string
	SimulationKey int64
	SessionId     string
	Intent        Intent
}

type ExecutionInfo struct {
	EventId   string
	Label     string
	Sequence  int
	Unchecked bool
	Reason    string // set for EVENT_REJECTED
	At        time.Time
}
