// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package engine

import (
	"errors"
	"fmt"
)

type ExecutionErrorKind string

const (
	EventNotEnabled ExecutionErrorKind = "EventNotEnabled"
	UnknownEventId  ExecutionErrorKind = "UnknownEventId"
)

var (
	ErrEventNotEnabled = errors.New("event is not enabled")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrNilMarking      = errors.New("marking must not be nil")
)

// ExecutionError rejects an execution. The marking is never modified when it is returned.
type ExecutionError struct {
	Kind    ExecutionErrorKind
	EventId string
	Reason  string
}

func (e *ExecutionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.EventId)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.EventId, e.Reason)
}

func (e *ExecutionError) Is(target error) bool {
	switch target {
	case ErrEventNotEnabled:
		return e.Kind == EventNotEnabled
	case ErrUnknownEvent:
		return e.Kind == UnknownEventId
	}
	return false
}

func newUnknownEventError(eventId string) error {
	return &ExecutionError{Kind: UnknownEventId, EventId: eventId, Reason: "event does not exist in graph"}
}
