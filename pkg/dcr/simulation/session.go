package simulation

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zendcr/pkg/dcr"
	"github.com/pbinitiative/zendcr/pkg/dcr/engine"
	"github.com/pbinitiative/zendcr/pkg/dcr/exporter"
)

type TraceEntry struct {
	Id        string    `json:"id" yaml:"id"`
	Sequence  int       `json:"sequence" yaml:"sequence"`
	EventId   string    `json:"eventId" yaml:"eventId"`
	Label     string    `json:"label" yaml:"label"`
	Unchecked bool      `json:"unchecked,omitempty" yaml:"unchecked,omitempty"`
	At        time.Time `json:"at" yaml:"at"`
}

// Session owns a running marking of one graph and the trace of executed events.
// All methods are serialized, no two executions are ever in flight at once.
type Session struct {
	mu        sync.Mutex
	id        string
	key       int64
	engine    *engine.Engine
	marking   dcr.Marking
	trace     []TraceEntry
	exporters []exporter.EventExporter
	logger    hclog.Logger
	now       func() time.Time
}

type Option func(*Session)

func WithExporter(e exporter.EventExporter) Option {
	return func(s *Session) {
		s.exporters = append(s.exporters, e)
	}
}

func WithLogger(logger hclog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithKey sets the storage key reported to exporters.
func WithKey(key int64) Option {
	return func(s *Session) {
		s.key = key
	}
}

func NewSession(graph *dcr.Graph, opts ...Option) (*Session, error) {
	e, err := engine.New(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation session: %w", err)
	}
	s := &Session{
		id:      uuid.NewString(),
		engine:  e,
		marking: e.InitialMarking(),
		trace:   []TraceEntry{},
		logger:  hclog.Default().Named("simulation"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.export(exporter.Created)
	return s, nil
}

// Restore rebuilds a session from a stored marking and trace. Both are copied.
func Restore(graph *dcr.Graph, marking dcr.Marking, trace []TraceEntry, opts ...Option) (*Session, error) {
	e, err := engine.New(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to restore simulation session: %w", err)
	}
	s := &Session{
		id:      uuid.NewString(),
		engine:  e,
		marking: marking.Clone(),
		trace:   slices.Clone(trace),
		logger:  hclog.Default().Named("simulation"),
		now:     time.Now,
	}
	if s.trace == nil {
		s.trace = []TraceEntry{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Graph() *dcr.Graph {
	return s.engine.Graph()
}

func (s *Session) IsEnabled(eventId string) (engine.EnabledResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsEnabled(&s.marking, eventId)
}

// Enabled lists the currently enabled events in ascending id order.
func (s *Session) Enabled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Enabled(&s.marking)
}

// Execute runs an enabled event and appends it to the trace.
func (s *Session) Execute(eventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(eventId, false)
}

// ExecuteUnchecked runs eventId without checking enabledness.
func (s *Session) ExecuteUnchecked(eventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(eventId, true)
}

func (s *Session) execute(eventId string, unchecked bool) error {
	var opts []engine.ExecuteOption
	if unchecked {
		opts = append(opts, engine.Unchecked())
	}
	if err := s.engine.Execute(&s.marking, eventId, opts...); err != nil {
		s.logger.Debug("execution rejected", "session", s.id, "event", eventId, "error", err)
		s.exportExecution(exporter.EventRejected, exporter.ExecutionInfo{EventId: eventId, Reason: err.Error(), At: s.now()})
		return err
	}
	label := eventId
	if ev, ok := s.engine.Graph().Event(eventId); ok {
		label = ev.Label
	}
	entry := TraceEntry{
		Id:        uuid.NewString(),
		Sequence:  len(s.trace) + 1,
		EventId:   eventId,
		Label:     label,
		Unchecked: unchecked,
		At:        s.now(),
	}
	s.trace = append(s.trace, entry)
	s.exportExecution(exporter.EventExecuted, exporter.ExecutionInfo{
		EventId:   eventId,
		Label:     label,
		Sequence:  entry.Sequence,
		Unchecked: unchecked,
		At:        entry.At,
	})
	if s.engine.IsAccepting(&s.marking) {
		s.export(exporter.Accepting)
	}
	return nil
}

func (s *Session) IsAccepting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsAccepting(&s.marking)
}

// Reset restores the initial marking by value and clears the trace.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marking = s.engine.InitialMarking()
	s.trace = []TraceEntry{}
	s.export(exporter.Reset)
}

// Replay resets the session and executes events in order. It stops at the first
// rejected event and returns its error; the events before it stay executed.
func (s *Session) Replay(eventIds []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marking = s.engine.InitialMarking()
	s.trace = []TraceEntry{}
	s.export(exporter.Reset)
	for i, id := range eventIds {
		if err := s.execute(id, false); err != nil {
			return fmt.Errorf("replay stopped at step %d: %w", i+1, err)
		}
	}
	return nil
}

// Marking returns a copy of the current marking.
func (s *Session) Marking() dcr.Marking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marking.Clone()
}

func (s *Session) Trace() []TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.trace)
}

func (s *Session) export(intent exporter.Intent) {
	event := exporter.SimulationEvent{
		GraphId:       s.engine.Graph().Id,
		SimulationKey: s.key,
		SessionId:     s.id,
		Intent:        intent,
	}
	for _, exp := range s.exporters {
		exp.NewSimulationEvent(&event)
	}
}

func (s *Session) exportExecution(intent exporter.Intent, info exporter.ExecutionInfo) {
	event := exporter.SimulationEvent{
		GraphId:       s.engine.Graph().Id,
		SimulationKey: s.key,
		SessionId:     s.id,
		Intent:        intent,
	}
	for _, exp := range s.exporters {
		exp.NewExecutionEvent(&event, &info)
	}
}
