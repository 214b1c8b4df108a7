package service

import (
	"fmt"
	"sync"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

// ComponentRegistry holds the configured document sinks and notifiers.
// Lookups return them in registration order.
type ComponentRegistry struct {
	mu        sync.RWMutex
	sinks     map[string]ports.DocumentSink
	sinkOrder []string
	notifiers map[string]ports.Notifier
	notifyOrd []string
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		sinks:     make(map[string]ports.DocumentSink),
		notifiers: make(map[string]ports.Notifier),
	}
}

func (r *ComponentRegistry) RegisterDocumentSink(sink ports.DocumentSink) error {
	if sink == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil document sink")
	}
	sinkType := sink.Type()
	if sinkType == "" {
		return errors.New(errors.CodeInternal, "document sink type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sinks[sinkType]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("document sink type '%s' already registered", sinkType))
	}
	r.sinks[sinkType] = sink
	r.sinkOrder = append(r.sinkOrder, sinkType)
	return nil
}

func (r *ComponentRegistry) GetDocumentSink(sinkType string) (ports.DocumentSink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, exists := r.sinks[sinkType]
	if !exists {
		return nil, errors.New(errors.CodeConfigValidation, fmt.Sprintf("document sink type '%s' not found", sinkType))
	}
	return sink, nil
}

func (r *ComponentRegistry) DocumentSinks() []ports.DocumentSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.DocumentSink, 0, len(r.sinkOrder))
	for _, t := range r.sinkOrder {
		out = append(out, r.sinks[t])
	}
	return out
}

func (r *ComponentRegistry) RegisterNotifier(notifier ports.Notifier) error {
	if notifier == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil notifier")
	}
	notifierType := notifier.Type()
	if notifierType == "" {
		return errors.New(errors.CodeInternal, "notifier type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifiers[notifierType]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("notifier type '%s' already registered", notifierType))
	}
	r.notifiers[notifierType] = notifier
	r.notifyOrd = append(r.notifyOrd, notifierType)
	return nil
}

func (r *ComponentRegistry) Notifiers() []ports.Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.Notifier, 0, len(r.notifyOrd))
	for _, t := range r.notifyOrd {
		out = append(out, r.notifiers[t])
	}
	return out
}
