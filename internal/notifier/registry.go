package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/pulse/internal/core"
)

// Registry manages notifier instances
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	actions   map[core.Action]bool
}

// NewRegistry creates a new notifier registry that forwards only the given
// actions. No actions means every action is forwarded.
func NewRegistry(actions ...core.Action) *Registry {
	r := &Registry{
		notifiers: make(map[string]Notifier),
		actions:   make(map[core.Action]bool, len(actions)),
	}
	for _, a := range actions {
		r.actions[a] = true
	}
	return r
}

// Register adds a notifier to the registry
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}

	r.notifiers[name] = n
	return nil
}

// Get retrieves a notifier by name
func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifiers[name]
	if !exists {
		return nil, fmt.Errorf("notifier %s not found", name)
	}
	return n, nil
}

// GetAll returns all registered notifiers ordered by name
func (r *Registry) GetAll() []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Notifier, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Enabled reports whether messages for action are forwarded
func (r *Registry) Enabled(action core.Action) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions) == 0 || r.actions[action]
}

// NotifyAll sends msg to all registered notifiers. Filtered actions are
// skipped silently. The result maps notifier name to its failure.
func (r *Registry) NotifyAll(ctx context.Context, msg Message) map[string]error {
	errors := make(map[string]error)
	if !r.Enabled(msg.Action) {
		return errors
	}

	for _, n := range r.GetAll() {
		if err := n.Notify(ctx, msg); err != nil {
			errors[n.Name()] = err
		}
	}
	return errors
}
