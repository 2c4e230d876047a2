// Package processor manages named business-logic processors. A processor
// is any component that sets up bus subscriptions against a store and can
// tear them down again; the registry owns the name → processor mapping
// and the teardown-on-removal contract.
package processor

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Processor is the minimal registry contract: release all bus
// subscriptions when removed.
type Processor interface {
	Teardown()
}

// NotRegisteredError reports removal of a name that was never registered.
type NotRegisteredError struct {
	Name string
}

// Error implements the error interface.
func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("processor %q not registered", e.Name)
}

// Registry holds named processors. Duplicate names are resolved by
// suffixing ("_1", "_2", ...) rather than failing; removal of an unknown
// name fails loudly.
type Registry struct {
	mu    sync.Mutex
	procs map[string]Processor
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Processor)}
}

// Register stores p under name and returns the key actually used. When
// name is already taken, a numeric suffix is appended until the key is
// free, so registration never fails on duplicates.
func (r *Registry) Register(name string, p Processor) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := name
	for suffix := 1; ; suffix++ {
		if _, taken := r.procs[key]; !taken {
			break
		}
		key = name + "_" + strconv.Itoa(suffix)
	}
	r.procs[key] = p
	return key
}

// Delete removes the processor registered under name, calling its
// Teardown first. Deleting a name that was never registered returns a
// NotRegisteredError.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.procs[name]
	if !ok {
		return &NotRegisteredError{Name: name}
	}
	p.Teardown()
	delete(r.procs, name)
	return nil
}

// Get returns the processor registered under name.
func (r *Registry) Get(name string) (Processor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.procs[name]
	return p, ok
}

// Names returns all registered keys in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.procs))
	for name := range r.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TeardownAll removes every processor, tearing each down.
func (r *Registry) TeardownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, p := range r.procs {
		p.Teardown()
		delete(r.procs, name)
	}
}
