package editor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reelcut/reelcut/internal/command"
)

// Builder constructs a command from loosely-typed arguments.
type Builder func(Args) (command.Command, error)

// Registration describes one named command.
type Registration struct {
	Name        string
	Category    string
	Description string
	Build       Builder
}

// Registry manages command registration by exact name.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Registration
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Registration)}
}

// Register adds a command. Registering an existing name replaces it.
func (r *Registry) Register(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds[reg.Name] = reg
}

// Unregister removes a command by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cmds, name)
}

// Get returns the registration for a name.
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.cmds[name]
	return reg, ok
}

// Has returns true if a command is registered under the name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cmds[name]
	return ok
}

// Build constructs the named command from args.
func (r *Registry) Build(name string, args Args) (command.Command, error) {
	reg, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	cmd, err := reg.Build(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cmd, nil
}

// List returns all registered command names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cmds)
}
