// Package spatial is the boundary to the external physics/world subsystem.
// The core registers bodies here and never drives collision or physics
// itself.
package spatial

import "sync"

// BodyDescriptor describes one body to register: an entity or obstacle id,
// its position, and its extent.
type BodyDescriptor struct {
	ID     string
	Kind   string
	X, Y   float64
	Width  float64
	Height float64
}

// Registry is implemented by the external spatial/world subsystem.
type Registry interface {
	Register(body BodyDescriptor)
	Unregister(id string)
}

// MemoryRegistry is an in-process Registry used by the demo client and
// tests. Register on an existing id moves the body.
type MemoryRegistry struct {
	mu     sync.Mutex
	bodies map[string]BodyDescriptor
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{bodies: make(map[string]BodyDescriptor)}
}

func (r *MemoryRegistry) Register(body BodyDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[body.ID] = body
}

func (r *MemoryRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bodies, id)
}

// Body returns the registered descriptor for id.
func (r *MemoryRegistry) Body(id string) (BodyDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	body, ok := r.bodies[id]
	return body, ok
}

// Size returns the number of registered bodies.
func (r *MemoryRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}
