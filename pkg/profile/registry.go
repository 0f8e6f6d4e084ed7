package profile

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the profiles a session can select.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// NewDefaultRegistry creates a registry preloaded with the built-ins.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadBuiltIn(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadBuiltIn registers every embedded profile.
func (r *Registry) LoadBuiltIn() error {
	ids, err := ListEmbedded()
	if err != nil {
		return err
	}

	for _, id := range ids {
		p, err := LoadEmbedded(id)
		if err != nil {
			return fmt.Errorf("failed to load profile %q: %w", id, err)
		}
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadStore registers every profile held by a store.
func (r *Registry) LoadStore(s Store) error {
	profiles, err := s.List()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Register validates and adds a profile. A captured profile cannot replace a built-in.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[p.ID]; ok && existing.BuiltIn && !p.BuiltIn {
		return fmt.Errorf("%w: %s", ErrBuiltInReadOnly, p.ID)
	}
	r.profiles[p.ID] = p.Clone()
	return nil
}

// Unregister removes a non built-in profile.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.BuiltIn {
		return fmt.Errorf("%w: %s", ErrBuiltInReadOnly, id)
	}
	delete(r.profiles, id)
	return nil
}

// Get returns a copy of the profile with the given ID.
func (r *Registry) Get(id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// List returns copies of all profiles, built-ins first, then by name.
func (r *Registry) List() []*Profile {
	r.mu.RLock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].BuiltIn != out[j].BuiltIn {
			return out[i].BuiltIn
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of registered profiles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}
