package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists captured profiles.
type Store interface {
	// Save creates or updates a profile
	Save(p *Profile) error

	// Get retrieves a profile by ID
	Get(id string) (*Profile, error)

	// List returns all profiles, newest first
	List() ([]*Profile, error)

	// Delete removes a profile by ID
	Delete(id string) error
}

// JSONStore implements Store using a JSON file for persistence.
type JSONStore struct {
	path     string
	profiles map[string]*Profile
	mu       sync.RWMutex
}

type storeData struct {
	Version   int        `json:"version"`
	UpdatedAt string     `json:"updated_at"`
	Profiles  []*Profile `json:"profiles"`
}

const currentVersion = 1

// NewJSONStore opens the store at path. The file is created on first save.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path:     path,
		profiles: make(map[string]*Profile),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load profile store: %w", err)
		}
	}
	return s, nil
}

func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if stored.Version > currentVersion {
		return fmt.Errorf("unsupported store version %d", stored.Version)
	}

	s.profiles = make(map[string]*Profile, len(stored.Profiles))
	for _, p := range stored.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		s.profiles[p.ID] = p
	}
	return nil
}

func (s *JSONStore) save() error {
	profiles := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	data, err := json.MarshalIndent(storeData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Profiles:  profiles,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Save creates or updates a captured profile. Built-ins are never stored.
func (s *JSONStore) Save(p *Profile) error {
	if p.BuiltIn {
		return fmt.Errorf("%w: %s", ErrBuiltInReadOnly, p.ID)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.profiles[p.ID]
	s.profiles[p.ID] = p.Clone()
	if err := s.save(); err != nil {
		if existed {
			s.profiles[p.ID] = prev
		} else {
			delete(s.profiles, p.ID)
		}
		return err
	}
	return nil
}

// Get retrieves a profile by ID.
func (s *JSONStore) Get(id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// List returns all stored profiles, newest first.
func (s *JSONStore) List() ([]*Profile, error) {
	s.mu.RLock()
	out := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a profile by ID.
func (s *JSONStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.profiles, id)
	return s.save()
}

// Count returns the number of stored profiles.
func (s *JSONStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
