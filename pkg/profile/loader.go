package profile

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed data/*.json
var embeddedProfiles embed.FS

// LoadEmbedded loads a built-in profile by ID.
func LoadEmbedded(id string) (*Profile, error) {
	data, err := embeddedProfiles.ReadFile(fmt.Sprintf("data/%s.json", id))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	p, err := parseProfileJSON(id, data)
	if err != nil {
		return nil, err
	}
	p.BuiltIn = true
	return p, nil
}

// LoadFromFile loads a profile from a JSON file on disk.
// The ID defaults to the file name without extension.
func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return parseProfileJSON(strings.TrimSuffix(filepath.Base(path), ".json"), data)
}

// ListEmbedded returns the IDs of all built-in profiles.
func ListEmbedded() ([]string, error) {
	entries, err := embeddedProfiles.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded profiles: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return ids, nil
}

func parseProfileJSON(id string, data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
