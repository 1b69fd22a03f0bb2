// Package seed loads a JSON or YAML catalog snapshot into the in-memory stores.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	canonicalrepo "depcatalog/internal/catalog/repository/canonical"
	dependencyrepo "depcatalog/internal/catalog/repository/dependency"
	servicerepo "depcatalog/internal/catalog/repository/service"
	teamrepo "depcatalog/internal/catalog/repository/team"
	"depcatalog/internal/types"
)

var ErrInvalidSeed = errors.New("invalid seed")

// File is the on-disk seed layout.
type File struct {
	Teams              []types.TeamRow           `json:"teams"`
	Services           []types.ServiceRow        `json:"services"`
	Dependencies       []types.DependencyRow     `json:"dependencies"`
	CanonicalOverrides []types.CanonicalOverride `json:"canonical_overrides"`
}

// Stores are the memory stores a seed is written into.
type Stores struct {
	Teams        *teamrepo.MemoryStore
	Services     *servicerepo.MemoryStore
	Dependencies *dependencyrepo.MemoryStore
	Overrides    *canonicalrepo.MemoryStore
}

// Read parses and validates the seed at path. Files ending in .yaml or .yml
// are read as YAML, anything else as JSON.
func Read(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(b)
	default:
		return Parse(b)
	}
}

// Parse decodes a JSON seed, checks it against the seed schema and fills
// service team names from the team list.
func Parse(b []byte) (*File, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return decode(doc, b)
}

// ParseYAML is Parse for YAML input.
func ParseYAML(b []byte) (*File, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return decode(doc, asJSON)
}

func decode(doc any, b []byte) (*File, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) normalize() error {
	teamNames := make(map[string]string, len(f.Teams))
	for i := range f.Teams {
		t := &f.Teams[i]
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return fmt.Errorf("%w: team %d has no id", ErrInvalidSeed, i)
		}
		teamNames[t.ID] = t.Name
	}

	serviceIDs := make(map[string]struct{}, len(f.Services))
	for i := range f.Services {
		s := &f.Services[i]
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return fmt.Errorf("%w: service %d has no id", ErrInvalidSeed, i)
		}
		name, ok := teamNames[s.TeamID]
		if !ok {
			return fmt.Errorf("%w: service %s references unknown team %q", ErrInvalidSeed, s.ID, s.TeamID)
		}
		if s.TeamName == "" {
			s.TeamName = name
		}
		serviceIDs[s.ID] = struct{}{}
	}

	for i := range f.Dependencies {
		d := &f.Dependencies[i]
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return fmt.Errorf("%w: dependency %d has no id", ErrInvalidSeed, i)
		}
		if _, ok := serviceIDs[d.ServiceID]; !ok {
			return fmt.Errorf("%w: dependency %s references unknown service %q", ErrInvalidSeed, d.ID, d.ServiceID)
		}
	}

	for i, o := range f.CanonicalOverrides {
		if strings.TrimSpace(o.CanonicalName) == "" {
			return fmt.Errorf("%w: canonical override %d has no canonical name", ErrInvalidSeed, i)
		}
	}
	return nil
}

// Apply writes every row of f into s.
func (f *File) Apply(s Stores) {
	for _, t := range f.Teams {
		s.Teams.Put(t)
	}
	for _, svc := range f.Services {
		s.Services.Put(svc)
	}
	for _, d := range f.Dependencies {
		s.Dependencies.Put(d)
	}
	for _, o := range f.CanonicalOverrides {
		s.Overrides.Put(o)
	}
}
