package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Content layout under a catalog root directory.
const (
	TablesFile     = "tables.yaml"
	MilestonesFile = "milestones.yaml"
	StructuresDir  = "structures"
	ActivitiesDir  = "activities"
	EventsDir      = "events"
	FeatsDir       = "feats"
)

// decodeStrict decodes data into out, rejecting unknown fields so that typos
// in content fail at load time rather than silently zeroing a rule.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// LoadTables parses the tables file at path.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var t Tables
	if err := decodeStrict(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tables file %s: %w", path, err)
	}
	return &t, nil
}

// LoadMilestones parses a YAML list of milestones at path.
func LoadMilestones(path string) ([]*Milestone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out []*Milestone
	if err := decodeStrict(data, &out); err != nil {
		return nil, fmt.Errorf("parsing milestones file %s: %w", path, err)
	}
	return out, nil
}

// LoadStructures reads all .yaml files in dir and parses each as a Structure.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed structures (may be empty) or a non-nil error.
func LoadStructures(dir string) ([]*Structure, error) {
	return loadDir[Structure](dir, "structure")
}

// LoadActivities reads all .yaml files in dir and parses each as an Activity.
func LoadActivities(dir string) ([]*Activity, error) {
	return loadDir[Activity](dir, "activity")
}

// LoadEvents reads all .yaml files in dir and parses each as an Event.
func LoadEvents(dir string) ([]*Event, error) {
	return loadDir[Event](dir, "event")
}

// LoadFeats reads all .yaml files in dir and parses each as a Feat.
func LoadFeats(dir string) ([]*Feat, error) {
	return loadDir[Feat](dir, "feat")
}

func loadDir[T any](dir, kind string) ([]*T, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var v T
		if err := decodeStrict(data, &v); err != nil {
			return nil, fmt.Errorf("parsing %s file %s: %w", kind, path, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadCatalog loads every table and catalog under root and validates the result.
// Missing optional directories (events, feats), the milestones file and the
// map file yield empty tables.
//
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadCatalog(root string) (*Catalog, error) {
	tables, err := LoadTables(filepath.Join(root, TablesFile))
	if err != nil {
		return nil, err
	}
	cat := NewCatalog(tables)

	structures, err := LoadStructures(filepath.Join(root, StructuresDir))
	if err != nil {
		return nil, err
	}
	for _, s := range structures {
		cat.RegisterStructure(s)
	}

	activities, err := LoadActivities(filepath.Join(root, ActivitiesDir))
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		cat.RegisterActivity(a)
	}

	events, err := optional(LoadEvents(filepath.Join(root, EventsDir)))
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		cat.RegisterEvent(e)
	}

	feats, err := optional(LoadFeats(filepath.Join(root, FeatsDir)))
	if err != nil {
		return nil, err
	}
	for _, f := range feats {
		cat.RegisterFeat(f)
	}

	milestones, err := optional(LoadMilestones(filepath.Join(root, MilestonesFile)))
	if err != nil {
		return nil, err
	}
	for _, m := range milestones {
		cat.RegisterMilestone(m)
	}

	m, err := LoadMap(filepath.Join(root, MapFile))
	switch {
	case err == nil:
		cat.Map = m
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func optional[T any](v []T, err error) ([]T, error) {
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return v, err
}
