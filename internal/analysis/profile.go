package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileStore manages scoring profiles stored as YAML files, one per name.
// YAML keeps category keys case-sensitive, which blendshape names rely on.
type ProfileStore struct {
	dataDir string
}

// NewProfileStore creates a new profile store
func NewProfileStore(dataDir string) *ProfileStore {
	return &ProfileStore{dataDir: dataDir}
}

func (s *ProfileStore) path(name string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%s.yaml", name))
}

// Load returns the named profile. A file in the store overrides the built-in
// profile of the same name; a missing file falls back to the built-in one.
// The result is always validated.
func (s *ProfileStore) Load(name string) (ScoringConfig, error) {
	if name == "" {
		name = ProfileV2
	}
	filePath := s.path(name)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		cfg, ok := BuiltinProfile(name)
		if !ok {
			return ScoringConfig{}, fmt.Errorf("scoring profile %q not found in %s", name, s.dataDir)
		}
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("failed to read profile file: %w", err)
	}
	return decodeProfile(data, name)
}

// LoadProfileFile decodes a profile from a YAML file on top of the built-in
// profile it names (v2 when unnamed). Weight groups present in the file
// replace the built-in groups wholesale.
func LoadProfileFile(filePath string) (ScoringConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("failed to read profile file: %w", err)
	}
	return DecodeProfile(data)
}

// DecodeProfile decodes a YAML profile and validates it. An unnamed profile
// is layered on v2.
func DecodeProfile(data []byte) (ScoringConfig, error) {
	return decodeProfile(data, "")
}

// decodeProfile layers data on the built-in profile named in the file, or on
// fallback when the file has no name. An unnamed profile takes fallback as its
// name, so a partial v1.yaml stays v1.
func decodeProfile(data []byte, fallback string) (ScoringConfig, error) {
	var header struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return ScoringConfig{}, fmt.Errorf("failed to decode profile: %w", err)
	}

	baseName := header.Name
	if baseName == "" {
		baseName = fallback
	}
	base, ok := BuiltinProfile(baseName)
	if !ok {
		base = DefaultScoringConfig()
	}
	defaults := base.Weights
	base.Weights = WeightTable{}

	if err := yaml.Unmarshal(data, &base); err != nil {
		return ScoringConfig{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	if base.Weights.Attention == nil {
		base.Weights.Attention = defaults.Attention
	}
	if base.Weights.Stability == nil {
		base.Weights.Stability = defaults.Stability
	}
	if base.Weights.Positivity == nil {
		base.Weights.Positivity = defaults.Positivity
	}
	if header.Name == "" && fallback != "" {
		base.Name = fallback
	}

	if err := base.Validate(); err != nil {
		return ScoringConfig{}, err
	}
	return base, nil
}

// EncodeProfile renders a profile as YAML.
func EncodeProfile(cfg ScoringConfig) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return []byte(b.String()), nil
}

// Save validates and writes a profile under the given name.
func (s *ProfileStore) Save(name string, cfg ScoringConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := EncodeProfile(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}

// Names lists the built-in profiles together with any stored in the directory.
func (s *ProfileStore) Names() ([]string, error) {
	set := map[string]struct{}{}
	for _, n := range BuiltinProfileNames() {
		set[n] = struct{}{}
	}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		set[strings.TrimSuffix(e.Name(), ".yaml")] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
