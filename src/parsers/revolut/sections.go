package revolut

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Section kinds a Revolut statement can carry. The statement places them at
// variable positions, so sections are discovered by scanning for any of a
// small list of known title aliases rather than by offset.
const (
	sectionSells     = "sells"
	sectionDividends = "dividends"
)

//go:embed data/sections.yaml
var defaultSectionData []byte

// SectionConfig is the ordered (kind, aliases) list used to locate statement
// sections. It ships embedded and can be overridden from a YAML file for
// statements whose section titles drift.
type SectionConfig struct {
	Sections []SectionAliases `yaml:"sections"`
}

type SectionAliases struct {
	Kind    string   `yaml:"kind"`
	Aliases []string `yaml:"aliases"`
}

// AliasesFor returns the alias list for a section kind, or nil when the
// config does not mention it (that section then yields no records).
func (c *SectionConfig) AliasesFor(kind string) []string {
	for _, s := range c.Sections {
		if s.Kind == kind {
			return s.Aliases
		}
	}
	return nil
}

// activeConfig is the process-wide alias list used by NewParser. It starts
// as the embedded defaults and can be replaced once at startup via
// InitSectionConfig.
var activeConfig *SectionConfig

// InitSectionConfig installs a section alias override for all parsers built
// afterwards. Call once from main after config is loaded; an empty path is a
// no-op that keeps the embedded defaults.
func InitSectionConfig(path string) error {
	cfg, err := LoadSectionConfig(path)
	if err != nil {
		return err
	}
	activeConfig = cfg
	return nil
}

// DefaultSectionConfig returns the embedded alias list.
func DefaultSectionConfig() *SectionConfig {
	cfg, err := parseSectionConfig(defaultSectionData)
	if err != nil {
		// Embedded data is part of the build; failing to parse it is a defect.
		panic("revolut: invalid embedded section config: " + err.Error())
	}
	return cfg
}

// LoadSectionConfig reads an alias override file. An empty path selects the
// embedded defaults.
func LoadSectionConfig(path string) (*SectionConfig, error) {
	if path == "" {
		return DefaultSectionConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read section alias file '%s': %w", path, err)
	}
	cfg, err := parseSectionConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse section alias file '%s': %w", path, err)
	}
	return cfg, nil
}

func parseSectionConfig(data []byte) (*SectionConfig, error) {
	var cfg SectionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
