package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"thesaurus/internal/domain"
)

const (
	DefaultDBPath             = "~/.local/share/thesaurus/thesaurus.db"
	DefaultDescriptorProperty = "skos:prefLabel"
	DefaultMaxDepth           = 100
	DefaultBatchSize          = 100
)

// Terms maps each link type to the property term the host stores it under
type Terms struct {
	Broader       string `yaml:"broader"`
	Narrower      string `yaml:"narrower"`
	Related       string `yaml:"related"`
	TopConceptOf  string `yaml:"top_concept_of"`
	HasTopConcept string `yaml:"has_top_concept"`
	InScheme      string `yaml:"in_scheme"`
	Member        string `yaml:"member"`
	MemberList    string `yaml:"member_list"`
}

// Classes maps resource kinds to the class terms the host tags them with
type Classes struct {
	Scheme            string `yaml:"scheme"`
	Concept           string `yaml:"concept"`
	Collection        string `yaml:"collection"`
	OrderedCollection string `yaml:"ordered_collection"`
}

// Config is resolved once at process start and passed by value into jobs
type Config struct {
	DBPath             string  `yaml:"db_path"`
	Separator          string  `yaml:"separator"`
	DescriptorProperty string  `yaml:"descriptor_property"`
	PathProperty       string  `yaml:"path_property"`
	AscendanceProperty string  `yaml:"ascendance_property"`
	MaxDepth           int     `yaml:"max_depth"`
	BatchSize          int     `yaml:"batch_size"`
	LogMode            string  `yaml:"log_mode"`
	Terms              Terms   `yaml:"terms"`
	Classes            Classes `yaml:"classes"`
}

// SKOSTerms returns the standard SKOS property terms
func SKOSTerms() Terms {
	return Terms{
		Broader:       "skos:broader",
		Narrower:      "skos:narrower",
		Related:       "skos:related",
		TopConceptOf:  "skos:topConceptOf",
		HasTopConcept: "skos:hasTopConcept",
		InScheme:      "skos:inScheme",
		Member:        "skos:member",
		MemberList:    "skos:memberList",
	}
}

// SKOSClasses returns the standard SKOS class terms
func SKOSClasses() Classes {
	return Classes{
		Scheme:            "skos:ConceptScheme",
		Concept:           "skos:Concept",
		Collection:        "skos:Collection",
		OrderedCollection: "skos:OrderedCollection",
	}
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		DBPath:             DefaultDBPath,
		Separator:          domain.DefaultSeparator,
		DescriptorProperty: DefaultDescriptorProperty,
		MaxDepth:           DefaultMaxDepth,
		BatchSize:          DefaultBatchSize,
		LogMode:            "dev",
		Terms:              SKOSTerms(),
		Classes:            SKOSClasses(),
	}
}

// Load reads a YAML file over the defaults. An empty path yields the
// defaults. THESAURUS_DB overrides the database path in both cases.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv("THESAURUS_DB"); env != "" {
		cfg.DBPath = env
	}

	// Apply defaults for zeroed numeric fields.
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Separator == "" {
		cfg.Separator = domain.DefaultSeparator
	}

	return cfg, cfg.Validate()
}

// Validate reports the first missing or out-of-range setting
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	for _, lt := range domain.AllLinkTypes {
		if c.Terms.Term(lt) == "" {
			return fmt.Errorf("terms: no property term configured for %s", lt)
		}
	}
	if c.Classes.Scheme == "" || c.Classes.Concept == "" {
		return fmt.Errorf("classes: scheme and concept class terms are required")
	}
	return nil
}

// ResolvedDBPath expands a leading ~ in DBPath
func (c Config) ResolvedDBPath() (string, error) {
	p := c.DBPath
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	return p, nil
}

// Term returns the property term for a link type
func (t Terms) Term(lt domain.LinkType) string {
	switch lt {
	case domain.LinkBroader:
		return t.Broader
	case domain.LinkNarrower:
		return t.Narrower
	case domain.LinkRelated:
		return t.Related
	case domain.LinkTopConceptOf:
		return t.TopConceptOf
	case domain.LinkHasTopConcept:
		return t.HasTopConcept
	case domain.LinkInScheme:
		return t.InScheme
	case domain.LinkMember:
		return t.Member
	case domain.LinkMemberList:
		return t.MemberList
	default:
		panic(fmt.Sprintf("config: unknown link type %d", lt))
	}
}

// Class returns the class term for a resource kind, or "" for ClassUnknown
func (c Classes) Class(class domain.Class) string {
	switch class {
	case domain.ClassScheme:
		return c.Scheme
	case domain.ClassConcept:
		return c.Concept
	case domain.ClassCollection:
		return c.Collection
	case domain.ClassOrderedCollection:
		return c.OrderedCollection
	default:
		return ""
	}
}
