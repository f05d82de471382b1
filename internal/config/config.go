// Package config loads the static tables the core packages are built from:
// topic keyword sets, the paywall deny-lists and the simplification table.
// Tables are parsed once and passed into constructors; nothing here is
// mutated after loading.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hyperifyio/sciencedigest/internal/access"
	"github.com/hyperifyio/sciencedigest/internal/classify"
	"github.com/hyperifyio/sciencedigest/internal/simplify"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tables is the full set of static configuration.
type Tables struct {
	Topics        []classify.Topic        `yaml:"topics" json:"topics"`
	Access        access.Config           `yaml:"access" json:"access"`
	Substitutions []simplify.Substitution `yaml:"substitutions" json:"substitutions"`
}

// Default returns the embedded tables. They are parsed on first use.
var Default = sync.OnceValues(func() (Tables, error) {
	return Parse(defaultsYAML)
})

// Parse decodes YAML (or JSON) tables and validates them.
func Parse(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// LoadTables reads a tables file. Sections the file leaves empty keep the
// embedded defaults, so a file may override only the deny-list.
func LoadTables(path string) (Tables, error) {
	def, err := Default()
	if err != nil {
		return Tables{}, err
	}
	if strings.TrimSpace(path) == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse tables %s: %w", path, err)
	}
	if len(t.Topics) == 0 {
		t.Topics = def.Topics
	}
	if len(t.Access.Domains) == 0 && len(t.Access.Indicators) == 0 && len(t.Access.Selectors) == 0 && len(t.Access.HardSelectors) == 0 {
		t.Access = def.Access
	}
	if len(t.Substitutions) == 0 {
		t.Substitutions = def.Substitutions
	}
	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks that topics are named, unique and non-empty.
func (t Tables) Validate() error {
	if len(t.Topics) == 0 {
		return errors.New("tables: no topics")
	}
	seen := map[string]struct{}{}
	var problems []string
	for i, tp := range t.Topics {
		name := strings.TrimSpace(tp.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("topic %d has no name", i))
			continue
		}
		if strings.EqualFold(name, classify.None) {
			problems = append(problems, fmt.Sprintf("topic name %q is reserved", name))
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			problems = append(problems, fmt.Sprintf("duplicate topic %q", name))
		}
		seen[strings.ToLower(name)] = struct{}{}
		if len(tp.Keywords) == 0 {
			problems = append(problems, fmt.Sprintf("topic %q has no keywords", name))
		}
	}
	for i, s := range t.Substitutions {
		if strings.TrimSpace(s.From) == "" {
			problems = append(problems, fmt.Sprintf("substitution %d has empty from", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("tables: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TopicNames lists topics in declared order.
func (t Tables) TopicNames() []string {
	names := make([]string, 0, len(t.Topics))
	for _, tp := range t.Topics {
		names = append(names, tp.Name)
	}
	return names
}

// Classifier builds a classifier over the topic list.
func (t Tables) Classifier() *classify.Classifier { return classify.New(t.Topics) }

// Gate builds the access gate.
func (t Tables) Gate() *access.Gate { return access.New(t.Access) }

// Simplifier builds the vocabulary simplifier.
func (t Tables) Simplifier() *simplify.Simplifier { return simplify.New(t.Substitutions) }
