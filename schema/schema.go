// Package schema compiles declarative schema text into a structured
// schema record. The text format is YAML with three top-level sections:
// nodes (entity names), edges ("Source -> Target" strings), and
// properties (entity name -> "name: type" entries).
//
// Compilation is a faithful structural transcription: entity and
// relation lists are extracted verbatim (whitespace-trimmed) and no
// cross-reference validation is performed here. Referential checks
// happen in the graph package, which reports integrity warnings.
package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is the parsed schema record. It is immutable once built;
// callers replace it wholesale by recompiling, never mutate it.
type Schema struct {
	// Nodes lists declared entity names in declaration order.
	Nodes []string `yaml:"nodes"`

	// Edges lists declared relations as raw "Source -> Target" strings
	// in declaration order. Splitting happens in the graph builder.
	Edges []string `yaml:"edges"`

	// Properties maps entity name to its declared property list.
	Properties map[string][]Property `yaml:"properties"`
}

// Property is a single declared entity property. Type tags are
// free-form strings (e.g. "string", "float", "date"), not validated
// against an enum.
type Property struct {
	Name string
	Type string
}

// UnmarshalYAML accepts both forms a property entry takes in schema
// text: a quoted scalar ("id: string") and the unquoted single-pair
// mapping YAML produces for `- id: string`.
func (p *Property) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		name, typ, _ := strings.Cut(value.Value, ":")
		p.Name = strings.TrimSpace(name)
		p.Type = strings.TrimSpace(typ)
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: property entry must be a single name: type pair", value.Line)
		}
		p.Name = strings.TrimSpace(value.Content[0].Value)
		p.Type = strings.TrimSpace(value.Content[1].Value)
		return nil
	default:
		return fmt.Errorf("line %d: property entry must be a string or a name: type pair", value.Line)
	}
}

// MarshalYAML renders the property back in the "name: type" string form.
func (p Property) MarshalYAML() (any, error) {
	return p.Name + ": " + p.Type, nil
}

// Compile parses schema text into a Schema. It returns a *SyntaxError
// when the text does not parse as the expected structure. Compile is a
// pure transform: compiling the same text twice yields structurally
// equal records, and a failed compile leaves nothing behind.
func Compile(text string) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal([]byte(text), &s); err != nil {
		return nil, &SyntaxError{err: err}
	}

	for i, node := range s.Nodes {
		s.Nodes[i] = strings.TrimSpace(node)
	}
	for i, edge := range s.Edges {
		s.Edges[i] = strings.TrimSpace(edge)
	}

	return &s, nil
}

// ReadFile reads schema text from disk.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CompileFile reads and compiles a schema file.
func CompileFile(path string) (*Schema, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(text)
}

// NodeCount returns the number of declared entities.
func (s *Schema) NodeCount() int { return len(s.Nodes) }

// EdgeCount returns the number of declared relations.
func (s *Schema) EdgeCount() int { return len(s.Edges) }

// HasNode reports whether name is a declared entity.
func (s *Schema) HasNode(name string) bool {
	for _, n := range s.Nodes {
		if n == name {
			return true
		}
	}
	return false
}

// PropertyRow is one flattened entry of the properties section, used
// for tabular display.
type PropertyRow struct {
	Entity   string
	Property string
	Type     string
}

// PropertyRows flattens the properties section into display rows,
// ordered by node declaration order. Entities that declare properties
// without appearing in the nodes list are appended after declared ones
// in name-sorted order so the output stays deterministic.
func (s *Schema) PropertyRows() []PropertyRow {
	var rows []PropertyRow
	seen := make(map[string]bool)

	appendEntity := func(entity string) {
		for _, p := range s.Properties[entity] {
			rows = append(rows, PropertyRow{Entity: entity, Property: p.Name, Type: p.Type})
		}
		seen[entity] = true
	}

	for _, node := range s.Nodes {
		if _, ok := s.Properties[node]; ok {
			appendEntity(node)
		}
	}

	var extra []string
	for entity := range s.Properties {
		if !seen[entity] {
			extra = append(extra, entity)
		}
	}
	sort.Strings(extra)
	for _, entity := range extra {
		appendEntity(entity)
	}

	return rows
}
