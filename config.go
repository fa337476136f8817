/*
Package cqlmapper – mapping configuration.

MappingOptions declares, per logical model, the keyspace, the physical
tables holding the denormalized copies of the entity, the naming
convention and per-column overrides. Options are built in code or loaded
from a YAML document; transform functions cannot be expressed in YAML and
are attached programmatically after loading.
*/
package cqlmapper

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TableRef names one physical table (or materialized view) a model maps to.
type TableRef struct {
	Name   string `yaml:"name"`
	IsView bool   `yaml:"view"`
}

// ColumnOptions overrides the mapping of a single document property.
type ColumnOptions struct {
	// Name is the column name; empty means derive via the naming
	// convention.
	Name string
	// FromModel transforms the document value before binding.
	FromModel TransformFn
	// ToModel transforms the column value before placing it in a
	// document.
	ToModel TransformFn
}

// ModelOptions configures one logical model.
type ModelOptions struct {
	// Keyspace overrides the mapper default keyspace.
	Keyspace string
	// Tables lists the physical tables in declared order. Empty means a
	// single table named after the model.
	Tables []TableRef
	// Mappings is the naming convention; nil means DefaultTableMappings.
	Mappings TableMappings
	// Columns holds per-property overrides keyed by property name.
	Columns map[string]*ColumnOptions
}

// MappingOptions configures the mapper: one entry per logical model name.
type MappingOptions struct {
	Models map[string]*ModelOptions
}

// yaml document layout for LoadMappingConfig / ParseMappingConfig
type mappingConfigFile struct {
	Models map[string]struct {
		Keyspace string            `yaml:"keyspace"`
		Tables   []TableRef        `yaml:"tables"`
		Naming   string            `yaml:"naming"` // "default" | "underscore"
		Columns  map[string]string `yaml:"columns"`
	} `yaml:"models"`
}

// ParseMappingConfig builds MappingOptions from a YAML document of the form:
//
//	models:
//	  Video:
//	    keyspace: examples
//	    naming: underscore
//	    tables:
//	      - name: videos
//	      - name: user_videos
//	      - name: latest_videos
//	        view: true
//	    columns:
//	      id: videoid
func ParseMappingConfig(data []byte) (*MappingOptions, error) {
	var file mappingConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, NewError("invalid mapping configuration", WithCause(err))
	}
	opts := &MappingOptions{Models: map[string]*ModelOptions{}}
	for name, m := range file.Models {
		mo := &ModelOptions{
			Keyspace: m.Keyspace,
			Tables:   m.Tables,
		}
		switch m.Naming {
		case "", "default":
			mo.Mappings = DefaultTableMappings{}
		case "underscore":
			mo.Mappings = UnderscoreCQLToCamelCase{}
		default:
			return nil, NewArgError(fmt.Sprintf("Unknown naming convention %q for model %q", m.Naming, name))
		}
		if len(m.Columns) > 0 {
			mo.Columns = map[string]*ColumnOptions{}
			for prop, col := range m.Columns {
				mo.Columns[prop] = &ColumnOptions{Name: col}
			}
		}
		opts.Models[name] = mo
	}
	return opts, nil
}

// LoadMappingConfig reads a YAML mapping configuration from r.
func LoadMappingConfig(r io.Reader) (*MappingOptions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseMappingConfig(data)
}

// LoadMappingConfigFile reads a YAML mapping configuration from path.
func LoadMappingConfigFile(path string) (*MappingOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMappingConfig(data)
}

// Column returns the override for property, or nil.
func (o *ModelOptions) Column(property string) *ColumnOptions {
	if o == nil || o.Columns == nil {
		return nil
	}
	return o.Columns[property]
}
