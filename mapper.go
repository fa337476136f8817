/*
Package cqlmapper – Mapper type.

Mapper is the top-level entry point: it holds the driver client, the
mapping configuration and one lazily constructed ModelMapper per logical
model.
*/
package cqlmapper

import "sync"

// MapperParams configures a Mapper.
type MapperParams struct {
	// Client is the driver session. Required.
	Client Client
	// Keyspace is the default keyspace for models without an explicit
	// one in Options.
	Keyspace string
	// Options declares the per-model mappings; models without an entry
	// map to a single table named after the model in the default
	// keyspace.
	Options *MappingOptions
	// Logger receives diagnostics; nil selects the default (info and
	// up via the standard library logger).
	Logger Logger
	// Verbose additionally logs trace lines.
	Verbose bool
}

// Mapper creates ModelMapper instances from the mapping configuration.
type Mapper struct {
	client Client
	log    Logger

	keyspace string
	options  *MappingOptions

	mu     sync.Mutex
	models map[string]*ModelMapper
}

// NewMapper creates a Mapper.
func NewMapper(params MapperParams) (*Mapper, error) {
	if params.Client == nil {
		return nil, NewArgError("Missing \"client\" property")
	}
	m := &Mapper{
		client:   params.Client,
		keyspace: params.Keyspace,
		options:  params.Options,
		models:   map[string]*ModelMapper{},
	}
	if params.Logger != nil {
		m.log = params.Logger
	} else if params.Verbose {
		m.log = verboseLogger{}
	} else {
		m.log = defaultLogger{}
	}
	return m, nil
}

// Model returns the ModelMapper for name, constructing it on first use.
// The same instance is returned for every call with the same name.
func (m *Mapper) Model(name string) (*ModelMapper, error) {
	if name == "" {
		return nil, NewArgError("Missing model name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mm, ok := m.models[name]; ok {
		return mm, nil
	}

	var opts *ModelOptions
	if m.options != nil {
		opts = m.options.Models[name]
	}
	info, err := newModelInfo(name, opts, m.keyspace)
	if err != nil {
		return nil, err
	}
	mm := &ModelMapper{
		Name:   name,
		mapper: m,
		info:   info,
		caches: newModelCaches(),
	}
	m.models[name] = mm
	return mm, nil
}
