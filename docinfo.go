/*
Package cqlmapper – document resolution.

ModelInfo is the immutable, per-model mapping description: keyspace,
physical tables, naming convention and per-column overrides. It resolves
raw documents into the PropertyInfo lists the selector and synthesizer
consume.

Go maps are unordered, so properties are enumerated in sorted name order.
This keeps shape keys and synthesized query text deterministic for equal
logical inputs.
*/
package cqlmapper

import "sort"

// Doc is a document: a bag of named property values. Values may be plain
// values, *QueryOperator (filters and When conditions) or *AssignmentOp
// (update documents).
type Doc map[string]any

// TransformFn converts a value between its document and column
// representations. Panics raised by a transform propagate to the caller
// untouched.
type TransformFn func(value any) any

// PropertyInfo is one resolved document property: the unit consumed by
// table selection and statement synthesis.
type PropertyInfo struct {
	PropertyName string
	ColumnName   string
	Value        any
	FromModel    TransformFn
	ToModel      TransformFn
}

// ModelInfo describes how one logical model maps onto its physical
// tables. Created once per model at mapper construction, immutable
// thereafter.
type ModelInfo struct {
	Model    string
	Keyspace string
	Tables   []TableRef

	mappings TableMappings
	columns  map[string]*ColumnOptions // by property name
	byColumn map[string]*ColumnOptions // overrides indexed by column name
	propFor  map[string]string         // column -> property (overrides)
}

func newModelInfo(model string, opts *ModelOptions, defaultKeyspace string) (*ModelInfo, error) {
	mi := &ModelInfo{
		Model:    model,
		Keyspace: defaultKeyspace,
		Tables:   []TableRef{{Name: model}},
		mappings: DefaultTableMappings{},
		byColumn: map[string]*ColumnOptions{},
		propFor:  map[string]string{},
	}
	if opts != nil {
		if opts.Keyspace != "" {
			mi.Keyspace = opts.Keyspace
		}
		if len(opts.Tables) > 0 {
			mi.Tables = opts.Tables
		}
		if opts.Mappings != nil {
			mi.mappings = opts.Mappings
		}
		mi.columns = opts.Columns
		for prop, co := range opts.Columns {
			col := co.Name
			if col == "" {
				col = mi.mappings.ColumnName(prop)
			}
			mi.byColumn[col] = co
			mi.propFor[col] = prop
		}
	}
	if mi.Keyspace == "" {
		return nil, NewArgError("Missing keyspace for model \"" + model + "\"")
	}
	return mi, nil
}

// columnName maps a document property to its column name.
func (mi *ModelInfo) columnName(property string) string {
	if co := mi.columns[property]; co != nil && co.Name != "" {
		return co.Name
	}
	return mi.mappings.ColumnName(property)
}

// propertyName maps a column back to its document property.
func (mi *ModelInfo) propertyName(column string) string {
	if prop, ok := mi.propFor[column]; ok {
		return prop
	}
	return mi.mappings.PropertyName(column)
}

func (mi *ModelInfo) fromModel(property string) TransformFn {
	if co := mi.columns[property]; co != nil {
		return co.FromModel
	}
	return nil
}

func (mi *ModelInfo) toModel(column string) TransformFn {
	if co := mi.byColumn[column]; co != nil {
		return co.ToModel
	}
	return nil
}

// resolve converts a document into PropertyInfo entries in sorted property
// order, validating operator payloads on the way.
func (mi *ModelInfo) resolve(doc Doc) ([]PropertyInfo, error) {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]PropertyInfo, 0, len(names))
	for _, name := range names {
		value := doc[name]
		if q, ok := value.(*QueryOperator); ok {
			if err := q.validate(name); err != nil {
				return nil, err
			}
		}
		props = append(props, PropertyInfo{
			PropertyName: name,
			ColumnName:   mi.columnName(name),
			Value:        value,
			FromModel:    mi.fromModel(name),
		})
	}
	return props, nil
}

// resolveFields converts a fields option (property names) into
// PropertyInfo entries carrying only the name mapping.
func (mi *ModelInfo) resolveFields(fields []string) []PropertyInfo {
	if len(fields) == 0 {
		return nil
	}
	props := make([]PropertyInfo, len(fields))
	for i, name := range fields {
		props[i] = PropertyInfo{
			PropertyName: name,
			ColumnName:   mi.columnName(name),
		}
	}
	return props
}

// resolvedOrder is an ordering request mapped to a column name.
type resolvedOrder struct {
	Column string
	Desc   bool
}

func (mi *ModelInfo) resolveOrder(orderBy []Order) []resolvedOrder {
	if len(orderBy) == 0 {
		return nil
	}
	out := make([]resolvedOrder, len(orderBy))
	for i, o := range orderBy {
		out[i] = resolvedOrder{Column: mi.columnName(o.Field), Desc: o.Desc}
	}
	return out
}
