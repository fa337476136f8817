/*
Package cqlmapper – per-call options.
*/
package cqlmapper

// Order requests result ordering on one field.
type Order struct {
	Field string // document property name
	Desc  bool
}

// Params are the per-call options accepted by the mapping operations.
// Each operation only honours the fields valid for it:
//
//	Get/Find/FindAll:  Fields, Limit, OrderBy
//	Insert:            Fields, TTL, IfNotExists
//	Update:            Fields, TTL, IfExists, When
//	Remove:            Fields, IfExists, When, DeleteOnlyColumns
//
// Unlike the loosely-typed option bags of dynamic clients, unknown options
// cannot be expressed at all.
type Params struct {
	// Fields restricts the selected / mutated properties.
	Fields []string

	// Limit bounds the number of returned rows when > 0. The value is
	// bound as a parameter, so varying it does not change the query shape.
	Limit int

	// OrderBy requests result ordering. Fields must form a prefix of the
	// target table's clustering key.
	OrderBy []Order

	// TTL sets a time-to-live in seconds on inserted / updated values
	// when > 0. Bound as a parameter.
	TTL int

	// IfNotExists makes an insert conditional on the row being absent.
	IfNotExists bool

	// IfExists makes an update / remove conditional on the row existing.
	// Mutually exclusive with When.
	IfExists bool

	// When makes an update / remove conditional on the given column
	// values; entries may use query operators.
	When Doc

	// DeleteOnlyColumns deletes only the non-key columns named in the
	// document instead of the whole row.
	DeleteOnlyColumns bool
}

// orEmpty lets nil stand in for the zero Params.
func (p *Params) orEmpty() *Params {
	if p == nil {
		return &Params{}
	}
	return p
}
