/*
Package cqlmapper – result adaptation.

A row adapter converts one driver row into a document, applying the
registered toModel transforms and the naming convention in reverse. One
adapter is built per distinct result column shape.

Lightweight transactions add a boolean pseudo-column to the result. When
it is the only column the adapter is a cached no-op (the flag is exposed
through Result.WasApplied, not as document data). When real columns
accompany it (a failed conditional write returning current values) the
adapter skips the pseudo-column and must not be cached, because which
columns come back depends on runtime values, not shape.
*/
package cqlmapper

// AppliedColumn is the pseudo-column carrying the lightweight-transaction
// outcome.
const AppliedColumn = "[applied]"

// rowAdapter converts one raw row into a document. A nil-returning
// adapter marks void / applied-only results.
type rowAdapter func(row []any) Doc

type colInstr struct {
	index    int
	property string
	toModel  TransformFn
}

// newRowAdapter builds the adapter for a result column shape and reports
// whether it may be cached.
func newRowAdapter(columns []string, info *ModelInfo) (fn rowAdapter, cacheable bool) {
	if len(columns) == 0 {
		return noopAdapter, true
	}
	if len(columns) == 1 && columns[0] == AppliedColumn {
		return noopAdapter, true
	}

	mixed := false
	instrs := make([]colInstr, 0, len(columns))
	for i, col := range columns {
		if col == AppliedColumn {
			mixed = true
			continue
		}
		instrs = append(instrs, colInstr{
			index:    i,
			property: info.propertyName(col),
			toModel:  info.toModel(col),
		})
	}

	fn = func(row []any) Doc {
		doc := make(Doc, len(instrs))
		for _, in := range instrs {
			v := row[in.index]
			if in.toModel != nil {
				v = in.toModel(v)
			}
			doc[in.property] = v
		}
		return doc
	}
	return fn, !mixed
}

func noopAdapter([]any) Doc { return nil }

// Result is a mapped row set.
type Result struct {
	rs    *ResultSet
	adapt rowAdapter
}

// WasApplied reports the lightweight-transaction outcome. Results without
// the pseudo-column were unconditionally applied.
func (r *Result) WasApplied() bool {
	idx := -1
	for i, col := range r.rs.Columns {
		if col == AppliedColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return true
	}
	if len(r.rs.Rows) == 0 {
		return true
	}
	applied, ok := r.rs.Rows[0][idx].(bool)
	return ok && applied
}

// First returns the first mapped document, or nil if the result holds no
// document data.
func (r *Result) First() Doc {
	if len(r.rs.Rows) == 0 {
		return nil
	}
	return r.adapt(r.rs.Rows[0])
}

// ToSlice maps every row into a slice of documents.
func (r *Result) ToSlice() []Doc {
	if len(r.rs.Rows) == 0 {
		return nil
	}
	first := r.adapt(r.rs.Rows[0])
	if first == nil {
		return nil
	}
	out := make([]Doc, 0, len(r.rs.Rows))
	out = append(out, first)
	for _, row := range r.rs.Rows[1:] {
		out = append(out, r.adapt(row))
	}
	return out
}

// Each invokes fn for every mapped document.
func (r *Result) Each(fn func(Doc)) {
	for _, doc := range r.ToSlice() {
		fn(doc)
	}
}
