/*
Package cqlmapper – shape keys.

A shape key is the ordered token sequence that uniquely identifies the
structural pattern of a mapping call: which properties are present, which
operator or assignment each carries, and which options are set. Literal
parameter values never appear in a key; two calls share a key exactly
when they synthesize the same query text and extraction program.
*/
package cqlmapper

// option marker tokens; property and column names can never collide with
// them because of the pipes
const (
	tokFields     = "|f|"
	tokLimit      = "|l|"
	tokOrder      = "|o|"
	tokTTL        = "|t|"
	tokExists     = "|e|"
	tokDeleteCols = "|dc|"
	tokWhen       = "|w|"
	tokAllKeys    = "|apk|"
	tokRoot       = "root"
)

// appendFilterTokens emits, per property, its name followed by its
// operator tags. Plain values emit the equality tag so that {a: v} and
// {a: Eq(v)} share a shape.
func appendFilterTokens(key []string, props []PropertyInfo) []string {
	for i := range props {
		key = append(key, props[i].PropertyName)
		if q, ok := props[i].Value.(*QueryOperator); ok {
			key = q.shapeTokens(key)
		} else {
			key = append(key, "=")
		}
	}
	return key
}

func appendSelectOptions(key []string, fields []PropertyInfo, hasLimit bool, order []resolvedOrder) []string {
	if len(fields) > 0 {
		key = append(key, tokFields)
		for i := range fields {
			key = append(key, fields[i].PropertyName)
		}
	}
	if hasLimit {
		key = append(key, tokLimit)
	}
	if len(order) > 0 {
		key = append(key, tokOrder)
		for _, o := range order {
			key = append(key, o.Column)
			if o.Desc {
				key = append(key, "desc")
			} else {
				key = append(key, "asc")
			}
		}
	}
	return key
}

// selectShapeKey identifies a SELECT-by-filter shape. allPKsDefined is
// part of the shape: it changes which table qualifies.
func selectShapeKey(props, fields []PropertyInfo, hasLimit bool, order []resolvedOrder, allPKsDefined bool) []string {
	key := make([]string, 0, len(props)*2+8)
	key = appendFilterTokens(key, props)
	key = appendSelectOptions(key, fields, hasLimit, order)
	if allPKsDefined {
		key = append(key, tokAllKeys)
	}
	return key
}

// selectAllShapeKey identifies a SELECT-all shape.
func selectAllShapeKey(fields []PropertyInfo, hasLimit bool, order []resolvedOrder) []string {
	key := []string{tokRoot}
	return appendSelectOptions(key, fields, hasLimit, order)
}

// insertShapeKey identifies an INSERT shape. Operators are not legal on
// insert values, so only property names are emitted.
func insertShapeKey(props, fields []PropertyInfo, hasTTL, ifNotExists bool) []string {
	key := make([]string, 0, len(props)+4)
	for i := range props {
		key = append(key, props[i].PropertyName)
	}
	if len(fields) > 0 {
		key = append(key, tokFields)
		for i := range fields {
			key = append(key, fields[i].PropertyName)
		}
	}
	if hasTTL {
		key = append(key, tokTTL)
	}
	if ifNotExists {
		key = append(key, tokExists)
	}
	return key
}

// updateShapeKey identifies an UPDATE shape: property names plus operator
// tags (key predicates) or assignment signs, then options, then the When
// condition entries.
func updateShapeKey(props, fields []PropertyInfo, hasTTL, ifExists bool, when []PropertyInfo) []string {
	key := make([]string, 0, len(props)*2+len(when)*2+6)
	for i := range props {
		key = append(key, props[i].PropertyName)
		switch v := props[i].Value.(type) {
		case *QueryOperator:
			key = v.shapeTokens(key)
		case *AssignmentOp:
			key = append(key, v.shapeToken())
		}
	}
	if len(fields) > 0 {
		key = append(key, tokFields)
		for i := range fields {
			key = append(key, fields[i].PropertyName)
		}
	}
	if hasTTL {
		key = append(key, tokTTL)
	}
	if ifExists {
		key = append(key, tokExists)
	}
	return appendWhenTokens(key, when)
}

// removeShapeKey identifies a DELETE shape.
func removeShapeKey(props, fields []PropertyInfo, ifExists, deleteOnlyColumns bool, when []PropertyInfo) []string {
	key := make([]string, 0, len(props)*2+len(when)*2+6)
	key = appendFilterTokens(key, props)
	if len(fields) > 0 {
		key = append(key, tokFields)
		for i := range fields {
			key = append(key, fields[i].PropertyName)
		}
	}
	if ifExists {
		key = append(key, tokExists)
	}
	if deleteOnlyColumns {
		key = append(key, tokDeleteCols)
	}
	return appendWhenTokens(key, when)
}

func appendWhenTokens(key []string, when []PropertyInfo) []string {
	if len(when) == 0 {
		return key
	}
	key = append(key, tokWhen)
	return appendFilterTokens(key, when)
}
