/*
Package cqlmapper – query operators and update assignments.

Operators appear as document values in filter and condition documents and
select the predicate rendered for their column. Assignments appear as
document values in update documents and select the SET clause rendered for
their column.
*/
package cqlmapper

import "reflect"

// QueryOperator represents a relational predicate on a single column.
// The zero operator is not valid; use the constructor functions.
type QueryOperator struct {
	op    string // rendered operator text, e.g. "=", ">", "IN"
	value any
	isIn  bool

	// and-composite: two predicates on the same column
	and  bool
	l, r any // raw value or *QueryOperator
}

// Eq matches rows where the column equals value. Plain (non-operator)
// document values are equivalent to Eq.
func Eq(value any) *QueryOperator { return &QueryOperator{op: "=", value: value} }

// Gt matches rows where the column is greater than value.
func Gt(value any) *QueryOperator { return &QueryOperator{op: ">", value: value} }

// Gte matches rows where the column is greater than or equal to value.
func Gte(value any) *QueryOperator { return &QueryOperator{op: ">=", value: value} }

// Lt matches rows where the column is less than value.
func Lt(value any) *QueryOperator { return &QueryOperator{op: "<", value: value} }

// Lte matches rows where the column is less than or equal to value.
func Lte(value any) *QueryOperator { return &QueryOperator{op: "<=", value: value} }

// NotEq matches rows where the column differs from value.
func NotEq(value any) *QueryOperator { return &QueryOperator{op: "!=", value: value} }

// In matches rows where the column equals any element of values.
// values must be a slice; anything else fails with a shape error when the
// document is resolved, before any cache or metadata lookup.
func In(values any) *QueryOperator {
	return &QueryOperator{op: "IN", value: values, isIn: true}
}

// And combines two predicates on the same column, each of which may be a
// raw value (meaning equality) or another operator.
func And(left, right any) *QueryOperator {
	return &QueryOperator{and: true, l: left, r: right}
}

// validate checks operator payloads that cannot be enforced by the type
// system. Runs during document resolution.
func (q *QueryOperator) validate(property string) error {
	if q.and {
		if lq, ok := q.l.(*QueryOperator); ok {
			if err := lq.validate(property); err != nil {
				return err
			}
		}
		if rq, ok := q.r.(*QueryOperator); ok {
			if err := rq.validate(property); err != nil {
				return err
			}
		}
		return nil
	}
	if q.isIn {
		if q.value == nil || reflect.ValueOf(q.value).Kind() != reflect.Slice {
			return NewError("In operator for property \""+property+"\" requires a slice of values",
				WithCode(ErrShape), WithContext(map[string]any{"property": property}))
		}
	}
	return nil
}

// shapeTokens appends the structural tokens identifying this operator to
// dst. Literal operand values are never included.
func (q *QueryOperator) shapeTokens(dst []string) []string {
	if q.and {
		dst = append(dst, "and(")
		dst = appendOperandTokens(dst, q.l)
		dst = append(dst, ",")
		dst = appendOperandTokens(dst, q.r)
		return append(dst, ")")
	}
	return append(dst, q.op)
}

func appendOperandTokens(dst []string, operand any) []string {
	if oq, ok := operand.(*QueryOperator); ok {
		return oq.shapeTokens(dst)
	}
	// raw operand renders as equality
	return append(dst, "=")
}

// AssignmentOp represents a non-direct UPDATE SET mutation:
// increments, decrements and collection edits.
type AssignmentOp struct {
	sign     string // "+" or "-"
	inverted bool   // operand renders on the left: col = ? + col
	value    any
}

// Incr renders "col = col + ?"; on counter columns this is a counter
// increment.
func Incr(value any) *AssignmentOp { return &AssignmentOp{sign: "+", value: value} }

// Decr renders "col = col - ?".
func Decr(value any) *AssignmentOp { return &AssignmentOp{sign: "-", value: value} }

// Append renders "col = col + ?", appending to a collection.
func Append(value any) *AssignmentOp { return &AssignmentOp{sign: "+", value: value} }

// Prepend renders "col = ? + col", prepending to a list.
func Prepend(value any) *AssignmentOp {
	return &AssignmentOp{sign: "+", inverted: true, value: value}
}

// Remove renders "col = col - ?", removing elements from a collection.
func Remove(value any) *AssignmentOp { return &AssignmentOp{sign: "-", value: value} }

// shapeToken is the structural token identifying this assignment.
func (a *AssignmentOp) shapeToken() string {
	if a.inverted {
		return a.sign + "!"
	}
	return a.sign
}
