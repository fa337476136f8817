/*
Package cqlmapper – synthesized plans.

A Plan pairs the query text with a parameter-extraction program: a small
ordered list of read instructions interpreted against the live document
and call params. The instruction list is built once at synthesis time and
reused by every call sharing the shape, so extraction re-reads current
values in exactly the order the query text binds them.
*/
package cqlmapper

import (
	"fmt"
	"reflect"
)

type instrKind uint8

const (
	// read doc[prop], descend operator children by path, unwrap the
	// operator / assignment payload
	instrDoc instrKind = iota
	// read params.When[prop], same unwrapping
	instrWhen
	// read params.TTL
	instrTTL
	// read params.Limit
	instrLimit
)

// paramInstr is one read instruction of the extraction program.
type paramInstr struct {
	kind instrKind
	prop string
	// path descends And-operator children: 0 = left, 1 = right.
	path []int
	// transform is the registered fromModel conversion, if any.
	transform TransformFn
	// elementWise applies transform to each element of an In list.
	elementWise bool
}

// Plan is the cached, immutable synthesis product for one query shape on
// one physical table.
type Plan struct {
	Query      string
	Table      string
	Idempotent bool
	IsCounter  bool

	instrs []paramInstr
}

// Values extracts the bound parameter values for doc and params, in the
// exact order the query text binds them.
func (p *Plan) Values(doc Doc, params *Params) ([]any, error) {
	params = params.orEmpty()
	out := make([]any, 0, len(p.instrs))
	for i := range p.instrs {
		in := &p.instrs[i]
		var raw any
		switch in.kind {
		case instrTTL:
			out = append(out, params.TTL)
			continue
		case instrLimit:
			out = append(out, params.Limit)
			continue
		case instrWhen:
			raw = params.When[in.prop]
		default:
			raw = doc[in.prop]
		}
		v, err := unwrapValue(raw, in.path, in.prop)
		if err != nil {
			return nil, err
		}
		if in.transform != nil {
			if in.elementWise {
				v = transformElements(v, in.transform)
			} else {
				v = in.transform(v)
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// unwrapValue descends And children along path and strips the operator or
// assignment wrapper, returning the payload to bind.
func unwrapValue(v any, path []int, prop string) (any, error) {
	for _, step := range path {
		q, ok := v.(*QueryOperator)
		if !ok || !q.and {
			return nil, NewError(
				fmt.Sprintf("Value of property %q no longer matches the cached query shape", prop),
				WithCode(ErrShape))
		}
		if step == 0 {
			v = q.l
		} else {
			v = q.r
		}
	}
	switch t := v.(type) {
	case *QueryOperator:
		return t.value, nil
	case *AssignmentOp:
		return t.value, nil
	default:
		return v, nil
	}
}

func transformElements(v any, fn TransformFn) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return fn(v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = fn(rv.Index(i).Interface())
	}
	return out
}
