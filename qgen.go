/*
Package cqlmapper – statement synthesis.

Builds the query text and the paired parameter-extraction program for
SELECT / INSERT / UPDATE / DELETE against one selected physical table.
Synthesis consumes only the structural facts of the request (property
names, operator kinds, option flags); literal values never reach the
query text.
*/
package cqlmapper

import (
	"fmt"
	"strings"
)

// qbuilder accumulates query text and extraction instructions in lockstep
// so parameter order always matches the text.
type qbuilder struct {
	text   strings.Builder
	instrs []paramInstr
}

func (b *qbuilder) ws(s string) { b.text.WriteString(s) }

func (b *qbuilder) bind(in paramInstr) {
	b.instrs = append(b.instrs, in)
}

// predicate renders one WHERE / IF predicate for a property and appends
// its instructions. whenSrc selects the When condition map as the read
// source.
func (b *qbuilder) predicate(p *PropertyInfo, value any, path []int, whenSrc bool) error {
	kind := instrDoc
	if whenSrc {
		kind = instrWhen
	}
	switch v := value.(type) {
	case *AssignmentOp:
		return NewArgError(fmt.Sprintf("Assignment operators are not valid in conditions (property %q)", p.PropertyName))
	case *QueryOperator:
		if v.and {
			if err := b.predicate(p, v.l, append(append([]int(nil), path...), 0), whenSrc); err != nil {
				return err
			}
			b.ws(" AND ")
			return b.predicate(p, v.r, append(append([]int(nil), path...), 1), whenSrc)
		}
		if v.isIn {
			b.ws(p.ColumnName)
			b.ws(" IN ?")
			b.bind(paramInstr{kind: kind, prop: p.PropertyName, path: path,
				transform: p.FromModel, elementWise: p.FromModel != nil})
			return nil
		}
		b.ws(p.ColumnName)
		b.ws(" ")
		b.ws(v.op)
		b.ws(" ?")
		b.bind(paramInstr{kind: kind, prop: p.PropertyName, path: path, transform: p.FromModel})
		return nil
	default:
		b.ws(p.ColumnName)
		b.ws(" = ?")
		b.bind(paramInstr{kind: kind, prop: p.PropertyName, path: path, transform: p.FromModel})
		return nil
	}
}

// where renders "WHERE" predicates for props in order.
func (b *qbuilder) where(props []PropertyInfo, whenSrc bool) error {
	for i := range props {
		if i > 0 {
			b.ws(" AND ")
		}
		if err := b.predicate(&props[i], props[i].Value, nil, whenSrc); err != nil {
			return err
		}
	}
	return nil
}

// conditions renders the trailing IF EXISTS / IF <predicates> clause.
func (b *qbuilder) conditions(when []PropertyInfo, ifExists bool) error {
	if ifExists {
		b.ws(" IF EXISTS")
		return nil
	}
	if len(when) == 0 {
		return nil
	}
	b.ws(" IF ")
	return b.where(when, true)
}

// genSelect synthesizes a SELECT plan.
func genSelect(keyspace string, tbl *TableMetadata, filters, fields []PropertyInfo,
	order []resolvedOrder, hasLimit bool) (*Plan, error) {

	b := &qbuilder{}
	b.ws("SELECT ")
	if len(fields) > 0 {
		for i := range fields {
			if i > 0 {
				b.ws(", ")
			}
			b.ws(fields[i].ColumnName)
		}
	} else {
		b.ws("*")
	}
	b.ws(" FROM ")
	b.ws(keyspace)
	b.ws(".")
	b.ws(tbl.Name)
	if len(filters) > 0 {
		b.ws(" WHERE ")
		if err := b.where(filters, false); err != nil {
			return nil, err
		}
	}
	if len(order) > 0 {
		b.ws(" ORDER BY ")
		for i, o := range order {
			if i > 0 {
				b.ws(", ")
			}
			b.ws(o.Column)
			if o.Desc {
				b.ws(" DESC")
			} else {
				b.ws(" ASC")
			}
		}
	}
	if hasLimit {
		b.ws(" LIMIT ?")
		b.bind(paramInstr{kind: instrLimit})
	}
	return &Plan{Query: b.text.String(), Table: tbl.Name, Idempotent: true, instrs: b.instrs}, nil
}

// genInsert synthesizes an INSERT plan. Properties whose column is absent
// from the table are skipped: denormalized views may omit columns.
func genInsert(keyspace string, tbl *TableMetadata, props []PropertyInfo,
	ifNotExists, hasTTL bool) (*Plan, error) {

	cols := make([]*PropertyInfo, 0, len(props))
	for i := range props {
		if tbl.HasColumn(props[i].ColumnName) {
			cols = append(cols, &props[i])
		}
	}
	if len(cols) == 0 {
		return nil, NewError("No columns of document exist in table \""+tbl.Name+"\"",
			WithCode(ErrConstraint))
	}

	b := &qbuilder{}
	b.ws("INSERT INTO ")
	b.ws(keyspace)
	b.ws(".")
	b.ws(tbl.Name)
	b.ws(" (")
	for i, p := range cols {
		if i > 0 {
			b.ws(", ")
		}
		b.ws(p.ColumnName)
	}
	b.ws(") VALUES (")
	for i, p := range cols {
		if i > 0 {
			b.ws(", ")
		}
		b.ws("?")
		b.bind(paramInstr{kind: instrDoc, prop: p.PropertyName, transform: p.FromModel})
	}
	b.ws(")")
	if ifNotExists {
		b.ws(" IF NOT EXISTS")
	}
	if hasTTL {
		b.ws(" USING TTL ?")
		b.bind(paramInstr{kind: instrTTL})
	}
	return &Plan{
		Query:      b.text.String(),
		Table:      tbl.Name,
		Idempotent: !ifNotExists,
		instrs:     b.instrs,
	}, nil
}

// genUpdate synthesizes an UPDATE plan. Key columns of the document form
// the WHERE clause; the remaining columns present in the table form the
// SET clause.
func genUpdate(keyspace string, tbl *TableMetadata, props, when []PropertyInfo,
	ifExists, hasTTL bool, fields []string) (*Plan, error) {

	keyProps, setProps := splitKeyProps(tbl, props, fields)
	if len(setProps) == 0 {
		return nil, NewError("No columns to SET in table \""+tbl.Name+"\"",
			WithCode(ErrConstraint),
			WithContext(map[string]any{"table": tbl.Name, "columns": columnNames(props)}))
	}

	plan := &Plan{Table: tbl.Name, Idempotent: true}
	b := &qbuilder{}
	b.ws("UPDATE ")
	b.ws(keyspace)
	b.ws(".")
	b.ws(tbl.Name)
	if hasTTL {
		b.ws(" USING TTL ?")
		b.bind(paramInstr{kind: instrTTL})
	}
	b.ws(" SET ")
	for i := range setProps {
		if i > 0 {
			b.ws(", ")
		}
		p := setProps[i]
		col := tbl.Column(p.ColumnName)
		if col.Type == TypeCounter {
			plan.IsCounter = true
			plan.Idempotent = false
		}
		switch a := p.Value.(type) {
		case *AssignmentOp:
			if col.Type == TypeList && a.sign == "+" {
				// list append / prepend is not retry-safe
				plan.Idempotent = false
			}
			if a.inverted {
				b.ws(p.ColumnName)
				b.ws(" = ? ")
				b.ws(a.sign)
				b.ws(" ")
				b.ws(p.ColumnName)
			} else {
				b.ws(p.ColumnName)
				b.ws(" = ")
				b.ws(p.ColumnName)
				b.ws(" ")
				b.ws(a.sign)
				b.ws(" ?")
			}
			b.bind(paramInstr{kind: instrDoc, prop: p.PropertyName, transform: p.FromModel})
		case *QueryOperator:
			return nil, NewArgError(fmt.Sprintf("Query operators are not valid in SET assignments (property %q)", p.PropertyName))
		default:
			b.ws(p.ColumnName)
			b.ws(" = ?")
			b.bind(paramInstr{kind: instrDoc, prop: p.PropertyName, transform: p.FromModel})
		}
	}
	b.ws(" WHERE ")
	if err := b.where(keyProps, false); err != nil {
		return nil, err
	}
	if err := b.conditions(when, ifExists); err != nil {
		return nil, err
	}
	if ifExists || len(when) > 0 {
		plan.Idempotent = false
	}
	plan.Query = b.text.String()
	plan.instrs = b.instrs
	return plan, nil
}

// genDelete synthesizes a DELETE plan. With deleteOnlyColumns the non-key
// columns of the document are deleted instead of the whole row.
func genDelete(keyspace string, tbl *TableMetadata, props, when []PropertyInfo,
	ifExists, deleteOnlyColumns bool, fields []string) (*Plan, error) {

	keyProps, otherProps := splitKeyProps(tbl, props, fields)

	b := &qbuilder{}
	b.ws("DELETE ")
	if deleteOnlyColumns && len(otherProps) > 0 {
		for i := range otherProps {
			if i > 0 {
				b.ws(", ")
			}
			b.ws(otherProps[i].ColumnName)
		}
		b.ws(" ")
	}
	b.ws("FROM ")
	b.ws(keyspace)
	b.ws(".")
	b.ws(tbl.Name)
	b.ws(" WHERE ")
	if err := b.where(keyProps, false); err != nil {
		return nil, err
	}
	if err := b.conditions(when, ifExists); err != nil {
		return nil, err
	}
	return &Plan{
		Query:      b.text.String(),
		Table:      tbl.Name,
		Idempotent: !ifExists && len(when) == 0,
		instrs:     b.instrs,
	}, nil
}

// splitKeyProps partitions the document properties of one table into
// primary-key properties, ordered partition keys first then clustering
// keys, and remaining properties present in the table. fields, when
// non-empty, restricts the non-key set.
func splitKeyProps(tbl *TableMetadata, props []PropertyInfo, fields []string) (keyProps, otherProps []PropertyInfo) {
	byColumn := make(map[string]*PropertyInfo, len(props))
	for i := range props {
		byColumn[props[i].ColumnName] = &props[i]
	}
	for _, col := range tbl.PartitionKeys {
		if p := byColumn[col.Name]; p != nil {
			keyProps = append(keyProps, *p)
		}
	}
	for _, col := range tbl.ClusteringKeys {
		if p := byColumn[col.Name]; p != nil {
			keyProps = append(keyProps, *p)
		}
	}
	restrict := map[string]bool{}
	for _, f := range fields {
		restrict[f] = true
	}
	for i := range props {
		p := &props[i]
		if tbl.IsKeyColumn(p.ColumnName) || !tbl.HasColumn(p.ColumnName) {
			continue
		}
		if len(restrict) > 0 && !restrict[p.PropertyName] {
			continue
		}
		otherProps = append(otherProps, *p)
	}
	return keyProps, otherProps
}

func columnNames(props []PropertyInfo) []string {
	out := make([]string, len(props))
	for i := range props {
		out[i] = props[i].ColumnName
	}
	return out
}
