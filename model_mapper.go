/*
Package cqlmapper – per-model mapping operations.

ModelMapper is the facade bound to one logical model. Every operation
follows the same path: resolve the document, build the shape key, fetch
or fill the cached plan(s), extract parameters from the live document and
hand the statement(s) to the driver.
*/
package cqlmapper

import (
	"context"
	"errors"
	"strings"
)

// ModelMapper executes mapping operations for one logical model.
type ModelMapper struct {
	Name string

	mapper *Mapper
	info   *ModelInfo
	caches *modelCaches
}

// Info returns the immutable mapping description of this model.
func (mm *ModelMapper) Info() *ModelInfo { return mm.info }

// ─── selects ─────────────────────────────────────────────────────────────────

// Get retrieves the single row identified by the document, which must
// restrict the full primary key of a candidate table. Returns nil when no
// row matches.
func (mm *ModelMapper) Get(ctx context.Context, doc Doc, params *Params) (Doc, error) {
	r, err := mm.selectWith(ctx, doc, params, true)
	if err != nil {
		return nil, err
	}
	return r.First(), nil
}

// Find retrieves the rows matching the filter document. Filter values may
// use query operators.
func (mm *ModelMapper) Find(ctx context.Context, doc Doc, params *Params) (*Result, error) {
	return mm.selectWith(ctx, doc, params, false)
}

func (mm *ModelMapper) selectWith(ctx context.Context, doc Doc, params *Params, allPKsDefined bool) (*Result, error) {
	params = params.orEmpty()
	if len(doc) == 0 {
		return nil, NewError("Document must contain at least one property",
			WithCode(ErrConstraint), WithContext(map[string]any{"model": mm.Name}))
	}
	props, err := mm.info.resolve(doc)
	if err != nil {
		return nil, err
	}
	fields := mm.info.resolveFields(params.Fields)
	order := mm.info.resolveOrder(params.OrderBy)
	hasLimit := params.Limit > 0

	key := selectShapeKey(props, fields, hasLimit, order, allPKsDefined)
	slot := mm.caches.slotFor(mm.caches.sel, key, mm.mapper.log, mm.Name, "select")
	plans, err := mm.caches.fillPlans(ctx, "select", key, slot, func(ctx context.Context) ([]*Plan, error) {
		tables, err := mm.fetchTables(ctx)
		if err != nil {
			return nil, err
		}
		tbl, err := selectTableForQuery(tables, props, allPKsDefined, fields, order)
		if err != nil {
			return nil, err
		}
		p, err := genSelect(mm.info.Keyspace, tbl, props, fields, order, hasLimit)
		if err != nil {
			return nil, err
		}
		return []*Plan{p}, nil
	})
	if err != nil {
		return nil, err
	}
	return mm.executeSelect(ctx, plans[0], slot, doc, params)
}

// FindAll retrieves rows without filtering, always from the first
// declared table.
func (mm *ModelMapper) FindAll(ctx context.Context, params *Params) (*Result, error) {
	params = params.orEmpty()
	fields := mm.info.resolveFields(params.Fields)
	order := mm.info.resolveOrder(params.OrderBy)
	hasLimit := params.Limit > 0

	key := selectAllShapeKey(fields, hasLimit, order)
	slot := mm.caches.slotFor(mm.caches.selAll, key, mm.mapper.log, mm.Name, "selectAll")
	plans, err := mm.caches.fillPlans(ctx, "selectAll", key, slot, func(ctx context.Context) ([]*Plan, error) {
		tables, err := mm.fetchTables(ctx)
		if err != nil {
			return nil, err
		}
		p, err := genSelect(mm.info.Keyspace, tables[0], nil, fields, order, hasLimit)
		if err != nil {
			return nil, err
		}
		return []*Plan{p}, nil
	})
	if err != nil {
		return nil, err
	}
	return mm.executeSelect(ctx, plans[0], slot, nil, params)
}

func (mm *ModelMapper) executeSelect(ctx context.Context, plan *Plan, slot *cacheSlot, doc Doc, params *Params) (*Result, error) {
	values, err := plan.Values(doc, params)
	if err != nil {
		return nil, err
	}
	rs, err := mm.mapper.client.Execute(ctx, plan.Query, values, ExecOptions{Idempotent: plan.Idempotent})
	if err != nil {
		return nil, err
	}
	return mm.adapt(slot, rs), nil
}

// ─── mutations ───────────────────────────────────────────────────────────────

type mutationKind uint8

const (
	mutInsert mutationKind = iota
	mutUpdate
	mutRemove
)

func (k mutationKind) String() string {
	switch k {
	case mutInsert:
		return "insert"
	case mutUpdate:
		return "update"
	default:
		return "remove"
	}
}

// Insert writes the document into every candidate table whose primary key
// it covers.
func (mm *ModelMapper) Insert(ctx context.Context, doc Doc, params *Params) (*Result, error) {
	return mm.mutate(ctx, mutInsert, doc, params)
}

// Update sets the non-key properties of the document on every qualifying
// table. Values may use assignment operators.
func (mm *ModelMapper) Update(ctx context.Context, doc Doc, params *Params) (*Result, error) {
	return mm.mutate(ctx, mutUpdate, doc, params)
}

// Remove deletes the row (or, with DeleteOnlyColumns, the named columns)
// identified by the document from every qualifying table.
func (mm *ModelMapper) Remove(ctx context.Context, doc Doc, params *Params) (*Result, error) {
	return mm.mutate(ctx, mutRemove, doc, params)
}

func (mm *ModelMapper) mutate(ctx context.Context, kind mutationKind, doc Doc, params *Params) (*Result, error) {
	params = params.orEmpty()
	plans, slot, err := mm.mutationPlans(ctx, kind, doc, params)
	if err != nil {
		return nil, err
	}
	return mm.executePlans(ctx, plans, slot, doc, params)
}

// mutationPlans resolves the document, locates the cache slot for its
// shape and synthesizes the fan-out plan list on a miss.
func (mm *ModelMapper) mutationPlans(ctx context.Context, kind mutationKind, doc Doc, params *Params) ([]*Plan, *cacheSlot, error) {
	if len(doc) == 0 {
		return nil, nil, NewError("Document must contain at least one property",
			WithCode(ErrConstraint), WithContext(map[string]any{"model": mm.Name}))
	}
	if kind != mutInsert && params.IfExists && len(params.When) > 0 {
		return nil, nil, NewError("Options IfExists and When cannot be combined",
			WithCode(ErrConstraint), WithContext(map[string]any{"model": mm.Name}))
	}

	props, err := mm.info.resolve(doc)
	if err != nil {
		return nil, nil, err
	}
	if kind == mutInsert && len(params.Fields) > 0 {
		props = restrictProps(props, params.Fields)
	}
	when, err := mm.info.resolve(params.When)
	if err != nil {
		return nil, nil, err
	}
	fields := mm.info.resolveFields(params.Fields)
	hasTTL := params.TTL > 0

	var key []string
	var tree = mm.caches.ins
	switch kind {
	case mutInsert:
		key = insertShapeKey(props, fields, hasTTL, params.IfNotExists)
	case mutUpdate:
		key = updateShapeKey(props, fields, hasTTL, params.IfExists, when)
		tree = mm.caches.upd
	case mutRemove:
		key = removeShapeKey(props, fields, params.IfExists, params.DeleteOnlyColumns, when)
		tree = mm.caches.del
	}

	slot := mm.caches.slotFor(tree, key, mm.mapper.log, mm.Name, kind.String())
	plans, err := mm.caches.fillPlans(ctx, kind.String(), key, slot, func(ctx context.Context) ([]*Plan, error) {
		return mm.synthesizeMutation(ctx, kind, props, when, params)
	})
	if err != nil {
		return nil, nil, err
	}
	return plans, slot, nil
}

func (mm *ModelMapper) synthesizeMutation(ctx context.Context, kind mutationKind,
	props, when []PropertyInfo, params *Params) ([]*Plan, error) {

	tables, err := mm.fetchTables(ctx)
	if err != nil {
		return nil, err
	}

	var targets []*TableMetadata
	conditional := false
	switch kind {
	case mutInsert:
		targets, err = tablesForInsert(tables, props)
		conditional = params.IfNotExists
	case mutUpdate:
		targets, err = tablesForUpdate(tables, props, when)
		conditional = params.IfExists || len(when) > 0
	case mutRemove:
		targets, err = tablesForDelete(tables, props, when)
		conditional = params.IfExists || len(when) > 0
	}
	if err != nil {
		return nil, err
	}
	if conditional && len(targets) > 1 {
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.Name
		}
		return nil, NewError("Conditional "+kind.String()+" cannot span multiple tables: ["+strings.Join(names, ", ")+"]",
			WithCode(ErrConflict), WithContext(map[string]any{"model": mm.Name, "tables": names}))
	}

	plans := make([]*Plan, 0, len(targets))
	for _, tbl := range targets {
		var p *Plan
		switch kind {
		case mutInsert:
			p, err = genInsert(mm.info.Keyspace, tbl, props, params.IfNotExists, params.TTL > 0)
		case mutUpdate:
			p, err = genUpdate(mm.info.Keyspace, tbl, props, when, params.IfExists, params.TTL > 0, params.Fields)
		case mutRemove:
			p, err = genDelete(mm.info.Keyspace, tbl, props, when, params.IfExists, params.DeleteOnlyColumns, params.Fields)
		}
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// executePlans runs the fan-out: one statement executes directly, several
// combine into an atomic batch with ANDed idempotence.
func (mm *ModelMapper) executePlans(ctx context.Context, plans []*Plan, slot *cacheSlot, doc Doc, params *Params) (*Result, error) {
	if len(plans) == 1 {
		p := plans[0]
		values, err := p.Values(doc, params)
		if err != nil {
			return nil, err
		}
		rs, err := mm.mapper.client.Execute(ctx, p.Query, values,
			ExecOptions{Idempotent: p.Idempotent, Counter: p.IsCounter})
		if err != nil {
			return nil, err
		}
		return mm.adapt(slot, rs), nil
	}

	queries := make([]BatchQuery, len(plans))
	opts := ExecOptions{Idempotent: true}
	for i, p := range plans {
		values, err := p.Values(doc, params)
		if err != nil {
			return nil, err
		}
		queries[i] = BatchQuery{Query: p.Query, Values: values}
		opts.Idempotent = opts.Idempotent && p.Idempotent
		opts.Counter = opts.Counter || p.IsCounter
	}
	rs, err := mm.mapper.client.Batch(ctx, queries, opts)
	if err != nil {
		return nil, err
	}
	return mm.adapt(slot, rs), nil
}

// ─── ad-hoc queries ──────────────────────────────────────────────────────────

// MapWithQuery binds a hand-written query to this model's result mapping
// and returns a reusable executor. The result adapter is cached per query
// text.
func (mm *ModelMapper) MapWithQuery(query string, valuesFn func(Doc, *Params) []any) func(context.Context, Doc, *Params) (*Result, error) {
	return func(ctx context.Context, doc Doc, params *Params) (*Result, error) {
		rs, err := mm.mapper.client.Execute(ctx, query, valuesFn(doc, params.orEmpty()), ExecOptions{})
		if err != nil {
			return nil, err
		}
		sig := strings.Join(rs.Columns, ",")
		if v, ok := mm.caches.adhoc.Load(query); ok {
			if ca := v.(*cachedAdapter); ca.sig == sig {
				return &Result{rs: rs, adapt: ca.fn}, nil
			}
		}
		fn, cacheable := newRowAdapter(rs.Columns, mm.info)
		if cacheable {
			mm.caches.adhoc.Store(query, &cachedAdapter{sig: sig, fn: fn})
		}
		return &Result{rs: rs, adapt: fn}, nil
	}
}

// ─── shared plumbing ─────────────────────────────────────────────────────────

// fetchTables ensures metadata is available and retrieves every candidate
// table of the model, in declared order.
func (mm *ModelMapper) fetchTables(ctx context.Context) ([]*TableMetadata, error) {
	client := mm.mapper.client
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	out := make([]*TableMetadata, 0, len(mm.info.Tables))
	for _, ref := range mm.info.Tables {
		var tm *TableMetadata
		var err error
		if ref.IsView {
			tm, err = client.View(ctx, mm.info.Keyspace, ref.Name)
		} else {
			tm, err = client.Table(ctx, mm.info.Keyspace, ref.Name)
		}
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, NewError("Table \""+mm.info.Keyspace+"."+ref.Name+"\" could not be retrieved",
					WithCode(ErrMetadata),
					WithContext(map[string]any{"model": mm.Name, "table": ref.Name}))
			}
			return nil, err
		}
		out = append(out, tm)
	}
	return out, nil
}

// adapt wraps a raw row set with the cached (or freshly built) adapter
// for its column shape.
func (mm *ModelMapper) adapt(slot *cacheSlot, rs *ResultSet) *Result {
	sig := strings.Join(rs.Columns, ",")
	if ca := slot.adapter.Load(); ca != nil && ca.sig == sig {
		return &Result{rs: rs, adapt: ca.fn}
	}
	fn, cacheable := newRowAdapter(rs.Columns, mm.info)
	if cacheable {
		slot.adapter.Store(&cachedAdapter{sig: sig, fn: fn})
	}
	return &Result{rs: rs, adapt: fn}
}

// restrictProps keeps only the properties named in fields.
func restrictProps(props []PropertyInfo, fields []string) []PropertyInfo {
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f] = true
	}
	out := props[:0:0]
	for i := range props {
		if keep[props[i].PropertyName] {
			out = append(out, props[i])
		}
	}
	return out
}
