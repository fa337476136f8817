/*
Package cqlmapper – deferred batch items.

A BatchItem defers one mutation so heterogeneous mutations across models
can combine into a single atomic batch. Plan synthesis runs once per item
through the owning model's shape cache and is memoized on the item, so
including it in several batches never resynthesizes.
*/
package cqlmapper

import (
	"context"
	"sync"
)

// BatchItem is one deferred mutation of a batch.
type BatchItem struct {
	mm     *ModelMapper
	kind   mutationKind
	doc    Doc
	params *Params

	once  sync.Once
	plans []*Plan
	slot  *cacheSlot
	err   error
}

// BatchInsert defers an insert of doc for inclusion in a batch.
func (mm *ModelMapper) BatchInsert(doc Doc, params *Params) *BatchItem {
	return &BatchItem{mm: mm, kind: mutInsert, doc: doc, params: params.orEmpty()}
}

// BatchUpdate defers an update of doc for inclusion in a batch.
func (mm *ModelMapper) BatchUpdate(doc Doc, params *Params) *BatchItem {
	return &BatchItem{mm: mm, kind: mutUpdate, doc: doc, params: params.orEmpty()}
}

// BatchRemove defers a removal of doc for inclusion in a batch.
func (mm *ModelMapper) BatchRemove(doc Doc, params *Params) *BatchItem {
	return &BatchItem{mm: mm, kind: mutRemove, doc: doc, params: params.orEmpty()}
}

// resolve synthesizes (once) and returns the item's fan-out plans.
func (b *BatchItem) resolve(ctx context.Context) ([]*Plan, error) {
	b.once.Do(func() {
		b.plans, b.slot, b.err = b.mm.mutationPlans(ctx, b.kind, b.doc, b.params)
	})
	return b.plans, b.err
}

// Batch combines the items' statements into one atomic batch. Combined
// idempotence is the logical AND over every constituent; the counter flag
// passes through unvalidated, mixed counter and non-counter batches fail
// at the driver.
func (m *Mapper) Batch(ctx context.Context, items []*BatchItem) (*Result, error) {
	if len(items) == 0 {
		return nil, NewArgError("Batch requires at least one item")
	}

	var queries []BatchQuery
	opts := ExecOptions{Idempotent: true}
	for _, item := range items {
		plans, err := item.resolve(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range plans {
			values, err := p.Values(item.doc, item.params)
			if err != nil {
				return nil, err
			}
			queries = append(queries, BatchQuery{Query: p.Query, Values: values})
			opts.Idempotent = opts.Idempotent && p.Idempotent
			opts.Counter = opts.Counter || p.IsCounter
		}
	}

	first := items[0]
	if len(queries) == 1 {
		rs, err := m.client.Execute(ctx, queries[0].Query, queries[0].Values, opts)
		if err != nil {
			return nil, err
		}
		return first.mm.adapt(first.slot, rs), nil
	}
	rs, err := m.client.Batch(ctx, queries, opts)
	if err != nil {
		return nil, err
	}
	return first.mm.adapt(first.slot, rs), nil
}
