/*
Package cqlmapper – per-model shape caches.

Each model owns one radix tree per operation kind. Tree insertion is
synchronous and returns an empty slot; the suspending work (metadata
lookup + synthesis) runs outside the tree lock under a single-flight
group keyed by the shape, so concurrent first-seen calls for one shape
perform a single lookup while other shapes proceed unblocked. Slots are
filled once and read lock-free afterwards.
*/
package cqlmapper

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/cloudxsgmbh/cassandra-mapper-go/internal/shapetree"
)

// cacheHighWaterMark is the distinct-shape count at which a warning is
// logged. Not a limit: callers varying document shape unnecessarily (for
// example by embedding values in property names) grow the cache without
// bound.
const cacheHighWaterMark = 100

// cacheSlot is the lazily-filled value bound to one shape.
type cacheSlot struct {
	plans   atomic.Pointer[[]*Plan]
	adapter atomic.Pointer[cachedAdapter]
}

// cachedAdapter pairs a row adapter with the column signature it was
// built for.
type cachedAdapter struct {
	sig string
	fn  rowAdapter
}

func newCacheSlot() *cacheSlot { return &cacheSlot{} }

// modelCaches holds the per-operation shape trees of one model.
type modelCaches struct {
	sel    *shapetree.Tree[*cacheSlot]
	selAll *shapetree.Tree[*cacheSlot]
	ins    *shapetree.Tree[*cacheSlot]
	upd    *shapetree.Tree[*cacheSlot]
	del    *shapetree.Tree[*cacheSlot]

	flight singleflight.Group

	// result adapters for ad-hoc queries, keyed by query text
	adhoc sync.Map
}

func newModelCaches() *modelCaches {
	return &modelCaches{
		sel:    shapetree.New[*cacheSlot](),
		selAll: shapetree.New[*cacheSlot](),
		ins:    shapetree.New[*cacheSlot](),
		upd:    shapetree.New[*cacheSlot](),
		del:    shapetree.New[*cacheSlot](),
	}
}

// slotFor inserts key into tree and logs when the distinct-shape count
// reaches the high-water mark.
func (c *modelCaches) slotFor(tree *shapetree.Tree[*cacheSlot], key []string,
	log Logger, model, operation string) *cacheSlot {

	slot, n := tree.GetOrCreate(key, newCacheSlot)
	if n == cacheHighWaterMark {
		log.Warn("Query shape cache reached high water mark; "+
			"verify that document shapes do not embed literal values",
			map[string]any{"model": model, "operation": operation, "shapes": n})
	}
	return slot
}

// fillPlans returns the cached plans for slot, synthesizing them at most
// once per in-flight shape. Errors are not cached: a failed synthesis is
// retried by the next call.
func (c *modelCaches) fillPlans(ctx context.Context, operation string, key []string,
	slot *cacheSlot, synth func(context.Context) ([]*Plan, error)) ([]*Plan, error) {

	if p := slot.plans.Load(); p != nil {
		return *p, nil
	}
	v, err, _ := c.flight.Do(operation+"\x00"+strings.Join(key, "\x00"), func() (any, error) {
		if p := slot.plans.Load(); p != nil {
			return *p, nil
		}
		plans, err := synth(ctx)
		if err != nil {
			return nil, err
		}
		slot.plans.Store(&plans)
		return plans, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Plan), nil
}
