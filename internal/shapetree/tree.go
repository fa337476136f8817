/*
Package shapetree implements a radix (prefix-sharing) tree keyed by token
sequences. It backs the mapper's query-shape cache: each distinct token
sequence is bound to exactly one value, created lazily on first insertion
and stable for the lifetime of the tree.

Nodes live in an arena slice and reference each other by index, so
splitting a node in place is a local array mutation. A single mutex guards
traversal and splitting; both are cheap and never suspend. The stored
values are slots that callers fill after insertion, outside the tree lock.
*/
package shapetree

import "sync"

type node[V any] struct {
	// label[0] is the token that selected this node from its parent; it
	// is already consumed when the node is entered.
	label    []string
	children []int32
	value    V
	hasValue bool
}

// Tree is a radix tree of token sequences. The zero value is not usable;
// call New.
type Tree[V any] struct {
	mu     sync.Mutex
	nodes  []node[V]
	length int
}

// New returns an empty tree.
func New[V any]() *Tree[V] {
	t := &Tree[V]{}
	t.nodes = append(t.nodes, node[V]{}) // root, empty label
	return t
}

// Length returns the number of distinct key sequences holding a value.
func (t *Tree[V]) Length() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.length
}

// GetOrCreate walks key, creating nodes as needed, and returns the value
// bound to the full sequence plus the distinct-key count after the call.
// create is invoked exactly once per distinct key, under the tree lock, so
// it must be cheap and must not suspend.
func (t *Tree[V]) GetOrCreate(key []string, create func() V) (V, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := int32(0) // root
	i := 0        // consumed tokens
	for {
		label := t.nodes[n].label

		// match the remainder of the edge label; position 0 was consumed
		// when this node was entered
		j := 1
		if n == 0 {
			j = 0
		}
		for j < len(label) && i < len(key) && label[j] == key[i] {
			j++
			i++
		}

		if j < len(label) {
			// mismatch inside the edge: split, moving the suffix into a
			// new child that keeps the old value and children
			t.split(n, j)
			if i == len(key) {
				// key ends exactly at the split point
				return t.fill(n, create), t.length
			}
			return t.appendChild(n, key[i:], create), t.length
		}

		// edge label exhausted
		if i == len(key) {
			if !t.nodes[n].hasValue {
				return t.fill(n, create), t.length
			}
			return t.nodes[n].value, t.length
		}

		// descend into the child whose label starts with the next token
		next := int32(-1)
		for _, c := range t.nodes[n].children {
			if t.nodes[c].label[0] == key[i] {
				next = c
				break
			}
		}
		if next < 0 {
			return t.appendChild(n, key[i:], create), t.length
		}
		n = next
		i++ // label[0] consumed by the descent
	}
}

// split truncates node n's label at j and moves the suffix, value and
// children into a new child. n becomes a pure branching point.
func (t *Tree[V]) split(n int32, j int) {
	old := t.nodes[n]

	suffix := node[V]{
		label:    old.label[j:],
		children: old.children,
		value:    old.value,
		hasValue: old.hasValue,
	}
	t.nodes = append(t.nodes, suffix)
	idx := int32(len(t.nodes) - 1)

	var zero V
	t.nodes[n].label = old.label[:j:j]
	t.nodes[n].children = []int32{idx}
	t.nodes[n].value = zero
	t.nodes[n].hasValue = false
}

func (t *Tree[V]) fill(n int32, create func() V) V {
	v := create()
	t.nodes[n].value = v
	t.nodes[n].hasValue = true
	t.length++
	return v
}

func (t *Tree[V]) appendChild(n int32, rest []string, create func() V) V {
	label := make([]string, len(rest))
	copy(label, rest)
	child := node[V]{label: label, value: create(), hasValue: true}
	t.nodes = append(t.nodes, child)
	t.nodes[n].children = append(t.nodes[n].children, int32(len(t.nodes)-1))
	t.length++
	return child.value
}
