package shapetree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func counter() (func() int, *int) {
	n := 0
	return func() int { n++; return n }, &n
}

func TestTree_InsertAndLookup(t *testing.T) {
	tr := New[int]()
	create, calls := counter()

	v1, n := tr.GetOrCreate([]string{"a", "b", "c"}, create)
	require.Equal(t, 1, v1)
	require.Equal(t, 1, n)

	// same key: same value, no growth, factory not invoked again
	v2, n := tr.GetOrCreate([]string{"a", "b", "c"}, create)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, n)
	require.Equal(t, 1, *calls)
}

func TestTree_SplitCorrectness(t *testing.T) {
	tr := New[int]()
	create, _ := counter()

	va, _ := tr.GetOrCreate([]string{"a", "b", "c"}, create)
	vb, _ := tr.GetOrCreate([]string{"a", "b", "d"}, create)
	vc, n := tr.GetOrCreate([]string{"a", "b", "d", "e", "f"}, create)
	require.Equal(t, 3, n)

	// branch node at ["a","b"] with two children ["c"] and ["d"];
	// ["d"] has one child ["e","f"]
	root := tr.nodes[0]
	require.Len(t, root.children, 1)

	branch := tr.nodes[root.children[0]]
	require.Equal(t, []string{"a", "b"}, branch.label)
	require.False(t, branch.hasValue)
	require.Len(t, branch.children, 2)

	var cNode, dNode *node[int]
	for _, ci := range branch.children {
		nd := &tr.nodes[ci]
		switch nd.label[0] {
		case "c":
			cNode = nd
		case "d":
			dNode = nd
		}
	}
	require.NotNil(t, cNode)
	require.NotNil(t, dNode)
	require.Equal(t, []string{"c"}, cNode.label)
	require.Equal(t, []string{"d"}, dNode.label)
	require.Len(t, dNode.children, 1)
	require.Equal(t, []string{"e", "f"}, tr.nodes[dNode.children[0]].label)

	// original keys still resolve to their original values
	ga, _ := tr.GetOrCreate([]string{"a", "b", "c"}, create)
	gb, _ := tr.GetOrCreate([]string{"a", "b", "d"}, create)
	gc, n := tr.GetOrCreate([]string{"a", "b", "d", "e", "f"}, create)
	require.Equal(t, va, ga)
	require.Equal(t, vb, gb)
	require.Equal(t, vc, gc)
	require.Equal(t, 3, n)
	require.Equal(t, 3, tr.Length())
}

func TestTree_KeyEndsAtSplitPoint(t *testing.T) {
	tr := New[int]()
	create, _ := counter()

	v1, _ := tr.GetOrCreate([]string{"x", "y", "z"}, create)
	// prefix of an existing edge: split point coincides with key end
	v2, n := tr.GetOrCreate([]string{"x", "y"}, create)
	require.Equal(t, 2, n)
	require.NotEqual(t, v1, v2)

	g1, _ := tr.GetOrCreate([]string{"x", "y", "z"}, create)
	g2, n := tr.GetOrCreate([]string{"x", "y"}, create)
	require.Equal(t, v1, g1)
	require.Equal(t, v2, g2)
	require.Equal(t, 2, n)
}

func TestTree_FillPureBranchNode(t *testing.T) {
	tr := New[int]()
	create, _ := counter()

	tr.GetOrCreate([]string{"a", "b", "c"}, create)
	tr.GetOrCreate([]string{"a", "b", "d"}, create)

	// ["a","b"] is now a pure branch node; an exact-prefix key fills it
	v, n := tr.GetOrCreate([]string{"a", "b"}, create)
	require.Equal(t, 3, n)

	g, n := tr.GetOrCreate([]string{"a", "b"}, create)
	require.Equal(t, v, g)
	require.Equal(t, 3, n)
}

func TestTree_DivergingFirstToken(t *testing.T) {
	tr := New[*int]()
	mk := func() *int { v := 7; return &v }

	v1, _ := tr.GetOrCreate([]string{"a"}, mk)
	v2, n := tr.GetOrCreate([]string{"b"}, mk)
	require.Equal(t, 2, n)
	require.NotSame(t, v1, v2)

	g1, _ := tr.GetOrCreate([]string{"a"}, mk)
	require.Same(t, v1, g1)
}
