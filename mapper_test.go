// End-to-end mapping behaviour over a fake driver client.
package cqlmapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func bg() context.Context { return context.Background() }

func TestUpdate_SimpleSetAndWhere(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1", "name": "n1"}, nil)
	require.NoError(t, err)

	require.Len(t, client.execs, 1)
	call := client.execs[0]
	require.Equal(t, "UPDATE ks1.table1 SET name = ? WHERE id1 = ?", call.query)
	require.Equal(t, []any{"n1", "v1"}, call.values)
	require.True(t, call.opts.Idempotent)
	require.False(t, call.opts.Counter)
}

func TestUpdate_CounterIncrement(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1", "counter1": Incr(5)}, nil)
	require.NoError(t, err)

	require.Len(t, client.execs, 1)
	call := client.execs[0]
	require.Equal(t, "UPDATE ks1.table1 SET counter1 = counter1 + ? WHERE id1 = ?", call.query)
	require.Equal(t, []any{5, "v1"}, call.values)
	require.False(t, call.opts.Idempotent)
	require.True(t, call.opts.Counter)
}

func TestUpdate_ListAppendNotIdempotent(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1", "list1": Append([]any{"x"})}, nil)
	require.NoError(t, err)

	call := client.execs[0]
	require.Equal(t, "UPDATE ks1.table1 SET list1 = list1 + ? WHERE id1 = ?", call.query)
	require.False(t, call.opts.Idempotent)
	require.False(t, call.opts.Counter)
}

func TestUpdate_PrependRendersInverted(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1", "list1": Prepend([]any{"x"})}, nil)
	require.NoError(t, err)
	require.Equal(t, "UPDATE ks1.table1 SET list1 = ? + list1 WHERE id1 = ?", client.execs[0].query)
}

func TestUpdate_TTLAndConditions(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1", "name": "n1"},
		&Params{TTL: 60, When: Doc{"name": "old"}})
	require.NoError(t, err)

	call := client.execs[0]
	require.Equal(t, "UPDATE ks1.table1 USING TTL ? SET name = ? WHERE id1 = ? IF name = ?", call.query)
	require.Equal(t, []any{60, "n1", "v1", "old"}, call.values)
	require.False(t, call.opts.Idempotent)
}

func TestUpdate_WhenAndIfExistsConflict(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1", "name": "n1"},
		&Params{IfExists: true, When: Doc{"name": "old"}})
	require.Error(t, err)
	require.True(t, HasCode(err, ErrConstraint))
}

func TestUpdate_NothingToSet(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "v1"}, nil)
	require.Error(t, err)
	require.True(t, HasCode(err, ErrSelection))
}

func TestMutation_EmptyDocument(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Insert(bg(), Doc{}, nil)
	require.Error(t, err)
	require.True(t, HasCode(err, ErrConstraint))
}

func TestInsert_FanOutSelectsCoveredTablesOnly(t *testing.T) {
	// table2's partition key id2 is absent from the document, so only
	// table1 is written
	t1 := sampleTable()
	t2 := table("ks1", "table2",
		[]*ColumnMetadata{col("id2", TypeText)}, nil,
		col("id1", TypeText), col("name", TypeText))
	client := newFakeClient(t1, t2)
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"}, TableRef{Name: "table2"})
	require.NoError(t, err)

	_, err = mm.Insert(bg(), Doc{"id1": "v1", "name": "n1"}, nil)
	require.NoError(t, err)

	require.Len(t, client.execs, 1)
	require.Empty(t, client.batches)
	require.Equal(t, "INSERT INTO ks1.table1 (id1, name) VALUES (?, ?)", client.execs[0].query)
	require.Equal(t, []any{"v1", "n1"}, client.execs[0].values)
	require.True(t, client.execs[0].opts.Idempotent)
}

func TestInsert_FanOutBatchesAcrossTables(t *testing.T) {
	t1 := sampleTable()
	t2 := table("ks1", "table2",
		[]*ColumnMetadata{col("id2", TypeText)}, nil,
		col("id1", TypeText), col("name", TypeText))
	client := newFakeClient(t1, t2)
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"}, TableRef{Name: "table2"})
	require.NoError(t, err)

	_, err = mm.Insert(bg(), Doc{"id1": "v1", "id2": "v2", "name": "n1"}, nil)
	require.NoError(t, err)

	require.Empty(t, client.execs)
	require.Len(t, client.batches, 1)
	b := client.batches[0]
	require.Len(t, b.queries, 2)
	require.Equal(t, "INSERT INTO ks1.table1 (id1, name) VALUES (?, ?)", b.queries[0].Query)
	require.Equal(t, "INSERT INTO ks1.table2 (id1, id2, name) VALUES (?, ?, ?)", b.queries[1].Query)
	require.True(t, b.opts.Idempotent)
}

func TestInsert_IfNotExistsCannotSpanTables(t *testing.T) {
	t1 := sampleTable()
	t2 := table("ks1", "table2",
		[]*ColumnMetadata{col("id1", TypeText)}, nil, col("name", TypeText))
	client := newFakeClient(t1, t2)
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"}, TableRef{Name: "table2"})
	require.NoError(t, err)

	_, err = mm.Insert(bg(), Doc{"id1": "v1", "name": "n1"}, &Params{IfNotExists: true})
	require.Error(t, err)
	require.True(t, HasCode(err, ErrConflict))
}

func TestInsert_IfNotExistsNotIdempotent(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Insert(bg(), Doc{"id1": "v1", "name": "n1"}, &Params{IfNotExists: true})
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO ks1.table1 (id1, name) VALUES (?, ?) IF NOT EXISTS", client.execs[0].query)
	require.False(t, client.execs[0].opts.Idempotent)
}

func TestRemove_WholeRowAndColumns(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Remove(bg(), Doc{"id1": "v1"}, nil)
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM ks1.table1 WHERE id1 = ?", client.execs[0].query)
	require.True(t, client.execs[0].opts.Idempotent)

	_, err = mm.Remove(bg(), Doc{"id1": "v1", "name": "n1"}, &Params{DeleteOnlyColumns: true})
	require.NoError(t, err)
	require.Equal(t, "DELETE name FROM ks1.table1 WHERE id1 = ?", client.execs[1].query)
	require.Equal(t, []any{"v1"}, client.execs[1].values)
}

func TestRemove_IfExistsNotIdempotent(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Remove(bg(), Doc{"id1": "v1"}, &Params{IfExists: true})
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM ks1.table1 WHERE id1 = ? IF EXISTS", client.execs[0].query)
	require.False(t, client.execs[0].opts.Idempotent)
}

func TestFind_OperatorsAndOptions(t *testing.T) {
	t1 := table("ks1", "table1",
		[]*ColumnMetadata{col("id1", TypeText)},
		[]*ColumnMetadata{col("id2", TypeText)},
		col("name", TypeText))
	client := newFakeClient(t1)
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Find(bg(), Doc{"id1": "v1", "id2": Gt("a")},
		&Params{Limit: 10, OrderBy: []Order{{Field: "id2", Desc: true}}})
	require.NoError(t, err)

	call := client.execs[0]
	require.Equal(t, "SELECT * FROM ks1.table1 WHERE id1 = ? AND id2 > ? ORDER BY id2 DESC LIMIT ?", call.query)
	require.Equal(t, []any{"v1", "a", 10}, call.values)
	require.True(t, call.opts.Idempotent)
}

func TestFind_AndOperatorChainsPredicates(t *testing.T) {
	t1 := table("ks1", "table1",
		[]*ColumnMetadata{col("id1", TypeText)},
		[]*ColumnMetadata{col("id2", TypeText)})
	client := newFakeClient(t1)
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Find(bg(), Doc{"id1": "v1", "id2": And(Gte("a"), Lt("m"))}, nil)
	require.NoError(t, err)

	call := client.execs[0]
	require.Equal(t, "SELECT * FROM ks1.table1 WHERE id1 = ? AND id2 >= ? AND id2 < ?", call.query)
	require.Equal(t, []any{"v1", "a", "m"}, call.values)
}

func TestFind_InBindsListAsOneParameter(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Find(bg(), Doc{"id1": In([]string{"a", "b"})}, nil)
	require.NoError(t, err)

	call := client.execs[0]
	require.Equal(t, "SELECT * FROM ks1.table1 WHERE id1 IN ?", call.query)
	require.Equal(t, []any{[]string{"a", "b"}}, call.values)
}

func TestFind_InRejectsNonSlice(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Find(bg(), Doc{"id1": In("not-a-slice")}, nil)
	require.Error(t, err)
	require.True(t, HasCode(err, ErrShape))
	// failed before any metadata lookup or execution
	require.Zero(t, client.lookups)
	require.Empty(t, client.execs)
}

func TestFind_NonKeyFilterRejected(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Find(bg(), Doc{"id1": "v1", "name": "n1"}, nil)
	require.Error(t, err)
	require.True(t, HasCode(err, ErrSelection))
}

func TestFindAll_UsesFirstTable(t *testing.T) {
	t1 := sampleTable()
	t2 := table("ks1", "table2", []*ColumnMetadata{col("id1", TypeText)}, nil)
	client := newFakeClient(t1, t2)
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"}, TableRef{Name: "table2"})
	require.NoError(t, err)

	_, err = mm.FindAll(bg(), &Params{Fields: []string{"id1", "name"}})
	require.NoError(t, err)
	require.Equal(t, "SELECT id1, name FROM ks1.table1", client.execs[0].query)
}

func TestGet_ReturnsMappedDocument(t *testing.T) {
	client := newFakeClient(sampleTable())
	client.result = &ResultSet{
		Columns: []string{"id1", "name"},
		Rows:    [][]any{{"v1", "n1"}},
	}
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	doc, err := mm.Get(bg(), Doc{"id1": "v1"}, nil)
	require.NoError(t, err)
	require.Equal(t, Doc{"id1": "v1", "name": "n1"}, doc)
}

func TestPlanReuse_SecondCallSkipsMetadata(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Update(bg(), Doc{"id1": "a", "name": "x"}, nil)
	require.NoError(t, err)
	lookups := client.lookups

	_, err = mm.Update(bg(), Doc{"id1": "b", "name": "y"}, nil)
	require.NoError(t, err)

	require.Equal(t, lookups, client.lookups, "cached plan must not refetch metadata")
	require.Equal(t, client.execs[0].query, client.execs[1].query)
	require.Equal(t, []any{"y", "b"}, client.execs[1].values)
}

func TestPlanReuse_SamePlanReference(t *testing.T) {
	client := newFakeClient(sampleTable())
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	p1, _, err := mm.mutationPlans(bg(), mutUpdate, Doc{"id1": "a", "name": "x"}, &Params{})
	require.NoError(t, err)
	p2, _, err := mm.mutationPlans(bg(), mutUpdate, Doc{"id1": "b", "name": "y"}, &Params{})
	require.NoError(t, err)
	require.Same(t, p1[0], p2[0])
}

func TestModel_MissingTableMetadata(t *testing.T) {
	client := newFakeClient()
	_, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	_, err = mm.Get(bg(), Doc{"id1": "v1"}, nil)
	require.Error(t, err)
	require.True(t, HasCode(err, ErrMetadata))
}

func TestModel_SameInstancePerName(t *testing.T) {
	client := newFakeClient(sampleTable())
	m, mm, err := sampleMapper(client, TableRef{Name: "table1"})
	require.NoError(t, err)

	again, err := m.Model("Sample")
	require.NoError(t, err)
	require.Same(t, mm, again)
}

func TestCache_HighWaterWarning(t *testing.T) {
	var warns []string
	logger := FuncLogger{Fn: func(level, msg string, ctx map[string]any) {
		if level == "warn" {
			warns = append(warns, msg)
		}
	}}
	caches := newModelCaches()
	for i := 0; i < cacheHighWaterMark+5; i++ {
		caches.slotFor(caches.sel, []string{shapeDocKey(i)}, logger, "Sample", "select")
	}
	require.Len(t, warns, 1)
}

func shapeDocKey(i int) string {
	for k := range shapeDoc(i) {
		return k
	}
	return ""
}
