/*
Package cqlmapper – shared test infrastructure: metadata fixtures and a
fake driver client.
*/
package cqlmapper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func col(name string, t TypeCode) *ColumnMetadata {
	return &ColumnMetadata{Name: name, Type: t}
}

func table(keyspace, name string, pks, cks []*ColumnMetadata, extra ...*ColumnMetadata) *TableMetadata {
	tm := &TableMetadata{
		Keyspace:       keyspace,
		Name:           name,
		ID:             uuid.New(),
		PartitionKeys:  pks,
		ClusteringKeys: cks,
		Columns:        map[string]*ColumnMetadata{},
	}
	for _, c := range pks {
		tm.Columns[c.Name] = c
	}
	for _, c := range cks {
		tm.Columns[c.Name] = c
	}
	for _, c := range extra {
		tm.Columns[c.Name] = c
	}
	return tm
}

// sampleTable is the single-table fixture: partition key id1, regular
// columns name, counter1, list1.
func sampleTable() *TableMetadata {
	return table("ks1", "table1",
		[]*ColumnMetadata{col("id1", TypeText)},
		nil,
		col("name", TypeText),
		col("counter1", TypeCounter),
		col("list1", TypeList),
	)
}

type execCall struct {
	query  string
	values []any
	opts   ExecOptions
}

type batchCall struct {
	queries []BatchQuery
	opts    ExecOptions
}

// fakeClient is an in-memory Client double. It records executions and
// returns canned results.
type fakeClient struct {
	tables map[string]*TableMetadata // "keyspace.name"
	views  map[string]*TableMetadata

	result *ResultSet // returned by Execute and Batch; nil means empty

	connects int
	lookups  int
	execs    []execCall
	batches  []batchCall
}

func newFakeClient(tables ...*TableMetadata) *fakeClient {
	c := &fakeClient{
		tables: map[string]*TableMetadata{},
		views:  map[string]*TableMetadata{},
	}
	for _, t := range tables {
		key := t.Keyspace + "." + t.Name
		if t.IsView {
			c.views[key] = t
		} else {
			c.tables[key] = t
		}
	}
	return c
}

func (c *fakeClient) Connect(context.Context) error {
	c.connects++
	return nil
}

func (c *fakeClient) Table(_ context.Context, keyspace, name string) (*TableMetadata, error) {
	c.lookups++
	if t, ok := c.tables[keyspace+"."+name]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (c *fakeClient) View(_ context.Context, keyspace, name string) (*TableMetadata, error) {
	c.lookups++
	if t, ok := c.views[keyspace+"."+name]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (c *fakeClient) Execute(_ context.Context, query string, values []any, opts ExecOptions) (*ResultSet, error) {
	c.execs = append(c.execs, execCall{query: query, values: values, opts: opts})
	if c.result != nil {
		return c.result, nil
	}
	return &ResultSet{}, nil
}

func (c *fakeClient) Batch(_ context.Context, queries []BatchQuery, opts ExecOptions) (*ResultSet, error) {
	c.batches = append(c.batches, batchCall{queries: queries, opts: opts})
	if c.result != nil {
		return c.result, nil
	}
	return &ResultSet{}, nil
}

// sampleMapper wires a Mapper over the given tables with model "Sample"
// bound to all of them in order.
func sampleMapper(client *fakeClient, tables ...TableRef) (*Mapper, *ModelMapper, error) {
	m, err := NewMapper(MapperParams{
		Client:   client,
		Keyspace: "ks1",
		Logger:   nopLogger{},
		Options: &MappingOptions{Models: map[string]*ModelOptions{
			"Sample": {Tables: tables},
		}},
	})
	if err != nil {
		return nil, nil, err
	}
	mm, err := m.Model("Sample")
	if err != nil {
		return nil, nil, err
	}
	return m, mm, nil
}

// shapeDoc builds a one-property document with a generated property name,
// used to grow the shape cache.
func shapeDoc(i int) Doc {
	return Doc{fmt.Sprintf("p%03d", i): i}
}
