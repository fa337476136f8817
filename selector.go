/*
Package cqlmapper – table selection.

Given the model's candidate tables in declared order and the structural
facts of a request, selection picks the table a SELECT must target, or
every table an INSERT / UPDATE / DELETE must fan out to. Column matching
is exact and case-sensitive; the mapper never falls back to filtered
scans (no ALLOW FILTERING).
*/
package cqlmapper

import (
	"fmt"
	"strings"
)

// coversAll reports whether every key column appears among the props.
func coversAll(keys []*ColumnMetadata, props []PropertyInfo) bool {
	for _, k := range keys {
		if !hasColumnProp(props, k.Name) {
			return false
		}
	}
	return true
}

func hasColumnProp(props []PropertyInfo, column string) bool {
	for i := range props {
		if props[i].ColumnName == column {
			return true
		}
	}
	return false
}

// selectTableForQuery picks the first table that can satisfy a SELECT:
// partition key fully restricted, clustering key fully restricted when
// allPKsDefined, extra filter columns restricted to key columns, and the
// requested fields and ordering available.
func selectTableForQuery(tables []*TableMetadata, filters []PropertyInfo,
	allPKsDefined bool, fields []PropertyInfo, order []resolvedOrder) (*TableMetadata, error) {

	for _, tbl := range tables {
		if !coversAll(tbl.PartitionKeys, filters) {
			continue
		}
		if allPKsDefined && !coversAll(tbl.ClusteringKeys, filters) {
			continue
		}
		if len(filters) > len(tbl.PartitionKeys) && !filtersAreKeys(tbl, filters) {
			continue
		}
		if !columnsExist(tbl, fields) {
			continue
		}
		if !orderIsClusteringPrefix(tbl, order) {
			continue
		}
		return tbl, nil
	}
	return nil, selectionError("No table matches the filter", filters, fields, order)
}

// filtersAreKeys reports whether every filter column is a partition or
// clustering key of the table. Non-key filtering is rejected.
func filtersAreKeys(tbl *TableMetadata, filters []PropertyInfo) bool {
	for i := range filters {
		if !tbl.IsKeyColumn(filters[i].ColumnName) {
			return false
		}
	}
	return true
}

func columnsExist(tbl *TableMetadata, props []PropertyInfo) bool {
	for i := range props {
		if !tbl.HasColumn(props[i].ColumnName) {
			return false
		}
	}
	return true
}

// orderIsClusteringPrefix reports whether the ordering columns form a
// prefix of the table's clustering key, in declared order. CQL only
// supports ordering along the clustering key.
func orderIsClusteringPrefix(tbl *TableMetadata, order []resolvedOrder) bool {
	if len(order) > len(tbl.ClusteringKeys) {
		return false
	}
	for i, o := range order {
		if tbl.ClusteringKeys[i].Name != o.Column {
			return false
		}
	}
	return true
}

// tablesForInsert returns every table whose full primary key is covered
// by the document (denormalized fan-out).
func tablesForInsert(tables []*TableMetadata, props []PropertyInfo) ([]*TableMetadata, error) {
	var out []*TableMetadata
	for _, tbl := range tables {
		if coversAll(tbl.PartitionKeys, props) && coversAll(tbl.ClusteringKeys, props) {
			out = append(out, tbl)
		}
	}
	if len(out) == 0 {
		return nil, selectionError("No table has full primary-key coverage for insert", props, nil, nil)
	}
	return out, nil
}

// tablesForUpdate returns every table whose full primary key is covered
// and that has at least one non-key document column to SET, with every
// When condition column present.
func tablesForUpdate(tables []*TableMetadata, props, when []PropertyInfo) ([]*TableMetadata, error) {
	var out []*TableMetadata
	for _, tbl := range tables {
		if !coversAll(tbl.PartitionKeys, props) || !coversAll(tbl.ClusteringKeys, props) {
			continue
		}
		if !hasNonKeyColumn(tbl, props) {
			continue
		}
		if !columnsExist(tbl, when) {
			continue
		}
		out = append(out, tbl)
	}
	if len(out) == 0 {
		return nil, selectionError("No table has full primary-key coverage and a column to SET for update", props, nil, nil)
	}
	return out, nil
}

// tablesForDelete is tablesForUpdate without the something-to-SET
// requirement.
func tablesForDelete(tables []*TableMetadata, props, when []PropertyInfo) ([]*TableMetadata, error) {
	var out []*TableMetadata
	for _, tbl := range tables {
		if !coversAll(tbl.PartitionKeys, props) || !coversAll(tbl.ClusteringKeys, props) {
			continue
		}
		if !columnsExist(tbl, when) {
			continue
		}
		out = append(out, tbl)
	}
	if len(out) == 0 {
		return nil, selectionError("No table has full primary-key coverage for delete", props, nil, nil)
	}
	return out, nil
}

func hasNonKeyColumn(tbl *TableMetadata, props []PropertyInfo) bool {
	for i := range props {
		col := props[i].ColumnName
		if tbl.HasColumn(col) && !tbl.IsKeyColumn(col) {
			return true
		}
	}
	return false
}

func selectionError(msg string, filters, fields []PropertyInfo, order []resolvedOrder) error {
	ctx := map[string]any{"filters": columnNames(filters)}
	parts := []string{fmt.Sprintf("%s: [%s]", msg, strings.Join(columnNames(filters), ", "))}
	if len(fields) > 0 {
		ctx["fields"] = columnNames(fields)
		parts = append(parts, fmt.Sprintf("fields: [%s]", strings.Join(columnNames(fields), ", ")))
	}
	if len(order) > 0 {
		cols := make([]string, len(order))
		for i, o := range order {
			cols[i] = o.Column
		}
		ctx["orderBy"] = cols
		parts = append(parts, fmt.Sprintf("orderBy: [%s]", strings.Join(cols, ", ")))
	}
	return NewError(strings.Join(parts, "; "), WithCode(ErrSelection), WithContext(ctx))
}
