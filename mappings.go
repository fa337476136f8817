/*
Package cqlmapper – naming conventions.

A TableMappings converts between document property names and CQL column
names for every column without an explicit override.
*/
package cqlmapper

import (
	"strings"
	"unicode"
)

// TableMappings converts between property and column names.
type TableMappings interface {
	// ColumnName returns the column name for a document property.
	ColumnName(property string) string
	// PropertyName returns the document property for a column name.
	PropertyName(column string) string
}

// DefaultTableMappings uses property names as column names unchanged.
type DefaultTableMappings struct{}

func (DefaultTableMappings) ColumnName(property string) string { return property }
func (DefaultTableMappings) PropertyName(column string) string { return column }

// UnderscoreCQLToCamelCase maps snake_case column names to camelCase
// properties and back: "user_name" <-> "userName".
type UnderscoreCQLToCamelCase struct{}

func (UnderscoreCQLToCamelCase) ColumnName(property string) string {
	var b strings.Builder
	b.Grow(len(property) + 4)
	for _, r := range property {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (UnderscoreCQLToCamelCase) PropertyName(column string) string {
	var b strings.Builder
	b.Grow(len(column))
	up := false
	for _, r := range column {
		if r == '_' {
			up = true
			continue
		}
		if up {
			b.WriteRune(unicode.ToUpper(r))
			up = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
