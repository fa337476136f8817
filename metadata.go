/*
Package cqlmapper – table metadata types.

TableMetadata is the mapper's view of a physical table or materialized
view, as retrieved from the driver's schema metadata.
*/
package cqlmapper

import "github.com/google/uuid"

// TypeCode identifies a CQL column type using the binary protocol option
// ids. The mapper only inspects codes to detect counter and list columns;
// values themselves are handled opaquely.
type TypeCode int

const (
	TypeCustom    TypeCode = 0x0000
	TypeAscii     TypeCode = 0x0001
	TypeBigint    TypeCode = 0x0002
	TypeBlob      TypeCode = 0x0003
	TypeBoolean   TypeCode = 0x0004
	TypeCounter   TypeCode = 0x0005
	TypeDecimal   TypeCode = 0x0006
	TypeDouble    TypeCode = 0x0007
	TypeFloat     TypeCode = 0x0008
	TypeInt       TypeCode = 0x0009
	TypeText      TypeCode = 0x000a
	TypeTimestamp TypeCode = 0x000b
	TypeUUID      TypeCode = 0x000c
	TypeVarchar   TypeCode = 0x000d
	TypeVarint    TypeCode = 0x000e
	TypeTimeUUID  TypeCode = 0x000f
	TypeInet      TypeCode = 0x0010
	TypeDate      TypeCode = 0x0011
	TypeTime      TypeCode = 0x0012
	TypeSmallint  TypeCode = 0x0013
	TypeTinyint   TypeCode = 0x0014
	TypeDuration  TypeCode = 0x0015
	TypeList      TypeCode = 0x0020
	TypeMap       TypeCode = 0x0021
	TypeSet       TypeCode = 0x0022
	TypeUDT       TypeCode = 0x0030
	TypeTuple     TypeCode = 0x0031
)

// ColumnMetadata describes a single column of a physical table.
type ColumnMetadata struct {
	Name string
	Type TypeCode
}

// TableMetadata describes a physical table or materialized view.
// Instances are produced by the driver's metadata lookup and treated as
// read-only by the mapper.
type TableMetadata struct {
	Keyspace string
	Name     string
	ID       uuid.UUID
	IsView   bool

	PartitionKeys  []*ColumnMetadata
	ClusteringKeys []*ColumnMetadata

	Columns map[string]*ColumnMetadata
}

// Column returns the column with the given name, or nil.
func (t *TableMetadata) Column(name string) *ColumnMetadata {
	return t.Columns[name]
}

// HasColumn reports whether the table contains the named column.
func (t *TableMetadata) HasColumn(name string) bool {
	_, ok := t.Columns[name]
	return ok
}

// IsKeyColumn reports whether name is a partition or clustering key column.
func (t *TableMetadata) IsKeyColumn(name string) bool {
	for _, c := range t.PartitionKeys {
		if c.Name == name {
			return true
		}
	}
	for _, c := range t.ClusteringKeys {
		if c.Name == name {
			return true
		}
	}
	return false
}
