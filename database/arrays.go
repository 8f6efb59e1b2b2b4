package database

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var typeMap = pgtype.NewMap()

// UploadIDs is bound as a single PostgreSQL array parameter, e.g.
// "upload_id = ANY(?)". Plain slices would be expanded into a value list by
// gorm, which does not work with ANY and yields "IN (NULL)" when empty.
type UploadIDs []int64

// Value encodes the ids in array text format ("{1,5}").
func (ids UploadIDs) Value() (driver.Value, error) {
	buf, err := typeMap.Encode(pgtype.Int8ArrayOID, pgtype.TextFormatCode, []int64(ids), nil)
	if err != nil {
		return nil, fmt.Errorf("encode upload ids: %w", err)
	}
	if buf == nil {
		return "{}", nil
	}
	return string(buf), nil
}

// GormValue binds the ids as one text parameter cast to bigint[], so the
// driver never has to guess the array encoding.
func (ids UploadIDs) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	v, err := ids.Value()
	if err != nil {
		_ = db.AddError(err)
		return clause.Expr{SQL: "NULL::bigint[]"}
	}
	return clause.Expr{SQL: "?::bigint[]", Vars: []any{v}}
}

// Int64Array scans a PostgreSQL integer array (e.g. an array_agg result).
// Elements must be NOT NULL, use BoolArray's pointer form for nullable columns.
type Int64Array []int64

func (a *Int64Array) Scan(src any) error {
	return scanArray(src, (*[]int64)(a))
}

// StringArray scans a PostgreSQL text array.
type StringArray []string

func (a *StringArray) Scan(src any) error {
	return scanArray(src, (*[]string)(a))
}

// BoolArray scans a PostgreSQL boolean array. NULL elements stay nil and
// encode as JSON null.
type BoolArray []*bool

func (a *BoolArray) Scan(src any) error {
	return scanArray(src, (*[]*bool)(a))
}

func scanArray[T any](src any, dst *[]T) error {
	if src == nil {
		*dst = []T{}
		return nil
	}
	if err := typeMap.SQLScanner(dst).Scan(src); err != nil {
		return fmt.Errorf("scan array: %w", err)
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}
