package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Point is a 2D or 3D coordinate stored as a JSON array
type Point []float64

// BBox is a 4-tuple bounding box stored as a JSON array; its format is opaque
type BBox []float64

func (p Point) Value() (driver.Value, error) { return jsonValue(p) }

func (p *Point) Scan(value interface{}) error { return jsonScan(value, (*[]float64)(p)) }

func (Point) GormDataType() string { return "json" }

func (Point) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

func (b BBox) Value() (driver.Value, error) { return jsonValue(b) }

func (b *BBox) Scan(value interface{}) error { return jsonScan(value, (*[]float64)(b)) }

func (BBox) GormDataType() string { return "json" }

func (BBox) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

func jsonValue(v []float64) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value interface{}, dest *[]float64) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*dest = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	return json.Unmarshal(raw, dest)
}

func jsonColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
