package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inferred column data types. The physical column is always materialized as
// wide text; the inferred type is recorded in the registry for documentation
// and future use only.
const (
	TypeInt      = "int"
	TypeDecimal  = "decimal"
	TypeDatetime = "datetime"
	TypeBit      = "bit"
	TypeText     = "nvarchar"
)

const (
	// MinColumnWidth is the floor for widths inferred from sampled values.
	MinColumnWidth = 50
	// DefaultColumnWidth is used when a column has no samples at all.
	DefaultColumnWidth = 255
)

// ColumnDefinition describes one column of a generated table.
type ColumnDefinition struct {
	ColumnName   string `yaml:"column_name" json:"column_name"`
	DataType     string `yaml:"data_type" json:"data_type"`
	MaxLength    int    `yaml:"max_length" json:"max_length"`
	IsNullable   bool   `yaml:"is_nullable" json:"is_nullable"`
	DefaultValue string `yaml:"default_value,omitempty" json:"default_value,omitempty"`
}

// TableSchema is the registry record for one generated table.
type TableSchema struct {
	ID             int64              `yaml:"id" json:"id"`
	TableName      string             `yaml:"table_name" json:"table_name"`
	LetterTypeID   string             `yaml:"letter_type_id" json:"letter_type_id"`
	SourceUploadID string             `yaml:"source_upload_id,omitempty" json:"source_upload_id,omitempty"`
	Columns        []ColumnDefinition `yaml:"columns" json:"columns"`
	TotalRows      int64              `yaml:"total_rows" json:"total_rows"`
	IsActive       bool               `yaml:"is_active" json:"is_active"`
	CreatedAt      time.Time          `yaml:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `yaml:"updated_at" json:"updated_at"`
}

// MarshalColumns serializes column definitions for the registry blob column.
func MarshalColumns(cols []ColumnDefinition) (string, error) {
	data, err := json.Marshal(cols)
	if err != nil {
		return "", fmt.Errorf("marshaling column definitions: %w", err)
	}
	return string(data), nil
}

// UnmarshalColumns parses a registry blob back into column definitions.
func UnmarshalColumns(blob string) ([]ColumnDefinition, error) {
	if blob == "" {
		return nil, nil
	}
	var cols []ColumnDefinition
	if err := json.Unmarshal([]byte(blob), &cols); err != nil {
		return nil, fmt.Errorf("parsing column definitions: %w", err)
	}
	return cols, nil
}
