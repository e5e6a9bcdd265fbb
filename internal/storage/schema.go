package storage

import (
	"fmt"

	"github.com/Veraticus/catalog-imager/internal/common"
)

// Schema names the catalog table and the columns the imager reads and writes.
type Schema struct {
	Table          string `mapstructure:"table"`
	IDColumn       string `mapstructure:"id_column"`
	NameColumn     string `mapstructure:"name_column"`
	CategoryColumn string `mapstructure:"category_column"`
	ImageColumn    string `mapstructure:"image_column"`
}

// DefaultSchema returns the coffee shop products layout.
func DefaultSchema() Schema {
	return Schema{
		Table:          "products",
		IDColumn:       "product_id",
		NameColumn:     "product_name",
		CategoryColumn: "category",
		ImageColumn:    "image_url",
	}
}

// Validate checks every name is a plain SQL identifier.
func (s Schema) Validate() error {
	for _, field := range []struct {
		value string
		name  string
	}{
		{s.Table, "table"},
		{s.IDColumn, "id_column"},
		{s.NameColumn, "name_column"},
		{s.CategoryColumn, "category_column"},
		{s.ImageColumn, "image_column"},
	} {
		if err := validateIdentifier(field.value, field.name); err != nil {
			return fmt.Errorf("%w: %w", common.ErrInvalidQuery, err)
		}
	}
	return nil
}

func (s Schema) listQuery() string {
	return fmt.Sprintf(
		`SELECT %s AS id, COALESCE(%s, '') AS name, COALESCE(%s, '') AS category, COALESCE(%s, '') AS image_url
		FROM %s
		ORDER BY LOWER(%s), %s`,
		s.IDColumn, s.NameColumn, s.CategoryColumn, s.ImageColumn,
		s.Table,
		s.CategoryColumn, s.IDColumn)
}

func (s Schema) countQuery() string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.Table)
}

func (s Schema) updateQuery() string {
	return fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`, s.Table, s.ImageColumn, s.IDColumn)
}
