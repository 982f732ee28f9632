package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/validation"
	"gorm.io/gorm"
)

// ImportStats counts the rows read and the rows that were new.
type ImportStats struct {
	Processed int
	Created   int
}

// TagRow is one line of tags.csv.
type TagRow struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor"`
	Slug  string `json:"slug" validate:"required,max=100,slug"`
}

// IngredientRow is one line of ingredients.csv.
type IngredientRow struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=20"`
}

// ImportIngredients reads "name,measurement_unit" rows and creates the
// ingredients that do not exist yet. The import is all or nothing.
func ImportIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return readCSV(r, 2, func(line int, record []string) error {
			row := IngredientRow{Name: record[0], MeasurementUnit: record[1]}
			if err := validation.Struct(row); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			stats.Processed++

			var existing models.Ingredient
			result := tx.Where("name = ? AND measurement_unit = ?", row.Name, row.MeasurementUnit).Limit(1).Find(&existing)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				return nil
			}
			if err := tx.Create(&models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit}).Error; err != nil {
				return err
			}
			stats.Created++
			return nil
		})
	})
	return stats, err
}

// ImportTags reads "name,color,slug" rows and creates the tags whose slug
// does not exist yet.
func ImportTags(ctx context.Context, db *gorm.DB, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return readCSV(r, 3, func(line int, record []string) error {
			row := TagRow{Name: record[0], Color: record[1], Slug: record[2]}
			if err := validation.Struct(row); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			stats.Processed++

			var existing models.Tag
			result := tx.Where("slug = ?", row.Slug).Limit(1).Find(&existing)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				return nil
			}
			if err := tx.Create(&models.Tag{Name: row.Name, Color: row.Color, Slug: row.Slug}).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("line %d: tag %q clashes with an existing name or color: %w", line, row.Name, err)
				}
				return err
			}
			stats.Created++
			return nil
		})
	})
	return stats, err
}

// readCSV calls fn for every non-empty record with at least columns fields,
// trimmed.
func readCSV(r io.Reader, columns int, fn func(line int, record []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < columns {
			return fmt.Errorf("line %d: expected %d columns, got %d", line, columns, len(record))
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}
