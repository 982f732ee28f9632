package main

import (
	"fmt"

	"github.com/VtlBz/foodgram-project/internal/database"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Prints the DDL GORM generates for the foodgram models, tables then indexes.
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: database.NewLogger("silent"),
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatal(err)
	}

	for _, kind := range []string{"table", "index"} {
		var rows []struct {
			Name string
			SQL  *string
		}
		if err := db.Raw("SELECT name, sql FROM sqlite_master WHERE type = ? ORDER BY name", kind).Scan(&rows).Error; err != nil {
			logrus.Fatal(err)
		}
		for _, row := range rows {
			if row.SQL == nil {
				continue
			}
			fmt.Printf("\n=== %s: %s ===\n%s\n", kind, row.Name, *row.SQL)
		}
	}
}
