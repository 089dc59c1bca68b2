package migration

import (
	"log"

	"gorm.io/gorm"

	"scandiary/entities"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.ScanRecord{}); err != nil {
		log.Printf("Error migrating scan record table: %v", err)
		return err
	}
	return nil
}
