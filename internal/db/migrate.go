package db

import (
	"fmt"

	"github.com/accessboard/accessboard/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the GORM models the project store persists.
func AllModels() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.ProjectTask{},
	}
}

// AutoMigrate creates or updates the projects and project_tasks tables,
// including the unique slug index and the composite (project_id, task_id)
// key. It must run once at startup before the store is used.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
