package models

import "time"

// Project is a user-defined grouping of accessibility-test tasks. Names may
// collide; the derived slug may not, and is the stable identifier used in
// links and lookups.
type Project struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Slug      string `gorm:"size:128;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectTask maps an external task to a project. The composite primary key
// makes "add if absent" idempotent; single ownership of a task is guaranteed
// by the move operation, not by the schema.
type ProjectTask struct {
	ProjectID string `gorm:"primaryKey;size:36"`
	TaskID    string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
