// Package projects implements the project directory and the task→project
// association index behind the dashboard. A task belongs to at most one
// project; projects are identified externally by a unique slug derived from
// their name.
package projects

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/accessboard/accessboard/internal/models"
)

// ErrProjectNotFound is returned when an operation requires a project that
// does not exist, such as moving a task to an unknown slug.
var ErrProjectNotFound = errors.New("project not found")

// Store provides durable project and association operations over an injected
// database handle. Lookups on absent entities return (nil, nil); only
// operations that require the target to exist return ErrProjectNotFound.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStore wraps an open database connection. The caller owns migration
// (db.AutoMigrate) and should call Close on shutdown.
func NewStore(gdb *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: gdb, log: log}
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("projects: close: %w", err)
	}
	return sqlDB.Close()
}

// EnsureProject creates the project for name's slug if absent, otherwise
// touches its updated_at, and returns the post-update row. The unique slug
// index plus the single upsert make concurrent first-time creation safe:
// exactly one project ever exists per slug.
func (s *Store) EnsureProject(name string) (*models.Project, error) {
	slug := Slugify(name)
	project := models.Project{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": time.Now()}),
	}).Create(&project).Error
	if err != nil {
		return nil, fmt.Errorf("projects: ensure %q: %w", slug, err)
	}

	var out models.Project
	if err := s.db.Where("slug = ?", slug).First(&out).Error; err != nil {
		return nil, fmt.Errorf("projects: ensure %q: read back: %w", slug, err)
	}
	s.log.Debug("project ensured", zap.String("slug", out.Slug), zap.String("id", out.ID))
	return &out, nil
}

// AllProjects returns every project ordered by name ascending.
func (s *Store) AllProjects() ([]models.Project, error) {
	var list []models.Project
	if err := s.db.Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("projects: list: %w", err)
	}
	return list, nil
}

// ProjectBySlug returns the project with the exact slug, or (nil, nil) if
// none exists.
func (s *Store) ProjectBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("slug = ?", slug).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("projects: lookup slug %q: %w", slug, err)
	}
	return &project, nil
}

// AddTaskToProject records that a task belongs to a project. Repeating the
// same pair is a no-op. It does not move a task that is already mapped
// elsewhere; reassignment must go through MoveTaskToProjectBySlug.
func (s *Store) AddTaskToProject(projectID, taskID string) error {
	pt := models.ProjectTask{ProjectID: projectID, TaskID: taskID}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pt).Error
	if err != nil {
		return fmt.Errorf("projects: add task %s to %s: %w", taskID, projectID, err)
	}
	return nil
}

// MoveTaskToProjectBySlug reassigns a task to the project with the given
// slug, removing any prior associations for the task in the same
// transaction. It returns ErrProjectNotFound (leaving existing associations
// untouched) when no project has the slug. Concurrent moves of the same task
// race last-write-wins; the task still ends up in exactly one project.
func (s *Store) MoveTaskToProjectBySlug(taskID, slug string) (*models.Project, error) {
	project, err := s.ProjectBySlug(slug)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("projects: move task %s to %q: %w", taskID, slug, ErrProjectNotFound)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.ProjectTask{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.ProjectTask{ProjectID: project.ID, TaskID: taskID}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("projects: move task %s to %q: %w", taskID, slug, err)
	}
	s.log.Debug("task moved", zap.String("task", taskID), zap.String("slug", slug))
	return project, nil
}

// RemoveTask drops every association a task holds, typically after the task
// itself was deleted from the test service. Removing an unmapped task is a
// no-op.
func (s *Store) RemoveTask(taskID string) error {
	err := s.db.Where("task_id = ?", taskID).Delete(&models.ProjectTask{}).Error
	if err != nil {
		return fmt.Errorf("projects: remove task %s: %w", taskID, err)
	}
	return nil
}

// ProjectForTask returns the project a task currently belongs to, or
// (nil, nil) when the task is unassigned.
func (s *Store) ProjectForTask(taskID string) (*models.Project, error) {
	var pt models.ProjectTask
	err := s.db.Where("task_id = ?", taskID).First(&pt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("projects: lookup task %s: %w", taskID, err)
	}

	var project models.Project
	err = s.db.Where("id = ?", pt.ProjectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("projects: resolve project for task %s: %w", taskID, err)
	}
	return &project, nil
}

// TaskIDsByProject returns the task identifiers associated with a project.
func (s *Store) TaskIDsByProject(projectID string) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.ProjectTask{}).
		Where("project_id = ?", projectID).
		Pluck("task_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("projects: tasks for %s: %w", projectID, err)
	}
	return ids, nil
}

// ProjectTaskCounts returns per-project association counts in a single
// group-by pass, keyed by project ID.
func (s *Store) ProjectTaskCounts() (map[string]int, error) {
	type row struct {
		ProjectID string
		Count     int
	}
	var rows []row
	err := s.db.Model(&models.ProjectTask{}).
		Select("project_id, count(*) as count").
		Group("project_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("projects: task counts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ProjectID] = r.Count
	}
	return counts, nil
}

// AllMappedTaskIDs returns the set of task identifiers that have any
// association, across all projects. Callers compute the unassigned set as
// the complement against the external task list.
func (s *Store) AllMappedTaskIDs() (map[string]struct{}, error) {
	var ids []string
	err := s.db.Model(&models.ProjectTask{}).Pluck("task_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("projects: mapped task ids: %w", err)
	}

	mapped := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		mapped[id] = struct{}{}
	}
	return mapped, nil
}
