package persistence

import (
	"context"
	"errors"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) repository.IProject {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating project")
		return err
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByUser returns the user's projects without their payloads, newest first.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int) ([]model.Project, error) {
	projects := []model.Project{}
	err := r.db.WithContext(ctx).
		Select("id", "project_name", "user_id", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&model.Project{}, id).Error
}
