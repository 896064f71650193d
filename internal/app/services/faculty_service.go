package services

import (
	"context"
	"fmt"

	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

// FacultyService defines the interface for faculty suggestions
type FacultyService interface {
	List(ctx context.Context) ([]*models.Faculty, error)
	Remember(ctx context.Context, name string)
}

// facultyServiceImpl implements the FacultyService interface
type facultyServiceImpl struct {
	facultyRepo repositories.IFacultyRepository
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(facultyRepo repositories.IFacultyRepository) FacultyService {
	return &facultyServiceImpl{
		facultyRepo: facultyRepo,
	}
}

// List retrieves all faculties
func (s *facultyServiceImpl) List(ctx context.Context) ([]*models.Faculty, error) {
	faculties, err := s.facultyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving faculties: %w", err)
	}
	return faculties, nil
}

// Remember stores a faculty typed into a form. Failures only lose a suggestion.
func (s *facultyServiceImpl) Remember(ctx context.Context, name string) {
	if err := s.facultyRepo.Ensure(ctx, name); err != nil {
		logger.Warn().Err(err).Str("faculty", name).Msg("Failed to remember faculty")
	}
}
