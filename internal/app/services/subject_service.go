package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/validation"
)

// SubjectService defines the subject catalogue operations
type SubjectService interface {
	List(ctx context.Context) ([]*models.Subject, error)
	Get(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, form dto.SubjectForm) (*models.Subject, error)
	Update(ctx context.Context, id int64, form dto.SubjectForm) (*models.Subject, error)
	Delete(ctx context.Context, id int64) error
}

type subjectServiceImpl struct {
	subjectRepo repositories.ISubjectRepository
	faculties   FacultyService
	logger      zerolog.Logger
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(subjectRepo repositories.ISubjectRepository, faculties FacultyService, logger zerolog.Logger) SubjectService {
	return &subjectServiceImpl{subjectRepo: subjectRepo, faculties: faculties, logger: logger}
}

// subjectFromForm normalizes and validates subject input
func subjectFromForm(form dto.SubjectForm) (*models.Subject, error) {
	s := &models.Subject{
		Name:    strings.TrimSpace(form.Name),
		Code:    validation.NormalizeSubjectCode(form.Code),
		Faculty: strings.TrimSpace(form.Faculty),
	}
	if !validation.IsValidSubjectCode(s.Code) {
		return nil, apperrors.NewValidationError("Course code must be upper-case letters and digits, optionally separated by dashes.")
	}
	return s, nil
}

// List returns every subject
func (s *subjectServiceImpl) List(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	return subjects, nil
}

// Get returns a subject by id
func (s *subjectServiceImpl) Get(ctx context.Context, id int64) (*models.Subject, error) {
	return s.subjectRepo.GetByID(ctx, id)
}

// Create adds a subject with a unique name and code
func (s *subjectServiceImpl) Create(ctx context.Context, form dto.SubjectForm) (*models.Subject, error) {
	subject, err := subjectFromForm(form)
	if err != nil {
		return nil, err
	}

	if _, err := s.subjectRepo.Create(ctx, subject); err != nil {
		if apperrors.Is(err, apperrors.ErrSubjectNameAlreadyExists, apperrors.ErrSubjectCodeAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating subject: %w", err)
	}

	s.faculties.Remember(ctx, subject.Faculty)
	s.logger.Info().Int64("subjectID", subject.ID).Str("code", subject.Code).Msg("Subject created")
	return subject, nil
}

// Update edits a subject
func (s *subjectServiceImpl) Update(ctx context.Context, id int64, form dto.SubjectForm) (*models.Subject, error) {
	subject, err := subjectFromForm(form)
	if err != nil {
		return nil, err
	}
	subject.ID = id

	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		if apperrors.Is(err, apperrors.ErrSubjectNameAlreadyExists, apperrors.ErrSubjectCodeAlreadyExists, apperrors.ErrSubjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating subject: %w", err)
	}

	s.faculties.Remember(ctx, subject.Faculty)
	return subject, nil
}

// Delete removes a subject with its enrollments and attendance
func (s *subjectServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.subjectRepo.Delete(ctx, id); err != nil {
		if apperrors.Is(err, apperrors.ErrSubjectNotFound) {
			return err
		}
		return fmt.Errorf("error deleting subject: %w", err)
	}
	s.logger.Info().Int64("subjectID", id).Msg("Subject deleted")
	return nil
}
