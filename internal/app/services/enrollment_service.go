package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// EnrollmentService defines enrollment operations. Mutations return the
// student the enrollment belongs to so callers can redirect to their page.
type EnrollmentService interface {
	Search(ctx context.Context, enrollmentNumber string) (*dto.StudentEnrollments, error)
	AvailableSubjects(ctx context.Context, studentID int64) (*models.Student, []*models.Subject, error)
	Enroll(ctx context.Context, studentID, subjectID int64) (*models.Student, error)
	Delete(ctx context.Context, id int64) (*models.Student, error)
	ChangeStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Student, error)
}

type enrollmentServiceImpl struct {
	enrollmentRepo repositories.IEnrollmentRepository
	studentRepo    repositories.IStudentRepository
	subjectRepo    repositories.ISubjectRepository
	clock          Clock
	logger         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	enrollmentRepo repositories.IEnrollmentRepository,
	studentRepo repositories.IStudentRepository,
	subjectRepo repositories.ISubjectRepository,
	clock Clock,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		subjectRepo:    subjectRepo,
		clock:          clock,
		logger:         logger,
	}
}

// ErrStudentIDRequired is returned for an empty enrollment search
var ErrStudentIDRequired = apperrors.NewValidationError("Student ID is required.")

// Search finds a student by enrollment number with their enrollments
func (s *enrollmentServiceImpl) Search(ctx context.Context, enrollmentNumber string) (*dto.StudentEnrollments, error) {
	if enrollmentNumber == "" {
		return nil, ErrStudentIDRequired
	}

	student, err := s.studentRepo.GetByEnrollmentNumber(ctx, enrollmentNumber)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	return &dto.StudentEnrollments{Student: student, Enrollments: enrollments}, nil
}

// AvailableSubjects returns the subjects the student can still be enrolled in
func (s *enrollmentServiceImpl) AvailableSubjects(ctx context.Context, studentID int64) (*models.Student, []*models.Subject, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	subjects, err := s.subjectRepo.ListNotEnrolledBy(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing available subjects: %w", err)
	}
	return student, subjects, nil
}

// Enroll creates an Enrolled enrollment dated today
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, studentID, subjectID int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID:    studentID,
		SubjectID:    subjectID,
		Status:       models.EnrollmentEnrolled,
		DateEnrolled: s.clock.today(),
	}
	if _, err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyEnrolled) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	s.logger.Info().Int64("studentID", studentID).Int64("subjectID", subjectID).Msg("Student enrolled")
	return student, nil
}

// Delete removes an enrollment
func (s *enrollmentServiceImpl) Delete(ctx context.Context, id int64) (*models.Student, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, enrollment.StudentID)
	if err != nil {
		return nil, err
	}

	if err := s.enrollmentRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("error deleting enrollment: %w", err)
	}
	s.logger.Info().Int64("enrollmentID", id).Msg("Enrollment deleted")
	return student, nil
}

// ChangeStatus moves an enrollment along the allowed transitions.
// Completing sets the completion date to today; reopening clears it.
func (s *enrollmentServiceImpl) ChangeStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Student, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, enrollment.StudentID)
	if err != nil {
		return nil, err
	}

	// The student is returned with transition errors so the caller can go back to its enrollments.
	if !enrollment.Status.CanTransitionTo(status) {
		return student, apperrors.NewCustomError(apperrors.ErrInvalidStatusTransition,
			fmt.Sprintf("An enrollment cannot change from %s to %s.", enrollment.Status, status))
	}

	var completed *time.Time
	if status == models.EnrollmentCompleted {
		today := s.clock.today()
		completed = &today
	}

	if err := s.enrollmentRepo.UpdateStatus(ctx, id, status, completed); err != nil {
		return student, fmt.Errorf("error updating enrollment status: %w", err)
	}

	s.logger.Info().Int64("enrollmentID", id).Str("status", string(status)).Msg("Enrollment status changed")
	return student, nil
}
