package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/dberrors"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

// IEnrollmentRepository defines the interface for enrollment database operations
type IEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	ListStudentsBySubject(ctx context.Context, subjectID int64) ([]*models.Student, error)
	IsEnrolled(ctx context.Context, studentID, subjectID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus, completed *time.Time) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentRepository handles enrollment persistence
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// activeEnrollment excludes canceled enrollments from attendance
var activeEnrollment = squirrel.NotEq{"e.status": string(models.EnrollmentCanceled)}

// Create inserts an enrollment and returns its id
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (int64, error) {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "subject_id", "status", "date_enrolled").
		Values(enrollment.StudentID, enrollment.SubjectID, string(enrollment.Status), enrollment.DateEnrolled).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&enrollment.ID); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "enrollments_student_subject_key"):
			return 0, apperrors.ErrAlreadyEnrolled
		case dberrors.IsForeignKeyError(err):
			return 0, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("studentID", enrollment.StudentID).Int64("subjectID", enrollment.SubjectID).
			Msg("Error executing create enrollment query")
		return 0, fmt.Errorf("error creating enrollment: %w", err)
	}
	return enrollment.ID, nil
}

// GetByID retrieves an enrollment by id
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select("id", "student_id", "subject_id", "status", "date_enrolled", "date_completed").
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e := &models.Enrollment{}
	var status string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.StudentID, &e.SubjectID, &status, &e.DateEnrolled, &e.DateCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error getting enrollment: %w", err)
	}
	e.Status = models.EnrollmentStatus(status)
	return e, nil
}

// ListByStudent returns a student's enrollments with their subjects, newest first
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	sql, args, err := r.sb.Select("e.id", "e.student_id", "e.subject_id", "e.status", "e.date_enrolled", "e.date_completed",
		"s.id", "s.name", "s.code", "s.faculty").
		From("enrollments e").
		Join("subjects s ON s.id = e.subject_id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("e.date_enrolled DESC", "s.code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list enrollments query")
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []*models.Enrollment{}
	for rows.Next() {
		e := &models.Enrollment{Subject: &models.Subject{}}
		var status string
		if err := rows.Scan(&e.ID, &e.StudentID, &e.SubjectID, &status, &e.DateEnrolled, &e.DateCompleted,
			&e.Subject.ID, &e.Subject.Name, &e.Subject.Code, &e.Subject.Faculty); err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		e.Status = models.EnrollmentStatus(status)
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}
	return enrollments, nil
}

// ListStudentsBySubject returns students with a non-canceled enrollment in subjectID, ordered by name
func (r *EnrollmentRepository) ListStudentsBySubject(ctx context.Context, subjectID int64) ([]*models.Student, error) {
	sql, args, err := r.sb.Select("st.id", "st.name", "st.enrollment_number", "st.faculty", "st.faces").
		From("enrollments e").
		Join("students st ON st.id = e.student_id").
		Where(squirrel.Eq{"e.subject_id": subjectID}).
		Where(activeEnrollment).
		OrderBy("st.name ASC", "st.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrolled students query: %w", err)
	}
	return collectStudents(ctx, r.db, sql, args)
}

// IsEnrolled reports whether the student has a non-canceled enrollment in the subject
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, subjectID int64) (bool, error) {
	n, err := count(ctx, r.db, r.sb.Select("COUNT(*)").
		From("enrollments e").
		Where(squirrel.Eq{"e.student_id": studentID, "e.subject_id": subjectID}).
		Where(activeEnrollment))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatus sets the status and completion date of an enrollment
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus, completed *time.Time) error {
	sql, args, err := r.sb.Update("enrollments").
		Set("status", string(status)).
		Set("date_completed", completed).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update enrollment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error executing update enrollment query")
		return fmt.Errorf("error updating enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}
	return nil
}

// Delete removes an enrollment
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("enrollments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete enrollment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error executing delete enrollment query")
		return fmt.Errorf("error deleting enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}
	return nil
}
