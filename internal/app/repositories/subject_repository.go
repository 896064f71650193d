package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/dberrors"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

// ISubjectRepository defines the interface for subject database operations
type ISubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
	ListNotEnrolledBy(ctx context.Context, studentID int64) ([]*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

var subjectColumns = []string{"s.id", "s.name", "s.code", "s.faculty"}

// SubjectRepository handles subject persistence
type SubjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func mapSubjectWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "subjects_name_key"):
		return apperrors.ErrSubjectNameAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "subjects_code_key"):
		return apperrors.ErrSubjectCodeAlreadyExists
	}
	return err
}

// Create inserts a subject and returns its id
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) (int64, error) {
	sql, args, err := r.sb.Insert("subjects").
		Columns("name", "code", "faculty").
		Values(subject.Name, subject.Code, subject.Faculty).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create subject query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID); err != nil {
		if mapped := mapSubjectWriteError(err); mapped != err {
			return 0, mapped
		}
		logger.Error().Err(err).Msg("Error executing create subject query")
		return 0, fmt.Errorf("error creating subject: %w", err)
	}
	return subject.ID, nil
}

// GetByID retrieves a subject by id
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	sql, args, err := r.sb.Select(subjectColumns...).From("subjects s").Where(squirrel.Eq{"s.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	s := &models.Subject{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Name, &s.Code, &s.Faculty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		logger.Error().Err(err).Int64("subjectID", id).Msg("Error scanning subject row")
		return nil, fmt.Errorf("error getting subject by ID: %w", err)
	}
	return s, nil
}

// List returns every subject ordered by code
func (r *SubjectRepository) List(ctx context.Context) ([]*models.Subject, error) {
	return r.query(ctx, r.sb.Select(subjectColumns...).From("subjects s").OrderBy("s.code ASC"))
}

// ListNotEnrolledBy returns the subjects studentID has no enrollment in
func (r *SubjectRepository) ListNotEnrolledBy(ctx context.Context, studentID int64) ([]*models.Subject, error) {
	q := r.sb.Select(subjectColumns...).
		From("subjects s").
		Where("NOT EXISTS (SELECT 1 FROM enrollments e WHERE e.subject_id = s.id AND e.student_id = ?)", studentID).
		OrderBy("s.code ASC")
	return r.query(ctx, q)
}

func (r *SubjectRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Subject, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing subjects query")
		return nil, fmt.Errorf("error querying subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		s := &models.Subject{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Faculty); err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}
	return subjects, nil
}

func (r *SubjectRepository) exec(ctx context.Context, q squirrel.Sqlizer, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapSubjectWriteError(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Str("operation", what).Msg("Error executing subject query")
		return fmt.Errorf("error executing %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}

// Update writes name, code and faculty
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	q := r.sb.Update("subjects").
		SetMap(map[string]interface{}{
			"name":    subject.Name,
			"code":    subject.Code,
			"faculty": subject.Faculty,
		}).
		Where(squirrel.Eq{"id": subject.ID})
	return r.exec(ctx, q, "update subject")
}

// Delete removes a subject; enrollments and attendance cascade
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("subjects").Where(squirrel.Eq{"id": id}), "delete subject")
}

// Count returns the number of subjects
func (r *SubjectRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("subjects"))
}
