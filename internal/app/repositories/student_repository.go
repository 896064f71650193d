package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/db"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/dberrors"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

// IStudentRepository defines the interface for student database operations
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEnrollmentNumber(ctx context.Context, number string) (*models.Student, error)
	List(ctx context.Context) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	AppendFaces(ctx context.Context, id int64, paths []string) error
	ImportBatch(ctx context.Context, students []*models.Student) (imported int, err error)
}

var studentColumns = []string{"id", "name", "enrollment_number", "faculty", "faces"}

// StudentRepository handles student persistence
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	if err := row.Scan(&s.ID, &s.Name, &s.EnrollmentNumber, &s.Faculty, &s.Faces); err != nil {
		return nil, err
	}
	if s.Faces == nil {
		s.Faces = []string{}
	}
	return s, nil
}

// encodeFaces renders face paths as a JSON array for the jsonb column
func encodeFaces(faces []string) (string, error) {
	if faces == nil {
		faces = []string{}
	}
	b, err := json.Marshal(faces)
	if err != nil {
		return "", fmt.Errorf("failed to encode faces: %w", err)
	}
	return string(b), nil
}

// Create inserts a student and returns its id
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	faces, err := encodeFaces(student.Faces)
	if err != nil {
		return 0, err
	}

	sql, args, err := r.sb.Insert("students").
		Columns("name", "enrollment_number", "faculty", "faces").
		Values(student.Name, student.EnrollmentNumber, student.Faculty, squirrel.Expr("?::jsonb", faces)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_enrollment_number_key") {
			return 0, apperrors.ErrEnrollmentNumberAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create student query")
		return 0, fmt.Errorf("error creating student: %w", err)
	}
	return student.ID, nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return s, nil
}

// GetByID retrieves a student by id
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEnrollmentNumber retrieves a student by enrollment number
func (r *StudentRepository) GetByEnrollmentNumber(ctx context.Context, number string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"enrollment_number": number})
}

// List returns every student ordered by name
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}
	return collectStudents(ctx, r.db, sql, args)
}

func collectStudents(ctx context.Context, pool *pgxpool.Pool, sql string, args []interface{}) ([]*models.Student, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing student query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

func (r *StudentRepository) exec(ctx context.Context, q squirrel.Sqlizer, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_enrollment_number_key") {
			return apperrors.ErrEnrollmentNumberAlreadyExists
		}
		logger.Error().Err(err).Str("operation", what).Msg("Error executing student query")
		return fmt.Errorf("error executing %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Update writes name, enrollment number and faculty
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	q := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"name":              student.Name,
			"enrollment_number": student.EnrollmentNumber,
			"faculty":           student.Faculty,
		}).
		Where(squirrel.Eq{"id": student.ID})
	return r.exec(ctx, q, "update student")
}

// Delete removes a student; enrollments and attendance cascade
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("students").Where(squirrel.Eq{"id": id}), "delete student")
}

// Count returns the number of students
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("students"))
}

// AppendFaces adds stored image paths to the faces array
func (r *StudentRepository) AppendFaces(ctx context.Context, id int64, paths []string) error {
	faces, err := encodeFaces(paths)
	if err != nil {
		return err
	}
	q := r.sb.Update("students").
		Set("faces", squirrel.Expr("faces || ?::jsonb", faces)).
		Where(squirrel.Eq{"id": id})
	return r.exec(ctx, q, "append faces")
}

// ImportBatch inserts students in one transaction. Rows whose enrollment
// number already exists are skipped; the number of inserted rows is returned.
func (r *StudentRepository) ImportBatch(ctx context.Context, students []*models.Student) (int, error) {
	imported := 0
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, s := range students {
			sql, args, err := r.sb.Insert("students").
				Columns("name", "enrollment_number", "faculty").
				Values(s.Name, s.EnrollmentNumber, s.Faculty).
				Suffix("ON CONFLICT (enrollment_number) DO NOTHING").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build import student query: %w", err)
			}

			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("error importing student %s: %w", s.EnrollmentNumber, err)
			}
			imported += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int("rows", len(students)).Msg("Student import rolled back")
		return 0, err
	}
	return imported, nil
}
