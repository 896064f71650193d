package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/dberrors"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

// IAttendanceRepository defines the interface for attendance mark operations
type IAttendanceRepository interface {
	Mark(ctx context.Context, studentID, subjectID int64, date time.Time) (bool, error)
	Unmark(ctx context.Context, studentID, subjectID int64, date time.Time) (bool, error)
	MarkedStudentIDs(ctx context.Context, subjectID int64, date time.Time) (map[int64]bool, error)
	CountByDate(ctx context.Context, date time.Time) (int64, error)
}

// AttendanceRepository handles attendance marks
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Mark records a Present mark. Marking twice is a no-op; the result
// reports whether a row was created.
func (r *AttendanceRepository) Mark(ctx context.Context, studentID, subjectID int64, date time.Time) (bool, error) {
	sql, args, err := r.sb.Insert("attendance").
		Columns("student_id", "subject_id", "session_date", "status").
		Values(studentID, subjectID, date, string(models.AttendancePresent)).
		Suffix("ON CONFLICT (student_id, subject_id, session_date) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build mark attendance query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return false, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("studentID", studentID).Int64("subjectID", subjectID).Msg("Error marking attendance")
		return false, fmt.Errorf("error marking attendance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Unmark deletes the mark for the date if present
func (r *AttendanceRepository) Unmark(ctx context.Context, studentID, subjectID int64, date time.Time) (bool, error) {
	sql, args, err := r.sb.Delete("attendance").
		Where(squirrel.Eq{"student_id": studentID, "subject_id": subjectID, "session_date": date}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build unmark attendance query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("subjectID", subjectID).Msg("Error removing attendance")
		return false, fmt.Errorf("error removing attendance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkedStudentIDs returns the set of students marked for the subject on date
func (r *AttendanceRepository) MarkedStudentIDs(ctx context.Context, subjectID int64, date time.Time) (map[int64]bool, error) {
	sql, args, err := r.sb.Select("student_id").
		From("attendance").
		Where(squirrel.Eq{"subject_id": subjectID, "session_date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build marked students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error querying attendance")
		return nil, fmt.Errorf("error querying attendance: %w", err)
	}
	defer rows.Close()

	marked := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		marked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return marked, nil
}

// CountByDate returns the number of marks taken on date across subjects
func (r *AttendanceRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("attendance").Where(squirrel.Eq{"session_date": date}))
}
