package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/spreadsheet"
)

// AttendanceService defines attendance sheet operations
type AttendanceService interface {
	// ParseDate parses a YYYY-MM-DD session date; empty means today
	ParseDate(value string) (time.Time, error)
	Sheet(ctx context.Context, subjectID int64, date time.Time) (*dto.AttendanceSheet, error)
	// Toggle marks or unmarks a student and reports whether anything changed
	Toggle(ctx context.Context, subjectID, studentID int64, date time.Time, present bool) (bool, error)
	Export(ctx context.Context, subjectID int64, date time.Time, format string) (*dto.Export, error)
}

type attendanceServiceImpl struct {
	attendanceRepo repositories.IAttendanceRepository
	enrollmentRepo repositories.IEnrollmentRepository
	subjectRepo    repositories.ISubjectRepository
	clock          Clock
	logger         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	attendanceRepo repositories.IAttendanceRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	subjectRepo repositories.ISubjectRepository,
	clock Clock,
	logger zerolog.Logger,
) AttendanceService {
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		enrollmentRepo: enrollmentRepo,
		subjectRepo:    subjectRepo,
		clock:          clock,
		logger:         logger,
	}
}

// ErrInvalidDate is returned for session dates that are not YYYY-MM-DD
var ErrInvalidDate = apperrors.NewValidationError("Date must be formatted as YYYY-MM-DD.")

// ParseDate implements AttendanceService
func (s *attendanceServiceImpl) ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.clock.today(), nil
	}
	d, err := time.ParseInLocation(models.DateLayout, value, s.clock.today().Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Sheet lists enrolled students with their mark for date
func (s *attendanceServiceImpl) Sheet(ctx context.Context, subjectID int64, date time.Time) (*dto.AttendanceSheet, error) {
	subject, err := s.subjectRepo.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	students, err := s.enrollmentRepo.ListStudentsBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrolled students: %w", err)
	}

	marked, err := s.attendanceRepo.MarkedStudentIDs(ctx, subjectID, date)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}

	sheet := &dto.AttendanceSheet{Subject: subject, Date: date, Rows: make([]dto.AttendanceRow, 0, len(students))}
	for _, st := range students {
		sheet.Rows = append(sheet.Rows, dto.AttendanceRow{Student: st, Checked: marked[st.ID]})
	}
	return sheet, nil
}

// Toggle implements AttendanceService. Both directions are idempotent.
func (s *attendanceServiceImpl) Toggle(ctx context.Context, subjectID, studentID int64, date time.Time, present bool) (bool, error) {
	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		return false, err
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, studentID, subjectID)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	if !enrolled {
		return false, apperrors.ErrNotEnrolled
	}

	var changed bool
	if present {
		changed, err = s.attendanceRepo.Mark(ctx, studentID, subjectID, date)
	} else {
		changed, err = s.attendanceRepo.Unmark(ctx, studentID, subjectID, date)
	}
	if err != nil {
		return false, fmt.Errorf("error updating attendance: %w", err)
	}

	s.logger.Info().Int64("subjectID", subjectID).Int64("studentID", studentID).
		Str("date", date.Format(models.DateLayout)).Bool("present", present).Bool("changed", changed).
		Msg("Attendance updated")
	return changed, nil
}

// Export renders the sheet of date as an xlsx or csv download
func (s *attendanceServiceImpl) Export(ctx context.Context, subjectID int64, date time.Time, format string) (*dto.Export, error) {
	if format == "" {
		format = spreadsheet.FormatXLSX
	}
	if format != spreadsheet.FormatXLSX && format != spreadsheet.FormatCSV {
		return nil, apperrors.NewValidationError("Export format must be xlsx or csv.")
	}

	sheet, err := s.Sheet(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}

	day := date.Format(models.DateLayout)
	table := spreadsheet.Table{
		Title:  sheet.Subject.Code + " " + day,
		Header: []string{"Name", "Enrollment number", "Faculty", "Date", "Status"},
	}
	for _, row := range sheet.Rows {
		status := string(models.AttendanceAbsent)
		if row.Checked {
			status = string(models.AttendancePresent)
		}
		table.Rows = append(table.Rows, []string{row.Student.Name, row.Student.EnrollmentNumber, row.Student.Faculty, day, status})
	}

	buf := &bytes.Buffer{}
	if err := spreadsheet.Write(buf, format, table); err != nil {
		return nil, fmt.Errorf("error writing attendance export: %w", err)
	}

	return &dto.Export{
		Filename:    fmt.Sprintf("attendance-%s-%s.%s", strings.ToLower(sheet.Subject.Code), day, format),
		ContentType: spreadsheet.ContentType(format),
		Data:        buf.Bytes(),
	}, nil
}
