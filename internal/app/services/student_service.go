package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/filestorage"
	"github.com/yigit/attendance-admin/internal/pkg/spreadsheet"
	"github.com/yigit/attendance-admin/internal/pkg/validation"
)

// StudentService defines student record operations
type StudentService interface {
	List(ctx context.Context) ([]*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, form dto.StudentForm) (*models.Student, error)
	Update(ctx context.Context, id int64, form dto.StudentForm) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	AddFaces(ctx context.Context, id int64, files []*multipart.FileHeader) (int, error)
	Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

type studentServiceImpl struct {
	studentRepo repositories.IStudentRepository
	faculties   FacultyService
	storage     filestorage.FileStorage
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	faculties FacultyService,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		faculties:   faculties,
		storage:     storage,
		logger:      logger,
	}
}

func studentFromForm(form dto.StudentForm) (*models.Student, error) {
	s := &models.Student{
		Name:             strings.TrimSpace(form.Name),
		EnrollmentNumber: strings.TrimSpace(form.EnrollmentNumber),
		Faculty:          strings.TrimSpace(form.Faculty),
	}
	if !validation.IsValidEnrollmentNumber(s.EnrollmentNumber) {
		return nil, apperrors.NewValidationError("Enrollment number may contain only letters, digits and dashes.")
	}
	return s, nil
}

// List returns every student
func (s *studentServiceImpl) List(ctx context.Context) ([]*models.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// Get returns a student by id
func (s *studentServiceImpl) Get(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// Create adds a student with a unique enrollment number
func (s *studentServiceImpl) Create(ctx context.Context, form dto.StudentForm) (*models.Student, error) {
	student, err := studentFromForm(form)
	if err != nil {
		return nil, err
	}
	student.Faces = []string{}

	if _, err := s.studentRepo.Create(ctx, student); err != nil {
		if apperrors.Is(err, apperrors.ErrEnrollmentNumberAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	s.faculties.Remember(ctx, student.Faculty)
	s.logger.Info().Int64("studentID", student.ID).Msg("Student created")
	return student, nil
}

// Update edits a student
func (s *studentServiceImpl) Update(ctx context.Context, id int64, form dto.StudentForm) (*models.Student, error) {
	student, err := studentFromForm(form)
	if err != nil {
		return nil, err
	}
	student.ID = id

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if apperrors.Is(err, apperrors.ErrEnrollmentNumberAlreadyExists, apperrors.ErrStudentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating student: %w", err)
	}

	s.faculties.Remember(ctx, student.Faculty)
	return student, nil
}

// Delete removes a student and the face images stored for them
func (s *studentServiceImpl) Delete(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}

	for _, face := range student.Faces {
		if err := s.storage.DeleteFile(face); err != nil {
			s.logger.Warn().Err(err).Str("path", face).Msg("Failed to delete face image")
		}
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// AddFaces stores uploaded images and appends them to the student's faces.
// Nothing is recorded if any upload fails.
func (s *studentServiceImpl) AddFaces(ctx context.Context, id int64, files []*multipart.FileHeader) (int, error) {
	if len(files) == 0 {
		return 0, apperrors.NewValidationError("Select at least one image.")
	}
	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return 0, err
	}

	subPath := "faces/" + strconv.FormatInt(id, 10)
	saved := make([]string, 0, len(files))
	cleanup := func() {
		for _, p := range saved {
			_ = s.storage.DeleteFile(p)
		}
	}

	for _, fh := range files {
		p, err := s.storage.SaveFileWithPath(fh, subPath)
		if err != nil {
			cleanup()
			if apperrors.Is(err, filestorage.ErrUnsupportedFileType) {
				return 0, apperrors.NewValidationError("Only JPEG and PNG images can be uploaded.")
			}
			return 0, fmt.Errorf("error saving face image: %w", err)
		}
		saved = append(saved, p)
	}

	if err := s.studentRepo.AppendFaces(ctx, id, saved); err != nil {
		cleanup()
		return 0, fmt.Errorf("error recording face images: %w", err)
	}

	s.logger.Info().Int64("studentID", id).Int("count", len(saved)).Msg("Face images added")
	return len(saved), nil
}

// maxQuotedCell bounds cell text echoed in import errors, which travel in the session cookie
const maxQuotedCell = 30

func truncateCell(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Import reads students from an xlsx roster. Invalid rows are reported,
// rows whose enrollment number already exists are skipped.
func (s *studentServiceImpl) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	rows, _, err := spreadsheet.ReadStudents(r)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "The uploaded file is not a readable Excel workbook.")
	}

	result := &dto.ImportResult{}
	seen := make(map[string]bool, len(rows))
	batch := make([]*models.Student, 0, len(rows))

	for _, row := range rows {
		switch {
		case row.Name == "" || row.EnrollmentNumber == "" || row.Faculty == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: name, enrollment number and faculty are required.", row.Line))
			continue
		case !validation.IsValidEnrollmentNumber(row.EnrollmentNumber):
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid enrollment number %q.", row.Line, truncateCell(row.EnrollmentNumber, maxQuotedCell)))
			continue
		case utf8.RuneCountInString(row.Name) > validation.MaxNameLength:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: name is longer than %d characters.", row.Line, validation.MaxNameLength))
			continue
		case utf8.RuneCountInString(row.Faculty) > validation.MaxNameLength:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: faculty is longer than %d characters.", row.Line, validation.MaxNameLength))
			continue
		case seen[row.EnrollmentNumber]:
			result.Skipped++
			continue
		}
		seen[row.EnrollmentNumber] = true
		batch = append(batch, &models.Student{
			Name:             row.Name,
			EnrollmentNumber: row.EnrollmentNumber,
			Faculty:          row.Faculty,
		})
	}

	if len(batch) > 0 {
		imported, err := s.studentRepo.ImportBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("error importing students: %w", err)
		}
		result.Imported = imported
		result.Skipped += len(batch) - imported

		done := map[string]bool{}
		for _, st := range batch {
			if !done[st.Faculty] {
				done[st.Faculty] = true
				s.faculties.Remember(ctx, st.Faculty)
			}
		}
	}

	s.logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Int("errors", len(result.Errors)).
		Msg("Student roster imported")
	return result, nil
}
