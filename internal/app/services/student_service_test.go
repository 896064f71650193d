package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

func newStudentService(store *memStore, storage *memStorage) StudentService {
	return NewStudentService(memStudents{store}, NewFacultyService(memFaculties{store}), storage, testLogger)
}

func TestStudentServiceCreateAndDuplicate(t *testing.T) {
	store := newMemStore()
	svc := newStudentService(store, &memStorage{})
	ctx := context.Background()

	s, err := svc.Create(ctx, dto.StudentForm{Name: " Ada ", EnrollmentNumber: "2024-001", Faculty: "Engineering"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Name != "Ada" || len(store.faculties) != 1 {
		t.Errorf("student %+v, faculties %v", s, store.faculties)
	}

	_, err = svc.Create(ctx, dto.StudentForm{Name: "Bob", EnrollmentNumber: "2024-001", Faculty: "Engineering"})
	if !errors.Is(err, apperrors.ErrEnrollmentNumberAlreadyExists) {
		t.Fatalf("duplicate number: %v", err)
	}

	_, err = svc.Create(ctx, dto.StudentForm{Name: "Eve", EnrollmentNumber: "bad number", Faculty: "Science"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("invalid number: %v", err)
	}
}

func fileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, n := range names {
		part, err := w.CreateFormFile("faces", n)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("img"))
	}
	w.Close()

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	return form.File["faces"]
}

func TestStudentServiceAddFaces(t *testing.T) {
	store := newMemStore()
	storage := &memStorage{}
	svc := newStudentService(store, storage)
	ctx := context.Background()

	s, _ := svc.Create(ctx, dto.StudentForm{Name: "Ada", EnrollmentNumber: "S1", Faculty: "Eng"})

	n, err := svc.AddFaces(ctx, s.ID, fileHeaders(t, "front.jpg", "side.png"))
	if err != nil || n != 2 {
		t.Fatalf("AddFaces = %d, %v", n, err)
	}
	if got := store.students[s.ID].Faces; len(got) != 2 || !strings.HasPrefix(got[0], "/uploads/faces/") {
		t.Errorf("faces = %v", got)
	}

	_, err = svc.AddFaces(ctx, s.ID, fileHeaders(t, "ok.jpg", "notes.txt"))
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("bad extension: %v", err)
	}
	if len(storage.deleted) != 1 {
		t.Errorf("partial upload not cleaned up: %v", storage.deleted)
	}
	if len(store.students[s.ID].Faces) != 2 {
		t.Error("failed upload must not record faces")
	}

	if _, err := svc.AddFaces(ctx, s.ID, nil); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("no files: %v", err)
	}
}

func TestStudentServiceDeleteRemovesFaces(t *testing.T) {
	store := newMemStore()
	storage := &memStorage{}
	svc := newStudentService(store, storage)
	ctx := context.Background()

	s, _ := svc.Create(ctx, dto.StudentForm{Name: "Ada", EnrollmentNumber: "S1", Faculty: "Eng"})
	_, _ = svc.AddFaces(ctx, s.ID, fileHeaders(t, "front.jpg"))

	if err := svc.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(storage.deleted) != 1 {
		t.Errorf("face files not deleted: %v", storage.deleted)
	}
	if err := svc.Delete(ctx, s.ID); !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func rosterXLSX(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cellName, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf := &bytes.Buffer{}
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestStudentServiceImport(t *testing.T) {
	store := newMemStore()
	svc := newStudentService(store, &memStorage{})
	ctx := context.Background()

	_, _ = svc.Create(ctx, dto.StudentForm{Name: "Existing", EnrollmentNumber: "S1", Faculty: "Eng"})

	buf := rosterXLSX(t, [][]interface{}{
		{"Name", "Enrollment number", "Faculty"},
		{"Existing Again", "S1", "Eng"},
		{"New One", "S2", "Science"},
		{"Dup In File", "S2", "Science"},
		{"No Faculty", "S3"},
		{"Bad Number", "S 4", "Eng"},
		{"Another", "S5", "Arts"},
	})

	res, err := svc.Import(ctx, buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("imported = %d, want 2", res.Imported)
	}
	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (existing + duplicate row)", res.Skipped)
	}
	if len(res.Errors) != 2 || !strings.HasPrefix(res.Errors[0], "Row 5:") {
		t.Errorf("errors = %v", res.Errors)
	}
	if len(store.students) != 3 {
		t.Errorf("stored students = %d, want 3", len(store.students))
	}

	if _, err := svc.Import(ctx, strings.NewReader("garbage")); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("garbage upload: %v", err)
	}
}

func TestStudentServiceImportRejectsOversizedCells(t *testing.T) {
	store := newMemStore()
	svc := newStudentService(store, &memStorage{})

	buf := rosterXLSX(t, [][]interface{}{
		{"Name", "Enrollment number", "Faculty"},
		{strings.Repeat("n", 300), "S1", "Eng"},
		{"Long Faculty", "S2", strings.Repeat("f", 256)},
		{"Huge Number", strings.Repeat("9 ", 2000), "Eng"},
		{"Fine", "S4", "Eng"},
	})

	res, err := svc.Import(context.Background(), buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || len(store.students) != 1 {
		t.Errorf("imported = %d, stored = %d, want 1", res.Imported, len(store.students))
	}
	if len(res.Errors) != 3 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if res.Errors[0] != "Row 2: name is longer than 255 characters." {
		t.Errorf("name error = %q", res.Errors[0])
	}
	if res.Errors[1] != "Row 3: faculty is longer than 255 characters." {
		t.Errorf("faculty error = %q", res.Errors[1])
	}
	if len(res.Errors[2]) > 80 {
		t.Errorf("enrollment number error not truncated: %d bytes", len(res.Errors[2]))
	}
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := newStudentService(newMemStore(), &memStorage{})
	_, err := svc.Update(context.Background(), 99, dto.StudentForm{Name: "X", EnrollmentNumber: "S9", Faculty: "F"})
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		t.Fatalf("err = %v", err)
	}
}
