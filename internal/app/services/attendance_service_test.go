package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

type attendanceFixture struct {
	store    *memStore
	svc      AttendanceService
	subject  *models.Subject
	ada, bob *models.Student
	outsider *models.Student
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	store := newMemStore()
	ctx := context.Background()

	f := &attendanceFixture{
		store:    store,
		subject:  &models.Subject{Name: "Databases", Code: "DB101", Faculty: "Computing"},
		ada:      &models.Student{Name: "Ada", EnrollmentNumber: "S1", Faculty: "Computing"},
		bob:      &models.Student{Name: "Bob", EnrollmentNumber: "S2", Faculty: "Computing"},
		outsider: &models.Student{Name: "Zed", EnrollmentNumber: "S3", Faculty: "Arts"},
	}
	_, _ = (memSubjects{store}).Create(ctx, f.subject)
	for _, s := range []*models.Student{f.ada, f.bob, f.outsider} {
		_, _ = (memStudents{store}).Create(ctx, s)
	}
	for _, s := range []*models.Student{f.ada, f.bob} {
		_, _ = (memEnrollments{store}).Create(ctx, &models.Enrollment{
			StudentID: s.ID, SubjectID: f.subject.ID, Status: models.EnrollmentEnrolled,
		})
	}

	f.svc = NewAttendanceService(memAttendance{store}, memEnrollments{store}, memSubjects{store}, fixedClock, testLogger)
	return f
}

func TestParseDate(t *testing.T) {
	f := newAttendanceFixture(t)

	today, err := f.svc.ParseDate("")
	if err != nil || today.Format(models.DateLayout) != "2026-03-09" {
		t.Errorf("empty date = %v, %v", today, err)
	}
	d, err := f.svc.ParseDate("2026-02-28")
	if err != nil || d.Day() != 28 {
		t.Errorf("explicit date = %v, %v", d, err)
	}
	if _, err := f.svc.ParseDate("28/02/2026"); err != ErrInvalidDate {
		t.Errorf("bad date: %v", err)
	}
}

func TestToggleIsIdempotentPerDate(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	changed, err := f.svc.Toggle(ctx, f.subject.ID, f.ada.ID, day, true)
	if err != nil || !changed {
		t.Fatalf("first mark = %v, %v", changed, err)
	}
	if changed, _ := f.svc.Toggle(ctx, f.subject.ID, f.ada.ID, day, true); changed {
		t.Error("second mark must not create another row")
	}
	if len(f.store.marks) != 1 {
		t.Errorf("marks = %d, want 1", len(f.store.marks))
	}

	sheet, err := f.svc.Sheet(ctx, f.subject.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows) != 2 || !sheet.Rows[0].Checked || sheet.Rows[1].Checked {
		t.Errorf("sheet rows = %+v", sheet.Rows)
	}

	other := day.AddDate(0, 0, 1)
	sheet, _ = f.svc.Sheet(ctx, f.subject.ID, other)
	if sheet.PresentCount() != 0 {
		t.Error("marks must not leak into other session dates")
	}

	if changed, _ := f.svc.Toggle(ctx, f.subject.ID, f.ada.ID, day, false); !changed {
		t.Error("unmark should remove the row")
	}
	if changed, _ := f.svc.Toggle(ctx, f.subject.ID, f.ada.ID, day, false); changed {
		t.Error("unmarking twice is a no-op")
	}
}

func TestToggleRequiresEnrollment(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.Toggle(ctx, f.subject.ID, f.outsider.ID, day, true); !errors.Is(err, apperrors.ErrNotEnrolled) {
		t.Errorf("outsider: %v", err)
	}
	if _, err := f.svc.Toggle(ctx, 999, f.ada.ID, day, true); !errors.Is(err, apperrors.ErrSubjectNotFound) {
		t.Errorf("unknown subject: %v", err)
	}
}

func TestSheetExcludesCanceledEnrollments(t *testing.T) {
	f := newAttendanceFixture(t)
	for _, e := range f.store.enrollments {
		if e.StudentID == f.bob.ID {
			e.Status = models.EnrollmentCanceled
		}
	}

	sheet, err := f.svc.Sheet(context.Background(), f.subject.ID, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows) != 1 || sheet.Rows[0].Student.ID != f.ada.ID {
		t.Errorf("rows = %+v", sheet.Rows)
	}
}

func TestExport(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	_, _ = f.svc.Toggle(ctx, f.subject.ID, f.bob.ID, day, true)

	csvExport, err := f.svc.Export(ctx, f.subject.ID, day, "csv")
	if err != nil {
		t.Fatalf("csv export: %v", err)
	}
	if csvExport.Filename != "attendance-db101-2026-03-09.csv" {
		t.Errorf("filename = %q", csvExport.Filename)
	}
	lines := strings.Split(strings.TrimSpace(string(csvExport.Data)), "\n")
	if len(lines) != 3 || lines[1] != "Ada,S1,Computing,2026-03-09,Absent" || lines[2] != "Bob,S2,Computing,2026-03-09,Present" {
		t.Errorf("csv lines = %q", lines)
	}

	xlsxExport, err := f.svc.Export(ctx, f.subject.ID, day, "")
	if err != nil {
		t.Fatalf("xlsx export: %v", err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(xlsxExport.Data))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()
	rows, _ := wb.GetRows(wb.GetSheetName(0))
	if len(rows) != 3 || rows[2][4] != "Present" {
		t.Errorf("xlsx rows = %v", rows)
	}

	if _, err := f.svc.Export(ctx, f.subject.ID, day, "pdf"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("pdf export: %v", err)
	}
}
