package services

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
	"github.com/yigit/attendance-admin/internal/pkg/filestorage"
)

var testLogger = zerolog.New(io.Discard)

// fixedClock pins today to 2026-03-09
var fixedClock Clock = func() time.Time { return time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC) }

// memStore is an in-memory implementation of every repository interface
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]*models.User
	students    map[int64]*models.Student
	subjects    map[int64]*models.Subject
	enrollments map[int64]*models.Enrollment
	marks       map[markKey]bool
	faculties   []string
	lastLogin   map[int64]time.Time
}

type markKey struct {
	student, subject int64
	date             string
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[int64]*models.User{},
		students:    map[int64]*models.Student{},
		subjects:    map[int64]*models.Subject{},
		enrollments: map[int64]*models.Enrollment{},
		marks:       map[markKey]bool{},
		lastLogin:   map[int64]time.Time{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memUsers struct{ *memStore }
type memStudents struct{ *memStore }
type memSubjects struct{ *memStore }
type memEnrollments struct{ *memStore }
type memAttendance struct{ *memStore }
type memFaculties struct{ *memStore }

// users

func (r memUsers) conflict(u *models.User) error {
	for _, other := range r.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
		if other.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	return nil
}

func (r memUsers) Create(_ context.Context, u *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return 0, err
	}
	u.ID = r.id()
	c := *u
	r.users[u.ID] = &c
	return u.ID, nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r memUsers) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	stored.Username, stored.FirstName, stored.LastName = u.Username, u.FirstName, u.LastName
	stored.Email, stored.Role = u.Email, u.Role
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (r memUsers) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLogin[id] = at
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r memUsers) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r memUsers) ExistsWithRole(_ context.Context, role models.RoleType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// students

func (r memStudents) numberTaken(number string, except int64) bool {
	for _, s := range r.students {
		if s.EnrollmentNumber == number && s.ID != except {
			return true
		}
	}
	return false
}

func (r memStudents) Create(_ context.Context, s *models.Student) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numberTaken(s.EnrollmentNumber, 0) {
		return 0, apperrors.ErrEnrollmentNumberAlreadyExists
	}
	s.ID = r.id()
	c := *s
	c.Faces = append([]string{}, s.Faces...)
	r.students[s.ID] = &c
	return s.ID, nil
}

func (r memStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	c := *s
	return &c, nil
}

func (r memStudents) GetByEnrollmentNumber(_ context.Context, number string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.EnrollmentNumber == number {
			c := *s
			return &c, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r memStudents) List(_ context.Context) ([]*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedStudents(func(*models.Student) bool { return true }), nil
}

func (m *memStore) sortedStudents(keep func(*models.Student) bool) []*models.Student {
	out := []*models.Student{}
	for _, s := range m.students {
		if keep(s) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r memStudents) Update(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.students[s.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if r.numberTaken(s.EnrollmentNumber, s.ID) {
		return apperrors.ErrEnrollmentNumberAlreadyExists
	}
	stored.Name, stored.EnrollmentNumber, stored.Faculty = s.Name, s.EnrollmentNumber, s.Faculty
	return nil
}

func (r memStudents) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(r.students, id)
	for eid, e := range r.enrollments {
		if e.StudentID == id {
			delete(r.enrollments, eid)
		}
	}
	for k := range r.marks {
		if k.student == id {
			delete(r.marks, k)
		}
	}
	return nil
}

func (r memStudents) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.students)), nil
}

func (r memStudents) AppendFaces(_ context.Context, id int64, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.Faces = append(s.Faces, paths...)
	return nil
}

func (r memStudents) ImportBatch(_ context.Context, students []*models.Student) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range students {
		if r.numberTaken(s.EnrollmentNumber, 0) {
			continue
		}
		s.ID = r.id()
		c := *s
		c.Faces = []string{}
		r.students[s.ID] = &c
		n++
	}
	return n, nil
}

// subjects

func (r memSubjects) conflict(s *models.Subject) error {
	for _, other := range r.subjects {
		if other.ID == s.ID {
			continue
		}
		if other.Name == s.Name {
			return apperrors.ErrSubjectNameAlreadyExists
		}
		if other.Code == s.Code {
			return apperrors.ErrSubjectCodeAlreadyExists
		}
	}
	return nil
}

func (r memSubjects) Create(_ context.Context, s *models.Subject) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(s); err != nil {
		return 0, err
	}
	s.ID = r.id()
	c := *s
	r.subjects[s.ID] = &c
	return s.ID, nil
}

func (r memSubjects) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	c := *s
	return &c, nil
}

func (r memSubjects) list(keep func(*models.Subject) bool) []*models.Subject {
	out := []*models.Subject{}
	for _, s := range r.subjects {
		if keep(s) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (r memSubjects) List(_ context.Context) ([]*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(*models.Subject) bool { return true }), nil
}

func (r memSubjects) ListNotEnrolledBy(_ context.Context, studentID int64) ([]*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(s *models.Subject) bool {
		for _, e := range r.enrollments {
			if e.StudentID == studentID && e.SubjectID == s.ID {
				return false
			}
		}
		return true
	}), nil
}

func (r memSubjects) Update(_ context.Context, s *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.subjects[s.ID]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	if err := r.conflict(s); err != nil {
		return err
	}
	*stored = *s
	return nil
}

func (r memSubjects) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[id]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	delete(r.subjects, id)
	return nil
}

func (r memSubjects) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.subjects)), nil
}

// enrollments

func (r memEnrollments) Create(_ context.Context, e *models.Enrollment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.enrollments {
		if other.StudentID == e.StudentID && other.SubjectID == e.SubjectID {
			return 0, apperrors.ErrAlreadyEnrolled
		}
	}
	e.ID = r.id()
	c := *e
	r.enrollments[e.ID] = &c
	return e.ID, nil
}

func (r memEnrollments) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	c := *e
	return &c, nil
}

func (r memEnrollments) ListByStudent(_ context.Context, studentID int64) ([]*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Enrollment{}
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			c := *e
			if s, ok := r.subjects[e.SubjectID]; ok {
				sc := *s
				c.Subject = &sc
			}
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEnrollments) active(studentID, subjectID int64) bool {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.SubjectID == subjectID && e.Status != models.EnrollmentCanceled {
			return true
		}
	}
	return false
}

func (r memEnrollments) ListStudentsBySubject(_ context.Context, subjectID int64) ([]*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedStudents(func(s *models.Student) bool { return r.active(s.ID, subjectID) }), nil
}

func (r memEnrollments) IsEnrolled(_ context.Context, studentID, subjectID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active(studentID, subjectID), nil
}

func (r memEnrollments) UpdateStatus(_ context.Context, id int64, status models.EnrollmentStatus, completed *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	e.Status, e.DateCompleted = status, completed
	return nil
}

func (r memEnrollments) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[id]; !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	delete(r.enrollments, id)
	return nil
}

// attendance

func (r memAttendance) Mark(_ context.Context, studentID, subjectID int64, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := markKey{studentID, subjectID, date.Format(models.DateLayout)}
	if r.marks[k] {
		return false, nil
	}
	r.marks[k] = true
	return true, nil
}

func (r memAttendance) Unmark(_ context.Context, studentID, subjectID int64, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := markKey{studentID, subjectID, date.Format(models.DateLayout)}
	if !r.marks[k] {
		return false, nil
	}
	delete(r.marks, k)
	return true, nil
}

func (r memAttendance) MarkedStudentIDs(_ context.Context, subjectID int64, date time.Time) (map[int64]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]bool{}
	day := date.Format(models.DateLayout)
	for k := range r.marks {
		if k.subject == subjectID && k.date == day {
			out[k.student] = true
		}
	}
	return out, nil
}

func (r memAttendance) CountByDate(_ context.Context, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	day := date.Format(models.DateLayout)
	for k := range r.marks {
		if k.date == day {
			n++
		}
	}
	return n, nil
}

// faculties

func (r memFaculties) List(_ context.Context) ([]*models.Faculty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Faculty{}
	for i, name := range r.faculties {
		out = append(out, &models.Faculty{ID: int64(i + 1), Name: name})
	}
	return out, nil
}

func (r memFaculties) Ensure(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.faculties {
		if existing == name {
			return nil
		}
	}
	r.faculties = append(r.faculties, name)
	return nil
}

// memStorage records saved and deleted paths instead of touching disk
type memStorage struct {
	saved   []string
	deleted []string
	failOn  string
}

func (s *memStorage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".jpg" && ext != ".png" {
		return "", filestorage.ErrUnsupportedFileType
	}
	if fh.Filename == s.failOn {
		return "", io.ErrUnexpectedEOF
	}
	p := "/uploads/" + subPath + "/" + fh.Filename
	s.saved = append(s.saved, p)
	return p, nil
}

func (s *memStorage) DeleteFile(p string) error {
	s.deleted = append(s.deleted, p)
	return nil
}

func (s *memStorage) GetFullPath(p string) string { return p }
