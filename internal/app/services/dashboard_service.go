package services

import (
	"context"
	"fmt"

	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
)

// DashboardService computes the dashboard counters
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

type dashboardServiceImpl struct {
	users      repositories.IUserRepository
	students   repositories.IStudentRepository
	subjects   repositories.ISubjectRepository
	attendance repositories.IAttendanceRepository
	clock      Clock
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	users repositories.IUserRepository,
	students repositories.IStudentRepository,
	subjects repositories.ISubjectRepository,
	attendance repositories.IAttendanceRepository,
	clock Clock,
) DashboardService {
	return &dashboardServiceImpl{
		users:      users,
		students:   students,
		subjects:   subjects,
		attendance: attendance,
		clock:      clock,
	}
}

// Stats returns record counts and the number of marks taken today
func (s *dashboardServiceImpl) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	var (
		stats dto.DashboardStats
		err   error
	)

	if stats.Students, err = s.students.Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting students: %w", err)
	}
	if stats.Subjects, err = s.subjects.Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting subjects: %w", err)
	}
	if stats.Users, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	if stats.PresentToday, err = s.attendance.CountByDate(ctx, s.clock.today()); err != nil {
		return nil, fmt.Errorf("error counting attendance: %w", err)
	}
	return &stats, nil
}
