package services

import (
	"context"
	"time"

	"routeerp_go/models"

	"gorm.io/gorm"
)

const upcomingWindow = 7 * 24 * time.Hour

// AdminSummary feeds the admin dashboard.
type AdminSummary struct {
	UsersByRole    map[string]int64 `json:"users_by_role"`
	ActiveUsers    int64            `json:"active_users"`
	PendingExcuses int64            `json:"pending_excuses"`
	Groups         int64            `json:"groups"`
}

// StaffSummary feeds the instructor and mentor dashboards.
type StaffSummary struct {
	Groups   []models.Group   `json:"groups"`
	Upcoming []models.Session `json:"upcoming_sessions"`
}

// StudentSummary feeds the student dashboard.
type StudentSummary struct {
	Excuses  map[string]int64 `json:"excuses"`
	Groups   []models.Group   `json:"groups"`
	Upcoming []models.Session `json:"upcoming_sessions"`
}

// HRSummary feeds the HR dashboard.
type HRSummary struct {
	Employees      int64   `json:"employees"`
	PendingExcuses int64   `json:"pending_excuses"`
	TotalHours     float64 `json:"total_hours"`
	TotalPayroll   float64 `json:"total_payroll"`
}

// DashboardService aggregates per-role summaries.
type DashboardService struct {
	db       *gorm.DB
	excuses  *ExcuseService
	groups   *GroupService
	calendar *CalendarService
	hr       *HRService
	now      func() time.Time
}

func NewDashboardService(db *gorm.DB, excuses *ExcuseService, groups *GroupService, calendar *CalendarService, hr *HRService) *DashboardService {
	return &DashboardService{db: db, excuses: excuses, groups: groups, calendar: calendar, hr: hr, now: time.Now}
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminSummary, error) {
	type row struct {
		Role  string
		Count int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}
	summary := &AdminSummary{UsersByRole: map[string]int64{
		models.RoleAdmin: 0, models.RoleInstructor: 0, models.RoleMentor: 0, models.RoleStudent: 0,
	}}
	for _, r := range rows {
		summary.UsersByRole[r.Role] = r.Count
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ?", true).Count(&summary.ActiveUsers).Error; err != nil {
		return nil, err
	}
	counts, err := s.excuses.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	summary.PendingExcuses = counts[models.StatusPending]
	if summary.Groups, err = s.groups.Count(ctx); err != nil {
		return nil, err
	}
	return summary, nil
}

// Staff summarizes an instructor's or mentor's groups and their coming week.
func (s *DashboardService) Staff(ctx context.Context, user *models.User) (*StaffSummary, error) {
	groups, err := s.groups.VisibleTo(ctx, user)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.calendar.Upcoming(ctx, user, s.now(), upcomingWindow)
	if err != nil {
		return nil, err
	}
	return &StaffSummary{Groups: groups, Upcoming: upcoming}, nil
}

func (s *DashboardService) Student(ctx context.Context, user *models.User) (*StudentSummary, error) {
	counts, err := s.excuses.CountByStatus(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	groups, err := s.groups.VisibleTo(ctx, user)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.calendar.Upcoming(ctx, user, s.now(), upcomingWindow)
	if err != nil {
		return nil, err
	}
	return &StudentSummary{Excuses: counts, Groups: groups, Upcoming: upcoming}, nil
}

func (s *DashboardService) HR(ctx context.Context) (*HRSummary, error) {
	lines, err := s.hr.SalaryReport(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.hr.PendingExcuses(ctx)
	if err != nil {
		return nil, err
	}
	summary := &HRSummary{Employees: int64(len(lines)), PendingExcuses: int64(len(pending))}
	for _, l := range lines {
		summary.TotalHours += l.Hours
		summary.TotalPayroll += l.Salary
	}
	return summary, nil
}
