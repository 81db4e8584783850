package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// UniversityDashboard is the university-admin overview.
type UniversityDashboard struct {
	TotalStudents  int                         `json:"total_students"`
	ActiveLicenses int                         `json:"active_licenses"`
	LicenseTotal   int                         `json:"license_total"`
	LicenseUsed    int                         `json:"license_used"`
	SessionCounts  map[model.SessionStatus]int `json:"session_counts"`
	AverageScore   *float64                    `json:"average_score"`
}

// StudentDashboard is the student landing view: current session plus history.
type StudentDashboard struct {
	CurrentSession *model.QuizSession       `json:"current_session"`
	History        []model.QuizSession      `json:"history"`
	Stats          *repository.StudentStats `json:"stats"`
}

// DashboardService aggregates the role-specific overview screens. The
// independent queries behind each dashboard fan out concurrently.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
	sessionRepo   *repository.SessionRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository, sessionRepo *repository.SessionRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo, sessionRepo: sessionRepo}
}

// GetUniversityDashboard assembles the admin overview for one university.
func (s *DashboardService) GetUniversityDashboard(ctx context.Context, universityID uuid.UUID) (*UniversityDashboard, error) {
	dashboard := &UniversityDashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, active, err := s.dashboardRepo.GetUniversityCounts(gctx, universityID)
		if err != nil {
			return fmt.Errorf("university counts: %w", err)
		}
		dashboard.TotalStudents = total
		dashboard.ActiveLicenses = active
		return nil
	})
	g.Go(func() error {
		total, used, err := s.dashboardRepo.GetLicenseUsage(gctx, universityID)
		if err != nil {
			return fmt.Errorf("license usage: %w", err)
		}
		dashboard.LicenseTotal = total
		dashboard.LicenseUsed = used
		return nil
	})
	g.Go(func() error {
		counts, err := s.dashboardRepo.GetSessionStatusCounts(gctx, universityID)
		if err != nil {
			return fmt.Errorf("session counts: %w", err)
		}
		dashboard.SessionCounts = counts
		return nil
	})
	g.Go(func() error {
		avg, err := s.dashboardRepo.GetAverageScore(gctx, universityID)
		if err != nil {
			return fmt.Errorf("average score: %w", err)
		}
		dashboard.AverageScore = avg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// GetPlatformStats returns the super-admin roll-up.
func (s *DashboardService) GetPlatformStats(ctx context.Context) (*repository.PlatformStats, error) {
	return s.dashboardRepo.GetPlatformStats(ctx)
}

// GetStudentDashboard assembles the student landing view.
func (s *DashboardService) GetStudentDashboard(ctx context.Context, studentID uuid.UUID) (*StudentDashboard, error) {
	dashboard := &StudentDashboard{History: []model.QuizSession{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		current, err := s.sessionRepo.GetCurrentByStudent(gctx, studentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("current session: %w", err)
		}
		dashboard.CurrentSession = current
		return nil
	})
	g.Go(func() error {
		history, err := s.sessionRepo.ListFinishedByStudent(gctx, studentID)
		if err != nil {
			return fmt.Errorf("session history: %w", err)
		}
		if history != nil {
			dashboard.History = history
		}
		return nil
	})
	g.Go(func() error {
		stats, err := s.dashboardRepo.GetStudentStats(gctx, studentID)
		if err != nil {
			return fmt.Errorf("student stats: %w", err)
		}
		dashboard.Stats = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
