package services

import (
	"context"
	"math"
	"strings"

	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
)

const (
	topPerformersLimit  = 3
	recentActivityLimit = 3

	// Users carry no stored availability state; the team report emits a
	// fixed status for every member.
	teamMemberStatus = "Active"
)

// AnalyticsRepository defines the aggregate queries behind reporting.
type AnalyticsRepository interface {
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	TopPerformers(ctx context.Context, limit int) ([]types.TopPerformer, error)
	RecentActivity(ctx context.Context, limit int) ([]types.Activity, error)
	TeamCounts(ctx context.Context) ([]store.TeamCounts, error)
}

// AnalyticsService composes repository aggregates into report payloads.
// The sub-queries run independently; a report is not a transactional
// snapshot.
type AnalyticsService struct {
	repo AnalyticsRepository
}

func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Summary computes the four dashboard counts. In Progress is excluded
// here on purpose; downstream consumers depend on this set.
func (s *AnalyticsService) Summary(ctx context.Context) (types.Summary, error) {
	var summary types.Summary
	var err error

	if summary.TotalDelegations, err = s.repo.CountAll(ctx); err != nil {
		return types.Summary{}, err
	}
	if summary.CompletedDelegations, err = s.repo.CountByStatus(ctx, types.StatusCompleted); err != nil {
		return types.Summary{}, err
	}
	if summary.PendingDelegations, err = s.repo.CountByStatus(ctx, types.StatusPending); err != nil {
		return types.Summary{}, err
	}
	if summary.OverdueDelegations, err = s.repo.CountByStatus(ctx, types.StatusOverdue); err != nil {
		return types.Summary{}, err
	}
	return summary, nil
}

// Analytics builds the full dashboard payload.
func (s *AnalyticsService) Analytics(ctx context.Context) (types.Analytics, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return types.Analytics{}, err
	}
	performers, err := s.repo.TopPerformers(ctx, topPerformersLimit)
	if err != nil {
		return types.Analytics{}, err
	}
	activity, err := s.repo.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return types.Analytics{}, err
	}
	return types.Analytics{
		Summary:        summary,
		TopPerformers:  performers,
		RecentActivity: activity,
	}, nil
}

// TeamReport scores every user: round(completed / assigned * 100), zero
// when nothing is assigned. Names fall back to the user's email.
func (s *AnalyticsService) TeamReport(ctx context.Context) ([]types.TeamMember, error) {
	counts, err := s.repo.TeamCounts(ctx)
	if err != nil {
		return nil, err
	}

	team := make([]types.TeamMember, 0, len(counts))
	for _, tc := range counts {
		score := 0
		if tc.Assigned > 0 {
			score = int(math.Round(float64(tc.Completed) / float64(tc.Assigned) * 100))
		}
		team = append(team, types.TeamMember{
			ID:               tc.ID,
			Name:             strings.TrimSpace(types.DisplayName(tc.FirstName, tc.LastName, tc.Email)),
			Email:            tc.Email,
			Role:             tc.Role,
			Department:       tc.Department,
			Phone:            tc.Phone,
			Status:           teamMemberStatus,
			TasksAssigned:    tc.Assigned,
			TasksCompleted:   tc.Completed,
			TasksInProgress:  tc.InProgress,
			TasksPending:     tc.Pending,
			TasksOverdue:     tc.Overdue,
			PerformanceScore: score,
		})
	}
	return team, nil
}
