package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/taskdesk/apiserver/types"
)

// AnalyticsRepository composes read-only aggregate queries over
// delegations and users. Each query runs independently; there is no
// transactional snapshot across them.
type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) CountAll(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM delegations`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AnalyticsRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	const query = `SELECT COUNT(1) FROM delegations WHERE status = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// TopPerformers ranks assignees by completed delegations. Ties break on
// the assignee identity ascending, which keeps the ordering stable
// across runs. Display names fall back to the raw assignee identity
// when no matching user row (or no stored name) exists.
func (r *AnalyticsRepository) TopPerformers(ctx context.Context, limit int) ([]types.TopPerformer, error) {
	const query = `
		SELECT d.assigned_to, COUNT(1) AS completed, u.first_name, u.last_name
		FROM delegations d
		LEFT JOIN users u ON u.email = d.assigned_to
		WHERE d.status = $1 AND d.assigned_to IS NOT NULL
		GROUP BY d.assigned_to, u.first_name, u.last_name
		ORDER BY completed DESC, d.assigned_to ASC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, types.StatusCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performers := make([]types.TopPerformer, 0, limit)
	for rows.Next() {
		var (
			assignee    string
			completed   int
			first, last *string
		)
		if err := rows.Scan(&assignee, &completed, &first, &last); err != nil {
			return nil, err
		}
		performers = append(performers, types.TopPerformer{
			Name:      strings.TrimSpace(types.DisplayName(first, last, assignee)),
			Completed: completed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return performers, nil
}

// RecentActivity returns the most recently completed delegations.
func (r *AnalyticsRepository) RecentActivity(ctx context.Context, limit int) ([]types.Activity, error) {
	const query = `
		SELECT d.task_name, d.assigned_to, d.completed_at, u.first_name, u.last_name
		FROM delegations d
		LEFT JOIN users u ON u.email = d.assigned_to
		WHERE d.status = $1 AND d.completed_at IS NOT NULL
		ORDER BY d.completed_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, types.StatusCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := make([]types.Activity, 0, limit)
	for rows.Next() {
		var (
			entry       types.Activity
			assignee    *string
			first, last *string
		)
		if err := rows.Scan(&entry.Task, &assignee, &entry.Date, &first, &last); err != nil {
			return nil, err
		}
		fallback := ""
		if assignee != nil {
			fallback = *assignee
		}
		entry.User = strings.TrimSpace(types.DisplayName(first, last, fallback))
		activity = append(activity, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activity, nil
}

// TeamCounts is the raw per-user aggregate before scoring.
type TeamCounts struct {
	ID         int
	Email      string
	FirstName  *string
	LastName   *string
	Role       *string
	Department *string
	Phone      *string
	Assigned   int
	Completed  int
	InProgress int
	Pending    int
	Overdue    int
}

// TeamCounts aggregates every user's delegation counts in one pass.
// Filtered aggregates stand in for per-status count queries; the
// resulting numbers are identical.
func (r *AnalyticsRepository) TeamCounts(ctx context.Context) ([]TeamCounts, error) {
	const query = `
		SELECT u.id, u.email, u.first_name, u.last_name, u.role, u.department, u.phone,
			COUNT(d.id) AS assigned,
			COUNT(d.id) FILTER (WHERE d.status = 'Completed') AS completed,
			COUNT(d.id) FILTER (WHERE d.status = 'In Progress') AS in_progress,
			COUNT(d.id) FILTER (WHERE d.status = 'Pending') AS pending,
			COUNT(d.id) FILTER (WHERE d.status = 'Overdue') AS overdue
		FROM users u
		LEFT JOIN delegations d ON d.assigned_to = u.email
		GROUP BY u.id, u.email, u.first_name, u.last_name, u.role, u.department, u.phone
		ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	team := make([]TeamCounts, 0)
	for rows.Next() {
		var tc TeamCounts
		if err := rows.Scan(
			&tc.ID,
			&tc.Email,
			&tc.FirstName,
			&tc.LastName,
			&tc.Role,
			&tc.Department,
			&tc.Phone,
			&tc.Assigned,
			&tc.Completed,
			&tc.InProgress,
			&tc.Pending,
			&tc.Overdue,
		); err != nil {
			return nil, err
		}
		team = append(team, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return team, nil
}
