package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
)

func newAnalyticsTestEnv(t *testing.T) (*chi.Mux, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	analyticsService := services.NewAnalyticsService(store.NewAnalyticsRepository(db))

	router := chi.NewRouter()
	AnalyticsRouter(router, analyticsService)
	return router, mock
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestGetAnalytics(t *testing.T) {
	router, mock := newAnalyticsTestEnv(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(countRows(10))
	mock.ExpectQuery("SELECT COUNT").WithArgs(types.StatusCompleted).WillReturnRows(countRows(4))
	mock.ExpectQuery("SELECT COUNT").WithArgs(types.StatusPending).WillReturnRows(countRows(3))
	mock.ExpectQuery("SELECT COUNT").WithArgs(types.StatusOverdue).WillReturnRows(countRows(2))

	mock.ExpectQuery("GROUP BY d.assigned_to").
		WithArgs(types.StatusCompleted, 3).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to", "completed", "first_name", "last_name"}).
			AddRow("ann@x.com", 3, "Ann", "Lee").
			AddRow("ghost@x.com", 1, nil, nil))

	completedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("ORDER BY d.completed_at DESC").
		WithArgs(types.StatusCompleted, 3).
		WillReturnRows(sqlmock.NewRows([]string{"task_name", "assigned_to", "completed_at", "first_name", "last_name"}).
			AddRow("Close books", "ann@x.com", completedAt, "Ann", "Lee"))

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.EqualValues(t, 10, resp["totalDelegations"])
	require.EqualValues(t, 4, resp["completedDelegations"])
	require.EqualValues(t, 3, resp["pendingDelegations"])
	require.EqualValues(t, 2, resp["overdueDelegations"])

	performers := resp["topPerformers"].([]any)
	require.Len(t, performers, 2)
	first := performers[0].(map[string]any)
	require.Equal(t, "Ann Lee", first["name"])
	require.EqualValues(t, 3, first["completed"])
	// No user row: the raw assignee identity stands in as the name.
	second := performers[1].(map[string]any)
	require.Equal(t, "ghost@x.com", second["name"])

	activity := resp["recentActivity"].([]any)
	require.Len(t, activity, 1)
	entry := activity[0].(map[string]any)
	require.Equal(t, "Close books", entry["task"])
	require.Equal(t, "Ann Lee", entry["user"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTeam(t *testing.T) {
	router, mock := newAnalyticsTestEnv(t)

	teamColumns := []string{
		"id", "email", "first_name", "last_name", "role", "department", "phone",
		"assigned", "completed", "in_progress", "pending", "overdue",
	}
	mock.ExpectQuery("FROM users u").
		WillReturnRows(sqlmock.NewRows(teamColumns).
			AddRow(1, "ann@x.com", "Ann", "Lee", "Manager", "Finance", nil, 2, 1, 1, 0, 0).
			AddRow(2, "new@x.com", nil, nil, nil, nil, nil, 0, 0, 0, 0, 0))

	req := httptest.NewRequest(http.MethodGet, "/team", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	require.Equal(t, "Ann Lee", resp[0]["name"])
	require.EqualValues(t, 2, resp[0]["tasksAssigned"])
	require.EqualValues(t, 50, resp[0]["performanceScore"])

	// Nameless user falls back to email; zero assigned scores zero.
	require.Equal(t, "new@x.com", resp[1]["name"])
	require.EqualValues(t, 0, resp[1]["performanceScore"])
	require.Equal(t, "Active", resp[1]["status"])
}
