package handlers

import (
	"bytes"
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
)

func newDelegationTestEnv(t *testing.T) (*chi.Mux, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	delegationService := services.NewDelegationService(store.NewDelegationRepository(db))

	router := chi.NewRouter()
	router.Route("/delegations", func(r chi.Router) {
		DelegationRouter(r, delegationService, nil, RequireAuth(testSecret))
	})
	return router, mock
}

// A participant passed as {"email": ...} and one passed as a plain
// string must normalize to the same stored scalar.
func TestDelegationRequestNormalizesParticipants(t *testing.T) {
	var asObject DelegationRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"taskName": "Audit",
		"assignedTo": {"email": "a@b.com", "first_name": "Ann"},
		"attachments": [{"name": "report.pdf"}, "scan.png", 42]
	}`), &asObject))

	var asScalar DelegationRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"taskName": "Audit",
		"assignedTo": "a@b.com",
		"attachments": ["report.pdf", "scan.png"]
	}`), &asScalar))

	fromObject := asObject.toDelegation()
	fromScalar := asScalar.toDelegation()

	require.NotNil(t, fromObject.AssignedTo)
	require.Equal(t, "a@b.com", *fromObject.AssignedTo)
	require.Equal(t, fromScalar.AssignedTo, fromObject.AssignedTo)
	require.Equal(t, []string{"report.pdf", "scan.png"}, fromObject.Attachments)
	require.Equal(t, fromScalar.Attachments, fromObject.Attachments)
}

func TestDelegationRequestUnrecognizedShapeIsNull(t *testing.T) {
	var req DelegationRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"taskName": "Audit",
		"assignedTo": 42,
		"notifyTo": {"id": 7}
	}`), &req))

	d := req.toDelegation()
	require.Nil(t, d.AssignedTo)
	require.Nil(t, d.NotifyTo)
}

func TestCreateDelegation(t *testing.T) {
	router, mock := newDelegationTestEnv(t)

	mock.ExpectQuery("INSERT INTO delegations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))

	body := []byte(`{"taskName": "Prepare report", "assignedTo": "a@b.com", "priority": "High"}`)
	req := httptest.NewRequest(http.MethodPost, "/delegations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.EqualValues(t, 7, resp["id"])
	require.Equal(t, "Prepare report", resp["task_name"])
	require.Equal(t, "a@b.com", resp["assigned_to"])
	require.Equal(t, "Pending", resp["status"])
	require.Nil(t, resp["completed_at"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDelegationMissingTaskName(t *testing.T) {
	router, _ := newDelegationTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/delegations", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDelegationRejectsUnknownStatus(t *testing.T) {
	router, _ := newDelegationTestEnv(t)

	body := []byte(`{"taskName": "Audit", "status": "Parked"}`)
	req := httptest.NewRequest(http.MethodPost, "/delegations", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDelegations(t *testing.T) {
	router, mock := newDelegationTestEnv(t)

	columns := []string{
		"id", "task_name", "message", "assigned_by", "assigned_to", "notify_to", "auditor",
		"planned_date", "priority", "set_reminder", "reminder_mode", "reminder_frequency",
		"reminder_before_days", "reminder_starting", "assigned_pc", "group_name",
		"attachments", "attachment_required", "note_required", "notify_doer",
		"notes", "status", "created_at", "completed_at",
	}
	now := time.Now()
	mock.ExpectQuery("FROM delegations").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "Newest", nil, nil, "a@b.com", nil, nil, nil, "High", false,
				nil, nil, nil, nil, nil, nil, "{}", false, false, false, nil, "Pending", now, nil).
			AddRow(1, "Oldest", nil, nil, nil, nil, nil, nil, nil, false,
				nil, nil, nil, nil, nil, nil, "{}", false, false, false, nil, "Completed", now.Add(-time.Hour), now))

	req := httptest.NewRequest(http.MethodGet, "/delegations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "Newest", resp[0]["task_name"])
	require.Equal(t, "Oldest", resp[1]["task_name"])
}

func TestUpdateDelegationNotFound(t *testing.T) {
	router, mock := newDelegationTestEnv(t)

	mock.ExpectExec("UPDATE delegations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	body := []byte(`{"taskName": "Audit"}`)
	req := httptest.NewRequest(http.MethodPut, "/delegations/99", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

// Deleting an id that was never created still reports success.
func TestDeleteDelegationIsIdempotent(t *testing.T) {
	router, mock := newDelegationTestEnv(t)

	mock.ExpectExec("DELETE FROM delegations").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/delegations/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true}`, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDelegationBadID(t *testing.T) {
	router, _ := newDelegationTestEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/delegations/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
