package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/types"
)

func profileFixture() types.Profile {
	name := "Ann"
	return types.Profile{FirstName: &name}
}

func TestDelegationDeleteIgnoresMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelegationRepository(db)

	mock.ExpectExec("DELETE FROM delegations").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 99))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelegationUpdateZeroRowsIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelegationRepository(db)

	mock.ExpectExec("UPDATE delegations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), types.Delegation{ID: 99, TaskName: "Audit", Status: types.StatusPending})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAppendAttachment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelegationRepository(db)

	mock.ExpectQuery("array_append").
		WithArgs("report.pdf", 7).
		WillReturnRows(sqlmock.NewRows([]string{"attachments"}).AddRow(`{"scan.png","report.pdf"}`))

	attachments, err := repo.AppendAttachment(context.Background(), 7, "report.pdf")
	require.NoError(t, err)
	require.Equal(t, []string{"scan.png", "report.pdf"}, attachments)
}

func TestAppendAttachmentMissingDelegation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDelegationRepository(db)

	mock.ExpectQuery("array_append").
		WithArgs("report.pdf", 99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.AppendAttachment(context.Background(), 99, "report.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}
