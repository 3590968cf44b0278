package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/types"
)

type fakeDelegationRepo struct {
	created types.Delegation
	updated types.Delegation
}

func (f *fakeDelegationRepo) List(ctx context.Context) ([]types.Delegation, error) { return nil, nil }
func (f *fakeDelegationRepo) Get(ctx context.Context, id int) (types.Delegation, error) {
	return types.Delegation{}, nil
}
func (f *fakeDelegationRepo) Create(ctx context.Context, d types.Delegation) (types.Delegation, error) {
	f.created = d
	d.ID = 1
	return d, nil
}
func (f *fakeDelegationRepo) Update(ctx context.Context, d types.Delegation) error {
	f.updated = d
	return nil
}
func (f *fakeDelegationRepo) AppendAttachment(ctx context.Context, id int, name string) ([]string, error) {
	return []string{name}, nil
}
func (f *fakeDelegationRepo) Delete(ctx context.Context, id int) error { return nil }

func newServiceWithClock(repo DelegationRepository, now time.Time) *DelegationService {
	s := NewDelegationService(repo)
	s.now = func() time.Time { return now }
	return s
}

func TestCreateDefaultsStatusToPending(t *testing.T) {
	repo := &fakeDelegationRepo{}
	s := NewDelegationService(repo)

	_, err := s.Create(context.Background(), types.Delegation{TaskName: "Audit"})
	require.NoError(t, err)
	require.Equal(t, types.StatusPending, repo.created.Status)
	require.Nil(t, repo.created.CompletedAt)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	s := NewDelegationService(&fakeDelegationRepo{})

	_, err := s.Create(context.Background(), types.Delegation{TaskName: "Audit", Status: "Parked"})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

// Transitioning into Completed stamps completed_at when the caller
// did not supply one.
func TestCompletedStatusStampsCompletedAt(t *testing.T) {
	repo := &fakeDelegationRepo{}
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := newServiceWithClock(repo, now)

	err := s.Update(context.Background(), types.Delegation{
		ID: 1, TaskName: "Audit", Status: types.StatusCompleted,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.updated.CompletedAt)
	require.Equal(t, now, *repo.updated.CompletedAt)
}

func TestCompletedStatusKeepsCallerTimestamp(t *testing.T) {
	repo := &fakeDelegationRepo{}
	s := NewDelegationService(repo)

	supplied := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := s.Update(context.Background(), types.Delegation{
		ID: 1, TaskName: "Audit", Status: types.StatusCompleted, CompletedAt: &supplied,
	})
	require.NoError(t, err)
	require.Equal(t, supplied, *repo.updated.CompletedAt)
}

// Leaving Completed clears completed_at even if the caller sent one.
func TestNonCompletedStatusClearsCompletedAt(t *testing.T) {
	repo := &fakeDelegationRepo{}
	s := NewDelegationService(repo)

	stale := time.Now()
	err := s.Update(context.Background(), types.Delegation{
		ID: 1, TaskName: "Audit", Status: types.StatusInProgress, CompletedAt: &stale,
	})
	require.NoError(t, err)
	require.Nil(t, repo.updated.CompletedAt)
}
