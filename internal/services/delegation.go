package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskdesk/apiserver/types"
)

// ErrInvalidStatus is returned when a write names an unrecognized status.
var ErrInvalidStatus = errors.New("invalid status")

// DelegationRepository defines persistence operations for delegations.
type DelegationRepository interface {
	List(ctx context.Context) ([]types.Delegation, error)
	Get(ctx context.Context, id int) (types.Delegation, error)
	Create(ctx context.Context, d types.Delegation) (types.Delegation, error)
	Update(ctx context.Context, d types.Delegation) error
	AppendAttachment(ctx context.Context, id int, name string) ([]string, error)
	Delete(ctx context.Context, id int) error
}

// DelegationService encapsulates delegation use-cases. Every write goes
// through applyStatus, which keeps completed_at consistent with the
// status: set exactly when the status is Completed, cleared otherwise.
type DelegationService struct {
	repo DelegationRepository
	now  func() time.Time
}

func NewDelegationService(repo DelegationRepository) *DelegationService {
	return &DelegationService{repo: repo, now: time.Now}
}

func (s *DelegationService) applyStatus(d *types.Delegation) error {
	if d.Status == "" {
		d.Status = types.StatusPending
	}
	if !types.ValidStatus(d.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}
	if d.Status == types.StatusCompleted {
		if d.CompletedAt == nil {
			now := s.now()
			d.CompletedAt = &now
		}
	} else {
		d.CompletedAt = nil
	}
	return nil
}

func (s *DelegationService) List(ctx context.Context) ([]types.Delegation, error) {
	return s.repo.List(ctx)
}

func (s *DelegationService) Get(ctx context.Context, id int) (types.Delegation, error) {
	return s.repo.Get(ctx, id)
}

func (s *DelegationService) Create(ctx context.Context, d types.Delegation) (types.Delegation, error) {
	if d.Attachments == nil {
		d.Attachments = []string{}
	}
	if err := s.applyStatus(&d); err != nil {
		return types.Delegation{}, err
	}
	return s.repo.Create(ctx, d)
}

func (s *DelegationService) Update(ctx context.Context, d types.Delegation) error {
	if d.Attachments == nil {
		d.Attachments = []string{}
	}
	if err := s.applyStatus(&d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

// AddAttachment records an uploaded filename on the delegation.
func (s *DelegationService) AddAttachment(ctx context.Context, id int, name string) ([]string, error) {
	return s.repo.AppendAttachment(ctx, id, name)
}

func (s *DelegationService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
