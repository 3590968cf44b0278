package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/taskdesk/apiserver/types"
)

// DelegationRepository handles persistence for delegations.
type DelegationRepository struct {
	db *sql.DB
}

func NewDelegationRepository(db *sql.DB) *DelegationRepository {
	return &DelegationRepository{db: db}
}

const delegationColumns = `
	id, task_name, message, assigned_by, assigned_to, notify_to, auditor,
	planned_date, priority, set_reminder, reminder_mode, reminder_frequency,
	reminder_before_days, reminder_starting, assigned_pc, group_name,
	attachments, attachment_required, note_required, notify_doer,
	notes, status, created_at, completed_at`

func scanDelegation(row interface{ Scan(...any) error }) (types.Delegation, error) {
	var d types.Delegation
	err := row.Scan(
		&d.ID,
		&d.TaskName,
		&d.Message,
		&d.AssignedBy,
		&d.AssignedTo,
		&d.NotifyTo,
		&d.Auditor,
		&d.PlannedDate,
		&d.Priority,
		&d.SetReminder,
		&d.ReminderMode,
		&d.ReminderFrequency,
		&d.ReminderBeforeDays,
		&d.ReminderStarting,
		&d.AssignedPC,
		&d.GroupName,
		pq.Array(&d.Attachments),
		&d.AttachmentRequired,
		&d.NoteRequired,
		&d.NotifyDoer,
		&d.Notes,
		&d.Status,
		&d.CreatedAt,
		&d.CompletedAt,
	)
	return d, err
}

// List returns every delegation, most recently created first. The
// result set is unbounded.
func (r *DelegationRepository) List(ctx context.Context) ([]types.Delegation, error) {
	const query = `
		SELECT` + delegationColumns + `
		FROM delegations
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	delegations := make([]types.Delegation, 0)
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, err
		}
		delegations = append(delegations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return delegations, nil
}

func (r *DelegationRepository) Get(ctx context.Context, id int) (types.Delegation, error) {
	const query = `
		SELECT` + delegationColumns + `
		FROM delegations
		WHERE id = $1`
	d, err := scanDelegation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Delegation{}, ErrNotFound
		}
		return types.Delegation{}, err
	}
	return d, nil
}

// Create inserts a delegation with a fixed column list and returns the
// stored row including the generated id and defaulted created_at.
func (r *DelegationRepository) Create(ctx context.Context, d types.Delegation) (types.Delegation, error) {
	const query = `
		INSERT INTO delegations (
			task_name, message, assigned_by, assigned_to, notify_to, auditor,
			planned_date, priority, set_reminder, reminder_mode, reminder_frequency,
			reminder_before_days, reminder_starting, assigned_pc, group_name,
			attachments, attachment_required, note_required, notify_doer,
			notes, status, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		d.TaskName,
		d.Message,
		d.AssignedBy,
		d.AssignedTo,
		d.NotifyTo,
		d.Auditor,
		d.PlannedDate,
		d.Priority,
		d.SetReminder,
		d.ReminderMode,
		d.ReminderFrequency,
		d.ReminderBeforeDays,
		d.ReminderStarting,
		d.AssignedPC,
		d.GroupName,
		pq.Array(d.Attachments),
		d.AttachmentRequired,
		d.NoteRequired,
		d.NotifyDoer,
		d.Notes,
		d.Status,
		d.CompletedAt,
	).Scan(&d.ID, &d.CreatedAt); err != nil {
		return types.Delegation{}, err
	}
	return d, nil
}

// Update fully replaces every mutable column by id. The column order
// here is specified independently of Create; the two statements are not
// kept symmetric.
func (r *DelegationRepository) Update(ctx context.Context, d types.Delegation) error {
	const query = `
		UPDATE delegations
		SET task_name = $1,
			message = $2,
			notes = $3,
			assigned_by = $4,
			assigned_to = $5,
			notify_to = $6,
			auditor = $7,
			planned_date = $8,
			priority = $9,
			set_reminder = $10,
			reminder_mode = $11,
			reminder_frequency = $12,
			reminder_before_days = $13,
			reminder_starting = $14,
			assigned_pc = $15,
			group_name = $16,
			attachments = $17,
			attachment_required = $18,
			note_required = $19,
			notify_doer = $20,
			status = $21,
			completed_at = $22
		WHERE id = $23`
	result, err := r.db.ExecContext(
		ctx,
		query,
		d.TaskName,
		d.Message,
		d.Notes,
		d.AssignedBy,
		d.AssignedTo,
		d.NotifyTo,
		d.Auditor,
		d.PlannedDate,
		d.Priority,
		d.SetReminder,
		d.ReminderMode,
		d.ReminderFrequency,
		d.ReminderBeforeDays,
		d.ReminderStarting,
		d.AssignedPC,
		d.GroupName,
		pq.Array(d.Attachments),
		d.AttachmentRequired,
		d.NoteRequired,
		d.NotifyDoer,
		d.Status,
		d.CompletedAt,
		d.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendAttachment adds a filename to the stored attachment list.
func (r *DelegationRepository) AppendAttachment(ctx context.Context, id int, name string) ([]string, error) {
	const query = `
		UPDATE delegations
		SET attachments = array_append(attachments, $1)
		WHERE id = $2
		RETURNING attachments`
	var attachments []string
	if err := r.db.QueryRowContext(ctx, query, name, id).Scan(pq.Array(&attachments)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return attachments, nil
}

// Delete removes a delegation by id. Deleting an id that does not exist
// is not an error.
func (r *DelegationRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM delegations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
