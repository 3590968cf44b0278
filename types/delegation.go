package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Recognized delegation statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusOverdue    = "Overdue"
)

// ValidStatus reports whether s is one of the recognized statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Delegation is an assigned-task record. Participant fields are
// denormalized email strings; there is no foreign-key enforcement.
type Delegation struct {
	ID                 int        `json:"id" db:"id"`
	TaskName           string     `json:"task_name" db:"task_name"`
	Message            *string    `json:"message" db:"message"`
	AssignedBy         *string    `json:"assigned_by" db:"assigned_by"`
	AssignedTo         *string    `json:"assigned_to" db:"assigned_to"`
	NotifyTo           *string    `json:"notify_to" db:"notify_to"`
	Auditor            *string    `json:"auditor" db:"auditor"`
	PlannedDate        *time.Time `json:"planned_date" db:"planned_date"`
	Priority           *string    `json:"priority" db:"priority"`
	SetReminder        bool       `json:"set_reminder" db:"set_reminder"`
	ReminderMode       *string    `json:"reminder_mode" db:"reminder_mode"`
	ReminderFrequency  *string    `json:"reminder_frequency" db:"reminder_frequency"`
	ReminderBeforeDays *int       `json:"reminder_before_days" db:"reminder_before_days"`
	ReminderStarting   *string    `json:"reminder_starting" db:"reminder_starting"`
	AssignedPC         *string    `json:"assigned_pc" db:"assigned_pc"`
	GroupName          *string    `json:"group_name" db:"group_name"`
	Attachments        []string   `json:"attachments" db:"attachments"`
	AttachmentRequired bool       `json:"attachment_required" db:"attachment_required"`
	NoteRequired       bool       `json:"note_required" db:"note_required"`
	NotifyDoer         bool       `json:"notify_doer" db:"notify_doer"`
	Notes              *string    `json:"notes" db:"notes"`
	Status             string     `json:"status" db:"status"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	CompletedAt        *time.Time `json:"completed_at" db:"completed_at"`
}

// UserRef is a participant reference as it arrives on the wire: either a
// plain email string or a user-shaped object carrying an email property.
// Anything else normalizes to the null reference.
type UserRef struct {
	Email string
	Valid bool
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = UserRef{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*r = UserRef{}
			return nil
		}
		*r = UserRef{Email: s, Valid: true}
		return nil
	}

	var obj struct {
		Email *string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Email != nil {
		email := strings.TrimSpace(*obj.Email)
		if email != "" {
			*r = UserRef{Email: email, Valid: true}
			return nil
		}
	}

	*r = UserRef{}
	return nil
}

// Ptr returns the normalized scalar, nil for the null reference.
func (r UserRef) Ptr() *string {
	if !r.Valid {
		return nil
	}
	email := r.Email
	return &email
}

// AttachmentRef is an attachment descriptor as it arrives on the wire:
// either a filename string or an object carrying a name property.
type AttachmentRef struct {
	Name  string
	Valid bool
}

func (r *AttachmentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = AttachmentRef{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*r = AttachmentRef{}
			return nil
		}
		*r = AttachmentRef{Name: s, Valid: true}
		return nil
	}

	var obj struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Name != nil {
		name := strings.TrimSpace(*obj.Name)
		if name != "" {
			*r = AttachmentRef{Name: name, Valid: true}
			return nil
		}
	}

	*r = AttachmentRef{}
	return nil
}

// AttachmentNames flattens a list of attachment references to the stored
// list of filenames, skipping null references.
func AttachmentNames(refs []AttachmentRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Valid {
			names = append(names, ref.Name)
		}
	}
	return names
}
