package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/storage"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	formFieldFile      = "file"
)

// DelegationHandler provides HTTP handlers for delegations.
type DelegationHandler struct {
	delegationService *services.DelegationService
	attachments       storage.ObjectStorage
}

// NewDelegationHandler constructs a handler with the provided services.
func NewDelegationHandler(delegationService *services.DelegationService, attachments storage.ObjectStorage) *DelegationHandler {
	return &DelegationHandler{
		delegationService: delegationService,
		attachments:       attachments,
	}
}

// DelegationRouter registers delegation routes on the given router.
// Attachment routes are mounted only when an object-storage backend is
// configured; uploads additionally require a verified token.
func DelegationRouter(
	r chi.Router,
	delegationService *services.DelegationService,
	attachments storage.ObjectStorage,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewDelegationHandler(delegationService, attachments)

	r.Get("/", handler.ListDelegations)
	r.Post("/", handler.CreateDelegation)
	r.Route("/{delegationID}", func(r chi.Router) {
		r.Put("/", handler.UpdateDelegation)
		r.Delete("/", handler.DeleteDelegation)
		if attachments != nil {
			r.With(authMiddleware).Post("/attachments", handler.UploadAttachment)
			r.Get("/attachments/{name}", handler.GetAttachment)
		}
	})
}

// DelegationRequest is the wire shape of a delegation write. Field keys
// are camelCase; participant and attachment fields accept either plain
// scalars or nested objects and normalize to scalars.
type DelegationRequest struct {
	TaskName           string                `json:"taskName"`
	Message            *string               `json:"message"`
	AssignedBy         types.UserRef         `json:"assignedBy"`
	AssignedTo         types.UserRef         `json:"assignedTo"`
	NotifyTo           types.UserRef         `json:"notifyTo"`
	Auditor            types.UserRef         `json:"auditor"`
	PlannedDate        *time.Time            `json:"plannedDate"`
	Priority           *string               `json:"priority"`
	SetReminder        bool                  `json:"setReminder"`
	ReminderMode       *string               `json:"reminderMode"`
	ReminderFrequency  *string               `json:"reminderFrequency"`
	ReminderBeforeDays *int                  `json:"reminderBeforeDays"`
	ReminderStarting   *string               `json:"reminderStarting"`
	AssignedPC         *string               `json:"assignedPc"`
	GroupName          *string               `json:"groupName"`
	Attachments        []types.AttachmentRef `json:"attachments"`
	AttachmentRequired bool                  `json:"attachmentRequired"`
	NoteRequired       bool                  `json:"noteRequired"`
	NotifyDoer         bool                  `json:"notifyDoer"`
	Notes              *string               `json:"notes"`
	Status             string                `json:"status"`
	CompletedAt        *time.Time            `json:"completedAt"`
}

func (req DelegationRequest) toDelegation() types.Delegation {
	return types.Delegation{
		TaskName:           strings.TrimSpace(req.TaskName),
		Message:            req.Message,
		AssignedBy:         req.AssignedBy.Ptr(),
		AssignedTo:         req.AssignedTo.Ptr(),
		NotifyTo:           req.NotifyTo.Ptr(),
		Auditor:            req.Auditor.Ptr(),
		PlannedDate:        req.PlannedDate,
		Priority:           req.Priority,
		SetReminder:        req.SetReminder,
		ReminderMode:       req.ReminderMode,
		ReminderFrequency:  req.ReminderFrequency,
		ReminderBeforeDays: req.ReminderBeforeDays,
		ReminderStarting:   req.ReminderStarting,
		AssignedPC:         req.AssignedPC,
		GroupName:          req.GroupName,
		Attachments:        types.AttachmentNames(req.Attachments),
		AttachmentRequired: req.AttachmentRequired,
		NoteRequired:       req.NoteRequired,
		NotifyDoer:         req.NotifyDoer,
		Notes:              req.Notes,
		Status:             strings.TrimSpace(req.Status),
		CompletedAt:        req.CompletedAt,
	}
}

func (h *DelegationHandler) ListDelegations(w http.ResponseWriter, r *http.Request) {
	delegations, err := h.delegationService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, delegations)
}

func (h *DelegationHandler) CreateDelegation(w http.ResponseWriter, r *http.Request) {
	var req DelegationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d := req.toDelegation()
	if d.TaskName == "" {
		writeError(w, http.StatusBadRequest, "Task name is required")
		return
	}

	created, err := h.delegationService.Create(r.Context(), d)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *DelegationHandler) UpdateDelegation(w http.ResponseWriter, r *http.Request) {
	id, err := parseDelegationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req DelegationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d := req.toDelegation()
	d.ID = id
	if d.TaskName == "" {
		writeError(w, http.StatusBadRequest, "Task name is required")
		return
	}

	if err := h.delegationService.Update(r.Context(), d); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Delegation not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// DeleteDelegation removes a delegation. Deleting an id that does not
// exist still succeeds.
func (h *DelegationHandler) DeleteDelegation(w http.ResponseWriter, r *http.Request) {
	id, err := parseDelegationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.delegationService.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// AttachmentResponse reports the stored attachment list after an upload.
type AttachmentResponse struct {
	Success     bool     `json:"success"`
	Attachments []string `json:"attachments"`
}

// UploadAttachment stores the uploaded file in object storage and
// appends its filename to the delegation's attachment list.
func (h *DelegationHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseDelegationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == "/" {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	if err := h.attachments.Put(
		r.Context(),
		attachmentKey(id, name),
		file,
		header.Size,
		contentTypeOf(header),
	); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	attachments, err := h.delegationService.AddAttachment(r.Context(), id, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Delegation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentResponse{Success: true, Attachments: attachments})
}

// GetAttachment streams a stored attachment back to the caller.
func (h *DelegationHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseDelegationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := filepath.Base(chi.URLParam(r, "name"))
	if name == "" || name == "." {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	object, err := h.attachments.Get(r.Context(), attachmentKey(id, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "Attachment not found")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, object); err != nil {
		return
	}
}

func attachmentKey(id int, name string) string {
	return fmt.Sprintf("delegations/%d/%s", id, name)
}

func contentTypeOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func parseDelegationID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "delegationID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid delegation id")
	}
	return id, nil
}
