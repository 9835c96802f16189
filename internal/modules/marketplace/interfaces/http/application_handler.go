package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/workhive/notify/internal/gateway/middleware"
	"github.com/workhive/notify/internal/modules/marketplace/application"
	"github.com/workhive/notify/internal/modules/marketplace/domain"
)

type ApplicationHandler struct {
	service *application.ApplicationService
}

func NewApplicationHandler(service *application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

type applyRequest struct {
	JobTitle   string    `json:"job_title"`
	WorkerName string    `json:"worker_name"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.JobTitle == "" || req.WorkerName == "" || req.OwnerID == uuid.Nil {
		http.Error(w, "job_title, worker_name and owner_id are required", http.StatusBadRequest)
		return
	}

	app, err := h.service.Apply(r.Context(), application.ApplyInput{
		JobID:      jobID,
		JobTitle:   req.JobTitle,
		WorkerID:   userID,
		WorkerName: req.WorkerName,
		OwnerID:    req.OwnerID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOwnJob) {
			http.Error(w, "cannot apply to your own job", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to apply", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(app)
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *ApplicationHandler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, decidedBy uuid.UUID) (*domain.JobApplication, error)) {
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	app, err := fn(r.Context(), applicationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			http.Error(w, "application not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrNotJobOwner):
			http.Error(w, "only the job owner can decide", http.StatusForbidden)
		case errors.Is(err, domain.ErrAlreadyDecided):
			http.Error(w, "application already decided", http.StatusConflict)
		default:
			http.Error(w, "failed to update application", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(app)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	apps, err := h.service.ListByWorker(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, "failed to fetch applications", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []domain.JobApplication{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": apps})
}
