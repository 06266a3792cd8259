package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"

	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/internal/core/services"
	"murmur/pkg/logging"
	"murmur/pkg/middleware"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	// scheduler is nil when no task queue is configured.
	scheduler contracts.Scheduler
}

func NewNotificationHandler(notifications *services.NotificationService, scheduler contracts.Scheduler) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, scheduler: scheduler}
}

func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ns, err := h.notifications.Unread(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, lo.Map(ns, func(n domain.Notification, _ int) domain.NotificationView {
		return domain.ViewOf(n)
	}))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	n, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Marked %d notifications as read", n)})
}

type createNotificationRequest struct {
	UserID       string  `json:"user_id" validate:"required"`
	Message      string  `json:"message" validate:"required,max=4096"`
	Title        *string `json:"title,omitempty" validate:"omitempty,max=255"`
	DelaySeconds int     `json:"delay_seconds" validate:"min=0,max=2592000"`
}

// Create stores and pushes a notification now, or hands it to the scheduler when a delay is given.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := domain.Validate(req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.DelaySeconds > 0 {
		if h.scheduler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, domain.ErrSchedulerDisabled.Error())
			return
		}
		payload, err := json.Marshal(domain.NotifyTask{UserID: req.UserID, Message: req.Message, Title: req.Title})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to schedule notification")
			return
		}
		id, err := h.scheduler.Schedule(r.Context(), domain.TaskNotify, payload, time.Duration(req.DelaySeconds)*time.Second)
		if err != nil {
			log.ErrorContext(r.Context(), "notification handler - schedule - failed", logging.User(req.UserID), logging.Err(err))
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to schedule notification")
			return
		}
		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
		return
	}

	err := h.notifications.Notify(r.Context(), req.UserID, req.Message, req.Title)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Notification created"})
	case errors.Is(err, domain.ErrInvalidUserID):
		middleware.WriteError(w, http.StatusBadRequest, domain.ErrInvalidUserID.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create notification")
	}
}
