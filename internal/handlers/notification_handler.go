package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"cuidaBack/internal/models"
	"cuidaBack/internal/services"
)

type NotificationHandler struct {
	Service  *services.NotificationService
	ErrorLog *log.Logger
}

func NewNotificationHandler(s *services.NotificationService, errorLog *log.Logger) *NotificationHandler {
	return &NotificationHandler{Service: s, ErrorLog: errorLog}
}

type sendNotificationRequest struct {
	UserID string            `json:"userId"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

// Send pushes an FCM notification to the user's registered device.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		respondError(w, http.StatusInternalServerError, "Notificaciones no configuradas")
		return
	}

	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		respondError(w, http.StatusBadRequest, "Faltan parámetros")
		return
	}

	err := h.Service.SendToUser(r.Context(), req.UserID, req.Title, req.Body, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, models.ErrMissingFCMToken):
			respondError(w, http.StatusBadRequest, "Usuario sin token FCM")
		default:
			if h.ErrorLog != nil {
				h.ErrorLog.Printf("send notification to %s: %v", req.UserID, err)
			}
			respondError(w, http.StatusInternalServerError, "Error enviando notificación")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
