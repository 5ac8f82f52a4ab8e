package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cuidaBack/internal/models"
	"cuidaBack/internal/services"
)

type PaymentHandler struct {
	Service  *services.DebtService
	ErrorLog *log.Logger
}

func NewPaymentHandler(s *services.DebtService, errorLog *log.Logger) *PaymentHandler {
	return &PaymentHandler{Service: s, ErrorLog: errorLog}
}

// CreateCupo registers a debt with Libélula for an additional patient slot or
// a subscription plan and returns the checkout URL.
func (h *PaymentHandler) CreateCupo(w http.ResponseWriter, r *http.Request) {
	var in services.DebtInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	issued, err := h.Service.CreateDebt(r.Context(), in)
	if err != nil {
		var gwErr *services.LibelulaError
		switch {
		case errors.Is(err, models.ErrMissingParameters):
			respondError(w, http.StatusBadRequest, "Faltan parámetros requeridos")
		case errors.As(err, &gwErr):
			mensaje := gwErr.Mensaje
			if mensaje == "" {
				mensaje = "Error Libélula"
			}
			respondError(w, http.StatusBadRequest, mensaje)
		default:
			if h.ErrorLog != nil {
				h.ErrorLog.Printf("create debt: %v", err)
			}
			respondError(w, http.StatusInternalServerError, "Error creando deuda")
		}
		return
	}

	respondJSON(w, http.StatusOK, issued)
}
