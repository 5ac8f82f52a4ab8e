package handlers

import (
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"

	"cuidaBack/internal/models"
	"cuidaBack/internal/services"
)

type LibelulaHandler struct {
	Reconciler *services.ReconcileService
	InfoLog    *log.Logger
	ErrorLog   *log.Logger
}

func NewLibelulaHandler(reconciler *services.ReconcileService, infoLog, errorLog *log.Logger) *LibelulaHandler {
	return &LibelulaHandler{Reconciler: reconciler, InfoLog: infoLog, ErrorLog: errorLog}
}

var ackPage = template.Must(template.New("ack").Parse(`<html><body>
<h2>Pago {{if .Resolved}}{{if .Paid}}Exitoso{{else}}Fallido{{end}}{{else}}Recibido{{end}}</h2>
<p>ID: {{.Identifier}}</p>
<p>Estado: {{if .Resolved}}{{.State}}{{else}}desconocido{{end}}</p>
<p>Método: {{if .PaymentMethod}}{{.PaymentMethod}}{{else}}N/A{{end}}</p>
{{if .PlanID}}<p>Plan: {{.PlanID}}</p>{{end}}
{{if .InvoiceURL}}<p><a href="{{.InvoiceURL}}" target="_blank">Ver factura</a></p>{{end}}
</body></html>
`))

// PaymentCallback is the unauthenticated webhook Libélula calls after a
// payment attempt. It accepts both delivery shapes (query parameters and a
// JSON body) and always acknowledges a well-formed callback with an HTML
// page, including callbacks no transaction matches.
func (h *LibelulaHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	cb, err := h.parseCallback(r)
	if err != nil {
		http.Error(w, "Callback inválido", http.StatusBadRequest)
		return
	}

	if h.InfoLog != nil {
		h.InfoLog.Printf("libelula callback received, id %q", cb.TransactionID)
	}

	result, err := h.Reconciler.ProcessCallback(r.Context(), cb)
	if err != nil {
		if errors.Is(err, models.ErrMissingParameters) {
			http.Error(w, "Falta transaction_id", http.StatusBadRequest)
			return
		}
		if h.ErrorLog != nil {
			h.ErrorLog.Printf("libelula callback %s: %v", cb.TransactionID, err)
		}
		http.Error(w, "Error procesando callback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := ackPage.Execute(w, result); err != nil && h.ErrorLog != nil {
		h.ErrorLog.Printf("render ack page: %v", err)
	}
}

func (h *LibelulaHandler) parseCallback(r *http.Request) (services.GatewayCallback, error) {
	if r.Method == http.MethodPost && strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return services.GatewayCallback{}, err
		}
		return services.CallbackFromJSON(body)
	}
	if err := r.ParseForm(); err != nil {
		return services.GatewayCallback{}, err
	}
	return services.CallbackFromValues(r.Form), nil
}

// ReturnPage is where the checkout redirects the payer's browser afterwards.
func (h *LibelulaHandler) ReturnPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Gracias. Puedes cerrar esta pestaña."))
}
