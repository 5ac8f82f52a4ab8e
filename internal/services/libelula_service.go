package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"cuidaBack/internal/models"
)

type LibelulaConfig struct {
	// Clave de aplicación compartida con Libélula.
	AppKey string

	// Base del REST de Libélula (prod)
	// Ejemplo: https://api.libelula.bo/rest
	BaseURL string

	// Base pública de este servicio; de aquí salen callback_url y url_retorno.
	PublicBaseURL string

	Client *http.Client
	Logger *slog.Logger
}

type LibelulaService struct {
	appKey        string
	baseURL       *url.URL
	publicBaseURL string

	httpClient *http.Client
	logger     *slog.Logger
}

func NewLibelulaService(cfg LibelulaConfig) (*LibelulaService, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.libelula.bo/rest"
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	s := &LibelulaService{
		appKey:        strings.TrimSpace(cfg.AppKey),
		baseURL:       u,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		httpClient:    client,
		logger:        logger,
	}
	logger.Info("Libélula initialized",
		"baseURL", s.baseURL.String(),
		"appkey_set", s.appKey != "",
		"publicBaseURL_set", s.publicBaseURL != "",
	)
	return s, nil
}

// Configured reports whether the credentials needed to register a debt are
// present. Checked per request so the server can start without them.
func (s *LibelulaService) Configured() error {
	if s.appKey == "" || s.publicBaseURL == "" {
		return models.ErrMissingParameters
	}
	return nil
}

// CallbackURL is where Libélula delivers the payment callback.
func (s *LibelulaService) CallbackURL() string {
	return s.publicBaseURL + "/api/libelula/pago-exitoso"
}

func (s *LibelulaService) ReturnURL() string {
	return s.publicBaseURL + "/return"
}

// ------- REGISTRAR DEUDA -------

type DebtLine struct {
	Concepto          string  `json:"concepto"`
	Cantidad          int     `json:"cantidad"`
	CostoUnitario     float64 `json:"costo_unitario"`
	DescuentoUnitario float64 `json:"descuento_unitario"`
}

type MetadataLine struct {
	Nombre string `json:"nombre"`
	Dato   string `json:"dato"`
}

type DebtRequest struct {
	Email       string
	Identifier  string
	Description string
	Currency    string
	InvoiceType string
	Lines       []DebtLine
	Metadata    []MetadataLine
}

type DebtRegistration struct {
	GatewayID  string
	PaymentURL string
	Raw        json.RawMessage
}

type registerDebtPayload struct {
	AppKey             string         `json:"appkey"`
	EmailCliente       string         `json:"email_cliente"`
	IdentificadorDeuda string         `json:"identificador_deuda"`
	CallbackURL        string         `json:"callback_url"`
	URLRetorno         string         `json:"url_retorno"`
	Descripcion        string         `json:"descripcion"`
	Moneda             string         `json:"moneda"`
	TipoFactura        string         `json:"tipo_factura,omitempty"`
	LineasDetalleDeuda []DebtLine     `json:"lineas_detalle_deuda"`
	LineasMetadatos    []MetadataLine `json:"lineas_metadatos,omitempty"`
}

// RegisterDebt sends the signed debt payload and returns the gateway's
// transaction id and checkout URL. A business error in the 200 response body
// (error != 0) surfaces as *LibelulaError carrying the gateway's mensaje.
func (s *LibelulaService) RegisterDebt(ctx context.Context, req DebtRequest) (*DebtRegistration, error) {
	logger := s.logger.With("op", "RegisterDebt", "identificador", req.Identifier)
	if err := s.Configured(); err != nil {
		return nil, err
	}

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/deuda/registrar")

	currency := req.Currency
	if currency == "" {
		currency = "BOB"
	}
	body, _ := json.Marshal(registerDebtPayload{
		AppKey:             s.appKey,
		EmailCliente:       req.Email,
		IdentificadorDeuda: req.Identifier,
		CallbackURL:        s.CallbackURL(),
		URLRetorno:         s.ReturnURL(),
		Descripcion:        req.Description,
		Moneda:             currency,
		TipoFactura:        req.InvoiceType,
		LineasDetalleDeuda: req.Lines,
		LineasMetadatos:    req.Metadata,
	})

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("registrar deuda request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	logger.Debug("registrar deuda raw", "status", resp.Status, "body", trimBody(string(b), 2000))

	if resp.StatusCode != http.StatusOK {
		return nil, &LibelulaError{StatusCode: resp.StatusCode, Mensaje: resp.Status, Body: string(b)}
	}

	var out gatewayResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode registrar deuda: %w", err)
	}
	if out.Error != 0 {
		return nil, &LibelulaError{StatusCode: resp.StatusCode, Code: out.Error, Mensaje: out.Mensaje, Body: string(b)}
	}
	if strings.TrimSpace(out.IDTransaccion) == "" || strings.TrimSpace(out.URLPasarelaPagos) == "" {
		return nil, fmt.Errorf("registrar deuda: empty id_transaccion or url_pasarela_pagos")
	}

	return &DebtRegistration{
		GatewayID:  out.IDTransaccion,
		PaymentURL: out.URLPasarelaPagos,
		Raw:        json.RawMessage(b),
	}, nil
}

// ------- CONSULTAR ESTADO -------

type DebtStatus struct {
	Paid   bool
	State  string
	Amount float64
	Raw    json.RawMessage
}

// QueryDebtStatus asks the gateway whether a debt is settled. Only the pull
// callback variant needs this.
func (s *LibelulaService) QueryDebtStatus(ctx context.Context, identifier string) (*DebtStatus, error) {
	logger := s.logger.With("op", "QueryDebtStatus", "identificador", identifier)
	if err := s.Configured(); err != nil {
		return nil, err
	}

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/deuda/consultar")

	body, _ := json.Marshal(map[string]string{
		"appkey":              s.appKey,
		"identificador_deuda": identifier,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("consultar deuda request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	logger.Debug("consultar deuda raw", "status", resp.Status, "body", trimBody(string(b), 2000))

	if resp.StatusCode != http.StatusOK {
		return nil, &LibelulaError{StatusCode: resp.StatusCode, Mensaje: resp.Status, Body: string(b)}
	}

	var env gatewayResponse
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode consultar deuda: %w", err)
	}
	if env.Error != 0 {
		return nil, &LibelulaError{StatusCode: resp.StatusCode, Code: env.Error, Mensaje: env.Mensaje, Body: string(b)}
	}

	var out struct {
		Pagada     bool            `json:"pagada"`
		Estado     string          `json:"estado"`
		MontoTotal json.RawMessage `json:"monto_total"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode consultar deuda: %w", err)
	}

	amount, err := flexibleAmount(out.MontoTotal)
	if err != nil {
		return nil, fmt.Errorf("libelula: parse monto_total: %w", err)
	}
	return &DebtStatus{
		Paid:   out.Pagada || strings.EqualFold(out.Estado, "pagada"),
		State:  out.Estado,
		Amount: amount,
		Raw:    json.RawMessage(b),
	}, nil
}

// gatewayResponse is the envelope every Libélula body shares. error and
// id_transaccion arrive as numbers or strings depending on the endpoint.
type gatewayResponse struct {
	Error            int
	Mensaje          string
	IDTransaccion    string
	URLPasarelaPagos string
}

func (g *gatewayResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error            json.RawMessage `json:"error"`
		Mensaje          string          `json:"mensaje"`
		IDTransaccion    json.RawMessage `json:"id_transaccion"`
		URLPasarelaPagos string          `json:"url_pasarela_pagos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	code, err := flexibleInt(raw.Error)
	if err != nil {
		return fmt.Errorf("libelula: parse error field: %w", err)
	}
	g.Error = code
	g.Mensaje = strings.TrimSpace(raw.Mensaje)
	g.IDTransaccion = flexibleString(raw.IDTransaccion)
	g.URLPasarelaPagos = strings.TrimSpace(raw.URLPasarelaPagos)
	return nil
}

func flexibleInt(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func flexibleString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func flexibleAmount(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

type LibelulaError struct {
	StatusCode int
	Code       int
	Mensaje    string
	Body       string
}

func (e *LibelulaError) Error() string {
	if e == nil {
		return "<nil>"
	}
	m := strings.TrimSpace(e.Mensaje)
	if m == "" {
		return fmt.Sprintf("libelula error %d", e.Code)
	}
	return fmt.Sprintf("libelula error %d: %s", e.Code, m)
}
