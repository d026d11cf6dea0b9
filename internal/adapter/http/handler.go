package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"currency-exchange-cli/internal/domain/model"
	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/internal/service"
	"currency-exchange-cli/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type conversionPayload struct {
	*model.Conversion
	Message string `json:"message"`
}

type Handler struct {
	service ports.ConversionService
	log     *logger.Logger
}

func NewHandler(service ports.ConversionService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// ConvertCurrencyHandler serves GET /api/v1/convert?from=USD&to=EUR&amount=100.
func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	amountStr := r.URL.Query().Get("amount")

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	amount := float32(1)
	if amountStr != "" {
		parsed, err := strconv.ParseFloat(amountStr, 32)
		if err != nil {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
			return
		}
		amount = float32(parsed)
	}

	result, err := h.service.Convert(r.Context(), from, to, amount)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, conversionPayload{
		Conversion: result,
		Message:    service.FormatConversion(result),
	})
}

// ListRatesHandler serves GET /api/v1/rates: every rate relative to USD.
func (h *Handler) ListRatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	listing, err := h.service.ListRates(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, listing)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, service.ErrUnknownCurrency):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrAuthFailure):
		status = http.StatusBadGateway
	}

	h.log.Error("Request failed", "error", err, "status", status)
	h.sendErrorResponse(w, status, service.FailureMessage(err))
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, Response{Success: false, Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}
