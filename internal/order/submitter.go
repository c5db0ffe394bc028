// Package order serializes the cart into the order service's wire format
// and submits it. The two backend deployments expect different encodings
// (JSON or XML); the submitter is configured with one of them.
package order

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"facturador/internal/model"
)

const stage = "pedido"

// Submitter creates orders on the order service.
type Submitter struct {
	httpClient *http.Client
	baseURL    string
	codec      codec
	logger     *slog.Logger
}

// NewSubmitter creates a submitter speaking the given wire format.
func NewSubmitter(baseURL string, format model.WireFormat, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		codec:      codecFor(format),
		logger:     logger,
	}
}

// Submit validates input, posts the order and returns the server-assigned
// identifier. Validation failures happen before any network call. A
// non-success response surfaces the server body verbatim; a success
// response without a locatable identifier is an error, never an empty ID.
func (s *Submitter) Submit(ctx context.Context, customerID string, lines []model.CartLine) (model.OrderResult, error) {
	trimmed := strings.TrimSpace(customerID)
	if trimmed == "" {
		return model.OrderResult{}, model.NewValidationError("cliente_id", "ingresa un ID de cliente")
	}
	cliente, err := strconv.Atoi(trimmed)
	if err != nil {
		return model.OrderResult{}, model.NewValidationError("cliente_id", fmt.Sprintf("%q no es un número entero", customerID))
	}
	if len(lines) == 0 {
		return model.OrderResult{}, model.NewValidationError("items", "el carrito está vacío")
	}

	o := model.Order{CustomerID: cliente, Items: make([]model.OrderItem, len(lines))}
	for i, l := range lines {
		o.Items[i] = model.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	payload, err := s.codec.encode(o)
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("encoding order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/pedidos", bytes.NewReader(payload))
	if err != nil {
		return model.OrderResult{}, model.NewValidationError("URL de pedidos", err.Error())
	}
	req.Header.Set("Content-Type", s.codec.contentType())
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return model.OrderResult{}, model.NewNetworkError(stage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.OrderResult{}, model.NewNetworkError(stage, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.OrderResult{}, model.NewServiceError(stage, resp.StatusCode, string(body))
	}

	id, err := s.codec.orderID(body)
	if err != nil {
		return model.OrderResult{}, model.NewParseError(stage, err)
	}

	s.logger.Debug("order created", slog.String("pedido_id", id))
	return model.OrderResult{OrderID: id}, nil
}
