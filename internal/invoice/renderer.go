// Package invoice requests invoice generation for an order and renders
// the returned XML document through the storefront's presentation
// transform.
package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"facturador/internal/model"
)

const stage = "factura"

// StylesheetPath is where the hosting page's own origin serves the
// presentation transform. Fixed path, not a service endpoint.
const StylesheetPath = "/factura.xsl"

// Renderer generates invoices and turns them into display fragments.
type Renderer struct {
	httpClient *http.Client
	serviceURL string // invoice service base URL
	assetURL   string // page-origin base URL serving the stylesheet
	format     model.WireFormat
	logger     *slog.Logger
}

// NewRenderer creates a renderer. assetURL is the origin of the hosting
// page, where the stylesheet lives.
func NewRenderer(serviceURL, assetURL string, format model.WireFormat, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		serviceURL: strings.TrimSuffix(serviceURL, "/"),
		assetURL:   strings.TrimSuffix(assetURL, "/"),
		format:     format,
		logger:     logger,
	}
}

type fetchResult struct {
	body []byte
	err  error
}

// Render requests an invoice for orderID, fetches the stylesheet from
// the page origin alongside it, and applies the transform. The two
// fetches run concurrently and are joined before the transform; either
// failure fails the whole render. Every failure comes back as a typed
// error, never a panic.
func (r *Renderer) Render(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", model.NewValidationError("pedido_id", "requerido")
	}

	invoiceCh := make(chan fetchResult, 1)
	styleCh := make(chan fetchResult, 1)
	go func() {
		body, err := r.generate(ctx, orderID)
		invoiceCh <- fetchResult{body: body, err: err}
	}()
	go func() {
		body, err := r.fetchStylesheet(ctx)
		styleCh <- fetchResult{body: body, err: err}
	}()

	invoiceRes, styleRes := <-invoiceCh, <-styleCh
	if invoiceRes.err != nil {
		return "", invoiceRes.err
	}
	if styleRes.err != nil {
		return "", styleRes.err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(invoiceRes.body); err != nil {
		return "", model.NewParseError(stage, fmt.Errorf("invoice document: %w", err))
	}
	if doc.Root() == nil {
		return "", model.NewParseError(stage, fmt.Errorf("invoice document has no XML root element"))
	}
	sheet, err := ParseStylesheet(styleRes.body)
	if err != nil {
		return "", model.NewParseError(stage, err)
	}

	fragment, err := sheet.Apply(doc)
	if err != nil {
		return "", model.NewParseError(stage, fmt.Errorf("applying transform: %w", err))
	}

	r.logger.Debug("invoice rendered", slog.String("pedido_id", orderID))
	return fragment, nil
}

// generate asks the invoice service to create an invoice for the order
// and returns the invoice XML.
func (r *Renderer) generate(ctx context.Context, orderID string) ([]byte, error) {
	payload, contentType, err := r.encodeRequest(orderID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.serviceURL+"/api/facturas", bytes.NewReader(payload))
	if err != nil {
		return nil, model.NewValidationError("URL de facturas", err.Error())
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, model.NewNetworkError(stage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewNetworkError(stage, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, model.NewServiceError(stage, resp.StatusCode, string(body))
	}
	return body, nil
}

// encodeRequest builds the generation payload in the configured wire
// format.
func (r *Renderer) encodeRequest(orderID string) ([]byte, string, error) {
	if r.format == model.FormatXML {
		doc := etree.NewDocument()
		doc.CreateElement("factura").CreateElement("pedido_id").SetText(orderID)
		payload, err := doc.WriteToBytes()
		if err != nil {
			return nil, "", fmt.Errorf("encoding invoice request: %w", err)
		}
		return payload, "application/xml", nil
	}

	payload, err := json.Marshal(map[string]string{"pedido_id": orderID})
	if err != nil {
		return nil, "", fmt.Errorf("encoding invoice request: %w", err)
	}
	return payload, "application/json", nil
}

// fetchStylesheet retrieves the presentation transform from the page
// origin.
func (r *Renderer) fetchStylesheet(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.assetURL+StylesheetPath, nil)
	if err != nil {
		return nil, model.NewValidationError("URL de la página", err.Error())
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, model.NewNetworkError(stage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewNetworkError(stage, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, model.NewServiceError(stage, resp.StatusCode, string(body))
	}
	return body, nil
}
