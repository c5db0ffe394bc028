// Package catalog fetches and validates the product listing from the
// catalog service. The listing is XML; individual malformed entries are
// dropped without failing the whole load.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facturador/internal/model"
)

const stage = "catálogo"

// Client talks to the catalog service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a catalog client for the given base URL.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// Load fetches the catalog and returns the valid products in document
// order. A catalog with no valid products returns (nil, nil): the "no
// products" state is distinct from every error state.
//
// Error kinds are distinguishable by the caller: a malformed base URL is
// a validation error, an unreachable service a network error, a non-2xx
// status a service error carrying the body, and undecodable XML a parse
// error.
func (c *Client) Load(ctx context.Context) ([]model.Product, error) {
	endpoint := c.baseURL + "/api/products"
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, model.NewValidationError("URL de productos", fmt.Sprintf("URL mal formada: %q", endpoint))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, model.NewValidationError("URL de productos", err.Error())
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
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

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		// The XML syntax error is the parser-error marker; an empty but
		// well-formed document is handled below as the empty state.
		return nil, model.NewParseError(stage, err)
	}
	if doc.Root() == nil {
		return nil, model.NewParseError(stage, fmt.Errorf("response has no XML root element"))
	}

	elements := doc.FindElements("//product")
	products := make([]model.Product, 0, len(elements))
	for i, el := range elements {
		p, err := parseProduct(el)
		if err != nil {
			// Row-level failure: drop the entry, keep the rest.
			c.logger.Warn("skipping catalog entry",
				slog.Int("index", i),
				slog.String("reason", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, nil
	}
	return products, nil
}

// parseProduct validates one <product> element. Missing id, missing
// nombre or an unparseable precio rejects the entry; stock and
// descripcion fall back to placeholder text.
func parseProduct(el *etree.Element) (model.Product, error) {
	id := childText(el, "id")
	if id == "" {
		return model.Product{}, fmt.Errorf("missing id")
	}
	name := childText(el, "nombre")
	if name == "" {
		return model.Product{}, fmt.Errorf("missing nombre")
	}

	rawPrice := childText(el, "precio")
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return model.Product{}, fmt.Errorf("precio %q is not a number", rawPrice)
	}
	if price.IsNegative() {
		return model.Product{}, fmt.Errorf("precio %q is negative", rawPrice)
	}

	stock := childText(el, "stock")
	if stock == "" {
		stock = model.StockUnknown
	}
	description := childText(el, "descripcion")
	if description == "" {
		description = model.NoDescription
	}

	return model.Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Stock:       stock,
		Description: description,
	}, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
