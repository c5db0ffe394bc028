package invoice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"facturador/internal/model"
)

// assetServer serves the stylesheet at the fixed page-origin path.
func assetServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != StylesheetPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, testStylesheet)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRender_JSON(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/facturas", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, testInvoice)
	}))
	defer svc.Close()
	assets := assetServer(t)

	r := NewRenderer(svc.URL, assets.URL, model.FormatJSON, nil)
	fragment, err := r.Render(context.Background(), "ORD-100")
	require.NoError(t, err)

	require.Equal(t, "application/json", gotContentType)
	require.JSONEq(t, `{"pedido_id": "ORD-100"}`, string(gotBody))

	sel, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	require.Equal(t, "Factura F-2026-0005", sel.Find("h2").Text())
}

func TestRender_XML(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, testInvoice)
	}))
	defer svc.Close()
	assets := assetServer(t)

	r := NewRenderer(svc.URL, assets.URL, model.FormatXML, nil)
	_, err := r.Render(context.Background(), "42")
	require.NoError(t, err)

	require.Equal(t, "application/xml", gotContentType)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(gotBody))
	el := doc.FindElement("/factura/pedido_id")
	require.NotNil(t, el)
	require.Equal(t, "42", el.Text())
}

func TestRender_ServiceErrorKeepsBodyVerbatim(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "Pedido con ID 99 no encontrado.")
	}))
	defer svc.Close()
	assets := assetServer(t)

	r := NewRenderer(svc.URL, assets.URL, model.FormatJSON, nil)
	_, err := r.Render(context.Background(), "99")
	require.ErrorIs(t, err, model.ErrService)

	var cerr *model.ClientError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "Pedido con ID 99 no encontrado.", cerr.Detail)
}

func TestRender_RedirectStatusIsServiceError(t *testing.T) {
	// A 304 reaches the client as-is and must be a service error, not a
	// parse error on the empty body.
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer svc.Close()
	assets := assetServer(t)

	r := NewRenderer(svc.URL, assets.URL, model.FormatJSON, nil)
	_, err := r.Render(context.Background(), "ORD-100")
	require.ErrorIs(t, err, model.ErrService)

	var cerr *model.ClientError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, http.StatusNotModified, cerr.Status)
}

func TestRender_StylesheetFailureFailsTheRender(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, testInvoice)
	}))
	defer svc.Close()
	assets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer assets.Close()

	r := NewRenderer(svc.URL, assets.URL, model.FormatJSON, nil)
	_, err := r.Render(context.Background(), "ORD-100")
	require.ErrorIs(t, err, model.ErrService)
}

func TestRender_InvoiceNotXMLIsParseError(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"factura": "soy json"}`)
	}))
	defer svc.Close()
	assets := assetServer(t)

	r := NewRenderer(svc.URL, assets.URL, model.FormatJSON, nil)
	_, err := r.Render(context.Background(), "ORD-100")
	require.ErrorIs(t, err, model.ErrParse)
}

func TestRender_BlankOrderID(t *testing.T) {
	r := NewRenderer("http://localhost:1", "http://localhost:1", model.FormatJSON, nil)
	_, err := r.Render(context.Background(), "  ")
	require.ErrorIs(t, err, model.ErrInvalid)
}

func TestRender_UnreachableInvoiceService(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svc.Close()
	assets := assetServer(t)

	r := NewRenderer(svc.URL, assets.URL, model.FormatJSON, nil)
	_, err := r.Render(context.Background(), "ORD-100")
	if !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("Render() error = %v, want ErrNetwork", err)
	}
}
