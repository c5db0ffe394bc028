package endpoint

import (
	"strings"

	"facturador/internal/model"
)

// Resolve produces the endpoint configuration for this session. saved is
// whatever the Store returned; host is where the frontend itself runs
// (request host for the web front, machine hostname for the CLI).
//
// Priority, first satisfying source wins as a whole set:
//  1. A complete persisted override set, verbatim.
//  2. Host inside the compose network: service-name URLs. That deployment
//     speaks XML.
//  3. localhost fallback ports, speaking JSON.
//
// Resolve cannot fail; step 3 always applies.
func Resolve(host string, saved Config) Config {
	if saved.Complete() {
		if !saved.Format.Valid() {
			saved.Format = model.FormatJSON
		}
		return saved
	}

	if isInternalHost(host) {
		return Config{
			CatalogURL: internalCatalogURL,
			OrderURL:   internalOrderURL,
			InvoiceURL: internalInvoiceURL,
			Format:     model.FormatXML,
		}
	}

	return Config{
		CatalogURL: DefaultCatalogURL,
		OrderURL:   DefaultOrderURL,
		InvoiceURL: DefaultInvoiceURL,
		Format:     model.FormatJSON,
	}
}

// isInternalHost matches the compose-network naming pattern. A host:port
// pair is matched on the host part only.
func isInternalHost(host string) bool {
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.Contains(host, internalHostMarker)
}
