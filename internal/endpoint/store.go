package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"facturador/internal/model"
)

// Store persists user-entered endpoint overrides between sessions under
// fixed keys. It deliberately performs no validation of the stored URLs;
// malformed values surface later as catalog-load errors.
type Store struct {
	path string
}

// persisted is the on-disk shape. Key names are part of the stored state
// and must not change.
type persisted struct {
	ProductsURL string           `json:"productsUrl"`
	PedidosURL  string           `json:"pedidosUrl"`
	FacturasURL string           `json:"facturasUrl"`
	WireFormat  model.WireFormat `json:"wireFormat,omitempty"`
}

// DefaultPath returns the override file location. FACTURADOR_CONFIG wins
// when set; otherwise the per-user config directory is used.
func DefaultPath() (string, error) {
	if p := os.Getenv("FACTURADOR_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "facturador", "endpoints.json"), nil
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted overrides. A missing file is not an error; it
// returns a zero Config, which Resolve treats as "no overrides".
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	return Config{
		CatalogURL: p.ProductsURL,
		OrderURL:   p.PedidosURL,
		InvoiceURL: p.FacturasURL,
		Format:     p.WireFormat,
	}, nil
}

// Save writes the configuration, creating parent directories as needed.
func (s *Store) Save(cfg Config) error {
	data, err := json.MarshalIndent(persisted{
		ProductsURL: cfg.CatalogURL,
		PedidosURL:  cfg.OrderURL,
		FacturasURL: cfg.InvoiceURL,
		WireFormat:  cfg.Format,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
