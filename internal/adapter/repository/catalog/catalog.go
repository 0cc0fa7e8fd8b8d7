// Package catalog loads the read-only station catalog from JSON.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// EmbeddedSource names the built-in catalog in errors.
const EmbeddedSource = "embedded"

// record is the on-disk shape of one station.
type record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

// Catalog implements ports.StationCatalog over a validated, immutable station list.
//
// Thread-safe: the catalog never changes after loading.
type Catalog struct {
	stations []domain.Station
	index    map[string]int
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewCatalogError(path, "failed to open catalog", err)
	}
	defer f.Close()

	return Load(f, path)
}

// LoadBytes reads a catalog from in-memory JSON.
func LoadBytes(data []byte, source string) (*Catalog, error) {
	return Load(bytes.NewReader(data), source)
}

// Load decodes a JSON array of stations from r and validates it.
// source names the origin in errors.
func Load(r io.Reader, source string) (*Catalog, error) {
	var records []record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, domain.NewCatalogError(source, "invalid catalog JSON", err)
	}

	if len(records) == 0 {
		return nil, domain.NewCatalogError(source, "no stations", domain.ErrEmptyCatalog)
	}

	c := &Catalog{
		stations: make([]domain.Station, 0, len(records)),
		index:    make(map[string]int, len(records)),
	}
	for i, rec := range records {
		st, err := rec.station()
		if err != nil {
			return nil, domain.NewCatalogError(source, fmt.Sprintf("station %d", i), err)
		}
		if _, dup := c.index[st.ID]; dup {
			return nil, domain.NewCatalogError(source, fmt.Sprintf("station %d", i),
				domain.NewValidationError("id", st.ID, "duplicate station id"))
		}
		c.index[st.ID] = len(c.stations)
		c.stations = append(c.stations, st)
	}

	return c, nil
}

func (r record) station() (domain.Station, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return domain.Station{}, domain.NewValidationError("id", r.ID, "must not be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return domain.Station{}, domain.NewValidationError("name", r.Name, "must not be empty")
	}

	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Station{}, domain.NewValidationError("url", r.URL, "must be an http or https URL")
	}

	return domain.Station{
		ID:          id,
		Name:        strings.TrimSpace(r.Name),
		StreamURL:   u.String(),
		ImageURL:    strings.TrimSpace(r.Image),
		Genre:       strings.TrimSpace(r.Genre),
		Description: strings.TrimSpace(r.Description),
	}, nil
}

// All returns every station in catalog order.
func (c *Catalog) All() []domain.Station {
	out := make([]domain.Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Get retrieves a station by ID.
func (c *Catalog) Get(id string) (domain.Station, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.Station{}, domain.ErrStationNotFound
	}
	return c.stations[i], nil
}

// Len returns the number of stations.
func (c *Catalog) Len() int {
	return len(c.stations)
}

// Verify interface implementation
var _ ports.StationCatalog = (*Catalog)(nil)
