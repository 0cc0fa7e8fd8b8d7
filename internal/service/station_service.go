package service

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// maxSuggestions caps the completion list offered while typing a search.
const maxSuggestions = 8

// FilterStations returns the stations whose name or genre contains query, ignoring case,
// in catalog order. An empty query returns every station.
func FilterStations(stations []domain.Station, query string) []domain.Station {
	result := make([]domain.Station, 0, len(stations))
	for _, st := range stations {
		if st.Matches(query) {
			result = append(result, st)
		}
	}
	return result
}

// StationService serves the read-only catalog: search, lookup and navigation.
// All operations are thread-safe via sync.RWMutex.
type StationService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	catalog ports.StationCatalog
	bus     ports.EventBus

	// State
	query    string
	filtered []domain.Station

	// Concurrency control
	mu sync.RWMutex
}

// NewStationService creates a station service showing the whole catalog.
func NewStationService(logger *slog.Logger, catalog ports.StationCatalog, bus ports.EventBus) *StationService {
	s := &StationService{
		logger:   logger.With(slog.String("service", "StationService")),
		catalog:  catalog,
		bus:      bus,
		filtered: catalog.All(),
	}

	s.logger.Debug("station service initialized", slog.Int("stations", catalog.Len()))
	return s
}

// All returns the whole catalog in order.
func (s *StationService) All() []domain.Station {
	return s.catalog.All()
}

// Find returns the station with the given ID.
func (s *StationService) Find(id string) (domain.Station, error) {
	return s.catalog.Get(id)
}

// Filter narrows the visible stations to those matching query and publishes the result.
func (s *StationService) Filter(query string) []domain.Station {
	result := FilterStations(s.catalog.All(), query)

	s.mu.Lock()
	s.query = query
	s.filtered = result
	s.mu.Unlock()

	s.logger.Debug("catalog filtered", slog.String("query", query), slog.Int("matches", len(result)))
	s.bus.Publish(domain.NewCatalogFilteredEvent(query, result))

	out := make([]domain.Station, len(result))
	copy(out, result)
	return out
}

// Visible returns the stations matched by the last Filter call.
func (s *StationService) Visible() []domain.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Station, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// Query returns the last filter query.
func (s *StationService) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Genres returns every distinct genre in catalog order.
func (s *StationService) Genres() []string {
	seen := make(map[string]bool)
	var genres []string
	for _, st := range s.catalog.All() {
		key := strings.ToLower(st.Genre)
		if st.Genre == "" || seen[key] {
			continue
		}
		seen[key] = true
		genres = append(genres, st.Genre)
	}
	return genres
}

// Suggestions returns station names and genres completing query, names first.
func (s *StationService) Suggestions(query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	q := strings.ToLower(query)

	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if len(out) >= maxSuggestions || v == "" || seen[v] || !strings.Contains(strings.ToLower(v), q) {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	for _, st := range s.catalog.All() {
		add(st.Name)
	}
	for _, g := range s.Genres() {
		add(g)
	}
	return out
}

// Next returns the visible station after id, wrapping around.
func (s *StationService) Next(id string) (domain.Station, error) {
	return s.neighbor(id, 1)
}

// Previous returns the visible station before id, wrapping around.
func (s *StationService) Previous(id string) (domain.Station, error) {
	return s.neighbor(id, -1)
}

// neighbor steps offset places through the visible stations from id.
// An id outside the visible list starts from the first station.
func (s *StationService) neighbor(id string, offset int) (domain.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.filtered)
	if n == 0 {
		return domain.Station{}, domain.ErrStationNotFound
	}

	for i, st := range s.filtered {
		if st.ID == id {
			return s.filtered[((i+offset)%n+n)%n], nil
		}
	}
	return s.filtered[0], nil
}
