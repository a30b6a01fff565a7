package voyage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
)

var ErrProviderNotConfigured = errors.New("voyage provider is not configured")

// Provider is the upstream voyage-search API.
type Provider interface {
	Routes(ctx context.Context) ([]domain.Route, error)
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.VoyageResult, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type SearchUseCase interface {
	Routes(ctx context.Context) ([]domain.Route, error)
	Search(ctx context.Context, q domain.SearchQuery) (*SearchResult, error)
}

type SearchResult struct {
	OriginName      string                `json:"origin_name"`
	DestinationName string                `json:"destination_name"`
	Outbound        []domain.VoyageResult `json:"outbound"`
	Return          []domain.VoyageResult `json:"return"`
}

type SearchService struct {
	provider   Provider
	cache      Cache
	cutoff     *CutoffFilter
	routesTTL  time.Duration
	resultsTTL time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

type SearchServiceOption func(*SearchService)

func WithCacheTTLs(routes, results time.Duration) SearchServiceOption {
	return func(s *SearchService) {
		s.routesTTL = routes
		s.resultsTTL = results
	}
}

func WithTimeout(timeout time.Duration) SearchServiceOption {
	return func(s *SearchService) {
		s.timeout = timeout
	}
}

func NewSearchService(provider Provider, cache Cache, cutoff *CutoffFilter, logger *slog.Logger, opts ...SearchServiceOption) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SearchService{
		provider:   provider,
		cache:      cache,
		cutoff:     cutoff,
		routesTTL:  10 * time.Minute,
		resultsTTL: 5 * time.Minute,
		timeout:    25 * time.Second,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func routesKey() string {
	return "cache:routes"
}

func searchKey(q domain.SearchQuery) string {
	return fmt.Sprintf("voyage:%d:%d:%s:%d", q.OriginID, q.DestinationID, q.DepartureDate, q.PassengerCount())
}

func (s *SearchService) Routes(ctx context.Context) ([]domain.Route, error) {
	routes, err := getOrFetch(ctx, s, routesKey(), s.routesTTL, func(ctx context.Context) ([]domain.Route, error) {
		if s.provider == nil {
			return nil, ErrProviderNotConfigured
		}
		return s.provider.Routes(ctx)
	})
	if err != nil {
		return nil, &domain.UpstreamError{Service: "voyage provider", Err: err}
	}
	return routes, nil
}

// Search runs the outbound query, plus the swapped query for round trips.
// Upstream failures yield empty results together with an UpstreamError.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (*SearchResult, error) {
	if q.OriginID == 0 || q.DestinationID == 0 || q.DepartureDate == "" {
		return nil, domain.NewValidationError("search", "origin, destination and departure date are required")
	}
	if q.TripType == domain.TripTypeRoundTrip && q.ReturnDate == "" {
		return nil, domain.NewValidationError("return_date", "required for round trips")
	}

	result := &SearchResult{
		OriginName:      fmt.Sprintf("Origin %d", q.OriginID),
		DestinationName: fmt.Sprintf("Destination %d", q.DestinationID),
		Outbound:        []domain.VoyageResult{},
		Return:          []domain.VoyageResult{},
	}

	routes, err := s.Routes(ctx)
	if err != nil {
		s.logger.Error("voyage routes lookup failed", slog.String("error", err.Error()))
		return result, err
	}
	names := locationNames(routes)
	if n, ok := names[q.OriginID]; ok {
		result.OriginName = n
	}
	if n, ok := names[q.DestinationID]; ok {
		result.DestinationName = n
	}

	outbound, err := s.searchLeg(ctx, q)
	if err != nil {
		return result, err
	}
	result.Outbound = s.cutoff.Apply(outbound)

	if q.TripType == domain.TripTypeRoundTrip {
		back, err := s.searchLeg(ctx, q.ReturnLeg())
		if err != nil {
			result.Outbound = []domain.VoyageResult{}
			return result, err
		}
		result.Return = s.cutoff.Apply(back)
	}
	return result, nil
}

func (s *SearchService) searchLeg(ctx context.Context, q domain.SearchQuery) ([]domain.VoyageResult, error) {
	voyages, err := getOrFetch(ctx, s, searchKey(q), s.resultsTTL, func(ctx context.Context) ([]domain.VoyageResult, error) {
		if s.provider == nil {
			return nil, ErrProviderNotConfigured
		}
		return s.provider.Search(ctx, q)
	})
	if err != nil {
		s.logger.Error("voyage search failed",
			slog.String("key", searchKey(q)),
			slog.String("error", err.Error()),
		)
		return nil, &domain.UpstreamError{Service: "voyage provider", Err: err}
	}
	if voyages == nil {
		voyages = []domain.VoyageResult{}
	}
	return voyages, nil
}

// getOrFetch serves key from cache or calls fetch and stores the result.
// Cache failures degrade to a direct fetch.
func getOrFetch[T any](ctx context.Context, s *SearchService, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		} else if hit {
			return cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	value, err := fetch(fetchCtx)
	if err != nil {
		var zero T
		return zero, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, value, ttl); err != nil {
			s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return value, nil
}

func locationNames(routes []domain.Route) map[int]string {
	names := make(map[int]string, len(routes)*2)
	for _, r := range routes {
		if r.Origin.ID != 0 {
			names[r.Origin.ID] = r.Origin.Name
		}
		if r.Destination.ID != 0 {
			names[r.Destination.ID] = r.Destination.Name
		}
	}
	return names
}

var _ SearchUseCase = (*SearchService)(nil)
