package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"proptech/portal/internal/models"
)

// IDiscoveryService finds listings outside the filter form: around a point
// the browser reported, or by a free address keyword.
type IDiscoveryService interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Listing, error)
	ByAddress(ctx context.Context, keyword string) ([]models.Listing, error)
}

const (
	DefaultNearbyRadiusKm = 5
	MaxNearbyRadiusKm     = 50
	earthRadiusKm         = 6371.0
)

type discoveryService struct {
	lookup ListingLookupAPI
	log    *slog.Logger
}

func NewDiscoveryService(lookup ListingLookupAPI, log *slog.Logger) IDiscoveryService {
	return &discoveryService{lookup: lookup, log: log}
}

// Nearby returns the listings within radiusKm of the point, closest first.
// A non-positive radius means the default; larger radii are capped.
func (s *discoveryService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Listing, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return nil, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidInput, lat, lng)
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	radiusKm = math.Min(radiusKm, MaxNearbyRadiusKm)

	found, err := s.lookup.ByLocation(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings near (%v, %v): %w", lat, lng, err)
	}
	sortByDistance(found, lat, lng)
	s.log.Debug("nearby listings", "count", len(found), "radius_km", radiusKm)
	return found, nil
}

func (s *discoveryService) ByAddress(ctx context.Context, keyword string) ([]models.Listing, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: address keyword is required", ErrInvalidInput)
	}
	return s.lookup.ByAddress(ctx, keyword)
}

// sortByDistance orders listings by distance from the point. Listings without
// coordinates keep their relative order at the end.
func sortByDistance(listings []models.Listing, lat, lng float64) {
	dist := make(map[string]float64, len(listings))
	for _, l := range listings {
		if plat, plng, ok := l.Coordinates(); ok {
			dist[l.ID] = DistanceKm(lat, lng, plat, plng)
		} else {
			dist[l.ID] = math.Inf(1)
		}
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return dist[listings[i].ID] < dist[listings[j].ID]
	})
}

// DistanceKm is the great circle distance between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
