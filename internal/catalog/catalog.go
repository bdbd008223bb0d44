// Package catalog serves the stop catalogue behind the booking form: the
// full stop list and the destinations reachable from a chosen origin. Reads
// go through a cache with explicit invalidation; fleet mutations call
// InvalidateStops after changing schedules.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/eyss21/projekt/internal/models"
)

const (
	allStopsKey  = "catalog:stops"
	stopCacheTTL = 10 * time.Minute
)

func availableKey(startStop string) string {
	return "catalog:available:" + startStop
}

// FleetReader is the slice of the fleet store the catalogue reads from.
type FleetReader interface {
	DistinctStops(ctx context.Context) ([]string, error)
	ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error)
	ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error)
}

// Service answers stop-catalogue queries from the fleet store, caching the
// answers until a fleet mutation invalidates them.
type Service struct {
	fleet FleetReader
	cache Cache
}

func NewService(fleet FleetReader, cache Cache) *Service {
	return &Service{fleet: fleet, cache: cache}
}

// AllStops returns every distinct stop across all schedules, sorted.
func (s *Service) AllStops(ctx context.Context) ([]string, error) {
	if cached, err := s.cache.Get(ctx, allStopsKey); err == nil {
		var stops []string
		if err := json.Unmarshal([]byte(cached), &stops); err == nil {
			return stops, nil
		}
	}

	stops, err := s.fleet.DistinctStops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stops: %w", err)
	}

	if encoded, err := json.Marshal(stops); err == nil {
		// Cache write failures are not fatal, the next read hits the DB.
		_ = s.cache.Set(ctx, allStopsKey, string(encoded), stopCacheTTL)
	}
	return stops, nil
}

// AvailableStops returns the stops reachable after startStop on any relation
// passing through it, deduplicated and sorted by order number so the list
// follows route order.
func (s *Service) AvailableStops(ctx context.Context, startStop string) ([]models.StopAvailability, error) {
	key := availableKey(startStop)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var stops []models.StopAvailability
		if err := json.Unmarshal([]byte(cached), &stops); err == nil {
			return stops, nil
		}
	}

	origins, err := s.fleet.ListSchedulesByStop(ctx, startStop)
	if err != nil {
		return nil, fmt.Errorf("failed to load origin schedules: %w", err)
	}

	seen := make(map[string]int)
	for _, origin := range origins {
		if origin.RelationID == nil {
			continue
		}
		route, err := s.fleet.ListRelationSchedules(ctx, *origin.RelationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load relation schedules: %w", err)
		}
		for _, stop := range route {
			if stop.Stop == startStop || stop.OrderNumber <= origin.OrderNumber {
				continue
			}
			if prev, ok := seen[stop.Stop]; !ok || stop.OrderNumber < prev {
				seen[stop.Stop] = stop.OrderNumber
			}
		}
	}

	stops := make([]models.StopAvailability, 0, len(seen))
	for stop, orderNumber := range seen {
		stops = append(stops, models.StopAvailability{Stop: stop, OrderNumber: orderNumber})
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].OrderNumber < stops[j].OrderNumber })

	if encoded, err := json.Marshal(stops); err == nil {
		_ = s.cache.Set(ctx, key, string(encoded), stopCacheTTL)
	}
	return stops, nil
}

// InvalidateStops drops the full stop list and, when startStops are given,
// the per-origin availability entries. Fleet mutations call this after every
// schedule change.
func (s *Service) InvalidateStops(ctx context.Context, startStops ...string) error {
	if err := s.cache.Invalidate(ctx, allStopsKey); err != nil {
		return fmt.Errorf("failed to invalidate stop cache: %w", err)
	}
	for _, stop := range startStops {
		if err := s.cache.Invalidate(ctx, availableKey(stop)); err != nil {
			return fmt.Errorf("failed to invalidate stop cache: %w", err)
		}
	}
	return nil
}
