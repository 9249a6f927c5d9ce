package dataaccess

import (
	"context"
	"errors"

	"maintenance-cloud/internal/cache"
	inventory "maintenance-cloud/internal/inventory/domain"
	prediction "maintenance-cloud/internal/prediction/domain"
)

// CachedStore serves datasets from a cache until they are invalidated.
type CachedStore struct {
	store *Store
	cache *cache.Cache
}

// NewCachedStore wraps store with c.
func NewCachedStore(store *Store, c *cache.Cache) (*CachedStore, error) {
	if store == nil {
		return nil, errors.New("dataaccess: nil store")
	}
	if c == nil {
		c = cache.New()
	}
	return &CachedStore{store: store, cache: c}, nil
}

// Store returns the underlying store.
func (s *CachedStore) Store() *Store { return s.store }

// Devices returns the cached inventory.
func (s *CachedStore) Devices(ctx context.Context) (inventory.Inventory, error) {
	return cache.Load(ctx, s.cache, DatasetDevices, s.store.Devices)
}

// Usage returns the cached usage log.
func (s *CachedStore) Usage(ctx context.Context) (inventory.UsageLog, error) {
	return cache.Load(ctx, s.cache, DatasetUsage, s.store.Usage)
}

// Predictions returns the cached snapshot.
func (s *CachedStore) Predictions(ctx context.Context) ([]prediction.Record, error) {
	return cache.Load(ctx, s.cache, DatasetPredictions, s.store.Predictions)
}

// Complaints returns the cached complaint log.
func (s *CachedStore) Complaints(ctx context.Context) ([]inventory.Complaint, error) {
	return cache.Load(ctx, s.cache, DatasetComplaints, s.store.Complaints)
}

// AppendComplaint appends and drops the cached complaint log.
func (s *CachedStore) AppendComplaint(ctx context.Context, deviceID, description, reportedBy string) (inventory.Complaint, error) {
	complaint, err := s.store.AppendComplaint(ctx, deviceID, description, reportedBy)
	if err != nil {
		return complaint, err
	}
	s.cache.Invalidate(DatasetComplaints)
	return complaint, nil
}

// Invalidate drops the named datasets, or all of them when none is given.
func (s *CachedStore) Invalidate(datasets ...string) {
	if len(datasets) == 0 {
		s.cache.InvalidateAll()
		return
	}
	s.cache.Invalidate(datasets...)
}
