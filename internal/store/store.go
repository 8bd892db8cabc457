// Package store holds the session override datasets, one atomic slot per
// record type, shadowing the built-in default catalogues.
package store

import (
	"sort"
	"sync"

	"cable-quote/pkg/api"
)

// Store owns the uploaded datasets. Writes replace a slot atomically with
// last-write-wins semantics; readers never observe a half-written dataset.
type Store struct {
	mu        sync.RWMutex
	overrides map[api.RecordType]*slot
	defaults  map[api.RecordType][]api.CatalogEntry
}

type slot struct {
	dataset api.UploadedDataset
	entries []api.CatalogEntry
}

// New creates a store seeded with the built-in default catalogues.
func New() *Store {
	return &Store{
		overrides: make(map[api.RecordType]*slot),
		defaults: map[api.RecordType][]api.CatalogEntry{
			api.RecordTypePricing: defaultPricingCatalogue(),
			api.RecordTypeTesting: defaultTestingSchedule(),
		},
	}
}

// Put installs a new override for the dataset's record type. Catalogue
// entries are derived once here so readers get a consistent view.
func (s *Store) Put(ds api.UploadedDataset) {
	entries := EntriesFromRows(ds.Rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[ds.RecordType] = &slot{dataset: ds, entries: entries}
}

// Get returns a read-only view of the active override, if any.
func (s *Store) Get(rt api.RecordType) (api.UploadedDataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.overrides[rt]; ok {
		return sl.dataset, true
	}
	return api.UploadedDataset{}, false
}

// ActiveRows returns the catalogue entries for a record type: the active
// override when present, the built-in default otherwise.
func (s *Store) ActiveRows(rt api.RecordType) []api.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.overrides[rt]; ok {
		out := make([]api.CatalogEntry, len(sl.entries))
		copy(out, sl.entries)
		return out
	}
	out := make([]api.CatalogEntry, len(s.defaults[rt]))
	copy(out, s.defaults[rt])
	return out
}

// Clear drops every override, restoring the built-in defaults.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = make(map[api.RecordType]*slot)
}

// ClearType drops the override for one record type.
func (s *Store) ClearType(rt api.RecordType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, rt)
}

// CompareWithDefault summarizes how the active override differs from the
// built-in default catalogue.
func (s *Store) CompareWithDefault(rt api.RecordType) api.DatasetDiff {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diff := api.DatasetDiff{
		RecordType:   rt,
		DefaultCount: len(s.defaults[rt]),
	}
	sl, ok := s.overrides[rt]
	if !ok {
		return diff
	}
	diff.HasOverride = true
	diff.OverrideCount = len(sl.entries)

	defBySKU := make(map[string]api.CatalogEntry)
	for _, e := range s.defaults[rt] {
		defBySKU[e.SKU] = e
	}
	ovrBySKU := make(map[string]api.CatalogEntry)
	for _, e := range sl.entries {
		ovrBySKU[e.SKU] = e
	}

	for sku, ovr := range ovrBySKU {
		def, exists := defBySKU[sku]
		if !exists {
			diff.AddedSKUs = append(diff.AddedSKUs, sku)
			continue
		}
		if !def.UnitPrice.Equal(ovr.UnitPrice) {
			diff.PriceDeltas = append(diff.PriceDeltas, api.PriceDelta{
				SKU:           sku,
				DefaultPrice:  def.UnitPrice.StringFixed(2),
				OverridePrice: ovr.UnitPrice.StringFixed(2),
			})
		}
	}
	for sku := range defBySKU {
		if _, exists := ovrBySKU[sku]; !exists {
			diff.RemovedSKUs = append(diff.RemovedSKUs, sku)
		}
	}

	sort.Strings(diff.AddedSKUs)
	sort.Strings(diff.RemovedSKUs)
	sort.Slice(diff.PriceDeltas, func(i, j int) bool {
		return diff.PriceDeltas[i].SKU < diff.PriceDeltas[j].SKU
	})
	return diff
}
