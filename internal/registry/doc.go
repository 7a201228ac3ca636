// Package registry holds the per-run dataset quality records.
//
// # Contract
//
// A Registry maps a DatasetKey (platform, normalized name) to exactly one
// DatasetQuality record. Records are created lazily on first GetOrCreate and
// then mutated in place by the correlator. Writers are serialized by a mutex.
//
// The registry lives for one sync run. Snapshots returned by All are deep
// enough copies that later writes are not visible to the caller.
//
// # Constructor
//
//	func New() *Registry
//	func (r *Registry) GetOrCreate(key model.DatasetKey) *model.DatasetQuality
//	func (r *Registry) All() []model.DatasetQuality
package registry
