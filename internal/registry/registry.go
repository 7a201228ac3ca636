package registry

import (
	"sort"
	"sync"

	"github.com/kube-rca/dqsync/internal/model"
)

// Registry is a mutex-guarded DatasetKey -> DatasetQuality map.
type Registry struct {
	mu      sync.Mutex
	records map[model.DatasetKey]*model.DatasetQuality
}

func New() *Registry {
	return &Registry{records: make(map[model.DatasetKey]*model.DatasetQuality)}
}

// GetOrCreate returns the record for key, creating an empty one if needed.
// The returned pointer must only be mutated through Update.
func (r *Registry) GetOrCreate(key model.DatasetKey) *model.DatasetQuality {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(key)
}

func (r *Registry) getOrCreateLocked(key model.DatasetKey) *model.DatasetQuality {
	q, ok := r.records[key]
	if !ok {
		q = &model.DatasetQuality{Key: key, Monitors: []model.DataMonitor{}}
		r.records[key] = q
	}
	return q
}

// Update runs fn on the record for key under the registry lock.
func (r *Registry) Update(key model.DatasetKey, fn func(q *model.DatasetQuality)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.getOrCreateLocked(key))
}

func (r *Registry) Get(key model.DatasetKey) (model.DatasetQuality, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.records[key]
	if !ok {
		return model.DatasetQuality{}, false
	}
	return copyRecord(q), true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// All returns a copy of every record ordered by platform, then name.
func (r *Registry) All() []model.DatasetQuality {
	r.mu.Lock()
	out := make([]model.DatasetQuality, 0, len(r.records))
	for _, q := range r.records {
		out = append(out, copyRecord(q))
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Platform != out[j].Key.Platform {
			return out[i].Key.Platform < out[j].Key.Platform
		}
		return out[i].Key.Name < out[j].Key.Name
	})
	return out
}

func copyRecord(q *model.DatasetQuality) model.DatasetQuality {
	c := *q
	c.Monitors = append([]model.DataMonitor(nil), q.Monitors...)
	if c.Monitors == nil {
		c.Monitors = []model.DataMonitor{}
	}
	return c
}
