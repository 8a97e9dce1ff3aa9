package schema

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache resolved schemas keyed by model type, safe for concurrent use. Concurrent
// resolutions of one type share a single parse, and only complete schemas are stored.
type Cache struct {
	store sync.Map
	group singleflight.Group
}

// Load returns the cached schema of modelType
func (cache *Cache) Load(modelType reflect.Type) (*Schema, bool) {
	if v, ok := cache.store.Load(modelType); ok {
		return v.(*Schema), true
	}
	return nil, false
}

func (cache *Cache) loadOrCompute(modelType reflect.Type, compute func() (*Schema, error)) (*Schema, error) {
	if s, ok := cache.Load(modelType); ok {
		return s, nil
	}

	v, err, _ := cache.group.Do(fmt.Sprintf("%p", modelType), func() (interface{}, error) {
		if s, ok := cache.Load(modelType); ok {
			return s, nil
		}
		s, err := compute()
		if err != nil {
			return nil, err
		}
		actual, _ := cache.store.LoadOrStore(modelType, s)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Schema), nil
}
