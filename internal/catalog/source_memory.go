package catalog

import (
	"context"
	"sync"
)

// MemSource serves a fixed product list. It backs tests and offline runs.
type MemSource struct {
	mu       sync.RWMutex
	products []Product
	err      error
}

func NewMemSource(products ...Product) *MemSource {
	return &MemSource{products: products}
}

func (s *MemSource) FetchAll(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}

	out := make([]Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out, nil
}

func (s *MemSource) Set(products ...Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.err = nil
}

// Fail makes every following FetchAll return err until Set is called.
func (s *MemSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
